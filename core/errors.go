// Copyright 2025 Synaptiq Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import "errors"

// Domain validation errors
var (
	// ErrEmptyTag indicates a tag normalized to the empty string.
	ErrEmptyTag = errors.New("tag cannot be empty")

	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrEmptyDocumentID indicates the document ID field is empty.
	ErrEmptyDocumentID = errors.New("document id cannot be empty")

	// ErrInvalidFeedbackType indicates an invalid FeedbackType value.
	ErrInvalidFeedbackType = errors.New("invalid feedback type")

	// ErrInvalidScore indicates a score outside [0, 1] or non-finite.
	ErrInvalidScore = errors.New("invalid score")
)
