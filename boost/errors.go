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


package boost

import "errors"

var (
	// ErrMatrixRequired is returned when a co-occurrence matrix is not provided.
	ErrMatrixRequired = errors.New("co-occurrence matrix required")

	// ErrBlacklistedTag is returned when a blacklisted tag is registered.
	ErrBlacklistedTag = errors.New("tag is blacklisted")

	// ErrFlushFuncRequired is returned when a Saver is built without a flush callback.
	ErrFlushFuncRequired = errors.New("flush callback required")
)
