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

import (
	"fmt"
	"math"
)

// ValidateTag validates that a tag survives normalization.
//
// Validation rules:
//   - Tag must not normalize to the empty string
func ValidateTag(tag string) error {
	if NormalizeTag(tag) == "" {
		return ErrEmptyTag
	}
	return nil
}

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - ID must not be empty
//   - Tags may be empty (the document simply contributes nothing)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}
	if doc.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyDocumentID)
	}
	return nil
}

// ValidateFeedbackType validates that a FeedbackType has a valid value.
func ValidateFeedbackType(t FeedbackType) error {
	if t != FeedbackPositive && t != FeedbackNegative {
		return fmt.Errorf("%w: value %d", ErrInvalidFeedbackType, t)
	}
	return nil
}

// ClampScore guards numerically invalid scores: NaN and infinities clamp
// to 0, negatives clamp to 0.
func ClampScore(score float64) float64 {
	if math.IsNaN(score) || math.IsInf(score, 0) || score < 0 {
		return 0
	}
	return score
}

// ClampWeight clamps a learned weight into [min, max].
func ClampWeight(w, min, max float64) float64 {
	if math.IsNaN(w) {
		return min
	}
	if w < min {
		return min
	}
	if w > max {
		return max
	}
	return w
}
