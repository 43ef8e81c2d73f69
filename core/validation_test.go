package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTag(t *testing.T) {
	assert.NoError(t, ValidateTag("golang"))
	assert.NoError(t, ValidateTag("  Mixed Case  "))
	assert.ErrorIs(t, ValidateTag(""), ErrEmptyTag)
	assert.ErrorIs(t, ValidateTag("   "), ErrEmptyTag)
}

func TestValidateDocument(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, ValidateDocument(&Document{ID: "d1", Tags: []string{"a"}}))
	})

	t.Run("tags may be empty", func(t *testing.T) {
		assert.NoError(t, ValidateDocument(&Document{ID: "d1"}))
	})

	t.Run("nil document", func(t *testing.T) {
		assert.ErrorIs(t, ValidateDocument(nil), ErrInvalidDocument)
	})

	t.Run("empty id", func(t *testing.T) {
		err := ValidateDocument(&Document{Tags: []string{"a"}})
		assert.ErrorIs(t, err, ErrInvalidDocument)
		assert.ErrorIs(t, err, ErrEmptyDocumentID)
	})
}

func TestValidateFeedbackType(t *testing.T) {
	assert.NoError(t, ValidateFeedbackType(FeedbackPositive))
	assert.NoError(t, ValidateFeedbackType(FeedbackNegative))
	assert.ErrorIs(t, ValidateFeedbackType(FeedbackType(0)), ErrInvalidFeedbackType)
	assert.ErrorIs(t, ValidateFeedbackType(FeedbackType(99)), ErrInvalidFeedbackType)
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0.5, ClampScore(0.5))
	assert.Equal(t, 0.0, ClampScore(math.NaN()))
	assert.Equal(t, 0.0, ClampScore(math.Inf(1)))
	assert.Equal(t, 0.0, ClampScore(math.Inf(-1)))
	assert.Equal(t, 0.0, ClampScore(-0.2))
}

func TestClampWeight(t *testing.T) {
	assert.Equal(t, 1.0, ClampWeight(1.0, 0.5, 2.0))
	assert.Equal(t, 0.5, ClampWeight(0.1, 0.5, 2.0))
	assert.Equal(t, 2.0, ClampWeight(7.3, 0.5, 2.0))
	assert.Equal(t, 0.5, ClampWeight(math.NaN(), 0.5, 2.0))
}
