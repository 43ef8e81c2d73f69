package matrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synaptiq/tagrank/core"
)

func TestSnapshotRoundTrip(t *testing.T) {
	m := New()
	m.BuildFromDocuments([]core.Document{
		{ID: "d1", Tags: []string{"red", "shoe"}},
		{ID: "d2", Tags: []string{"red", "hat"}},
	})
	m.AddRelation("red", "coat", 3)
	require.NoError(t, m.RegisterTag("orphan"))

	blob, err := m.ToJSON()
	require.NoError(t, err)

	restored := New()
	require.NoError(t, restored.FromJSON(blob))

	assert.Equal(t, m.GetAllTags(), restored.GetAllTags())
	assert.Equal(t, m.TotalDocuments(), restored.TotalDocuments())
	for _, pair := range [][2]string{
		{"red", "shoe"}, {"red", "hat"}, {"red", "coat"}, {"shoe", "hat"}, {"orphan", "orphan"},
	} {
		assert.Equal(t, m.GetWeight(pair[0], pair[1]), restored.GetWeight(pair[0], pair[1]),
			"weight mismatch for %v", pair)
	}
	assert.Equal(t, m.GetRelatedTags("red", 10, 0), restored.GetRelatedTags("red", 10, 0))
	assert.Equal(t, m.Frequency("red"), restored.Frequency("red"))
}

func TestFromJSONMalformed(t *testing.T) {
	m := New()
	m.AddRelation("red", "shoe", 1)

	t.Run("invalid json", func(t *testing.T) {
		err := m.FromJSON([]byte("{not json"))
		assert.ErrorIs(t, err, ErrMalformedSnapshot)
		// State untouched.
		assert.Equal(t, 1.0, m.GetWeight("red", "shoe"))
	})

	t.Run("bad relation triple", func(t *testing.T) {
		err := m.FromJSON([]byte(`{"tags":["a","b"],"relations":[["a","b"]]}`))
		assert.ErrorIs(t, err, ErrMalformedSnapshot)
		assert.Equal(t, 1.0, m.GetWeight("red", "shoe"))
	})

	t.Run("wrong triple types", func(t *testing.T) {
		err := m.FromJSON([]byte(`{"tags":[],"relations":[[1,2,"x"]]}`))
		assert.ErrorIs(t, err, ErrMalformedSnapshot)
	})
}

func TestFromJSONEmptySnapshot(t *testing.T) {
	m := New()
	m.AddRelation("red", "shoe", 1)

	require.NoError(t, m.FromJSON([]byte(`{"tags":[],"relations":[]}`)))
	assert.Equal(t, 0, m.Size())
	assert.Equal(t, 0.0, m.GetWeight("red", "shoe"))
}
