package matrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandTags(t *testing.T) {
	t.Run("depth zero returns nothing", func(t *testing.T) {
		m := New()
		m.AddRelation("a", "b", 1)
		assert.Empty(t, m.ExpandTags([]string{"a"}, 0, 0.7))
	})

	t.Run("single hop applies decay", func(t *testing.T) {
		m := New()
		m.AddRelation("a", "b", 10)

		expanded := m.ExpandTags([]string{"a"}, 1, 0.7)
		require.Len(t, expanded, 1)
		assert.Equal(t, "b", expanded[0].Tag)
		assert.InDelta(t, 10*0.7, expanded[0].Weight, 1e-9)
	})

	t.Run("second hop decays further", func(t *testing.T) {
		m := New()
		m.AddRelation("a", "b", 10)
		m.AddRelation("b", "c", 10)

		expanded := m.ExpandTags([]string{"a"}, 2, 0.7)
		require.Len(t, expanded, 2)
		scores := map[string]float64{}
		for _, rel := range expanded {
			scores[rel.Tag] = rel.Weight
		}
		assert.InDelta(t, 10*0.7, scores["b"], 1e-9)
		assert.InDelta(t, 10*0.7*0.7, scores["c"], 1e-9)
	})

	t.Run("multiple paths keep the maximum", func(t *testing.T) {
		// c is reachable at hop 1 (weight 2) and hop 2 via b (weight 10).
		m := New()
		m.AddRelation("a", "c", 2)
		m.AddRelation("a", "b", 10)
		m.AddRelation("b", "c", 10)

		expanded := m.ExpandTags([]string{"a"}, 2, 0.7)
		scores := map[string]float64{}
		for _, rel := range expanded {
			scores[rel.Tag] = rel.Weight
		}
		// max(2*0.7, 10*0.49) = 4.9
		assert.InDelta(t, 4.9, scores["c"], 1e-9)
	})

	t.Run("seeds are excluded", func(t *testing.T) {
		m := New()
		m.AddRelation("a", "b", 1)
		m.AddRelation("b", "a", 1)

		expanded := m.ExpandTags([]string{"a", "b"}, 2, 0.7)
		assert.Empty(t, expanded)
	})

	t.Run("terminates when no new tags discovered", func(t *testing.T) {
		m := New()
		m.AddRelation("a", "b", 1)

		// Deep expansion of a two-node graph still returns only b.
		expanded := m.ExpandTags([]string{"a"}, 10, 0.7)
		require.Len(t, expanded, 1)
		assert.Equal(t, "b", expanded[0].Tag)
	})

	t.Run("sorted by score descending", func(t *testing.T) {
		m := New()
		m.AddRelation("a", "weak", 1)
		m.AddRelation("a", "strong", 9)

		expanded := m.ExpandTags([]string{"a"}, 1, 0.7)
		require.Len(t, expanded, 2)
		assert.Equal(t, "strong", expanded[0].Tag)
		assert.Equal(t, "weak", expanded[1].Tag)
	})

	t.Run("unknown seed", func(t *testing.T) {
		m := New()
		assert.Empty(t, m.ExpandTags([]string{"missing"}, 2, 0.7))
	})
}
