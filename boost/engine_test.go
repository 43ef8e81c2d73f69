package boost

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synaptiq/tagrank/core"
	"github.com/synaptiq/tagrank/matrix"
)

func newTestEngine(t *testing.T, m *matrix.Matrix, opts ...Option) *Engine {
	t.Helper()
	engine, err := NewEngine(m, opts...)
	require.NoError(t, err)
	return engine
}

func TestNewEngine(t *testing.T) {
	t.Run("nil matrix", func(t *testing.T) {
		_, err := NewEngine(nil)
		assert.Equal(t, ErrMatrixRequired, err)
	})

	t.Run("defaults", func(t *testing.T) {
		engine := newTestEngine(t, matrix.New())
		assert.Equal(t, DefaultConfig(), engine.cfg)
	})
}

func TestApplyTagBoost_SpikeFormula(t *testing.T) {
	// One tag with accumulated frequency 10 over 3 partners; Alpha pinned
	// to 2 via the config floor, Beta becomes 2+3=5 for an unfamiliar query.
	m := matrix.New()
	m.AddRelation("winter", "snow", 5)
	m.AddRelation("winter", "cold", 3)
	m.AddRelation("winter", "ice", 2)

	engine := newTestEngine(t, m, WithConfig(Config{
		AlphaMin: 2, AlphaMax: 3.5, BetaBase: 2, MaxExpansionDepth: 2, ExpansionDecay: 0.7,
	}))

	results := []*core.Result{{
		ID: "r1", Content: "[winter] jacket bargain", BaseScore: 0.8, Score: 0.8,
	}}
	boosted := engine.ApplyTagBoost("winter jacket", []string{"winter"}, results)
	require.Len(t, boosted, 1)

	tagBoost := boosted[0].TagBoost
	require.NotNil(t, tagBoost)
	require.Len(t, tagBoost.SpikeDetails, 1)

	// logicStrength = 10^2 = 100, noisePenalty = ln(3+5) ≈ 2.079
	assert.InDelta(t, 2.0, tagBoost.DynamicAlpha, 1e-9)
	assert.InDelta(t, 5.0, tagBoost.DynamicBeta, 1e-9)
	assert.InDelta(t, 100/math.Log(8), tagBoost.SpikeDetails[0].Score, 1e-6)
	assert.InDelta(t, 0.8279, tagBoost.TagMatchScore/(tagBoost.TagMatchScore+10), 1e-3)
	assert.InDelta(t, 1.414, tagBoost.BoostFactor, 1e-3)
	assert.Equal(t, 1.0, tagBoost.BoostedScore)
	assert.Equal(t, 1.0, boosted[0].Score)
	assert.Equal(t, 0.8, boosted[0].BaseScore)
}

func TestApplyTagBoost_NoMatchUnchanged(t *testing.T) {
	m := matrix.New()
	m.AddRelation("winter", "snow", 5)
	engine := newTestEngine(t, m)

	results := []*core.Result{{ID: "r1", Content: "summer beach", BaseScore: 0.5, Score: 0.5}}
	boosted := engine.ApplyTagBoost("", []string{"winter"}, results)
	require.Len(t, boosted, 1)
	assert.Nil(t, boosted[0].TagBoost)
	assert.Equal(t, 0.5, boosted[0].Score)
}

func TestApplyTagBoost_ExpansionMatchDampened(t *testing.T) {
	// Query tag "winter" does not appear in content, but its expansion
	// partner "snow" does.
	m := matrix.New()
	m.AddRelation("winter", "snow", 4)
	engine := newTestEngine(t, m)

	results := []*core.Result{{ID: "r1", Content: "fresh snow powder", BaseScore: 0.5, Score: 0.5}}
	boosted := engine.ApplyTagBoost("", []string{"winter"}, results)

	tagBoost := boosted[0].TagBoost
	require.NotNil(t, tagBoost)
	assert.Empty(t, tagBoost.MatchedTags)
	assert.Equal(t, []string{"snow"}, tagBoost.ExpansionTags)
	require.Len(t, tagBoost.SpikeDetails, 1)
	// coWeight = expansion score (4*0.7) halved = 1.4; contribution halved again.
	assert.InDelta(t, 1.4, tagBoost.SpikeDetails[0].Weight, 1e-9)
	expected := spikeScore(1.4, 1, tagBoost.DynamicAlpha, tagBoost.DynamicBeta) * 0.5
	assert.InDelta(t, expected, tagBoost.SpikeDetails[0].Score, 1e-9)
}

func TestApplyTagBoost_Bounds(t *testing.T) {
	m := matrix.New()
	m.BuildFromDocuments([]core.Document{
		{ID: "d1", Tags: []string{"go", "concurrency"}},
		{ID: "d2", Tags: []string{"go", "channels"}},
		{ID: "d3", Tags: []string{"go", "channels", "select"}},
	})
	engine := newTestEngine(t, m)

	for _, base := range []float64{0, 0.1, 0.5, 0.9, 1.0} {
		results := []*core.Result{{
			ID: "r", Content: "#go #channels deep dive", BaseScore: base, Score: base,
		}}
		boosted := engine.ApplyTagBoost("go channels", nil, results)
		score := boosted[0].Score
		assert.GreaterOrEqual(t, score, base, "base %v", base)
		assert.LessOrEqual(t, score, 1.0, "base %v", base)
	}
}

func TestApplyTagBoost_NoDoubleBoost(t *testing.T) {
	m := matrix.New()
	m.AddRelation("go", "channels", 6)
	engine := newTestEngine(t, m)

	result := &core.Result{ID: "r", Content: "#go notes", BaseScore: 0.6, Score: 0.6}
	engine.ApplyTagBoost("", []string{"go"}, []*core.Result{result})
	first := result.Score
	require.Greater(t, first, 0.6)

	// A second application recomputes from the stored base score.
	engine.ApplyTagBoost("", []string{"go"}, []*core.Result{result})
	assert.Equal(t, first, result.Score)
	assert.Equal(t, 0.6, result.TagBoost.OriginalScore)
}

func TestApplyTagBoost_LearnedWeightMultiplier(t *testing.T) {
	m := matrix.New()
	m.AddRelation("go", "channels", 6)
	engine := newTestEngine(t, m)
	engine.SetLearnedWeights(staticWeights{"go": 2.0})

	result := &core.Result{ID: "r", Content: "#go notes", BaseScore: 0.3, Score: 0.3}
	engine.ApplyTagBoost("", []string{"go"}, []*core.Result{result})
	require.NotNil(t, result.TagBoost)
	// coWeight = frequency(6) * learned(2.0)
	assert.InDelta(t, 12.0, result.TagBoost.SpikeDetails[0].Weight, 1e-9)
}

type staticWeights map[string]float64

func (w staticWeights) LearnedWeight(tag string) float64 {
	if v, ok := w[tag]; ok {
		return v
	}
	return 1
}

func TestRegisterTagBlacklist(t *testing.T) {
	m := matrix.New()
	engine := newTestEngine(t, m, WithBlacklist(NewBlacklist("Spam", "noise")))

	assert.ErrorIs(t, engine.RegisterTag("spam"), ErrBlacklistedTag)
	assert.NoError(t, engine.RegisterTag("golang"))
	assert.Equal(t, 1, engine.RegisterTags([]string{"noise", "rust", ""}))
	assert.Equal(t, []string{"rust"}, engine.FilterBlacklistedTags([]string{"noise", "rust"}))
}

func TestSpikeScoreGuards(t *testing.T) {
	t.Run("non-positive denominator falls back", func(t *testing.T) {
		// globalFreq + beta < 1 makes ln negative.
		score := spikeScore(2, 0.1, 2, 0.5)
		assert.Equal(t, 4.0, score)
	})

	t.Run("non-finite clamps to zero", func(t *testing.T) {
		score := spikeScore(math.Inf(1), 3, 2, 5)
		assert.Equal(t, 0.0, score)
	})
}
