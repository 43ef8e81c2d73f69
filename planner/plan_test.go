package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synaptiq/tagrank/core"
)

var planTestNow = time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)

func newTestPlanner(t *testing.T, opts ...Option) *Planner {
	t.Helper()
	p, err := New(append([]Option{WithClock(func() time.Time { return planTestNow })}, opts...)...)
	require.NoError(t, err)
	return p
}

func boolPtr(b bool) *bool        { return &b }
func floatPtr(f float64) *float64 { return &f }

func TestPlanSources(t *testing.T) {
	p := newTestPlanner(t)

	t.Run("explicit sources win", func(t *testing.T) {
		plan := p.Plan("anything", Options{
			Sources: []core.Source{core.SourceTag, core.SourceTag, core.SourceDiary},
		})
		assert.Equal(t, []core.Source{core.SourceTag, core.SourceDiary}, plan.Sources)
	})

	t.Run("recall pulls in the diary", func(t *testing.T) {
		plan := p.Plan("do you remember the outage postmortem", Options{})
		assert.Contains(t, plan.Sources, core.SourceDiary)
	})

	t.Run("summary pulls in knowledge", func(t *testing.T) {
		plan := p.Plan("summarize the design docs", Options{})
		assert.Contains(t, plan.Sources, core.SourceKnowledge)
	})

	t.Run("question pulls in both", func(t *testing.T) {
		plan := p.Plan("how does the scheduler work", Options{})
		assert.Contains(t, plan.Sources, core.SourceKnowledge)
		assert.Contains(t, plan.Sources, core.SourceDiary)
	})

	t.Run("plain search defaults to both", func(t *testing.T) {
		plan := p.Plan("scheduler internals", Options{})
		assert.ElementsMatch(t,
			[]core.Source{core.SourceKnowledge, core.SourceDiary}, plan.Sources)
	})

	t.Run("tags add the tag source", func(t *testing.T) {
		plan := p.Plan("#golang scheduler internals", Options{})
		assert.Contains(t, plan.Sources, core.SourceTag)
	})
}

func TestPlanBudgets(t *testing.T) {
	p := newTestPlanner(t)

	t.Run("floor of five", func(t *testing.T) {
		plan := p.Plan("scheduler internals", Options{TopK: 6})
		for source, budget := range plan.SourceTopK {
			assert.Equal(t, 5, budget, "source %s", source)
		}
	})

	t.Run("ceil division above the floor", func(t *testing.T) {
		plan := p.Plan("scheduler internals", Options{TopK: 25})
		require.Len(t, plan.Sources, 2)
		for _, budget := range plan.SourceTopK {
			assert.Equal(t, 13, budget)
		}
	})

	t.Run("per-source override", func(t *testing.T) {
		plan := p.Plan("scheduler internals", Options{
			TopK:       25,
			SourceTopK: map[core.Source]int{core.SourceDiary: 3},
		})
		assert.Equal(t, 3, plan.SourceTopK[core.SourceDiary])
		assert.Equal(t, 13, plan.SourceTopK[core.SourceKnowledge])
	})
}

func TestPlanMode(t *testing.T) {
	p := newTestPlanner(t)

	t.Run("explicit mode wins", func(t *testing.T) {
		plan := p.Plan("summarize everything", Options{Mode: core.ModeRAG})
		assert.Equal(t, core.ModeRAG, plan.Mode)
	})

	t.Run("summary uses fulltext", func(t *testing.T) {
		plan := p.Plan("summarize everything", Options{})
		assert.Equal(t, core.ModeFulltext, plan.Mode)
	})

	t.Run("threshold switches mode", func(t *testing.T) {
		plan := p.Plan("scheduler internals", Options{Threshold: 0.3})
		assert.Equal(t, core.ModeThresholdRAG, plan.Mode)
	})

	t.Run("default rag", func(t *testing.T) {
		plan := p.Plan("scheduler internals", Options{Threshold: 0.1})
		assert.Equal(t, core.ModeRAG, plan.Mode)
	})
}

func TestPlanToggles(t *testing.T) {
	p := newTestPlanner(t)

	t.Run("tagmemo explicit false wins", func(t *testing.T) {
		plan := p.Plan("#golang notes", Options{TagMemoEnabled: boolPtr(false)})
		assert.False(t, plan.UseTagMemo)
	})

	t.Run("tagmemo defaults on", func(t *testing.T) {
		plan := p.Plan("scheduler internals", Options{})
		assert.True(t, plan.UseTagMemo)
	})

	t.Run("tagmemo default off still honors tags", func(t *testing.T) {
		p := newTestPlanner(t, WithTagMemoDefault(false))
		assert.False(t, p.Plan("scheduler internals", Options{}).UseTagMemo)
		assert.True(t, p.Plan("#golang notes", Options{}).UseTagMemo)
		assert.True(t, p.Plan("scheduler internals", Options{TagBoost: floatPtr(0.3)}).UseTagMemo)
		assert.False(t, p.Plan("scheduler internals", Options{TagBoost: floatPtr(0)}).UseTagMemo)
	})

	t.Run("rrf needs multiple sources", func(t *testing.T) {
		multi := p.Plan("scheduler internals", Options{})
		assert.True(t, multi.UseRRF)

		single := p.Plan("scheduler internals", Options{
			Sources: []core.Source{core.SourceKnowledge},
		})
		assert.False(t, single.UseRRF)

		disabled := p.Plan("scheduler internals", Options{UseRRF: boolPtr(false)})
		assert.False(t, disabled.UseRRF)
	})

	t.Run("reranker rules", func(t *testing.T) {
		assert.True(t, p.Plan("how does fusion work", Options{}).UseReranker)
		assert.True(t, p.Plan("compare rrf and plain merge", Options{}).UseReranker)
		assert.True(t, p.Plan("alpha beta gamma delta epsilon zeta", Options{}).UseReranker)
		assert.False(t, p.Plan("scheduler internals", Options{}).UseReranker)
		assert.False(t, p.Plan("how does fusion work", Options{UseReranker: boolPtr(false)}).UseReranker)
	})
}

func TestPlanTimeFilter(t *testing.T) {
	p := newTestPlanner(t)
	startOfToday := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	endOfToday := startOfToday.AddDate(0, 0, 1)

	t.Run("no reference means no filter", func(t *testing.T) {
		assert.Nil(t, p.Plan("scheduler internals", Options{}).TimeFilter)
	})

	t.Run("all disables inference", func(t *testing.T) {
		plan := p.Plan("notes from yesterday", Options{TimeRange: "all"})
		assert.Nil(t, plan.TimeFilter)
	})

	t.Run("explicit range wins over inference", func(t *testing.T) {
		plan := p.Plan("notes from yesterday", Options{TimeRange: "month"})
		require.NotNil(t, plan.TimeFilter)
		assert.Equal(t, startOfToday.AddDate(0, -1, 0), plan.TimeFilter.Start)
		assert.Equal(t, endOfToday, plan.TimeFilter.End)
	})

	t.Run("inferred ranges", func(t *testing.T) {
		cases := []struct {
			query string
			start time.Time
		}{
			{"notes from today", startOfToday},
			{"notes from yesterday", startOfToday.AddDate(0, 0, -1)},
			{"notes from this week", startOfToday.AddDate(0, 0, -7)},
			{"今年的计划", startOfToday.AddDate(-1, 0, 0)},
		}
		for _, tc := range cases {
			t.Run(tc.query, func(t *testing.T) {
				plan := p.Plan(tc.query, Options{})
				require.NotNil(t, plan.TimeFilter)
				assert.Equal(t, tc.start, plan.TimeFilter.Start)
				assert.Equal(t, endOfToday, plan.TimeFilter.End)
			})
		}
	})
}
