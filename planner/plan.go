package planner

import (
	"log/slog"
	"strings"
	"time"

	"github.com/synaptiq/tagrank/core"
)

const (
	// DefaultTopK is the overall result budget when the caller gives none.
	DefaultTopK = 10
	// minSourceBudget is the floor for any per-source result budget.
	minSourceBudget = 5
	// thresholdModeFloor switches the mode to threshold_rag when exceeded.
	thresholdModeFloor = 0.1
	// rerankerKeywordFloor turns the reranker on for long queries.
	rerankerKeywordFloor = 5
)

// Options is the recognized configuration surface for a search call.
// Pointer fields distinguish "explicitly set" from "defaulted"; an explicit
// false always wins over inference.
type Options struct {
	Sources         []core.Source
	Mode            core.Mode
	TopK            int
	SourceTopK      map[core.Source]int
	Threshold       float64
	TagBoost        *float64
	TagMemoEnabled  *bool
	TimeRange       string
	UseRRF          *bool
	RRFK            int
	UseReranker     *bool
	CharacterName   string
	Tags            []string
	KnowledgeBaseID string
}

// Planner builds retrieval plans from query analyses.
type Planner struct {
	now            func() time.Time
	defaultTagMemo bool
	logger         *slog.Logger
}

// Option configures a Planner.
type Option func(*Planner) error

// WithClock injects the time source used to resolve time filters.
func WithClock(now func() time.Time) Option {
	return func(p *Planner) error {
		if now != nil {
			p.now = now
		}
		return nil
	}
}

// WithTagMemoDefault sets whether tag boosting defaults on.
func WithTagMemoDefault(enabled bool) Option {
	return func(p *Planner) error {
		p.defaultTagMemo = enabled
		return nil
	}
}

// WithLogger sets the logger for the planner.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Planner) error {
		if logger != nil {
			p.logger = logger.With("component", "planner")
		}
		return nil
	}
}

// New creates a Planner with tag boosting defaulted on.
func New(opts ...Option) (*Planner, error) {
	p := &Planner{
		now:            time.Now,
		defaultTagMemo: true,
		logger:         slog.Default().With("component", "planner"),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Plan analyzes the query and combines the analysis with the caller's
// options into a retrieval plan.
func (p *Planner) Plan(query string, opts Options) core.RetrievalPlan {
	analysis := AnalyzeQuery(query)

	sources := p.selectSources(analysis, opts)
	plan := core.RetrievalPlan{
		Sources:     sources,
		SourceTopK:  p.budgets(sources, opts),
		Mode:        p.selectMode(analysis, opts),
		UseTagMemo:  p.useTagMemo(analysis, opts),
		UseRRF:      useRRF(sources, opts),
		UseReranker: useReranker(analysis, opts),
		TimeFilter:  p.resolveTimeFilter(query, opts),
		Analysis:    analysis,
	}
	p.logger.Debug("query planned",
		"sources", len(plan.Sources), "mode", plan.Mode,
		"tagmemo", plan.UseTagMemo, "rrf", plan.UseRRF)
	return plan
}

// selectSources applies the union rules: recall or time reference pulls in
// the diary, summary/comparison the knowledge base, questions both. Tags
// always add the tag-indexed source on top.
func (p *Planner) selectSources(analysis core.QueryAnalysis, opts Options) []core.Source {
	if len(opts.Sources) > 0 {
		return dedupeSources(opts.Sources)
	}

	set := make(map[core.Source]bool)
	if analysis.Intent == core.IntentRecall || analysis.TimeRelated {
		set[core.SourceDiary] = true
	}
	if analysis.Intent == core.IntentSummary || analysis.Intent == core.IntentComparison {
		set[core.SourceKnowledge] = true
	}
	if analysis.IsQuestion {
		set[core.SourceKnowledge] = true
		set[core.SourceDiary] = true
	}
	if len(set) == 0 {
		set[core.SourceKnowledge] = true
		set[core.SourceDiary] = true
	}
	if len(analysis.Tags) > 0 || len(opts.Tags) > 0 {
		set[core.SourceTag] = true
	}

	sources := make([]core.Source, 0, len(set))
	for _, source := range []core.Source{core.SourceKnowledge, core.SourceDiary, core.SourceTag} {
		if set[source] {
			sources = append(sources, source)
		}
	}
	return sources
}

func dedupeSources(sources []core.Source) []core.Source {
	seen := make(map[core.Source]bool, len(sources))
	out := make([]core.Source, 0, len(sources))
	for _, source := range sources {
		if seen[source] {
			continue
		}
		seen[source] = true
		out = append(out, source)
	}
	return out
}

// budgets assigns every source max(5, ceil(topK/n)) unless overridden.
func (p *Planner) budgets(sources []core.Source, opts Options) map[core.Source]int {
	topK := opts.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	perSource := minSourceBudget
	if len(sources) > 0 {
		if ceil := (topK + len(sources) - 1) / len(sources); ceil > perSource {
			perSource = ceil
		}
	}

	budgets := make(map[core.Source]int, len(sources))
	for _, source := range sources {
		if override, ok := opts.SourceTopK[source]; ok && override > 0 {
			budgets[source] = override
			continue
		}
		budgets[source] = perSource
	}
	return budgets
}

func (p *Planner) selectMode(analysis core.QueryAnalysis, opts Options) core.Mode {
	if opts.Mode != "" {
		return opts.Mode
	}
	if analysis.Intent == core.IntentSummary {
		return core.ModeFulltext
	}
	if opts.Threshold > thresholdModeFloor {
		return core.ModeThresholdRAG
	}
	return core.ModeRAG
}

func (p *Planner) useTagMemo(analysis core.QueryAnalysis, opts Options) bool {
	if opts.TagMemoEnabled != nil {
		return *opts.TagMemoEnabled
	}
	if len(analysis.Tags) > 0 || len(opts.Tags) > 0 ||
		(opts.TagBoost != nil && *opts.TagBoost > 0) {
		return true
	}
	return p.defaultTagMemo
}

func useRRF(sources []core.Source, opts Options) bool {
	if opts.UseRRF != nil && !*opts.UseRRF {
		return false
	}
	return len(sources) > 1
}

func useReranker(analysis core.QueryAnalysis, opts Options) bool {
	if opts.UseReranker != nil {
		return *opts.UseReranker
	}
	return analysis.IsQuestion ||
		analysis.Intent == core.IntentComparison ||
		len(analysis.Keywords) > rerankerKeywordFloor
}

// resolveTimeFilter maps a symbolic range to a concrete half-open window
// ending at the end of today. An explicit non-"all" TimeRange wins over an
// inferred reference.
func (p *Planner) resolveTimeFilter(query string, opts Options) *core.TimeFilter {
	symbolic := opts.TimeRange
	if symbolic == "all" {
		return nil
	}
	if symbolic == "" {
		symbolic = inferTimeRange(strings.ToLower(query))
	}
	if symbolic == "" {
		return nil
	}

	now := p.now()
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := startOfToday.AddDate(0, 0, 1)

	var start time.Time
	switch symbolic {
	case "today":
		start = startOfToday
	case "yesterday":
		start = startOfToday.AddDate(0, 0, -1)
	case "week":
		start = startOfToday.AddDate(0, 0, -7)
	case "month":
		start = startOfToday.AddDate(0, -1, 0)
	case "year":
		start = startOfToday.AddDate(-1, 0, 0)
	default:
		p.logger.Debug("unrecognized time range ignored", "range", symbolic)
		return nil
	}
	return &core.TimeFilter{Start: start, End: end}
}
