package learning

import (
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/synaptiq/tagrank/core"
	"github.com/synaptiq/tagrank/matrix"
)

const (
	queryHistoryCap  = 1000
	feedbackCap      = 500
	resultStatsCap   = 1000
	resultsKeepRatio = 0.8

	feedbackGain  = 0.1
	feedbackDecay = 0.05

	weightFloor   = 0.5
	weightCeiling = 2.0

	decayHalfLife = 7 * 24 * time.Hour

	discoveryMinQueries    = 10
	discoveryMinStandalone = 3

	// DefaultConfidenceThreshold is the minimum confidence for a mined
	// association to become a suggestion.
	DefaultConfidenceThreshold = 0.7
)

// Engine is the self-learning layer. It owns its co-occurrence matrix of
// query-tag pairs, separate from the document matrix the boost engine reads.
type Engine struct {
	// mu guards every field below; autosave and callers share the engine.
	mu              sync.Mutex
	matrix          *matrix.Matrix
	tagStats        map[string]*core.TagLearningStats
	queryHistory    []core.QueryRecord
	feedbackHistory []core.FeedbackRecord
	suggestions     []core.SemanticSuggestion
	resultStats     map[string]*core.ResultSelectionStats

	threshold float64
	now       func() time.Time
	monitor   Monitor
	store     SnapshotStore
	interval  time.Duration
	logger    *slog.Logger

	stop   chan struct{}
	done   chan struct{}
	closed bool
}

// Option configures an Engine.
type Option func(*Engine) error

// WithClock injects the time source used for timestamps and decay math.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) error {
		if now != nil {
			e.now = now
		}
		return nil
	}
}

// WithMonitor attaches an observability monitor.
func WithMonitor(monitor Monitor) Option {
	return func(e *Engine) error {
		if monitor != nil {
			e.monitor = monitor
		}
		return nil
	}
}

// WithConfidenceThreshold overrides the suggestion confidence threshold.
func WithConfidenceThreshold(threshold float64) Option {
	return func(e *Engine) error {
		if threshold > 0 && threshold <= 1 {
			e.threshold = threshold
		}
		return nil
	}
}

// WithStore attaches a snapshot store; Start loads from it and the autosave
// loop writes to it.
func WithStore(store SnapshotStore) Option {
	return func(e *Engine) error {
		e.store = store
		return nil
	}
}

// WithAutosaveInterval overrides the periodic snapshot interval.
func WithAutosaveInterval(interval time.Duration) Option {
	return func(e *Engine) error {
		if interval > 0 {
			e.interval = interval
		}
		return nil
	}
}

// WithLogger sets the logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger != nil {
			e.logger = logger.With("component", "learning")
		}
		return nil
	}
}

// NewEngine creates an empty self-learning engine.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		matrix:      matrix.New(),
		tagStats:    make(map[string]*core.TagLearningStats),
		resultStats: make(map[string]*core.ResultSelectionStats),
		threshold:   DefaultConfidenceThreshold,
		now:         time.Now,
		monitor:     &noopMonitor{},
		interval:    DefaultAutosaveInterval,
		logger:      slog.Default().With("component", "learning"),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Matrix exposes the engine's internal co-occurrence matrix.
func (e *Engine) Matrix() *matrix.Matrix {
	return e.matrix
}

// RecordQuery appends the query's tags to the history ring, updates per-tag
// statistics and feeds every unordered tag pair into the internal matrix.
func (e *Engine) RecordQuery(tags []string, queryType string) error {
	normalized := core.NormalizeTags(tags)
	if len(normalized) == 0 {
		return ErrNoTags
	}

	e.mu.Lock()
	now := e.now()
	e.queryHistory = append(e.queryHistory, core.QueryRecord{
		Tags:      normalized,
		Timestamp: now,
		Type:      queryType,
	})
	if len(e.queryHistory) > queryHistoryCap {
		e.queryHistory = e.queryHistory[len(e.queryHistory)-queryHistoryCap:]
	}

	for _, tag := range normalized {
		stats := e.ensureStatsLocked(tag)
		stats.QueryCount++
		stats.LastQueryTime = now
		stats.LearnedWeight = recomputeWeight(stats)
	}
	e.mu.Unlock()

	for i, a := range normalized {
		for _, b := range normalized[i+1:] {
			e.matrix.AddRelation(a, b, 1)
		}
	}
	if len(normalized) == 1 {
		if err := e.matrix.RegisterTag(normalized[0]); err != nil {
			e.logger.Debug("standalone tag registration failed", "tag", normalized[0], "err", err)
		}
	}

	e.monitor.QueryRecorded(normalized)
	return nil
}

// LearnedWeight returns the tag's decayed learned weight. Unknown tags are
// neutral (1.0). The returned value is always in [0.5, 2.0].
func (e *Engine) LearnedWeight(tag string) float64 {
	normalized := core.NormalizeTag(tag)

	e.mu.Lock()
	defer e.mu.Unlock()

	stats, ok := e.tagStats[normalized]
	if !ok {
		return 1.0
	}
	elapsed := e.now().Sub(stats.LastQueryTime)
	if elapsed < 0 {
		elapsed = 0
	}
	decay := math.Pow(0.5, float64(elapsed)/float64(decayHalfLife))
	return core.ClampWeight(stats.LearnedWeight*decay, weightFloor, weightCeiling)
}

// RecordFeedback applies explicit feedback on a result to every tag of the
// originating query and to the per-result selection stats.
func (e *Engine) RecordFeedback(query, resultID string, tags []string, feedback core.FeedbackType) error {
	if err := core.ValidateFeedbackType(feedback); err != nil {
		return err
	}
	normalized := core.NormalizeTags(tags)

	type adjustment struct {
		tag           string
		before, after float64
	}
	var adjusted []adjustment

	e.mu.Lock()
	now := e.now()

	for _, tag := range normalized {
		stats := e.ensureStatsLocked(tag)
		before := stats.LearnedWeight
		switch feedback {
		case core.FeedbackPositive:
			stats.PositiveCount++
			stats.LearnedWeight = math.Min(stats.LearnedWeight+feedbackGain, weightCeiling)
		case core.FeedbackNegative:
			stats.NegativeCount++
			stats.LearnedWeight = math.Max(stats.LearnedWeight-feedbackDecay, weightFloor)
		}
		adjusted = append(adjusted, adjustment{tag: tag, before: before, after: stats.LearnedWeight})
	}

	e.feedbackHistory = append(e.feedbackHistory, core.FeedbackRecord{
		Query:     query,
		ResultID:  resultID,
		Tags:      normalized,
		Timestamp: now,
		Type:      feedback,
	})
	if len(e.feedbackHistory) > feedbackCap {
		e.feedbackHistory = e.feedbackHistory[len(e.feedbackHistory)-feedbackCap:]
	}

	e.touchResultLocked(resultID, query, now, feedback)
	e.pruneResultStatsLocked()
	e.mu.Unlock()

	for _, adj := range adjusted {
		e.monitor.WeightAdjusted(adj.tag, adj.before, adj.after)
	}
	return nil
}

// touchResultLocked updates selection stats for a single result.
func (e *Engine) touchResultLocked(resultID, query string, now time.Time, feedback core.FeedbackType) {
	if resultID == "" {
		return
	}
	stats, ok := e.resultStats[resultID]
	if !ok {
		stats = &core.ResultSelectionStats{}
		e.resultStats[resultID] = stats
	}
	switch feedback {
	case core.FeedbackPositive:
		stats.PositiveCount++
	case core.FeedbackNegative:
		stats.NegativeCount++
	}
	stats.LastSelectedTime = now
	if query != "" {
		stats.AssociatedQueries = append(stats.AssociatedQueries, query)
		if len(stats.AssociatedQueries) > core.MaxAssociatedQueries {
			stats.AssociatedQueries = stats.AssociatedQueries[len(stats.AssociatedQueries)-core.MaxAssociatedQueries:]
		}
	}
}

// pruneResultStatsLocked drops the least recently selected entries once the
// table exceeds its cap, keeping the most recent 80%.
func (e *Engine) pruneResultStatsLocked() {
	if len(e.resultStats) <= resultStatsCap {
		return
	}
	type entry struct {
		id   string
		last time.Time
	}
	entries := make([]entry, 0, len(e.resultStats))
	for id, stats := range e.resultStats {
		entries = append(entries, entry{id: id, last: stats.LastSelectedTime})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].last.After(entries[j].last)
	})
	keep := int(float64(resultStatsCap) * resultsKeepRatio)
	for _, stale := range entries[keep:] {
		delete(e.resultStats, stale.id)
	}
	e.logger.Debug("pruned result stats", "kept", keep, "dropped", len(entries)-keep)
}

// DiscoverSemanticAssociations mines the query history for tag pairs whose
// co-occurrence exceeds chance, returning the newly minted suggestions.
// It is a no-op while fewer than 10 queries have been recorded.
func (e *Engine) DiscoverSemanticAssociations() []core.SemanticSuggestion {
	e.mu.Lock()

	total := len(e.queryHistory)
	if total < discoveryMinQueries {
		e.mu.Unlock()
		return nil
	}

	standalone := make(map[string]int)
	pairCounts := make(map[[2]string]int)
	for _, record := range e.queryHistory {
		for i, a := range record.Tags {
			standalone[a]++
			for _, b := range record.Tags[i+1:] {
				pairCounts[orderedPair(a, b)]++
			}
		}
	}

	existing := make(map[[2]string]bool, len(e.suggestions))
	for _, s := range e.suggestions {
		existing[orderedPair(s.SourceTag, s.SuggestedTag)] = true
	}

	n := float64(total)
	now := e.now()
	var minted []core.SemanticSuggestion
	for pair, count := range pairCounts {
		if existing[pair] {
			continue
		}
		if standalone[pair[0]] < discoveryMinStandalone || standalone[pair[1]] < discoveryMinStandalone {
			continue
		}
		pJoint := float64(count) / n
		pA := float64(standalone[pair[0]]) / n
		pB := float64(standalone[pair[1]]) / n
		pmi := math.Log(pJoint / (pA * pB))
		confidence := core.ClampWeight((pmi+2)/4, 0, 1)
		if confidence < e.threshold {
			continue
		}
		minted = append(minted, core.SemanticSuggestion{
			SourceTag:    pair[0],
			SuggestedTag: pair[1],
			Confidence:   confidence,
			DiscoveredAt: now,
		})
	}
	sort.Slice(minted, func(i, j int) bool {
		if minted[i].Confidence != minted[j].Confidence {
			return minted[i].Confidence > minted[j].Confidence
		}
		if minted[i].SourceTag != minted[j].SourceTag {
			return minted[i].SourceTag < minted[j].SourceTag
		}
		return minted[i].SuggestedTag < minted[j].SuggestedTag
	})
	e.suggestions = append(e.suggestions, minted...)
	e.mu.Unlock()

	for _, s := range minted {
		e.monitor.SuggestionDiscovered(s)
	}
	return minted
}

// Suggestions returns a copy of all suggestions, confirmed or not.
func (e *Engine) Suggestions() []core.SemanticSuggestion {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]core.SemanticSuggestion, len(e.suggestions))
	copy(out, e.suggestions)
	return out
}

// ConfirmSuggestion marks the suggestion for the unordered (a, b) pair as
// confirmed and commits a strengthened edge into the internal matrix.
// Returns false when no matching suggestion exists.
func (e *Engine) ConfirmSuggestion(a, b string) bool {
	pair := orderedPair(core.NormalizeTag(a), core.NormalizeTag(b))

	e.mu.Lock()
	var confirmed *core.SemanticSuggestion
	for i := range e.suggestions {
		s := &e.suggestions[i]
		if orderedPair(s.SourceTag, s.SuggestedTag) == pair {
			s.Confirmed = true
			confirmed = s
			break
		}
	}
	e.mu.Unlock()

	if confirmed == nil {
		return false
	}
	e.matrix.AddRelation(pair[0], pair[1], confirmed.Confidence*2)
	return true
}

// GetExpandedTags passes through to the internal matrix's BFS expansion.
func (e *Engine) GetExpandedTags(seeds []string, depth int, decay float64) []matrix.Related {
	return e.matrix.ExpandTags(seeds, depth, decay)
}

// GetRelatedTags passes through to the internal matrix's association query.
func (e *Engine) GetRelatedTags(tag string, topK int, minWeight float64) []matrix.Related {
	return e.matrix.GetRelatedTags(tag, topK, minWeight)
}

// TagStats returns a copy of the stats for a tag, and whether it exists.
func (e *Engine) TagStats(tag string) (core.TagLearningStats, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	stats, ok := e.tagStats[core.NormalizeTag(tag)]
	if !ok {
		return core.TagLearningStats{}, false
	}
	return *stats, true
}

func (e *Engine) ensureStatsLocked(tag string) *core.TagLearningStats {
	stats, ok := e.tagStats[tag]
	if !ok {
		stats = &core.TagLearningStats{LearnedWeight: 1.0}
		e.tagStats[tag] = stats
	}
	return stats
}

// recomputeWeight derives the learned weight from accumulated counts.
func recomputeWeight(stats *core.TagLearningStats) float64 {
	w := 1.0 +
		math.Log(float64(stats.QueryCount)+1)/10 +
		float64(stats.PositiveCount)*feedbackGain -
		float64(stats.NegativeCount)*feedbackDecay
	return core.ClampWeight(w, weightFloor, weightCeiling)
}

func orderedPair(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}
