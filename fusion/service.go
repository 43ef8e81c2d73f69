package fusion

import (
	"context"
	"log/slog"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/synaptiq/tagrank/boost"
	"github.com/synaptiq/tagrank/core"
	"github.com/synaptiq/tagrank/planner"
)

const (
	// DefaultScoreThreshold drops low-relevance results after boosting.
	DefaultScoreThreshold = 0.1
	// DefaultSearchTimeout is passed through to backends per call.
	DefaultSearchTimeout = 10 * time.Second
)

// Service fans a planned search out over the registered backends and fuses
// the results.
type Service struct {
	planner  *planner.Planner
	backends map[core.Source]Backend
	boost    *boost.Engine
	rrf      RRFOptions
	timeout  time.Duration
	pool     *ants.Pool
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*Service) error

// WithBackend registers a backend for a source, replacing any previous one.
func WithBackend(source core.Source, backend Backend) Option {
	return func(s *Service) error {
		if backend != nil {
			s.backends[source] = backend
		}
		return nil
	}
}

// WithBoostEngine attaches the tag boost engine applied after fusion.
func WithBoostEngine(engine *boost.Engine) Option {
	return func(s *Service) error {
		s.boost = engine
		return nil
	}
}

// WithRRFOptions overrides the fusion configuration.
func WithRRFOptions(opts RRFOptions) Option {
	return func(s *Service) error {
		s.rrf = opts
		return nil
	}
}

// WithSearchTimeout sets the per-call timeout passed through to backends.
func WithSearchTimeout(timeout time.Duration) Option {
	return func(s *Service) error {
		if timeout > 0 {
			s.timeout = timeout
		}
		return nil
	}
}

// WithPoolSize sets the worker pool size for the backend fan-out.
func WithPoolSize(size int) Option {
	return func(s *Service) error {
		if size < 1 {
			size = 1
		}
		if s.pool != nil {
			s.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		s.pool = pool
		return nil
	}
}

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) error {
		if logger != nil {
			s.logger = logger.With("component", "fusion")
		}
		return nil
	}
}

// NewService creates a fusion service around the planner.
func NewService(p *planner.Planner, opts ...Option) (*Service, error) {
	if p == nil {
		return nil, ErrPlannerRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	s := &Service{
		planner:  p,
		backends: make(map[core.Source]Backend),
		rrf:      RRFOptions{K: DefaultRRFK, Deduplicate: true, DedupeField: DedupeByID},
		timeout:  DefaultSearchTimeout,
		pool:     pool,
		logger:   slog.Default().With("component", "fusion"),
	}
	for _, opt := range opts {
		if optErr := opt(s); optErr != nil {
			s.Release()
			return nil, optErr
		}
	}
	return s, nil
}

// Release releases the worker pool. The service should not be used after
// calling Release.
func (s *Service) Release() {
	if s.pool != nil {
		s.pool.Release()
	}
}

// BackendStats reports the stats of every registered backend.
func (s *Service) BackendStats() map[core.Source]BackendStats {
	stats := make(map[core.Source]BackendStats, len(s.backends))
	for source, backend := range s.backends {
		stats[source] = backend.Stats()
	}
	return stats
}

// Search plans the query, fans out over the planned backends, fuses and
// boosts the results. See SearchWithMonitor for observability hooks.
func (s *Service) Search(ctx context.Context, query string, opts planner.Options) ([]*core.Result, error) {
	return s.SearchWithMonitor(ctx, query, opts, nil)
}

// SearchWithMonitor runs Search reporting each stage to the monitor.
// A nil monitor is replaced with a no-op.
func (s *Service) SearchWithMonitor(ctx context.Context, query string, opts planner.Options, monitor SearchMonitor) ([]*core.Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(query)

	plan := s.planner.Plan(query, opts)
	monitor.PlanReady(plan)

	lists := s.fanOut(ctx, query, plan, opts, monitor)

	results := s.fuse(plan, lists, opts)
	monitor.AfterFusion(results)

	if plan.UseTagMemo && s.boost != nil && effectiveTagBoost(opts) > 0 {
		tags := append(append([]string(nil), plan.Analysis.Tags...), opts.Tags...)
		results = s.boost.ApplyTagBoost(query, tags, results)
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Score > results[j].Score
		})
		monitor.AfterTagBoost(results)
	}

	results = filterByThreshold(results, opts.Threshold)

	topK := opts.TopK
	if topK <= 0 {
		topK = planner.DefaultTopK
	}
	if len(results) > topK {
		results = results[:topK]
	}
	monitor.Finish(results)
	return results, nil
}

// fanOut queries every planned backend concurrently. Slot indexing keeps
// the collected lists in plan order regardless of completion order.
func (s *Service) fanOut(ctx context.Context, query string, plan core.RetrievalPlan, opts planner.Options, monitor SearchMonitor) []SourceList {
	backendOpts := BackendOptions{
		Mode:            plan.Mode,
		Threshold:       opts.Threshold,
		TimeFilter:      plan.TimeFilter,
		CharacterName:   opts.CharacterName,
		KnowledgeBaseID: opts.KnowledgeBaseID,
		Timeout:         s.timeout,
	}

	lists := make([]SourceList, len(plan.Sources))
	var wg sync.WaitGroup
	for i, source := range plan.Sources {
		lists[i] = SourceList{Source: source}

		backend, ok := s.backends[source]
		if !ok {
			s.logger.Debug("no backend registered", "source", source)
			continue
		}
		if !backend.IsAvailable() {
			s.logger.Warn("backend unavailable", "source", source)
			continue
		}

		task := func() {
			defer wg.Done()
			found, err := backend.Search(ctx, query, plan.SourceTopK[source], backendOpts)
			if err != nil {
				s.logger.Error("error searching backend", "source", source, "err", err)
				monitor.BackendSearched(source, 0, err)
				return
			}
			lists[i].Results = found
			monitor.BackendSearched(source, len(found), nil)
		}
		wg.Add(1)
		if err := s.pool.Submit(task); err != nil {
			// Degraded: run on the caller's goroutine.
			s.logger.Warn("worker pool rejected task, running inline", "source", source, "err", err)
			task()
		}
	}
	wg.Wait()
	return lists
}

// fuse merges the collected lists: weighted RRF when the plan calls for it
// and more than one backend returned results, a simple score merge
// otherwise. RRF sums are min-max normalized so the downstream threshold
// stays meaningful.
func (s *Service) fuse(plan core.RetrievalPlan, lists []SourceList, opts planner.Options) []*core.Result {
	nonEmpty := 0
	for _, list := range lists {
		if len(list.Results) > 0 {
			nonEmpty++
		}
	}

	if plan.UseRRF && nonEmpty > 1 {
		rrfOpts := s.rrf
		if opts.RRFK > 0 {
			rrfOpts.K = opts.RRFK
		}
		fused := WeightedRRF(lists, rrfOpts)
		NormalizeScores(fused)
		return fused
	}

	var merged []*core.Result
	for _, list := range lists {
		merged = append(merged, list.Results...)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})
	return merged
}

// effectiveTagBoost resolves the boost coefficient: an explicit value wins,
// including zero to switch the boost stage off; unset means the default.
func effectiveTagBoost(opts planner.Options) float64 {
	if opts.TagBoost != nil {
		return *opts.TagBoost
	}
	return boost.DefaultVectorBoost
}

func filterByThreshold(results []*core.Result, threshold float64) []*core.Result {
	if threshold <= 0 {
		threshold = DefaultScoreThreshold
	}
	filtered := results[:0]
	for _, result := range results {
		if result.Score >= threshold {
			filtered = append(filtered, result)
		}
	}
	return filtered
}
