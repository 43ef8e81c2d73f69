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

package tagrank

import (
	"context"
	"log/slog"
	"time"

	"github.com/synaptiq/tagrank/boost"
	"github.com/synaptiq/tagrank/core"
	"github.com/synaptiq/tagrank/embed"
	"github.com/synaptiq/tagrank/fusion"
	"github.com/synaptiq/tagrank/learning"
	"github.com/synaptiq/tagrank/matrix"
	"github.com/synaptiq/tagrank/planner"
	"github.com/synaptiq/tagrank/storage"
	"github.com/synaptiq/tagrank/storage/badger"
)

// Service wires the co-occurrence matrix, boost engine, self-learning
// engine, planner and fusion search over a shared badger snapshot store.
// It is the composition root: no package below it holds process-wide state.
type Service struct {
	backend  *badger.Backend
	store    storage.SnapshotStore
	matrix   *matrix.Matrix
	boost    *boost.Engine
	saver    *boost.Saver
	learning *learning.Engine
	planner  *planner.Planner
	fusion   *fusion.Service
	cache    *embed.TagVectorCache
	logger   *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	inMemory         bool
	boostConfig      *boost.Config
	blacklist        *boost.Blacklist
	embedder         embed.Embedder
	backends         map[core.Source]fusion.Backend
	rrf              *fusion.RRFOptions
	searchTimeout    time.Duration
	saveInterval     time.Duration
	autosaveInterval time.Duration
	threshold        float64
	tagMemoDefault   *bool
	clock            func() time.Time
	logger           *slog.Logger
}

// WithInMemoryStore keeps all snapshots in memory. Intended for tests.
func WithInMemoryStore() ServiceOption {
	return func(o *serviceOptions) {
		o.inMemory = true
	}
}

// WithBoostConfig overrides the boost engine's spike parameters.
func WithBoostConfig(cfg boost.Config) ServiceOption {
	return func(o *serviceOptions) {
		o.boostConfig = &cfg
	}
}

// WithBlacklist sets the tag registration blacklist.
func WithBlacklist(blacklist *boost.Blacklist) ServiceOption {
	return func(o *serviceOptions) {
		o.blacklist = blacklist
	}
}

// WithEmbedder attaches an embedding service; tag vectors are cached and
// used for query vector boosting.
func WithEmbedder(embedder embed.Embedder) ServiceOption {
	return func(o *serviceOptions) {
		o.embedder = embedder
	}
}

// WithSearchBackend registers a search backend under a source name.
func WithSearchBackend(source core.Source, backend fusion.Backend) ServiceOption {
	return func(o *serviceOptions) {
		if o.backends == nil {
			o.backends = make(map[core.Source]fusion.Backend)
		}
		o.backends[source] = backend
	}
}

// WithRRF overrides the rank fusion parameters.
func WithRRF(opts fusion.RRFOptions) ServiceOption {
	return func(o *serviceOptions) {
		o.rrf = &opts
	}
}

// WithSearchTimeout sets the per-backend search timeout.
func WithSearchTimeout(timeout time.Duration) ServiceOption {
	return func(o *serviceOptions) {
		o.searchTimeout = timeout
	}
}

// WithMatrixSaveInterval sets the debounce window for matrix persistence.
func WithMatrixSaveInterval(interval time.Duration) ServiceOption {
	return func(o *serviceOptions) {
		o.saveInterval = interval
	}
}

// WithLearningAutosaveInterval sets the learning snapshot interval.
func WithLearningAutosaveInterval(interval time.Duration) ServiceOption {
	return func(o *serviceOptions) {
		o.autosaveInterval = interval
	}
}

// WithConfidenceThreshold sets the semantic suggestion confidence floor.
func WithConfidenceThreshold(threshold float64) ServiceOption {
	return func(o *serviceOptions) {
		o.threshold = threshold
	}
}

// WithTagMemoDefault sets whether boosting is on when a query neither
// carries tags nor requests boosting explicitly.
func WithTagMemoDefault(enabled bool) ServiceOption {
	return func(o *serviceOptions) {
		o.tagMemoDefault = &enabled
	}
}

// WithClock injects the time source used by the planner and the learning
// engine.
func WithClock(now func() time.Time) ServiceOption {
	return func(o *serviceOptions) {
		o.clock = now
	}
}

// WithLogger sets the root logger; component loggers derive from it.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(o *serviceOptions) {
		o.logger = logger
	}
}

// NewService opens the snapshot store at filePath, restores persisted
// matrix and learning state, and wires every component. Call Close to
// flush pending state and release resources.
func NewService(filePath string, opts ...ServiceOption) (*Service, error) {
	options := &serviceOptions{}
	for _, opt := range opts {
		opt(options)
	}

	logger := options.logger
	if logger == nil {
		logger = slog.Default()
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	store, err := badger.NewSnapshotRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	m := matrix.New(matrix.WithLogger(logger))
	if blob, found, loadErr := store.LoadMatrix(); loadErr != nil {
		logger.Warn("failed to load matrix snapshot, starting cold", "err", loadErr)
	} else if found {
		if restoreErr := m.FromJSON(blob); restoreErr != nil {
			logger.Warn("matrix snapshot unreadable, starting cold", "err", restoreErr)
		}
	}

	saverOpts := []boost.SaverOption{boost.WithSaverLogger(logger)}
	if options.saveInterval > 0 {
		saverOpts = append(saverOpts, boost.WithSaveInterval(options.saveInterval))
	}
	saver, err := boost.NewSaver(func() error {
		blob, marshalErr := m.ToJSON()
		if marshalErr != nil {
			return marshalErr
		}
		return store.SaveMatrix(blob)
	}, saverOpts...)
	if err != nil {
		backend.Close()
		return nil, err
	}

	boostOpts := []boost.Option{
		boost.WithSaver(saver),
		boost.WithLogger(logger),
	}
	if options.boostConfig != nil {
		boostOpts = append(boostOpts, boost.WithConfig(*options.boostConfig))
	}
	if options.blacklist != nil {
		boostOpts = append(boostOpts, boost.WithBlacklist(options.blacklist))
	}
	boostEngine, err := boost.NewEngine(m, boostOpts...)
	if err != nil {
		backend.Close()
		return nil, err
	}

	learningOpts := []learning.Option{
		learning.WithStore(store),
		learning.WithLogger(logger),
	}
	if options.clock != nil {
		learningOpts = append(learningOpts, learning.WithClock(options.clock))
	}
	if options.threshold > 0 {
		learningOpts = append(learningOpts, learning.WithConfidenceThreshold(options.threshold))
	}
	if options.autosaveInterval > 0 {
		learningOpts = append(learningOpts, learning.WithAutosaveInterval(options.autosaveInterval))
	}
	learningEngine, err := learning.NewEngine(learningOpts...)
	if err != nil {
		backend.Close()
		return nil, err
	}
	boostEngine.SetLearnedWeights(learningEngine)

	var cache *embed.TagVectorCache
	if options.embedder != nil {
		cache = embed.NewTagVectorCache(options.embedder, embed.WithCacheLogger(logger))
		boostEngine.SetTagVectors(cache)
	}

	plannerOpts := []planner.Option{planner.WithLogger(logger)}
	if options.clock != nil {
		plannerOpts = append(plannerOpts, planner.WithClock(options.clock))
	}
	if options.tagMemoDefault != nil {
		plannerOpts = append(plannerOpts, planner.WithTagMemoDefault(*options.tagMemoDefault))
	}
	p, err := planner.New(plannerOpts...)
	if err != nil {
		backend.Close()
		return nil, err
	}

	fusionOpts := []fusion.Option{
		fusion.WithBoostEngine(boostEngine),
		fusion.WithLogger(logger),
	}
	for source, b := range options.backends {
		fusionOpts = append(fusionOpts, fusion.WithBackend(source, b))
	}
	if options.rrf != nil {
		fusionOpts = append(fusionOpts, fusion.WithRRFOptions(*options.rrf))
	}
	if options.searchTimeout > 0 {
		fusionOpts = append(fusionOpts, fusion.WithSearchTimeout(options.searchTimeout))
	}
	fusionService, err := fusion.NewService(p, fusionOpts...)
	if err != nil {
		backend.Close()
		return nil, err
	}

	if err := learningEngine.Start(); err != nil {
		fusionService.Release()
		backend.Close()
		return nil, err
	}

	return &Service{
		backend:  backend,
		store:    store,
		matrix:   m,
		boost:    boostEngine,
		saver:    saver,
		learning: learningEngine,
		planner:  p,
		fusion:   fusionService,
		cache:    cache,
		logger:   logger,
	}, nil
}

// Close flushes pending snapshots and releases every component. The learning
// engine persists a final snapshot before the store closes.
func (s *Service) Close() error {
	s.fusion.Release()

	if err := s.boost.ForceSave(); err != nil {
		s.logger.Error("error flushing matrix snapshot", "err", err)
	}
	if err := s.learning.Close(); err != nil {
		s.logger.Error("error closing learning engine", "err", err)
	}
	if err := s.store.Close(); err != nil {
		s.logger.Error("error closing snapshot store", "err", err)
		return err
	}
	return nil
}

// Search runs the full plan, fan-out, fusion and boost pipeline.
func (s *Service) Search(ctx context.Context, query string, opts planner.Options) ([]*core.Result, error) {
	return s.fusion.Search(ctx, query, opts)
}

// WarmTagVectors embeds and caches vectors for the given tags. A no-op when
// no embedder is configured.
func (s *Service) WarmTagVectors(ctx context.Context, tags []string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Warm(ctx, tags)
}

// Matrix exposes the shared co-occurrence matrix.
func (s *Service) Matrix() *matrix.Matrix {
	return s.matrix
}

// Boost exposes the tag boost engine.
func (s *Service) Boost() *boost.Engine {
	return s.boost
}

// Learning exposes the self-learning engine.
func (s *Service) Learning() *learning.Engine {
	return s.learning
}

// Planner exposes the retrieval planner.
func (s *Service) Planner() *planner.Planner {
	return s.planner
}

// Fusion exposes the fusion search service.
func (s *Service) Fusion() *fusion.Service {
	return s.fusion
}
