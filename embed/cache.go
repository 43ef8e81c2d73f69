package embed

import (
	"context"
	"log/slog"
	"sync"

	"github.com/synaptiq/tagrank/boost"
	"github.com/synaptiq/tagrank/core"
)

var _ boost.TagVectors = (*TagVectorCache)(nil)

// TagVectorCache memoizes per-tag embeddings. Lookups are cache-only so the
// boost path never blocks on the embedding service; misses are filled by
// calling Warm ahead of time. Safe for concurrent use.
type TagVectorCache struct {
	mu       sync.RWMutex
	vectors  map[string][]float32
	embedder Embedder
	logger   *slog.Logger
}

// CacheOption configures a TagVectorCache.
type CacheOption func(*TagVectorCache)

// WithCacheLogger sets the logger used by the cache.
func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(c *TagVectorCache) {
		if logger != nil {
			c.logger = logger.With("component", "tag-vector-cache")
		}
	}
}

// NewTagVectorCache creates a cache backed by the given embedder. The
// embedder may be nil, in which case the cache serves only vectors added
// with Put.
func NewTagVectorCache(embedder Embedder, opts ...CacheOption) *TagVectorCache {
	c := &TagVectorCache{
		vectors:  make(map[string][]float32),
		embedder: embedder,
		logger:   slog.Default().With("component", "tag-vector-cache"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TagVector returns the cached embedding for a tag. Tags are matched in
// normalized form. A miss reports ok=false; it never triggers an embedding
// call.
func (c *TagVectorCache) TagVector(tag string) ([]float32, bool) {
	key := core.NormalizeTag(tag)
	c.mu.RLock()
	defer c.mu.RUnlock()
	vector, ok := c.vectors[key]
	return vector, ok
}

// Put stores an embedding for a tag, replacing any cached value. Empty
// vectors are ignored.
func (c *TagVectorCache) Put(tag string, vector []float32) {
	key := core.NormalizeTag(tag)
	if key == "" || len(vector) == 0 {
		return
	}
	stored := make([]float32, len(vector))
	copy(stored, vector)
	c.mu.Lock()
	c.vectors[key] = stored
	c.mu.Unlock()
}

// Warm embeds every tag not yet cached in a single batch and stores the
// results. Tags already cached are skipped. A nil embedder makes Warm a
// no-op.
func (c *TagVectorCache) Warm(ctx context.Context, tags []string) error {
	if c.embedder == nil || len(tags) == 0 {
		return nil
	}

	missing := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	c.mu.RLock()
	for _, tag := range tags {
		key := core.NormalizeTag(tag)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if _, ok := c.vectors[key]; !ok {
			missing = append(missing, key)
		}
	}
	c.mu.RUnlock()

	if len(missing) == 0 {
		return nil
	}

	embeddings, err := c.embedder.EmbedTexts(ctx, missing)
	if err != nil {
		c.logger.Error("failed to embed tags", "count", len(missing), "err", err)
		return err
	}

	c.mu.Lock()
	for i, tag := range missing {
		if i >= len(embeddings) || len(embeddings[i]) == 0 {
			continue
		}
		c.vectors[tag] = embeddings[i]
	}
	c.mu.Unlock()

	c.logger.Debug("warmed tag vectors", "requested", len(missing))
	return nil
}

// Len returns the number of cached tag vectors.
func (c *TagVectorCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.vectors)
}
