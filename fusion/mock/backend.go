// Package mock provides a test double for fusion.Backend.
package mock

import (
	"context"
	"sync"

	"github.com/synaptiq/tagrank/core"
	"github.com/synaptiq/tagrank/fusion"
)

// Backend is a test double for fusion.Backend.
// It allows custom behavior injection via function fields.
type Backend struct {
	// SearchFunc is called by Search if set. If nil, Results are returned.
	SearchFunc func(ctx context.Context, query string, topK int, opts fusion.BackendOptions) ([]*core.Result, error)

	// Results is the canned response when SearchFunc is nil. Results
	// beyond topK are cut off.
	Results []*core.Result

	// Err is returned by Search when set and SearchFunc is nil.
	Err error

	// Unavailable makes IsAvailable report false.
	Unavailable bool

	mu        sync.Mutex
	callCount int
	lastOpts  fusion.BackendOptions
}

var _ fusion.Backend = (*Backend)(nil)

// NewBackend creates a mock backend with canned results.
func NewBackend(results ...*core.Result) *Backend {
	return &Backend{Results: results}
}

// Search returns the injected behavior or the canned results.
func (b *Backend) Search(ctx context.Context, query string, topK int, opts fusion.BackendOptions) ([]*core.Result, error) {
	b.mu.Lock()
	b.callCount++
	b.lastOpts = opts
	b.mu.Unlock()

	if b.SearchFunc != nil {
		return b.SearchFunc(ctx, query, topK, opts)
	}
	if b.Err != nil {
		return nil, b.Err
	}
	results := b.Results
	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	// Copies keep callers from mutating the canned fixtures.
	out := make([]*core.Result, len(results))
	for i, result := range results {
		clone := *result
		out[i] = &clone
	}
	return out, nil
}

// IsAvailable reports the configured availability.
func (b *Backend) IsAvailable() bool {
	return !b.Unavailable
}

// Stats reports a document count matching the canned results.
func (b *Backend) Stats() fusion.BackendStats {
	return fusion.BackendStats{DocumentCount: len(b.Results), Healthy: !b.Unavailable}
}

// CallCount returns the number of Search calls.
func (b *Backend) CallCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.callCount
}

// LastOptions returns the options of the most recent Search call.
func (b *Backend) LastOptions() fusion.BackendOptions {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastOpts
}
