package fusion

import (
	"context"
	"time"

	"github.com/synaptiq/tagrank/core"
)

// BackendOptions is the per-call configuration passed through to a backend.
// The Timeout is opaque to the orchestrator; honoring it is the backend's
// responsibility.
type BackendOptions struct {
	Mode            core.Mode
	Threshold       float64
	TimeFilter      *core.TimeFilter
	CharacterName   string
	KnowledgeBaseID string
	Timeout         time.Duration
}

// BackendStats describes a backend's health and size.
type BackendStats struct {
	DocumentCount int
	Healthy       bool
}

// Backend is a single retrieval source. Implementations are queried
// polymorphically by the orchestrator and must be safe for concurrent use.
type Backend interface {
	Search(ctx context.Context, query string, topK int, opts BackendOptions) ([]*core.Result, error)
	IsAvailable() bool
	Stats() BackendStats
}
