package learning

import "github.com/synaptiq/tagrank/core"

// Monitor provides hooks to observe learning-state changes.
// Implementations must be fast; hooks run on the caller's goroutine.
// All hooks are best-effort notifications with no error return, so a
// monitor can never fail the call that triggered it.
type Monitor interface {
	QueryRecorded(tags []string)
	WeightAdjusted(tag string, previous, updated float64)
	SuggestionDiscovered(suggestion core.SemanticSuggestion)
	SnapshotSaved(savedTags int)
}

// noopMonitor is a no-op implementation of Monitor.
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) QueryRecorded(_ []string)                       {}
func (n *noopMonitor) WeightAdjusted(_ string, _, _ float64)          {}
func (n *noopMonitor) SuggestionDiscovered(_ core.SemanticSuggestion) {}
func (n *noopMonitor) SnapshotSaved(_ int)                            {}
