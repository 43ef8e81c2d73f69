package fusion

import "github.com/synaptiq/tagrank/core"

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results.
// BackendSearched is invoked from worker goroutines and may run
// concurrently; the other hooks run on the calling goroutine.
type SearchMonitor interface {
	Start(query string)
	PlanReady(plan core.RetrievalPlan)
	BackendSearched(source core.Source, hits int, err error)
	AfterFusion(results []*core.Result)
	AfterTagBoost(results []*core.Result)
	Finish(results []*core.Result)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                                {}
func (n *noopMonitor) PlanReady(_ core.RetrievalPlan)                {}
func (n *noopMonitor) BackendSearched(_ core.Source, _ int, _ error) {}
func (n *noopMonitor) AfterFusion(_ []*core.Result)                  {}
func (n *noopMonitor) AfterTagBoost(_ []*core.Result)                {}
func (n *noopMonitor) Finish(_ []*core.Result)                       {}
