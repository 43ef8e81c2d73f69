package learning

import (
	"time"

	"github.com/synaptiq/tagrank/core"
)

// DefaultAutosaveInterval is the default periodic snapshot interval.
const DefaultAutosaveInterval = 30 * time.Second

// SnapshotStore persists learning state. The learning snapshot and the
// internal matrix are written separately.
type SnapshotStore interface {
	SaveLearning(snapshot core.LearningSnapshot) error
	LoadLearning() (snapshot core.LearningSnapshot, found bool, err error)
	SaveLearningMatrix(blob []byte) error
	LoadLearningMatrix() (blob []byte, found bool, err error)
}

// Snapshot captures a deep copy of the learning state.
func (e *Engine) Snapshot() core.LearningSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() core.LearningSnapshot {
	snap := core.LearningSnapshot{
		TagStats:        make(map[string]core.TagLearningStats, len(e.tagStats)),
		QueryHistory:    make([]core.QueryRecord, len(e.queryHistory)),
		FeedbackHistory: make([]core.FeedbackRecord, len(e.feedbackHistory)),
		Suggestions:     make([]core.SemanticSuggestion, len(e.suggestions)),
		ResultStats:     make(map[string]core.ResultSelectionStats, len(e.resultStats)),
		SavedAt:         e.now(),
	}
	for tag, stats := range e.tagStats {
		snap.TagStats[tag] = *stats
	}
	copy(snap.QueryHistory, e.queryHistory)
	copy(snap.FeedbackHistory, e.feedbackHistory)
	copy(snap.Suggestions, e.suggestions)
	for id, stats := range e.resultStats {
		entry := *stats
		entry.AssociatedQueries = append([]string(nil), stats.AssociatedQueries...)
		snap.ResultStats[id] = entry
	}
	return snap
}

// Restore replaces the learning state with the snapshot's contents.
// The internal matrix is restored separately through its own snapshot.
func (e *Engine) Restore(snap core.LearningSnapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.tagStats = make(map[string]*core.TagLearningStats, len(snap.TagStats))
	for tag, stats := range snap.TagStats {
		s := stats
		s.LearnedWeight = core.ClampWeight(s.LearnedWeight, weightFloor, weightCeiling)
		e.tagStats[tag] = &s
	}
	e.queryHistory = append([]core.QueryRecord(nil), snap.QueryHistory...)
	if len(e.queryHistory) > queryHistoryCap {
		e.queryHistory = e.queryHistory[len(e.queryHistory)-queryHistoryCap:]
	}
	e.feedbackHistory = append([]core.FeedbackRecord(nil), snap.FeedbackHistory...)
	if len(e.feedbackHistory) > feedbackCap {
		e.feedbackHistory = e.feedbackHistory[len(e.feedbackHistory)-feedbackCap:]
	}
	e.suggestions = append([]core.SemanticSuggestion(nil), snap.Suggestions...)
	e.resultStats = make(map[string]*core.ResultSelectionStats, len(snap.ResultStats))
	for id, stats := range snap.ResultStats {
		s := stats
		e.resultStats[id] = &s
	}
}

// Start loads persisted state and begins the periodic autosave loop.
// Missing or malformed persisted state logs a warning and starts cold.
// Without a store Start is a no-op.
func (e *Engine) Start() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	if e.store == nil || e.stop != nil {
		e.mu.Unlock()
		return nil
	}
	e.stop = make(chan struct{})
	e.done = make(chan struct{})
	e.mu.Unlock()

	e.load()

	go e.autosaveLoop()
	return nil
}

func (e *Engine) load() {
	snap, found, err := e.store.LoadLearning()
	switch {
	case err != nil:
		e.logger.Warn("learning snapshot unreadable, starting cold", "err", err)
	case found:
		e.Restore(snap)
		e.logger.Info("learning snapshot restored",
			"tags", len(snap.TagStats), "queries", len(snap.QueryHistory))
	}

	blob, found, err := e.store.LoadLearningMatrix()
	if err != nil {
		e.logger.Warn("learning matrix snapshot unreadable, starting cold", "err", err)
		return
	}
	if !found {
		return
	}
	if err := e.matrix.FromJSON(blob); err != nil {
		e.logger.Warn("learning matrix snapshot malformed, starting cold", "err", err)
	}
}

func (e *Engine) autosaveLoop() {
	defer close(e.done)
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := e.save(); err != nil {
				e.logger.Error("error autosaving learning state", "err", err)
			}
		case <-e.stop:
			return
		}
	}
}

func (e *Engine) save() error {
	e.mu.Lock()
	snap := e.snapshotLocked()
	e.mu.Unlock()

	if err := e.store.SaveLearning(snap); err != nil {
		return err
	}
	blob, err := e.matrix.ToJSON()
	if err != nil {
		return err
	}
	if err := e.store.SaveLearningMatrix(blob); err != nil {
		return err
	}
	e.monitor.SnapshotSaved(len(snap.TagStats))
	return nil
}

// Close stops the autosave loop and writes one final snapshot.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	stop, done := e.stop, e.done
	e.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
	if e.store == nil {
		return nil
	}
	return e.save()
}
