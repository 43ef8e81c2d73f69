package learning

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synaptiq/tagrank/core"
)

// fakeStore is an in-memory SnapshotStore.
type fakeStore struct {
	mu          sync.Mutex
	learning    *core.LearningSnapshot
	matrixBlob  []byte
	learningErr error
	matrixErr   error
	saves       int
}

func (s *fakeStore) SaveLearning(snapshot core.LearningSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.learning = &snapshot
	s.saves++
	return nil
}

func (s *fakeStore) LoadLearning() (core.LearningSnapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.learningErr != nil {
		return core.LearningSnapshot{}, false, s.learningErr
	}
	if s.learning == nil {
		return core.LearningSnapshot{}, false, nil
	}
	return *s.learning, true, nil
}

func (s *fakeStore) SaveLearningMatrix(blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matrixBlob = blob
	return nil
}

func (s *fakeStore) LoadLearningMatrix() ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.matrixErr != nil {
		return nil, false, s.matrixErr
	}
	if s.matrixBlob == nil {
		return nil, false, nil
	}
	return s.matrixBlob, true, nil
}

func TestSnapshotRestore(t *testing.T) {
	engine, _ := newTestEngine(t)
	require.NoError(t, engine.RecordQuery([]string{"coffee", "morning"}, "search"))
	require.NoError(t, engine.RecordFeedback("best coffee", "r1", []string{"coffee"}, core.FeedbackPositive))

	snap := engine.Snapshot()
	assert.Len(t, snap.TagStats, 2)
	assert.Len(t, snap.QueryHistory, 1)
	assert.Len(t, snap.FeedbackHistory, 1)
	assert.Len(t, snap.ResultStats, 1)
	assert.False(t, snap.SavedAt.IsZero())

	restored, _ := newTestEngine(t)
	restored.Restore(snap)

	stats, ok := restored.TagStats("coffee")
	require.True(t, ok)
	assert.Equal(t, 1, stats.QueryCount)
	assert.Equal(t, 1, stats.PositiveCount)
	assert.InDelta(t, engine.LearnedWeight("coffee"), restored.LearnedWeight("coffee"), 1e-9)
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	engine, _ := newTestEngine(t)
	require.NoError(t, engine.RecordFeedback("q1", "r1", []string{"go"}, core.FeedbackPositive))

	snap := engine.Snapshot()
	require.NoError(t, engine.RecordFeedback("q2", "r1", []string{"go"}, core.FeedbackPositive))

	assert.Equal(t, 1, snap.ResultStats["r1"].PositiveCount)
	assert.Len(t, snap.ResultStats["r1"].AssociatedQueries, 1)
}

func TestRestoreClampsWeights(t *testing.T) {
	engine, _ := newTestEngine(t)
	engine.Restore(core.LearningSnapshot{
		TagStats: map[string]core.TagLearningStats{
			"hot":  {LearnedWeight: 5.0, LastQueryTime: engine.now()},
			"cold": {LearnedWeight: 0.01, LastQueryTime: engine.now()},
		},
	})
	assert.Equal(t, weightCeiling, engine.LearnedWeight("hot"))
	assert.Equal(t, weightFloor, engine.LearnedWeight("cold"))
}

func TestStartAndClosePersist(t *testing.T) {
	store := &fakeStore{}

	engine, _ := newTestEngine(t, WithStore(store))
	require.NoError(t, engine.Start())
	require.NoError(t, engine.RecordQuery([]string{"go", "channels"}, "search"))
	require.NoError(t, engine.Close())

	require.NotNil(t, store.learning)
	assert.Len(t, store.learning.TagStats, 2)
	assert.NotEmpty(t, store.matrixBlob)

	// A second engine picks the state back up.
	revived, _ := newTestEngine(t, WithStore(store))
	require.NoError(t, revived.Start())
	defer revived.Close()

	stats, ok := revived.TagStats("go")
	require.True(t, ok)
	assert.Equal(t, 1, stats.QueryCount)
	assert.Equal(t, 1.0, revived.Matrix().GetWeight("go", "channels"))
}

func TestStartColdOnCorruptState(t *testing.T) {
	t.Run("unreadable learning snapshot", func(t *testing.T) {
		store := &fakeStore{learningErr: errors.New("checksum mismatch")}
		engine, _ := newTestEngine(t, WithStore(store))
		require.NoError(t, engine.Start())
		defer engine.Close()
		assert.Empty(t, engine.Suggestions())
		assert.Equal(t, 0, engine.Matrix().Size())
	})

	t.Run("malformed matrix blob", func(t *testing.T) {
		store := &fakeStore{matrixBlob: []byte("not json")}
		engine, _ := newTestEngine(t, WithStore(store))
		require.NoError(t, engine.Start())
		defer engine.Close()
		assert.Equal(t, 0, engine.Matrix().Size())
	})
}

func TestCloseIsIdempotent(t *testing.T) {
	store := &fakeStore{}
	engine, _ := newTestEngine(t, WithStore(store), WithAutosaveInterval(time.Hour))
	require.NoError(t, engine.Start())
	require.NoError(t, engine.Close())
	require.NoError(t, engine.Close())
	assert.Equal(t, 1, store.saves)

	assert.Equal(t, ErrClosed, engine.Start())
}
