package badger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synaptiq/tagrank/core"
)

func newTestStore(t *testing.T) *SnapshotRepository {
	t.Helper()
	store, err := NewMemorySnapshotStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewSnapshotRepository(t *testing.T) {
	_, err := NewSnapshotRepository(nil)
	assert.Error(t, err)
}

func TestMatrixSnapshotRoundTrip(t *testing.T) {
	store := newTestStore(t)

	_, found, err := store.LoadMatrix()
	require.NoError(t, err)
	assert.False(t, found)

	blob := []byte(`{"tags":["a","b"],"relations":[["a","b",2.5]]}`)
	require.NoError(t, store.SaveMatrix(blob))

	loaded, found, err := store.LoadMatrix()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, blob, loaded)
}

func TestLearningSnapshotRoundTrip(t *testing.T) {
	store := newTestStore(t)

	_, found, err := store.LoadLearning()
	require.NoError(t, err)
	assert.False(t, found)

	saved := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	snapshot := core.LearningSnapshot{
		TagStats: map[string]core.TagLearningStats{
			"coffee": {QueryCount: 4, LastQueryTime: saved, LearnedWeight: 1.2},
		},
		QueryHistory: []core.QueryRecord{
			{Tags: []string{"coffee"}, Timestamp: saved, Type: "search"},
		},
		SavedAt: saved,
	}
	require.NoError(t, store.SaveLearning(snapshot))

	loaded, found, err := store.LoadLearning()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, snapshot.TagStats, loaded.TagStats)
	assert.Equal(t, snapshot.QueryHistory, loaded.QueryHistory)
	assert.True(t, snapshot.SavedAt.Equal(loaded.SavedAt))
}

func TestLearningSnapshotOverwrite(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SaveLearning(core.LearningSnapshot{
		TagStats: map[string]core.TagLearningStats{"old": {QueryCount: 1}},
	}))
	require.NoError(t, store.SaveLearning(core.LearningSnapshot{
		TagStats: map[string]core.TagLearningStats{"new": {QueryCount: 2}},
	}))

	loaded, found, err := store.LoadLearning()
	require.NoError(t, err)
	require.True(t, found)
	assert.NotContains(t, loaded.TagStats, "old")
	assert.Contains(t, loaded.TagStats, "new")
}

func TestLearningMatrixRoundTrip(t *testing.T) {
	store := newTestStore(t)

	_, found, err := store.LoadLearningMatrix()
	require.NoError(t, err)
	assert.False(t, found)

	blob := []byte(`{"tags":["x"],"relations":[]}`)
	require.NoError(t, store.SaveLearningMatrix(blob))

	loaded, found, err := store.LoadLearningMatrix()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, blob, loaded)
}

func TestSnapshotKeysAreIndependent(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SaveMatrix([]byte("doc-matrix")))
	require.NoError(t, store.SaveLearningMatrix([]byte("learn-matrix")))

	docBlob, found, err := store.LoadMatrix()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("doc-matrix"), docBlob)

	learnBlob, found, err := store.LoadLearningMatrix()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("learn-matrix"), learnBlob)
}
