package badger

import (
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/synaptiq/tagrank/core"
	"github.com/synaptiq/tagrank/storage"
)

// SnapshotRepository implements storage.SnapshotStore on a Backend.
type SnapshotRepository struct {
	backend *Backend
}

var _ storage.SnapshotStore = (*SnapshotRepository)(nil)

// NewSnapshotRepository creates a snapshot repository on the backend.
func NewSnapshotRepository(backend *Backend) (*SnapshotRepository, error) {
	if backend == nil {
		return nil, errors.New("backend is required")
	}
	return &SnapshotRepository{backend: backend}, nil
}

// SaveMatrix persists the document co-occurrence matrix snapshot.
func (r *SnapshotRepository) SaveMatrix(blob []byte) error {
	return r.put(matrixSnapshotKey, blob)
}

// LoadMatrix retrieves the document co-occurrence matrix snapshot.
func (r *SnapshotRepository) LoadMatrix() ([]byte, bool, error) {
	return r.get(matrixSnapshotKey)
}

// SaveLearning persists the learning-engine state.
func (r *SnapshotRepository) SaveLearning(snapshot core.LearningSnapshot) error {
	return r.put(learningSnapshotKey, storage.MarshalLearningSnapshot(&snapshot))
}

// LoadLearning retrieves the learning-engine state.
func (r *SnapshotRepository) LoadLearning() (core.LearningSnapshot, bool, error) {
	data, found, err := r.get(learningSnapshotKey)
	if err != nil || !found {
		return core.LearningSnapshot{}, false, err
	}
	snapshot, err := storage.UnmarshalLearningSnapshot(data)
	if err != nil {
		return core.LearningSnapshot{}, false, err
	}
	return *snapshot, true, nil
}

// SaveLearningMatrix persists the learning engine's own matrix.
func (r *SnapshotRepository) SaveLearningMatrix(blob []byte) error {
	return r.put(learningMatrixSnapshotKey, blob)
}

// LoadLearningMatrix retrieves the learning engine's own matrix.
func (r *SnapshotRepository) LoadLearningMatrix() ([]byte, bool, error) {
	return r.get(learningMatrixSnapshotKey)
}

// Close closes the underlying backend.
func (r *SnapshotRepository) Close() error {
	return r.backend.Close()
}

func (r *SnapshotRepository) put(key string, value []byte) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set([]byte(key), value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

func (r *SnapshotRepository) get(key string) ([]byte, bool, error) {
	var value []byte
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	}, false)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}
