package storage

import "github.com/synaptiq/tagrank/core"

// SnapshotStore persists matrix and learning-engine snapshots.
// Implementations must be thread-safe; autosave loops and shutdown hooks
// write concurrently with reads.
//
// Load methods report found=false for absent state and reserve the error
// return for undecodable or unreadable state; callers treat both as a cold
// start, but only the latter is worth a warning.
type SnapshotStore interface {
	// SaveMatrix persists the document co-occurrence matrix snapshot.
	SaveMatrix(blob []byte) error
	// LoadMatrix retrieves the document co-occurrence matrix snapshot.
	LoadMatrix() (blob []byte, found bool, err error)

	// SaveLearning persists the learning-engine state.
	SaveLearning(snapshot core.LearningSnapshot) error
	// LoadLearning retrieves the learning-engine state.
	LoadLearning() (snapshot core.LearningSnapshot, found bool, err error)

	// SaveLearningMatrix persists the learning engine's own matrix.
	SaveLearningMatrix(blob []byte) error
	// LoadLearningMatrix retrieves the learning engine's own matrix.
	LoadLearningMatrix() (blob []byte, found bool, err error)

	// Close closes the store and releases resources.
	Close() error
}
