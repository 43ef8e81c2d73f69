package badger

// Keys for the persisted snapshots
const (
	matrixSnapshotKey         = "snap:matrix"
	learningSnapshotKey       = "snap:learning"
	learningMatrixSnapshotKey = "snap:learnmatrix"
)
