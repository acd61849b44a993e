package core

import "context"

// Dataset names shared by every snapshot backend.
const (
	DatasetHandles    = "user_cache"
	DatasetUsedTitles = "used_name"
	DatasetActivity   = "activity"
)

// SnapshotStore keeps whole-document snapshots keyed by dataset name.
// Load returns nil data and no error when the dataset was never written.
type SnapshotStore interface {
	Load(ctx context.Context, dataset string) ([]byte, error)
	Save(ctx context.Context, dataset string, data []byte) error
}
