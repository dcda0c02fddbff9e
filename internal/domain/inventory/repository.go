package inventory

import (
	"context"
)

// SnapshotStore persists whole-inventory snapshots. Load returns (nil, nil)
// when no snapshot exists at path; callers treat that as an empty inventory.
type SnapshotStore interface {
	Load(ctx context.Context, path string) (map[string]int, error)
	Save(ctx context.Context, path string, items map[string]int) error
}
