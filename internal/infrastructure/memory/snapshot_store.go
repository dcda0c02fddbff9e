package memory

import (
	"context"
	"sync"

	domain "github.com/Zhima-Mochi/stockroom/internal/domain/inventory"
)

// SnapshotStore keeps snapshots in a process-local map keyed by path. It
// mirrors the jsonfile store's contract (absent path loads as nil) and is
// meant for tests and ephemeral demo wiring.
type SnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[string]map[string]int
}

var _ domain.SnapshotStore = (*SnapshotStore)(nil)

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{snapshots: make(map[string]map[string]int)}
}

func (s *SnapshotStore) Load(ctx context.Context, path string) (map[string]int, error) {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.snapshots[path]
	if !ok {
		return nil, nil
	}
	return cloneSnapshot(snap), nil
}

func (s *SnapshotStore) Save(ctx context.Context, path string, items map[string]int) error {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshots[path] = cloneSnapshot(items)
	return nil
}

// Delete drops the snapshot stored for path, making later loads behave like a
// missing file.
func (s *SnapshotStore) Delete(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.snapshots, path)
}

func cloneSnapshot(items map[string]int) map[string]int {
	clone := make(map[string]int, len(items))
	for name, qty := range items {
		clone[name] = qty
	}
	return clone
}
