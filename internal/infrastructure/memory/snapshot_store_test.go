package memory

import (
	"context"
	"testing"

	domain "github.com/Zhima-Mochi/stockroom/internal/domain/inventory"
)

// Interface compliance (compile-time assertion)
var _ domain.SnapshotStore = (*SnapshotStore)(nil)

func TestSnapshotStore_AbsentPathLoadsNil(t *testing.T) {
	s := NewSnapshotStore()
	out, err := s.Load(context.Background(), "missing.json")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out != nil {
		t.Fatalf("expected nil for absent path, got %#v", out)
	}
}

func TestSnapshotStore_SaveLoadIsolation(t *testing.T) {
	s := NewSnapshotStore()
	ctx := context.Background()

	in := map[string]int{"apple": 7}
	if err := s.Save(ctx, "inventory.json", in); err != nil {
		t.Fatalf("save: %v", err)
	}
	// mutate original map
	in["apple"] = 100

	out, err := s.Load(ctx, "inventory.json")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out["apple"] != 7 {
		t.Fatalf("expected stored copy, got %d", out["apple"])
	}
	// mutate returned map
	out["apple"] = 100
	out2, _ := s.Load(ctx, "inventory.json")
	if out2["apple"] != 7 {
		t.Fatalf("expected isolation, got %d", out2["apple"])
	}
}

func TestSnapshotStore_DeleteMakesPathAbsent(t *testing.T) {
	s := NewSnapshotStore()
	ctx := context.Background()

	if err := s.Save(ctx, "inventory.json", map[string]int{"apple": 7}); err != nil {
		t.Fatalf("save: %v", err)
	}
	s.Delete("inventory.json")

	out, err := s.Load(ctx, "inventory.json")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out != nil {
		t.Fatalf("expected nil after delete, got %#v", out)
	}
}
