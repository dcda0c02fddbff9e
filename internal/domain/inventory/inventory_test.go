package inventory

import (
	"errors"
	"reflect"
	"testing"
)

func TestStore_AddCreatesAndIncrements(t *testing.T) {
	s := NewStore()
	s.Add("apple", 10)
	if got := s.Quantity("apple"); got != 10 {
		t.Fatalf("expected 10, got %d", got)
	}
	s.Add("apple", 5)
	if got := s.Quantity("apple"); got != 15 {
		t.Fatalf("expected 15, got %d", got)
	}
}

func TestStore_AddEmptyNameIsNoOp(t *testing.T) {
	s := NewStore()
	s.Add("", 5)
	if s.Len() != 0 {
		t.Fatalf("expected empty store, got %d items", s.Len())
	}
}

// Add with a negative quantity decrements without deleting; only Remove
// applies the delete-on-zero rule. A negative add can even drive the stored
// value to zero or below without removing the entry.
func TestStore_NegativeAddKeepsEntry(t *testing.T) {
	s := NewStore()
	s.Add("banana", 3)
	s.Add("banana", -2)
	if got := s.Quantity("banana"); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
	s.Add("banana", -1)
	if got := s.Quantity("banana"); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	if s.Len() != 1 {
		t.Fatalf("expected entry to survive negative add, got %d items", s.Len())
	}
}

func TestStore_RemoveAbsentIsNoOp(t *testing.T) {
	s := NewStore()
	s.Remove("ghost", 1)
	if s.Len() != 0 {
		t.Fatalf("expected empty store, got %d items", s.Len())
	}
}

func TestStore_RemoveDeletesAtZeroOrBelow(t *testing.T) {
	s := NewStore()
	s.Add("apple", 10)

	s.Remove("apple", 3)
	if got := s.Quantity("apple"); got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}

	s.Remove("apple", 7)
	if got := s.Quantity("apple"); got != 0 {
		t.Fatalf("expected 0 after full removal, got %d", got)
	}
	if s.Len() != 0 {
		t.Fatalf("expected entry deletion, got %d items", s.Len())
	}

	s.Add("pear", 2)
	s.Remove("pear", 5)
	if s.Len() != 0 {
		t.Fatalf("expected deletion on negative result, got %d items", s.Len())
	}
}

func TestStore_QuantityAbsentIsZero(t *testing.T) {
	s := NewStore()
	if got := s.Quantity("nothing"); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestStore_LowItems(t *testing.T) {
	s := NewStore()
	s.Add("zucchini", 2)
	s.Add("apple", 3)
	s.Add("melon", 5)
	s.Add("banana", 12)

	low := s.LowItems(5)
	want := []string{"apple", "zucchini"}
	if !reflect.DeepEqual(low, want) {
		t.Fatalf("expected %v, got %v", want, low)
	}

	// strictly below: an exact match is not low
	if got := s.LowItems(2); len(got) != 0 {
		t.Fatalf("expected no low items at threshold 2, got %v", got)
	}
}

func TestStore_QueriesAreIdempotent(t *testing.T) {
	s := NewStore()
	s.Add("apple", 4)

	for i := 0; i < 3; i++ {
		if got := s.Quantity("apple"); got != 4 {
			t.Fatalf("expected stable quantity, got %d", got)
		}
		if got := s.LowItems(10); !reflect.DeepEqual(got, []string{"apple"}) {
			t.Fatalf("expected stable low items, got %v", got)
		}
	}
}

func TestStore_SnapshotIsolation(t *testing.T) {
	s := NewStore()
	s.Add("apple", 7)

	snap := s.Snapshot()
	snap["apple"] = 100
	snap["rogue"] = 1

	if got := s.Quantity("apple"); got != 7 {
		t.Fatalf("expected snapshot isolation, got %d", got)
	}
	if got := s.Quantity("rogue"); got != 0 {
		t.Fatalf("expected rogue entry to stay out, got %d", got)
	}
}

func TestStore_Replace(t *testing.T) {
	s := NewStore()
	s.Add("apple", 7)
	s.Add("banana", 3)

	next := map[string]int{"pear": 4}
	s.Replace(next)
	next["pear"] = 99

	if got := s.Quantity("apple"); got != 0 {
		t.Fatalf("expected old entries dropped, got %d", got)
	}
	if got := s.Quantity("pear"); got != 4 {
		t.Fatalf("expected input copied on replace, got %d", got)
	}

	s.Replace(nil)
	if s.Len() != 0 {
		t.Fatalf("expected nil replace to clear, got %d items", s.Len())
	}
}

func TestStore_Scenario(t *testing.T) {
	s := NewStore()
	s.Add("apple", 10)
	if got := s.Quantity("apple"); got != 10 {
		t.Fatalf("expected 10, got %d", got)
	}
	s.Remove("apple", 3)
	if got := s.Quantity("apple"); got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
	s.Remove("apple", 7)
	if got := s.Quantity("apple"); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	// gone, not zero: not reported even by a huge threshold
	if got := s.LowItems(100); len(got) != 0 {
		t.Fatalf("expected removed item absent from low items, got %v", got)
	}
}

func TestParseQuantity(t *testing.T) {
	if got, err := ParseQuantity("42"); err != nil || got != 42 {
		t.Fatalf("expected 42, got %d (%v)", got, err)
	}
	if got, err := ParseQuantity("-3"); err != nil || got != -3 {
		t.Fatalf("expected -3, got %d (%v)", got, err)
	}
	for _, raw := range []string{"ten", "", "3.5", "1e3"} {
		if _, err := ParseQuantity(raw); !errors.Is(err, ErrInvalidQuantity) {
			t.Fatalf("expected ErrInvalidQuantity for %q, got %v", raw, err)
		}
	}
}
