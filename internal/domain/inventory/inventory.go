package inventory

import (
	"errors"
	"sort"
	"strconv"
)

var (
	// ErrInvalidQuantity reports a quantity or threshold that cannot be read as an integer.
	ErrInvalidQuantity = errors.New("inventory: quantity must be an integer")
)

// DefaultLowThreshold is applied when a caller does not supply a threshold.
const DefaultLowThreshold = 5

// Store tracks item quantities in memory. It is not safe for concurrent use;
// callers serialize access (the application service holds a mutex).
type Store struct {
	items map[string]int
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{items: make(map[string]int)}
}

// Add increments the quantity for item, creating the entry when absent.
// An empty item name is a silent no-op. Negative quantities decrement without
// removing the entry; only Remove deletes on reaching zero or below.
func (s *Store) Add(item string, qty int) {
	if item == "" {
		return
	}
	s.items[item] += qty
}

// Remove decrements the quantity for item. An absent item is a silent no-op.
// When the result reaches zero or below the entry is deleted; out of stock is
// represented by absence, never a zero entry.
func (s *Store) Remove(item string, qty int) {
	current, ok := s.items[item]
	if !ok {
		return
	}
	if next := current - qty; next > 0 {
		s.items[item] = next
	} else {
		delete(s.items, item)
	}
}

// Quantity returns the stored quantity for item, or 0 when absent.
func (s *Store) Quantity(item string) int {
	return s.items[item]
}

// LowItems returns the names whose quantity is strictly below threshold,
// sorted alphabetically.
func (s *Store) LowItems(threshold int) []string {
	low := make([]string, 0)
	for name, qty := range s.items {
		if qty < threshold {
			low = append(low, name)
		}
	}
	sort.Strings(low)
	return low
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() map[string]int {
	out := make(map[string]int, len(s.items))
	for name, qty := range s.items {
		out[name] = qty
	}
	return out
}

// Replace swaps the entire state for the given mapping. A nil mapping clears
// the store. The input is copied; later mutation of it does not leak in.
func (s *Store) Replace(items map[string]int) {
	next := make(map[string]int, len(items))
	for name, qty := range items {
		next[name] = qty
	}
	s.items = next
}

// Len returns the number of tracked items.
func (s *Store) Len() int {
	return len(s.items)
}

// ParseQuantity converts caller-supplied text into an integer quantity.
// It is the fallible boundary for quantities and thresholds arriving over
// HTTP or the CLI.
func ParseQuantity(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, ErrInvalidQuantity
	}
	return n, nil
}
