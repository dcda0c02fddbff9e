package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	domain "github.com/Zhima-Mochi/stockroom/internal/domain/inventory"
)

// Store reads and writes inventory snapshots as a bare top-level JSON object
// mapping item names to integer quantities. No envelope, no metadata.
type Store struct{}

var _ domain.SnapshotStore = (*Store)(nil)

func NewStore() *Store {
	return &Store{}
}

// Load reads the snapshot at path. A missing file yields (nil, nil): absence
// is defined behavior, not an error. A file whose top level is not an object,
// or any value that cannot be coerced to an integer, fails with ErrBadSnapshot
// and nothing is returned; validation happens into a temporary map so a
// partial snapshot never escapes.
func (s *Store) Load(ctx context.Context, path string) (map[string]int, error) {
	_ = ctx

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("jsonfile: read %s: %w", path, err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var top any
	if err := dec.Decode(&top); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSnapshot, err)
	}

	obj, ok := top.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: top-level value is not an object", ErrBadSnapshot)
	}

	items := make(map[string]int, len(obj))
	for name, value := range obj {
		qty, err := coerceQuantity(value)
		if err != nil {
			return nil, fmt.Errorf("%w: item %q: %v", ErrBadSnapshot, name, err)
		}
		items[name] = qty
	}
	return items, nil
}

// Save serializes items to path as an indented JSON object, overwriting any
// existing file.
func (s *Store) Save(ctx context.Context, path string, items map[string]int) error {
	_ = ctx

	if items == nil {
		items = map[string]int{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("jsonfile: marshal snapshot: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("jsonfile: write %s: %w", path, err)
	}
	return nil
}

// coerceQuantity accepts integral JSON numbers, truncates non-integral ones
// toward zero, and parses base-10 integer strings. Everything else fails.
func coerceQuantity(value any) (int, error) {
	switch v := value.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n), nil
		}
		f, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("not a number: %s", v.String())
		}
		return int(f), nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("not an integer: %q", v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("unsupported value of type %T", value)
	}
}
