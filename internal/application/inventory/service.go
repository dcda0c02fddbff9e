package inventory

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	domain "github.com/Zhima-Mochi/stockroom/internal/domain/inventory"
	"github.com/Zhima-Mochi/stockroom/internal/infrastructure/id"
	"github.com/Zhima-Mochi/stockroom/internal/observability"
	"github.com/Zhima-Mochi/stockroom/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	inventoryService = "inventory-service"
	spanPrefix       = "UC."

	useCaseAdd      = "inventory.add"
	useCaseRemove   = "inventory.remove"
	useCaseQuantity = "inventory.quantity"
	useCaseLowStock = "inventory.low_stock"
	useCaseLoad     = "inventory.load_snapshot"
	useCaseSave     = "inventory.save_snapshot"
	useCaseReport   = "inventory.report"
)

// Service owns the in-memory store and serializes access to it. The domain
// Store itself is unsynchronized; the mutex here is the caller-side mutual
// exclusion the core contract asks for.
type Service struct {
	mu        sync.Mutex
	store     *domain.Store
	snapshots domain.SnapshotStore
	auditLog  domain.AuditLog
	ids       id.Generator

	log          observability.Logger
	tracer       observability.Tracer
	reqCounter   observability.Counter
	durHistogram observability.Histogram
	ioCounter    observability.Counter
	ioHistogram  observability.Histogram
}

// NewService wires a fresh empty store to its collaborators. The audit log,
// id generator, and telemetry are optional; nil values degrade to no-ops.
func NewService(snapshots domain.SnapshotStore, auditLog domain.AuditLog, ids id.Generator, tel observability.Observability) *Service {
	baseLog := observability.NopLogger()
	tracer := observability.NopTracer()
	metrics := observability.NopMetrics()
	if tel != nil {
		baseLog = tel.Logger()
		tracer = tel.Tracer()
		metrics = tel.Metrics()
	}
	baseLog = baseLog.With(observability.F("service", inventoryService))

	return &Service{
		store:        domain.NewStore(),
		snapshots:    snapshots,
		auditLog:     auditLog,
		ids:          ids,
		log:          baseLog,
		tracer:       tracer,
		reqCounter:   metrics.Counter(observability.MUsecaseRequests),
		durHistogram: metrics.Histogram(observability.MUsecaseDuration),
		ioCounter:    metrics.Counter(observability.MSnapshotIO),
		ioHistogram:  metrics.Histogram(observability.MSnapshotIODuration),
	}
}

// AddItem increments the stored quantity for item, creating it when absent.
// An empty item name is a silent no-op. When an audit log is configured, one
// timestamped entry is recorded per effective addition.
func (s *Service) AddItem(ctx context.Context, item string, qty int) {
	ctx, finish := s.observe(ctx, useCaseAdd,
		attribute.String("item.name", item),
		attribute.Int("item.quantity", qty),
	)
	defer finish(nil)

	if item == "" {
		return
	}

	s.mu.Lock()
	s.store.Add(item, qty)
	s.mu.Unlock()

	s.recordAudit(ctx, fmt.Sprintf("Added %d of %s", qty, item))
}

// RemoveItem decrements the stored quantity for item. An absent item is a
// silent no-op; a result of zero or below deletes the entry.
func (s *Service) RemoveItem(ctx context.Context, item string, qty int) {
	ctx, finish := s.observe(ctx, useCaseRemove,
		attribute.String("item.name", item),
		attribute.Int("item.quantity", qty),
	)
	defer finish(nil)

	s.mu.Lock()
	s.store.Remove(item, qty)
	s.mu.Unlock()

	s.recordAudit(ctx, fmt.Sprintf("Removed %d of %s", qty, item))
}

// Quantity returns the stored quantity for item, or 0 when absent.
func (s *Service) Quantity(ctx context.Context, item string) int {
	_, finish := s.observe(ctx, useCaseQuantity,
		attribute.String("item.name", item),
	)
	defer finish(nil)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Quantity(item)
}

// LowStock returns the item names whose quantity is strictly below threshold,
// sorted alphabetically.
func (s *Service) LowStock(ctx context.Context, threshold int) []string {
	_, finish := s.observe(ctx, useCaseLowStock,
		attribute.Int("threshold", threshold),
	)
	defer finish(nil)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.LowItems(threshold)
}

// LoadSnapshot replaces the in-memory inventory with the snapshot at path.
// A missing file clears the inventory; a malformed file fails and leaves the
// in-memory state untouched.
func (s *Service) LoadSnapshot(ctx context.Context, path string) (err error) {
	ctx, finish := s.observe(ctx, useCaseLoad,
		attribute.String("snapshot.path", path),
	)
	defer func() { finish(err) }()

	items, err := s.snapshotIO(ctx, "load", func() (map[string]int, error) {
		return s.snapshots.Load(ctx, path)
	})
	if err != nil {
		return fmt.Errorf("inventory: load snapshot: %w", err)
	}

	s.mu.Lock()
	s.store.Replace(items)
	s.mu.Unlock()
	return nil
}

// SaveSnapshot serializes the current inventory to path, overwriting any
// existing file. The in-memory state is never mutated.
func (s *Service) SaveSnapshot(ctx context.Context, path string) (err error) {
	ctx, finish := s.observe(ctx, useCaseSave,
		attribute.String("snapshot.path", path),
	)
	defer func() { finish(err) }()

	s.mu.Lock()
	items := s.store.Snapshot()
	s.mu.Unlock()

	_, err = s.snapshotIO(ctx, "save", func() (map[string]int, error) {
		return nil, s.snapshots.Save(ctx, path, items)
	})
	if err != nil {
		return fmt.Errorf("inventory: save snapshot: %w", err)
	}
	return nil
}

// Report writes the "Items Report" listing to w, one line per item in
// alphabetical order.
func (s *Service) Report(ctx context.Context, w io.Writer) (err error) {
	_, finish := s.observe(ctx, useCaseReport)
	defer func() { finish(err) }()

	s.mu.Lock()
	items := s.store.Snapshot()
	s.mu.Unlock()

	names := make([]string, 0, len(items))
	for name := range items {
		names = append(names, name)
	}
	sort.Strings(names)

	if _, err = fmt.Fprintln(w, "Items Report"); err != nil {
		return fmt.Errorf("inventory: write report: %w", err)
	}
	for _, name := range names {
		if _, err = fmt.Fprintf(w, "%s -> %d\n", name, items[name]); err != nil {
			return fmt.Errorf("inventory: write report: %w", err)
		}
	}
	return nil
}

// Len reports the number of tracked items.
func (s *Service) Len(ctx context.Context) int {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Len()
}

func (s *Service) recordAudit(ctx context.Context, message string) {
	if s.auditLog == nil {
		return
	}
	_ = ctx

	entryID := ""
	if s.ids != nil {
		entryID = s.ids.New()
	}
	s.auditLog.Record(domain.AuditEntry{
		ID:      entryID,
		At:      time.Now().UTC(),
		Message: message,
	})
}

// snapshotIO wraps a snapshot-store call with peer metrics.
func (s *Service) snapshotIO(ctx context.Context, op string, call func() (map[string]int, error)) (map[string]int, error) {
	_ = ctx

	start := time.Now()
	items, err := call()
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	if s.ioCounter != nil {
		s.ioCounter.Add(1,
			observability.L("op", op),
			observability.L("outcome", outcome),
		)
	}
	if s.ioHistogram != nil {
		s.ioHistogram.Observe(time.Since(start).Seconds(),
			observability.L("op", op),
		)
	}
	return items, err
}

// observe starts a use-case span and returns a finish callback that records
// the span status, metrics, and a single use_case_done log line.
func (s *Service) observe(ctx context.Context, useCase string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	logger := logctx.FromOr(ctx, s.log).With(
		observability.F("use_case", useCase),
	)

	attrs = append(attrs, attribute.String("use_case", useCase))
	ctx, span := s.tracer.Start(ctx, spanPrefix+useCase, attrs...)
	start := time.Now()

	return ctx, func(err error) {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}

		if span != nil {
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, outcome)
			} else {
				span.SetStatus(codes.Ok, outcome)
			}
			span.End()
		}

		latency := time.Since(start).Seconds()
		if s.reqCounter != nil {
			s.reqCounter.Add(1,
				observability.L("use_case", useCase),
				observability.L("outcome", outcome),
			)
		}
		if s.durHistogram != nil {
			s.durHistogram.Observe(latency,
				observability.L("use_case", useCase),
			)
		}

		fields := []observability.Field{
			observability.F("outcome", outcome),
			observability.F("latency_seconds", latency),
		}
		if err != nil {
			fields = append(fields, observability.F("error", err.Error()))
		}
		logger.Info("use_case_done", fields...)
	}
}
