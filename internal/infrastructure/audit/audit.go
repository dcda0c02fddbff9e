package audit

import (
	"sync"

	domain "github.com/Zhima-Mochi/stockroom/internal/domain/inventory"
	"github.com/Zhima-Mochi/stockroom/internal/observability"
)

// MemoryLog is an append-only in-memory audit log. Entries returns a copy so
// callers cannot mutate internal state.
type MemoryLog struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
}

var _ domain.AuditLog = (*MemoryLog)(nil)

func NewMemoryLog() *MemoryLog {
	return &MemoryLog{}
}

func (l *MemoryLog) Record(e domain.AuditEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, e)
}

func (l *MemoryLog) Entries() []domain.AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]domain.AuditEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// ZapLog forwards audit entries to a structured logger.
type ZapLog struct {
	log observability.Logger
}

var _ domain.AuditLog = (*ZapLog)(nil)

func NewZapLog(log observability.Logger) *ZapLog {
	if log == nil {
		log = observability.NopLogger()
	}
	return &ZapLog{log: log.With(observability.F("component", "audit"))}
}

func (l *ZapLog) Record(e domain.AuditEntry) {
	l.log.Info("audit_entry",
		observability.F("entry_id", e.ID),
		observability.F("at", e.At),
		observability.F("message", e.Message),
	)
}
