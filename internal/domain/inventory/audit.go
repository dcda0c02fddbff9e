package inventory

import "time"

// AuditEntry is one human-readable record of a stock mutation.
type AuditEntry struct {
	ID      string
	At      time.Time
	Message string
}

// AuditLog is an append-only caller-supplied sink for audit entries.
// Implementations must not fail; recording is best effort.
type AuditLog interface {
	Record(e AuditEntry)
}
