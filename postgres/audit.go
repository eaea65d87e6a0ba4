package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"

	authkern "github.com/kernworks/authkern"
)

// AuditLog appends audit events to an audit_events table. Inserts are
// best-effort: a failed write is logged and dropped, never surfaced to
// the operation that produced the event.
type AuditLog struct {
	db *sql.DB
}

var _ authkern.AuditSink = (*AuditLog)(nil)

// NewAuditLog describes the newauditlog operation and its observable behavior.
//
// NewAuditLog may return an error when input validation, dependency calls, or security checks fail.
// NewAuditLog does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewAuditLog(db *sql.DB) *AuditLog {
	return &AuditLog{db: db}
}

// Emit describes the emit operation and its observable behavior.
//
// Emit may return an error when input validation, dependency calls, or security checks fail.
// Emit does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (a *AuditLog) Emit(ctx context.Context, event authkern.AuditEvent) {
	if a == nil || a.db == nil {
		return
	}

	var metadata []byte
	if len(event.Metadata) > 0 {
		metadata, _ = json.Marshal(event.Metadata)
	}

	_, err := a.db.ExecContext(ctx, `
		insert into audit_events
			(id, occurred_at, event_type, account_id, tenant_id, ip, user_agent, success, error_code, metadata)
		values ($1, $2, $3, nullif($4, ''), nullif($5, ''), $6, $7, $8, nullif($9, ''), $10)
	`,
		event.ID,
		event.Timestamp,
		event.EventType,
		event.AccountID,
		event.TenantID,
		event.IP,
		event.UserAgent,
		event.Success,
		event.Error,
		metadata,
	)
	if err != nil {
		log.Printf("authkern/postgres: audit insert failed: %v", err)
	}
}
