package core

// audit.go records what happened to each session: which file was loaded and
// which pole coordinates were changed. The trail is write-only; sessions are
// never rebuilt from it.

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditAction represents the type of action being audited.
type AuditAction string

const (
	ActionLoad           AuditAction = "load"
	ActionLoadRejected   AuditAction = "load_rejected"
	ActionEditCoordinate AuditAction = "edit_coordinates"
	ActionSettings       AuditAction = "settings_update"
	ActionSessionClose   AuditAction = "session_close"
	ActionSessionExpire  AuditAction = "session_expire"
)

// AuditSeverity represents the severity level of an audit entry.
type AuditSeverity string

const (
	SeverityLow    AuditSeverity = "low"
	SeverityMedium AuditSeverity = "medium"
	SeverityHigh   AuditSeverity = "high"
)

func determineSeverity(action AuditAction) AuditSeverity {
	switch action {
	case ActionEditCoordinate:
		return SeverityHigh
	case ActionLoad, ActionLoadRejected:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// AuditEvent is one entry of the audit trail. Coordinates use pgtype so
// "not applicable" is stored as NULL.
type AuditEvent struct {
	ID           uuid.UUID
	Action       AuditAction
	Severity     AuditSeverity
	SessionID    string
	Source       string
	RowIndex     pgtype.Int4
	OldLatitude  pgtype.Float8
	OldLongitude pgtype.Float8
	NewLatitude  pgtype.Float8
	NewLongitude pgtype.Float8
	Rows         pgtype.Int4
	ValidRows    pgtype.Int4
	Reason       pgtype.Text
	IPAddress    pgtype.Text
	UserAgent    pgtype.Text
	CreatedAt    time.Time
}

// AuditRecorder stores audit events.
type AuditRecorder interface {
	Record(ctx context.Context, ev AuditEvent) error
}

// NopRecorder discards every event. Used when no database is configured.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, AuditEvent) error { return nil }

// newAuditEvent fills the fields every event shares.
func newAuditEvent(ctx context.Context, action AuditAction, sessionID, source string) AuditEvent {
	client := ClientFromContext(ctx)
	return AuditEvent{
		ID:        uuid.New(),
		Action:    action,
		Severity:  determineSeverity(action),
		SessionID: sessionID,
		Source:    source,
		IPAddress: toPgText(client.IPAddress),
		UserAgent: toPgText(client.UserAgent),
		CreatedAt: time.Now().UTC(),
	}
}

const auditSchema = `
CREATE TABLE IF NOT EXISTS pole_audit_log (
    id            UUID PRIMARY KEY,
    action        TEXT NOT NULL,
    severity      TEXT NOT NULL,
    session_id    UUID,
    source        TEXT,
    row_index     INTEGER,
    old_latitude  DOUBLE PRECISION,
    old_longitude DOUBLE PRECISION,
    new_latitude  DOUBLE PRECISION,
    new_longitude DOUBLE PRECISION,
    rows_total    INTEGER,
    rows_valid    INTEGER,
    reason        TEXT,
    ip_address    TEXT,
    user_agent    TEXT,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS pole_audit_log_session_idx ON pole_audit_log (session_id, created_at);
`

const insertAuditEvent = `
INSERT INTO pole_audit_log (
    id, action, severity, session_id, source, row_index,
    old_latitude, old_longitude, new_latitude, new_longitude,
    rows_total, rows_valid, reason, ip_address, user_agent, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

// PgRecorder writes audit events to PostgreSQL.
type PgRecorder struct {
	pool *pgxpool.Pool
}

// NewPgRecorder returns a recorder backed by pool.
func NewPgRecorder(pool *pgxpool.Pool) *PgRecorder {
	return &PgRecorder{pool: pool}
}

// EnsureSchema creates the audit table if it does not exist.
func (r *PgRecorder) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, auditSchema); err != nil {
		return fmt.Errorf("create audit schema: %w", err)
	}
	return nil
}

// Record inserts ev.
func (r *PgRecorder) Record(ctx context.Context, ev AuditEvent) error {
	_, err := r.pool.Exec(ctx, insertAuditEvent,
		ev.ID,
		string(ev.Action),
		string(ev.Severity),
		toPgUUID(ev.SessionID),
		toPgText(ev.Source),
		ev.RowIndex,
		ev.OldLatitude,
		ev.OldLongitude,
		ev.NewLatitude,
		ev.NewLongitude,
		ev.Rows,
		ev.ValidRows,
		ev.Reason,
		ev.IPAddress,
		ev.UserAgent,
		ev.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func toPgText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func toPgInt4(i int) pgtype.Int4 {
	return pgtype.Int4{Int32: int32(i), Valid: true}
}

func toPgUUID(s string) pgtype.UUID {
	parsed, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{}
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}
}
