package audit

import (
	"context"
	"database/sql"
	"fmt"
)

const createAuditTable = `
CREATE TABLE IF NOT EXISTS enrollment_audit (
	id                TEXT PRIMARY KEY,
	event_type        TEXT NOT NULL,
	activity_name     TEXT NOT NULL,
	participant_email TEXT NOT NULL,
	created_at        TIMESTAMPTZ NOT NULL
)`

// PostgresRecorder appends events to the enrollment_audit table.
type PostgresRecorder struct {
	db *sql.DB
}

func NewPostgresRecorder(db *sql.DB) *PostgresRecorder {
	return &PostgresRecorder{db: db}
}

// Migrate creates the audit table if it does not exist.
func (r *PostgresRecorder) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createAuditTable); err != nil {
		return fmt.Errorf("create enrollment_audit: %w", err)
	}
	return nil
}

func (r *PostgresRecorder) Record(ctx context.Context, event Event) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO enrollment_audit (id, event_type, activity_name, participant_email, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		event.ID,
		string(event.Type),
		event.Activity,
		event.Email,
		event.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("insert enrollment_audit: %w", err)
	}
	return nil
}
