package audit

import (
	"context"
	"database/sql"
	"errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS console_audit_logs (
	id             TEXT PRIMARY KEY,
	request_id     TEXT NOT NULL DEFAULT '',
	site           TEXT NOT NULL DEFAULT '',
	actor          TEXT NOT NULL,
	actor_name     TEXT NOT NULL DEFAULT '',
	role           TEXT NOT NULL,
	action         TEXT NOT NULL,
	resource_type  TEXT NOT NULL,
	resource_id    TEXT NOT NULL DEFAULT '',
	metadata       JSONB,
	payload_digest TEXT NOT NULL DEFAULT '',
	ip             TEXT NOT NULL DEFAULT '',
	user_agent     TEXT NOT NULL DEFAULT '',
	created_at     TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS console_audit_logs_resource_idx ON console_audit_logs (resource_type, resource_id, created_at DESC)`

// Repository writes audit entries to Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository constructs an audit repository. A nil db returns nil.
func NewRepository(db *sql.DB) *Repository {
	if db == nil {
		return nil
	}
	return &Repository{db: db}
}

// EnsureSchema creates the audit table when it is missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if r == nil || r.db == nil {
		return errors.New("audit repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

// Log writes an audit entry.
func (r *Repository) Log(ctx context.Context, entry Entry) error {
	if r == nil || r.db == nil {
		return errors.New("audit repo: nil db")
	}
	entry = prepare(entry)

	var metadata any
	if len(entry.Metadata) > 0 {
		metadata = string(entry.Metadata)
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO console_audit_logs (
	id, request_id, site, actor, actor_name, role, action, resource_type, resource_id,
	metadata, payload_digest, ip, user_agent, created_at
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14
)`, entry.ID, entry.RequestID, entry.Site, entry.Actor, entry.ActorName, entry.Role, string(entry.Action),
		entry.ResourceType, entry.ResourceID, metadata, entry.PayloadDigest, entry.IP, entry.UserAgent, entry.CreatedAt)
	return err
}
