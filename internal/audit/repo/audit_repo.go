package repo

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/signcore/service-auth-go/internal/audit/entity"
	"github.com/signcore/service-auth-go/pkg/utilities"
)

// AuditRepo appends and lists audit_logs rows. The table is append-only;
// there is deliberately no update or delete here.
type AuditRepo struct {
	db *sqlx.DB
}

func NewAuditRepo(db *sqlx.DB) *AuditRepo { return &AuditRepo{db: db} }

// EnsureTable creates the audit_logs table if not exists (idempotent).
func (r *AuditRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS audit_logs (
  id TEXT PRIMARY KEY,
  user_id BIGINT,
  action TEXT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_audit_logs_user_id ON audit_logs(user_id);
CREATE INDEX IF NOT EXISTS idx_audit_logs_created_at ON audit_logs(created_at);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// Append inserts one entry. The id is a snowflake so entries sort by
// creation order even when timestamps collide.
func (r *AuditRepo) Append(ctx context.Context, userID *int64, action string) error {
	const q = `INSERT INTO audit_logs (id, user_id, action) VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, q, utilities.NewSnowflakeID(), userID, action); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

// List returns all entries, newest first.
func (r *AuditRepo) List(ctx context.Context) ([]*entity.Entry, error) {
	const q = `SELECT id, user_id, action, created_at FROM audit_logs ORDER BY created_at DESC, id DESC`
	var rows []*entity.Entry
	if err := r.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	return rows, nil
}
