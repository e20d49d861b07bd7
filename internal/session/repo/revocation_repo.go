package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// RevocationRepo persists jtis of signed-out tokens so the verification gate
// can reject them before natural expiry. Rows become dead weight once the
// token would have expired anyway; PurgeExpired clears them.
type RevocationRepo struct {
	db *sqlx.DB
}

func NewRevocationRepo(db *sqlx.DB) *RevocationRepo {
	return &RevocationRepo{db: db}
}

// EnsureTable creates the revoked_tokens table if not exists (idempotent).
func (r *RevocationRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS revoked_tokens (
  jti TEXT PRIMARY KEY,
  user_id BIGINT NOT NULL,
  expires_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_revoked_tokens_expires_at ON revoked_tokens(expires_at);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// Revoke records a jti. Revoking the same token twice is a no-op.
func (r *RevocationRepo) Revoke(ctx context.Context, jti string, userID int64, expiresAt time.Time) error {
	const q = `INSERT INTO revoked_tokens (jti, user_id, expires_at)
		VALUES ($1, $2, $3) ON CONFLICT (jti) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, q, jti, userID, expiresAt); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether the jti has been signed out.
func (r *RevocationRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	const q = `SELECT 1 FROM revoked_tokens WHERE jti = $1`
	var one int
	if err := r.db.GetContext(ctx, &one, q, jti); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check revocation: %w", err)
	}
	return true, nil
}

// PurgeExpired deletes revocations whose tokens have expired on their own.
func (r *RevocationRepo) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM revoked_tokens WHERE expires_at < NOW()`)
	if err != nil {
		return 0, fmt.Errorf("purge revocations: %w", err)
	}
	return res.RowsAffected()
}
