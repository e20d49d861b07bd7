package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/signcore/service-auth-go/internal/account/entity"
)

var (
	// ErrNotFound is returned when no account matches the lookup.
	ErrNotFound = errors.New("account not found")
	// ErrDuplicateEmail is returned when an insert or update violates the
	// unique constraint on email. The constraint is the single authority
	// for conflicts; there is no check-then-insert in this repo.
	ErrDuplicateEmail = errors.New("email already exists")
)

const uniqueViolation = pq.ErrorCode("23505")

// AccountRepo provides data access for the accounts table using sqlx.
type AccountRepo struct {
	db *sqlx.DB
}

func NewAccountRepo(db *sqlx.DB) *AccountRepo { return &AccountRepo{db: db} }

// EnsureTable creates the accounts table if not exists (idempotent).
// This is a convenience for early development; prefer migrations in production.
func (r *AccountRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS accounts (
  id BIGSERIAL PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  user_type TEXT NOT NULL CHECK (user_type IN ('user','admin')),
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_accounts_email ON accounts(email);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// Create inserts a new account row and fills in the assigned ID.
func (r *AccountRepo) Create(ctx context.Context, a *entity.Account) (int64, error) {
	const q = `INSERT INTO accounts (name, email, password_hash, user_type)
		VALUES ($1, $2, $3, $4) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, q, a.Name, a.Email, a.PasswordHash, a.UserType).Scan(&a.ID); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return 0, ErrDuplicateEmail
		}
		return 0, fmt.Errorf("insert account: %w", err)
	}
	return a.ID, nil
}

// GetByEmail returns the account matching email exactly, or ErrNotFound.
func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*entity.Account, error) {
	const q = `SELECT id, name, email, password_hash, user_type, created_at, updated_at
		FROM accounts WHERE email = $1`
	var row entity.Account
	if err := r.db.GetContext(ctx, &row, q, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get account by email: %w", err)
	}
	return checkRow(&row)
}

// GetByID fetches a full account row by primary key.
func (r *AccountRepo) GetByID(ctx context.Context, id int64) (*entity.Account, error) {
	const q = `SELECT id, name, email, password_hash, user_type, created_at, updated_at
		FROM accounts WHERE id = $1`
	var row entity.Account
	if err := r.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get account by id: %w", err)
	}
	return checkRow(&row)
}

// UpdateProfile mutates name and email only. Password changes go through a
// different path that does not exist yet.
func (r *AccountRepo) UpdateProfile(ctx context.Context, id int64, name, email string) error {
	const q = `UPDATE accounts SET name=$2, email=$3, updated_at=NOW() WHERE id=$1`
	res, err := r.db.ExecContext(ctx, q, id, name, email)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("update account: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns all accounts ordered by id.
func (r *AccountRepo) List(ctx context.Context) ([]*entity.Account, error) {
	const q = `SELECT id, name, email, password_hash, user_type, created_at, updated_at
		FROM accounts ORDER BY id`
	var rows []*entity.Account
	if err := r.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return rows, nil
}

// checkRow validates the role enum on the way out of the store so a row
// written by anything other than this service cannot smuggle in an
// uncontrolled role string.
func checkRow(a *entity.Account) (*entity.Account, error) {
	if !a.UserType.Valid() {
		return nil, fmt.Errorf("account %d has unknown user_type %q", a.ID, a.UserType)
	}
	return a, nil
}
