package repo

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*AuditRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewAuditRepo(sqlx.NewDb(db, "sqlmock")), mock
}

func TestAppend(t *testing.T) {
	t.Run("with user id", func(t *testing.T) {
		r, mock := newMockRepo(t)
		id := int64(7)
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO audit_logs`)).
			WithArgs(sqlmock.AnyArg(), id, "signed in").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, r.Append(context.Background(), &id, "signed in"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nil user id for unknown account", func(t *testing.T) {
		r, mock := newMockRepo(t)
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO audit_logs`)).
			WithArgs(sqlmock.AnyArg(), nil, "failed sign-in attempt for ghost@x.com").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, r.Append(context.Background(), nil, "failed sign-in attempt for ghost@x.com"))
	})
}

func TestList_NewestFirst(t *testing.T) {
	r, mock := newMockRepo(t)
	now := time.Now()
	uid := int64(7)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, action, created_at FROM audit_logs`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "action", "created_at"}).
			AddRow("2", uid, "signed out", now).
			AddRow("1", uid, "signed in", now.Add(-time.Minute)))

	entries, err := r.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "signed out", entries[0].Action)
	require.NotNil(t, entries[0].UserID)
	assert.Equal(t, int64(7), *entries[0].UserID)
}
