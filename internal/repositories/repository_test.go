package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newMockDB returns a sqlx handle over sqlmock. Unmet expectations fail the test.
func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return sqlx.NewDb(db, "postgres"), mock
}

func TestWrapDBError(t *testing.T) {
	assert.Nil(t, wrapDBError(nil, "x"))
	assert.ErrorIs(t, wrapDBError(sql.ErrNoRows, "x"), ErrNotFound)
	assert.ErrorIs(t, wrapDBError(&pq.Error{Code: "23505", Message: "dup"}, "x"), ErrDuplicateKey)
	assert.ErrorIs(t, wrapDBError(&pq.Error{Code: "23503", Message: "fk"}, "x"), ErrForeignKey)

	err := wrapDBError(errors.New("connection reset"), "querying orders")
	assert.ErrorIs(t, err, ErrDatabaseError)
	assert.Contains(t, err.Error(), "querying orders: connection reset")
}

func TestMaintenanceRepository(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMaintenanceRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT to_char\(run_date, 'YYYY-MM-DD'\) FROM maintenance_runs WHERE job = \$1`).
		WithArgs("archive_sweep").
		WillReturnRows(sqlmock.NewRows([]string{"to_char"}))
	last, err := repo.LastRun(ctx, "archive_sweep")
	require.NoError(t, err)
	assert.Empty(t, last, "never ran")

	mock.ExpectExec(`INSERT INTO maintenance_runs .* ON CONFLICT \(job\) DO UPDATE`).
		WithArgs("archive_sweep", "2026-03-10").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.MarkRun(ctx, "archive_sweep", "2026-03-10"))
}
