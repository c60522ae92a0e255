package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// MaintenanceRepository persists the last local date each maintenance job ran.
type MaintenanceRepository interface {
	// LastRun returns "" when the job never ran.
	LastRun(ctx context.Context, job string) (string, error)
	MarkRun(ctx context.Context, job, date string) error
}

type maintenanceRepository struct {
	db *sqlx.DB
}

func NewMaintenanceRepository(db *sqlx.DB) MaintenanceRepository {
	return &maintenanceRepository{db: db}
}

func (r *maintenanceRepository) LastRun(ctx context.Context, job string) (string, error) {
	var date string
	err := r.db.GetContext(ctx, &date,
		`SELECT to_char(run_date, 'YYYY-MM-DD') FROM maintenance_runs WHERE job = $1`, job)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", wrapDBError(err, fmt.Sprintf("reading last run of %s", job))
	}
	return date, nil
}

func (r *maintenanceRepository) MarkRun(ctx context.Context, job, date string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO maintenance_runs (job, run_date, updated_at) VALUES ($1, $2::date, NOW())
		 ON CONFLICT (job) DO UPDATE SET run_date = EXCLUDED.run_date, updated_at = NOW()`,
		job, date)
	if err != nil {
		return wrapDBError(err, fmt.Sprintf("marking run of %s", job))
	}
	return nil
}
