package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"auto_service_backend/internal/models"
)

// DailyLogRepository stores shift notes and materialized daily reports.
type DailyLogRepository interface {
	CreateLog(ctx context.Context, entry *models.DailyLog) (int64, error)
	GetLogs(ctx context.Context, fromDate, toDate string) ([]models.DailyLog, error)
	DeleteLog(ctx context.Context, id int64) error
	// GetAutoReportDates returns the dates that already carry a generated report.
	GetAutoReportDates(ctx context.Context) (map[string]bool, error)
}

type dailyLogRepository struct {
	db *sqlx.DB
}

func NewDailyLogRepository(db *sqlx.DB) DailyLogRepository {
	return &dailyLogRepository{db: db}
}

const dailyLogColumns = `id, to_char(log_date, 'YYYY-MM-DD') AS log_date, description, staff_email, created_at`

func (r *dailyLogRepository) CreateLog(ctx context.Context, entry *models.DailyLog) (int64, error) {
	query := `INSERT INTO daily_logs (log_date, description, staff_email)
	          VALUES ($1::date, $2, $3)
	          RETURNING id, created_at`
	err := r.db.QueryRowxContext(ctx, query, entry.LogDate, entry.Description, entry.StaffEmail).
		Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return 0, wrapDBError(err, "creating daily log")
	}
	return entry.ID, nil
}

// GetLogs lists logs newest first. Empty bounds are open.
func (r *dailyLogRepository) GetLogs(ctx context.Context, fromDate, toDate string) ([]models.DailyLog, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + dailyLogColumns + ` FROM daily_logs`)

	var conditions []string
	var args []interface{}
	if fromDate != "" {
		args = append(args, fromDate)
		conditions = append(conditions, fmt.Sprintf("log_date >= $%d::date", len(args)))
	}
	if toDate != "" {
		args = append(args, toDate)
		conditions = append(conditions, fmt.Sprintf("log_date <= $%d::date", len(args)))
	}
	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY log_date DESC, id DESC")

	logs := []models.DailyLog{}
	if err := r.db.SelectContext(ctx, &logs, queryBuilder.String(), args...); err != nil {
		return nil, wrapDBError(err, "querying daily logs")
	}
	return logs, nil
}

func (r *dailyLogRepository) DeleteLog(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM daily_logs WHERE id = $1`, id)
	if err != nil {
		return wrapDBError(err, fmt.Sprintf("deleting daily log ID %d", id))
	}
	return expectAffected(result, fmt.Sprintf("deleting daily log ID %d", id))
}

func (r *dailyLogRepository) GetAutoReportDates(ctx context.Context) (map[string]bool, error) {
	var dates []string
	err := r.db.SelectContext(ctx, &dates,
		`SELECT DISTINCT to_char(log_date, 'YYYY-MM-DD') FROM daily_logs WHERE description LIKE $1`,
		models.AutoReportMarker+"%")
	if err != nil {
		return nil, wrapDBError(err, "querying report dates")
	}
	out := make(map[string]bool, len(dates))
	for _, d := range dates {
		out[d] = true
	}
	return out, nil
}
