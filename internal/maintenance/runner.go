// Package maintenance runs the idempotent background jobs: the archival sweep
// and daily report materialization.
package maintenance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auto_service_backend/internal/metrics"
	"auto_service_backend/internal/models"
	"auto_service_backend/internal/services"
	"auto_service_backend/internal/timeutil"
	"auto_service_backend/pkg/utils"
)

const (
	JobArchiveSweep = "archive_sweep"
	JobDailyReports = "daily_reports"
)

// OrderStore is the order access the jobs need.
type OrderStore interface {
	GetArchiveInfo(ctx context.Context) ([]models.ArchiveInfo, error)
	ArchiveOrders(ctx context.Context, orderIDs []int64, at time.Time) (int64, error)
	GetOrders(ctx context.Context, filters models.OrderFilters) ([]models.Order, error)
}

// LogStore writes report rows and tells which dates already have one.
type LogStore interface {
	CreateLog(ctx context.Context, entry *models.DailyLog) (int64, error)
	GetAutoReportDates(ctx context.Context) (map[string]bool, error)
}

// RunStore keeps the last local date each job ran on.
type RunStore interface {
	LastRun(ctx context.Context, job string) (string, error)
	MarkRun(ctx context.Context, job, date string) error
}

// ReportExporter copies a materialized report somewhere outside the database.
type ReportExporter interface {
	ExportDailyReport(ctx context.Context, summary models.DaySummary, orders []models.Order) error
}

type SweepResult struct {
	Skipped       bool  `json:"skipped"`
	ArchivedCount int64 `json:"archived_count"`
}

type ReportResult struct {
	Skipped bool     `json:"skipped"`
	Dates   []string `json:"dates"`
}

type RunResult struct {
	Archive SweepResult  `json:"archive"`
	Reports ReportResult `json:"reports"`
}

// Runner executes the maintenance jobs. Each job runs at most once per local
// day unless forced.
type Runner struct {
	orders   OrderStore
	logs     LogStore
	runs     RunStore
	exporter ReportExporter
	now      func() time.Time
}

func NewRunner(orders OrderStore, logs LogStore, runs RunStore) *Runner {
	return &Runner{orders: orders, logs: logs, runs: runs, now: timeutil.Now}
}

// WithExporter sets an exporter for materialized reports.
func (r *Runner) WithExporter(e ReportExporter) *Runner {
	r.exporter = e
	return r
}

func (r *Runner) ranToday(ctx context.Context, job, today string) (bool, error) {
	last, err := r.runs.LastRun(ctx, job)
	if err != nil {
		return false, fmt.Errorf("reading last %s run: %w", job, err)
	}
	return last == today, nil
}

func (r *Runner) fail(job string, err error) error {
	metrics.MaintenanceFailuresTotal.WithLabelValues(job).Inc()
	return err
}

// ArchiveSweep archives every active order created before today.
func (r *Runner) ArchiveSweep(ctx context.Context, force bool) (SweepResult, error) {
	now := r.now()
	today := timeutil.DateKey(now)

	if !force {
		done, err := r.ranToday(ctx, JobArchiveSweep, today)
		if err != nil {
			return SweepResult{}, r.fail(JobArchiveSweep, err)
		}
		if done {
			return SweepResult{Skipped: true}, nil
		}
	}

	infos, err := r.orders.GetArchiveInfo(ctx)
	if err != nil {
		return SweepResult{}, r.fail(JobArchiveSweep, fmt.Errorf("loading orders: %w", err))
	}
	var ids []int64
	for _, info := range infos {
		if services.ArchiveDue(info, now) {
			ids = append(ids, info.ID)
		}
	}

	var res SweepResult
	if len(ids) > 0 {
		n, err := r.orders.ArchiveOrders(ctx, ids, now)
		if err != nil {
			return SweepResult{}, r.fail(JobArchiveSweep, fmt.Errorf("archiving orders: %w", err))
		}
		res.ArchivedCount = n
		metrics.OrdersArchivedTotal.WithLabelValues("sweep").Add(float64(n))
	}

	if err := r.runs.MarkRun(ctx, JobArchiveSweep, today); err != nil {
		return res, r.fail(JobArchiveSweep, fmt.Errorf("marking run: %w", err))
	}
	if res.ArchivedCount > 0 {
		utils.LogInfo("Archived past orders", map[string]interface{}{"count": res.ArchivedCount})
	}
	return res, nil
}

// MaterializeReports writes one report log for every past day that has orders
// and no report yet. Existing reports are never rewritten.
func (r *Runner) MaterializeReports(ctx context.Context, force bool) (ReportResult, error) {
	now := r.now()
	today := timeutil.DateKey(now)
	res := ReportResult{Dates: []string{}}

	if !force {
		done, err := r.ranToday(ctx, JobDailyReports, today)
		if err != nil {
			return res, r.fail(JobDailyReports, err)
		}
		if done {
			res.Skipped = true
			return res, nil
		}
	}

	yesterdayEnd := timeutil.StartOfDay(now).Add(-time.Nanosecond)
	orders, err := r.orders.GetOrders(ctx, models.OrderFilters{To: &yesterdayEnd})
	if err != nil {
		return res, r.fail(JobDailyReports, fmt.Errorf("loading orders: %w", err))
	}
	existing, err := r.logs.GetAutoReportDates(ctx)
	if err != nil {
		return res, r.fail(JobDailyReports, fmt.Errorf("loading report dates: %w", err))
	}

	groups := services.GroupByLocalDate(orders)
	staff := models.SystemStaff
	for _, date := range services.SortedDates(groups) {
		if date >= today || existing[date] {
			continue
		}
		summary := services.SummarizeDay(date, groups[date])
		entry := &models.DailyLog{
			LogDate:     date,
			Description: services.FormatAutoReport(summary),
			StaffEmail:  &staff,
		}
		if _, err := r.logs.CreateLog(ctx, entry); err != nil {
			return res, r.fail(JobDailyReports, fmt.Errorf("saving report for %s: %w", date, err))
		}
		res.Dates = append(res.Dates, date)
		metrics.DailyReportsMaterializedTotal.Inc()

		if r.exporter != nil {
			if err := r.exporter.ExportDailyReport(ctx, summary, groups[date]); err != nil {
				utils.LogError(err, "Daily report export failed", map[string]interface{}{"date": date})
			}
		}
	}

	if err := r.runs.MarkRun(ctx, JobDailyReports, today); err != nil {
		return res, r.fail(JobDailyReports, fmt.Errorf("marking run: %w", err))
	}
	if len(res.Dates) > 0 {
		utils.LogInfo("Materialized daily reports", map[string]interface{}{"dates": res.Dates})
	}
	return res, nil
}

// RunAll runs the sweep and then report materialization. A sweep failure does
// not stop the reports.
func (r *Runner) RunAll(ctx context.Context, force bool) (RunResult, error) {
	var out RunResult
	var errs []error

	sweep, err := r.ArchiveSweep(ctx, force)
	if err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", JobArchiveSweep, err))
	}
	out.Archive = sweep

	reports, err := r.MaterializeReports(ctx, force)
	if err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", JobDailyReports, err))
	}
	out.Reports = reports

	return out, errors.Join(errs...)
}
