package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"auto_service_backend/internal/models"
	"auto_service_backend/internal/money"
	"auto_service_backend/internal/repositories"
	"auto_service_backend/internal/timeutil"
)

var ErrLogNotFound = errors.New("daily log not found")

type CreateLogRequest struct {
	LogDate     string `json:"log_date"`
	Description string `json:"description" binding:"required"`
}

// LogQuery narrows a log listing. Kind is "notes", "reports" or empty for both.
type LogQuery struct {
	FromDate string
	ToDate   string
	Kind     string
}

type DailyLogService interface {
	CreateLog(ctx context.Context, req CreateLogRequest, staffEmail string) (*models.DailyLog, error)
	GetLogs(ctx context.Context, q LogQuery) ([]models.DailyLog, error)
	DeleteLog(ctx context.Context, id int64) error
}

type dailyLogService struct {
	repo repositories.DailyLogRepository
}

func NewDailyLogService(repo repositories.DailyLogRepository) DailyLogService {
	return &dailyLogService{repo: repo}
}

// FormatAutoReport renders the text stored for a materialized daily report.
func FormatAutoReport(s models.DaySummary) string {
	return fmt.Sprintf("%s Orders: %d | Paid: %d | Revenue: %s | Profit: %s",
		models.AutoReportMarker, s.OrderCount, s.PaidCount, money.FormatEUR(s.Revenue), money.FormatEUR(s.Profit))
}

func (s *dailyLogService) CreateLog(ctx context.Context, req CreateLogRequest, staffEmail string) (*models.DailyLog, error) {
	desc := strings.TrimSpace(req.Description)
	if desc == "" {
		return nil, fmt.Errorf("%w: description cannot be empty", ErrValidation)
	}
	// The marker is reserved for generated reports.
	if strings.HasPrefix(desc, models.AutoReportMarker) {
		return nil, fmt.Errorf("%w: description cannot start with %s", ErrValidation, models.AutoReportMarker)
	}

	date := strings.TrimSpace(req.LogDate)
	if date == "" {
		date = timeutil.DateKey(timeutil.Now())
	} else if _, err := timeutil.ParseDate(date); err != nil {
		return nil, fmt.Errorf("%w: log_date must be YYYY-MM-DD", ErrValidation)
	}

	entry := &models.DailyLog{LogDate: date, Description: desc}
	if email := strings.TrimSpace(staffEmail); email != "" {
		entry.StaffEmail = &email
	}
	if _, err := s.repo.CreateLog(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create daily log: %w", err)
	}
	return entry, nil
}

func (s *dailyLogService) GetLogs(ctx context.Context, q LogQuery) ([]models.DailyLog, error) {
	logs, err := s.repo.GetLogs(ctx, q.FromDate, q.ToDate)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily logs: %w", err)
	}
	if q.Kind == "" {
		return logs, nil
	}
	wantReports := q.Kind == "reports"
	out := make([]models.DailyLog, 0, len(logs))
	for _, l := range logs {
		if l.IsAutoReport() == wantReports {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *dailyLogService) DeleteLog(ctx context.Context, id int64) error {
	if err := s.repo.DeleteLog(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrLogNotFound
		}
		return fmt.Errorf("failed to delete daily log: %w", err)
	}
	return nil
}
