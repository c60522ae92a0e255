package models

import (
	"strings"
	"time"
)

// AutoReportMarker prefixes system-generated daily report descriptions.
const AutoReportMarker = "[AUTO-REPORT]"

// SystemStaff is the staff identity recorded on generated reports.
const SystemStaff = "system"

// DailyLog is a shift note or a materialized daily report.
type DailyLog struct {
	ID          int64     `json:"id" db:"id"`
	LogDate     string    `json:"log_date" db:"log_date"` // YYYY-MM-DD
	Description string    `json:"description" db:"description"`
	StaffEmail  *string   `json:"staff_email,omitempty" db:"staff_email"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// IsAutoReport reports whether the row was generated by report materialization.
func (l *DailyLog) IsAutoReport() bool {
	return strings.HasPrefix(l.Description, AutoReportMarker)
}
