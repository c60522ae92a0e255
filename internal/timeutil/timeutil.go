package timeutil

import (
	"time"
)

// Local is the shop's wall-clock location. Day boundaries for filters,
// archival and daily reports are all computed in it.
var Local = time.Local

// SetLocation switches the shop timezone. Unknown names keep the current one.
func SetLocation(name string) error {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return err
	}
	Local = loc
	return nil
}

// Now returns the current time in the shop timezone.
func Now() time.Time {
	return time.Now().In(Local)
}

// StartOfDay returns 00:00:00.000 of t's local day.
func StartOfDay(t time.Time) time.Time {
	l := t.In(Local)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, Local)
}

// EndOfDay returns the last representable instant of t's local day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// DateKey formats t's local calendar date as YYYY-MM-DD.
func DateKey(t time.Time) string {
	return t.In(Local).Format(DateLayout)
}

// SameDay reports whether a and b fall on the same local calendar day.
func SameDay(a, b time.Time) bool {
	return DateKey(a) == DateKey(b)
}

// ParseDate parses a YYYY-MM-DD value as a local date.
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, Local)
}

const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
	DisplayDate    = "02.01.2006"
	DisplayTime    = "02.01.2006 15:04"
)
