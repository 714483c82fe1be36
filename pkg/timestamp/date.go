package timestamp

import (
	"fmt"
	"time"
)

// Date is a calendar date at day granularity. It is produced only by
// the normalizer (or DateOf for already-validated times) so that every
// Date in the system has passed the validity gate.
type Date struct {
	t time.Time
}

// DateOf truncates t to day granularity in UTC.
func DateOf(t time.Time) Date {
	u := t.UTC()
	return Date{t: time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)}
}

// NewDate constructs a Date from calendar components.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Time returns the date as midnight UTC.
func (d Date) Time() time.Time { return d.t }

// Year returns the calendar year.
func (d Date) Year() int { return d.t.Year() }

// IsZero reports whether the date is the zero value.
func (d Date) IsZero() bool { return d.t.IsZero() }

// Before reports whether d is before other.
func (d Date) Before(other Date) bool { return d.t.Before(other.t) }

// Month returns the monthly key this date belongs to.
func (d Date) Month() Month {
	return Month{Year: d.t.Year(), Month: d.t.Month()}
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string { return d.t.Format("2006-01-02") }

// Month is a calendar month key, the grouping unit for all summaries.
type Month struct {
	Year  int
	Month time.Month
}

// String formats the month as YYYY-MM.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Before reports whether m is before other.
func (m Month) Before(other Month) bool {
	if m.Year != other.Year {
		return m.Year < other.Year
	}
	return m.Month < other.Month
}
