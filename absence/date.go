package absence

import (
	"fmt"
	"time"
)

// =============================================================================
// DATE - Day-granularity calendar date (absences are whole days)
// =============================================================================

// Date is a calendar date normalized to midnight UTC. Absence requests and
// holidays operate at day granularity only.
type Date struct {
	t time.Time
}

// NewDate constructs a Date for the given calendar day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", s, err)
	}
	return DateOf(t), nil
}

// Comparison
func (d Date) Before(other Date) bool        { return d.t.Before(other.t) }
func (d Date) After(other Date) bool         { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool         { return d.t.Equal(other.t) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }

// Arithmetic
func (d Date) AddDays(n int) Date  { return Date{t: d.t.AddDate(0, 0, n)} }
func (d Date) AddYears(n int) Date { return Date{t: d.t.AddDate(n, 0, 0)} }

// Properties
func (d Date) Year() int             { return d.t.Year() }
func (d Date) Month() time.Month     { return d.t.Month() }
func (d Date) Day() int              { return d.t.Day() }
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }
func (d Date) IsZero() bool          { return d.t.IsZero() }

// IsWeekend reports whether the date falls on a Saturday or Sunday.
// Weekends are computed, never stored as holidays.
func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// Time returns the date as a midnight-UTC instant.
func (d Date) Time() time.Time { return d.t }

func (d Date) String() string { return d.t.Format("2006-01-02") }

// =============================================================================
// PERIOD - Query window for absence history
// =============================================================================

// Period is a window of calendar time used for absence-history queries.
type Period struct {
	Start Date
	End   Date
}

// YearOf returns the rating window for the instant's calendar year:
// January 1st of that year through January 1st of the next.
func YearOf(t time.Time) Period {
	start := NewDate(t.Year(), time.January, 1)
	return Period{Start: start, End: start.AddYears(1)}
}

// Overlaps reports whether an absence spanning [start, end] falls inside
// the window. A request is in-window when either endpoint lies strictly
// between the window bounds, so a request sitting exactly on a bound is
// excluded. The SQLite overlap clause must use the same comparison.
func (p Period) Overlaps(start, end Date) bool {
	if end.After(p.Start) && end.Before(p.End) {
		return true
	}
	return start.After(p.Start) && start.Before(p.End)
}
