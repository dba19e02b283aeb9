package absence

// =============================================================================
// HOLIDAY CALENDAR - Organization-wide non-working dates
// =============================================================================

// Holiday is a single calendar date marked non-working for all employees.
type Holiday struct {
	ID   string
	Date Date
	Name string
}

// HolidayCalendar answers whether a date is an organization-wide holiday.
// Implementations must be safe for concurrent readers.
type HolidayCalendar interface {
	IsHoliday(d Date) bool
}

// SetCalendar is a HolidayCalendar backed by a set of dates. The zero value
// (nil map) is a valid calendar with no holidays.
type SetCalendar map[Date]struct{}

// NewSetCalendar builds a calendar from individual dates.
func NewSetCalendar(dates ...Date) SetCalendar {
	c := make(SetCalendar, len(dates))
	for _, d := range dates {
		c[d] = struct{}{}
	}
	return c
}

// CalendarOf builds a calendar from stored holidays.
func CalendarOf(holidays []Holiday) SetCalendar {
	c := make(SetCalendar, len(holidays))
	for _, h := range holidays {
		c[h.Date] = struct{}{}
	}
	return c
}

func (c SetCalendar) IsHoliday(d Date) bool {
	_, ok := c[d]
	return ok
}
