/*
workdays.go - Business-day calculator

PURPOSE:
  Converts an inclusive date range into the number of chargeable days:
  the days that count against an employee's allowance. A day is chargeable
  iff it is not a Saturday, not a Sunday, and not an organization holiday.

PURITY:
  CountChargeableDays is deterministic and side-effect free. It is safe to
  call concurrently and to memoize per (start, end, calendar version).

SEE ALSO:
  - calendar.go: HolidayCalendar
  - lifecycle.go: invokes this at submission time
*/
package absence

// CountChargeableDays returns the number of chargeable days in the
// inclusive range [start, end]. Returns a validation error wrapping
// ErrInvalidRange when end precedes start.
func CountChargeableDays(start, end Date, cal HolidayCalendar) (int, error) {
	if start.IsZero() || end.IsZero() {
		return 0, &ValidationError{Field: "dates", Msg: "start and end dates are required"}
	}
	if end.Before(start) {
		return 0, &ValidationError{Field: "end", Msg: "end date before start date", Err: ErrInvalidRange}
	}

	n := 0
	for d := start; d.BeforeOrEqual(end); d = d.AddDays(1) {
		if IsChargeable(d, cal) {
			n++
		}
	}
	return n, nil
}

// IsChargeable reports whether a single date counts against the allowance.
func IsChargeable(d Date, cal HolidayCalendar) bool {
	if d.IsWeekend() {
		return false
	}
	if cal != nil && cal.IsHoliday(d) {
		return false
	}
	return true
}
