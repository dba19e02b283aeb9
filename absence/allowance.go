/*
allowance.go - Annual allowance accounting

PURPOSE:
  Reports how much of an employee's annual absence-day allowance the
  current year's holiday requests have consumed. Uses decimal arithmetic
  so the utilization percentage never picks up floating-point noise.
*/
package absence

import (
	"context"

	"github.com/shopspring/decimal"
)

// AllowanceSummary is the user-facing view of an employee's allowance.
type AllowanceSummary struct {
	Allowed   decimal.Decimal
	Used      decimal.Decimal
	Remaining decimal.Decimal

	// Utilization is Used/Allowed as a percentage, rounded to one decimal
	// place. Zero when no allowance is configured.
	Utilization decimal.Decimal
}

// AllowanceFor summarizes the employee's holiday-day usage for the current
// calendar year against their allowance.
func (l *Lifecycle) AllowanceFor(ctx context.Context, id EmployeeID) (AllowanceSummary, error) {
	emp, err := l.Store.GetEmployee(ctx, id)
	if err != nil {
		return AllowanceSummary{}, err
	}

	window := YearOf(l.Clock.Now())
	used, err := l.Store.SumChargeableDays(ctx, id, window, ReasonHoliday)
	if err != nil {
		return AllowanceSummary{}, err
	}

	return NewAllowanceSummary(emp.DaysAllowed, used), nil
}

// NewAllowanceSummary builds the summary from raw day counts.
func NewAllowanceSummary(allowed, used int) AllowanceSummary {
	a := decimal.NewFromInt(int64(allowed))
	u := decimal.NewFromInt(int64(used))

	utilization := decimal.Zero
	if a.IsPositive() {
		utilization = u.Div(a).Mul(decimal.NewFromInt(100)).Round(1)
	}

	return AllowanceSummary{
		Allowed:     a,
		Used:        u,
		Remaining:   a.Sub(u),
		Utilization: utilization,
	}
}
