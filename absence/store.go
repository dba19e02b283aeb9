/*
store.go - Collaborator interfaces consumed by the engine

PURPOSE:
  Defines the boundary between the decision logic and its collaborators:
  persistence (DataStore), outbound notification (Notifier), and the
  clock. Implementations live elsewhere:

    absence/store:  in-memory DataStore for tests and development
    store/sqlite:   production SQLite DataStore
    notify:         SMTP and log-backed Notifiers

CONTRACTS:
  - History queries over an empty result set return zero values, never an
    error. "Not found" is reserved for direct entity lookups.
  - SaveRequest/DeleteRequest/SaveEmployee are compare-and-swap writes
    keyed on the entity's Version; a lost race yields a ConflictError.
    Two concurrent approvals of the same request therefore resolve to
    exactly one winner.
  - Notifier delivery is best-effort. The lifecycle logs failures and
    commits the transition regardless.
*/
package absence

import (
	"context"
	"time"
)

// =============================================================================
// DATA STORE
// =============================================================================

// DataStore persists employees, requests, and the holiday table.
//
// Version semantics: an entity with Version 0 is inserted and its Version
// set to 1. Otherwise the write succeeds only when the stored version
// matches, and the version is incremented. A mismatch returns a
// ConflictError; a missing row returns a NotFoundError.
type DataStore interface {
	// FindHolidays returns every organization-wide non-working date.
	FindHolidays(ctx context.Context) ([]Holiday, error)

	// FindAbsences returns the employee's requests with the given reason
	// whose dates overlap the window (Period.Overlaps semantics).
	FindAbsences(ctx context.Context, employee EmployeeID, window Period, reason Reason) ([]Request, error)

	// SumChargeableDays totals ChargeableDays over FindAbsences' result.
	// Zero when there are none.
	SumChargeableDays(ctx context.Context, employee EmployeeID, window Period, reason Reason) (int, error)

	// CountAbsences counts FindAbsences' result. Zero when there are none.
	CountAbsences(ctx context.Context, employee EmployeeID, window Period, reason Reason) (int, error)

	GetEmployee(ctx context.Context, id EmployeeID) (*Employee, error)
	SaveEmployee(ctx context.Context, e *Employee) error
	ListEmployees(ctx context.Context) ([]Employee, error)

	GetRequest(ctx context.Context, id RequestID) (*Request, error)
	SaveRequest(ctx context.Context, r *Request) error
	DeleteRequest(ctx context.Context, r *Request) error
	ListRequests(ctx context.Context) ([]Request, error)
}

// HolidayStore extends DataStore with holiday administration, used by the
// presentation layer but not by the lifecycle itself.
type HolidayStore interface {
	DataStore

	SaveHoliday(ctx context.Context, h Holiday) error
	DeleteHoliday(ctx context.Context, id string) error
}

// =============================================================================
// NOTIFIER
// =============================================================================

// Notifier delivers lifecycle notifications. Failures must be returned,
// not swallowed; the caller decides that delivery is best-effort.
type Notifier interface {
	// NotifyApproved tells the owner their request was approved.
	NotifyApproved(ctx context.Context, owner Employee, req Request) error

	// NotifyDenied tells the owner their request was denied.
	NotifyDenied(ctx context.Context, owner Employee, req Request) error

	// NotifySubmitted tells the moderators a new request needs action.
	NotifySubmitted(ctx context.Context, moderators []Employee, owner Employee, req Request) error
}

// =============================================================================
// CLOCK
// =============================================================================

// Clock supplies the current instant for cancellation-deadline checks and
// rating windows. Injectable for deterministic tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
