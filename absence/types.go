/*
Package absence provides the core absence lifecycle and eligibility engine.

PURPOSE:
  This package contains the decision logic for employee absence requests:
  the state machine driving a request from creation to a terminal state,
  the business-day calculator that converts a date range into a chargeable
  day count, the authorization rules deciding who may act on a request, and
  the Bradford Factor absence-rating computation.

KEY CONCEPTS IN THIS FILE (types.go):
  - Role: who an actor is (Employee, Manager, Superuser)
  - Reason: why the absence is taken (Holiday, Sickness, Compassionate, Other)
  - State: where a request is in its lifecycle
  - Employee / Request: the two entities the engine operates on

DESIGN PRINCIPLES:
  1. Purity: calculators and predicates take all inputs explicitly; no
     hidden clocks, no global selection state
  2. Closed enums: Role and Reason are exhaustively switched; there are no
     magic integer constants
  3. Type Safety: strong typing for IDs prevents mixing employee/request IDs
  4. Derived data: a request's chargeable-day count is always computed from
     its dates and the holiday calendar, never supplied by the requester

SEE ALSO:
  - lifecycle.go: state transitions and orchestration
  - policy.go: authorization predicates
  - workdays.go: chargeable-day counting
  - rating.go: Bradford Factor
*/
package absence

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type RequestID string

// NewEmployeeID returns a fresh unique employee identifier.
func NewEmployeeID() EmployeeID { return EmployeeID(uuid.NewString()) }

// NewRequestID returns a fresh unique request identifier.
func NewRequestID() RequestID { return RequestID(uuid.NewString()) }

// =============================================================================
// ROLE - Who an actor is
// =============================================================================

type Role string

const (
	RoleEmployee  Role = "employee"
	RoleManager   Role = "manager"
	RoleSuperuser Role = "superuser"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleManager, RoleSuperuser:
		return true
	}
	return false
}

// CanModerate reports whether the role may approve, deny, or cancel any
// request. Only managers and superusers moderate.
func (r Role) CanModerate() bool {
	return r == RoleManager || r == RoleSuperuser
}

// =============================================================================
// REASON - Closed sum type for absence categories
// =============================================================================

type Reason string

const (
	ReasonHoliday       Reason = "holiday"
	ReasonSickness      Reason = "sickness"
	ReasonCompassionate Reason = "compassionate"
	ReasonOther         Reason = "other"
)

// AllReasons lists every absence category.
func AllReasons() []Reason {
	return []Reason{ReasonHoliday, ReasonSickness, ReasonCompassionate, ReasonOther}
}

// Valid reports whether r is one of the known reasons.
func (r Reason) Valid() bool {
	switch r {
	case ReasonHoliday, ReasonSickness, ReasonCompassionate, ReasonOther:
		return true
	}
	return false
}

// RequiresApproval reports whether a request with this reason must pass
// through manager approval. Sickness is auto-accepted on submission.
func (r Reason) RequiresApproval() bool {
	return r != ReasonSickness
}

// =============================================================================
// STATE - Request lifecycle states
// =============================================================================

type State string

const (
	// StateDraft is an in-memory request that has not been submitted.
	StateDraft State = "draft"

	// StatePendingApproval is a submitted request awaiting a moderator.
	// Only reachable for reasons that require approval.
	StatePendingApproval State = "pending_approval"

	// Terminal states. Denied and cancelled requests are removed from
	// storage entirely; only approved requests are retained.
	StateApproved  State = "approved"
	StateDenied    State = "denied"
	StateCancelled State = "cancelled"
)

// IsTerminal reports whether no further transitions are permitted.
func (s State) IsTerminal() bool {
	return s == StateApproved || s == StateDenied || s == StateCancelled
}

// =============================================================================
// EMPLOYEE
// =============================================================================

// Employee is an organization member who owns absence requests.
// AbsenceRating and AbsenceCount are maintained by the rating refresh,
// not set by callers.
type Employee struct {
	ID        EmployeeID
	Name      string
	JobTitle  string
	Email     string
	Telephone string
	Role      Role

	// DaysAllowed is the annual absence-day allowance.
	DaysAllowed int

	// AbsenceRating is the employee's current Bradford Factor score.
	AbsenceRating int

	// AbsenceCount is the number of sickness spells in the rating window.
	AbsenceCount int

	// Version is the optimistic-concurrency token. Zero means unsaved.
	Version int64

	CreatedAt time.Time
}

// DefaultDaysAllowed is the allowance granted to every new employee.
const DefaultDaysAllowed = 25

// NewEmployee creates an employee with the sign-up defaults: the given
// role (usually RoleEmployee), a 25-day allowance, and a zeroed rating.
func NewEmployee(name, jobTitle, email string, role Role) *Employee {
	return &Employee{
		ID:          NewEmployeeID(),
		Name:        name,
		JobTitle:    jobTitle,
		Email:       email,
		Role:        role,
		DaysAllowed: DefaultDaysAllowed,
	}
}

// =============================================================================
// REQUEST
// =============================================================================

// Request is a single absence request. EmployeeID is immutable after
// creation; ChargeableDays is derived at submission time.
type Request struct {
	ID         RequestID
	EmployeeID EmployeeID
	Reason     Reason
	Start      Date
	End        Date

	// ChargeableDays is computed from (Start, End, holiday calendar) when
	// the request is submitted. It is never taken from the requester.
	ChargeableDays int

	State    State
	Approved bool

	// Version is the optimistic-concurrency token. Zero means unsaved.
	Version int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OwnedBy reports whether the request belongs to the given employee.
func (r *Request) OwnedBy(id EmployeeID) bool {
	return r.EmployeeID == id
}
