/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Request types carry go-playground/validator struct tags; handlers run
  the validator before touching domain logic.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/smylay/absence-engine/absence"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	JobTitle      string `json:"job_title,omitempty"`
	Email         string `json:"email,omitempty"`
	Telephone     string `json:"telephone,omitempty"`
	Role          string `json:"role"`
	DaysAllowed   int    `json:"days_allowed"`
	AbsenceRating int    `json:"absence_rating"`
	AbsenceCount  int    `json:"absence_count"`
}

func toEmployeeDTO(e absence.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:            string(e.ID),
		Name:          e.Name,
		JobTitle:      e.JobTitle,
		Email:         e.Email,
		Telephone:     e.Telephone,
		Role:          string(e.Role),
		DaysAllowed:   e.DaysAllowed,
		AbsenceRating: e.AbsenceRating,
		AbsenceCount:  e.AbsenceCount,
	}
}

// CreateEmployeeRequest is the sign-up payload. Role defaults to
// "employee"; allowance and rating always start at the sign-up defaults.
type CreateEmployeeRequest struct {
	Name      string `json:"name" validate:"required"`
	JobTitle  string `json:"job_title"`
	Email     string `json:"email" validate:"omitempty,email"`
	Telephone string `json:"telephone"`
	Role      string `json:"role" validate:"omitempty,oneof=employee manager superuser"`
}

// =============================================================================
// HOLIDAYS
// =============================================================================

type HolidayDTO struct {
	ID   string `json:"id"`
	Date string `json:"date"`
	Name string `json:"name"`
}

type CreateHolidayRequest struct {
	Date string `json:"date" validate:"required"`
	Name string `json:"name" validate:"required"`
}

// =============================================================================
// ABSENCES
// =============================================================================

// AbsenceDTO represents an absence request in API responses.
type AbsenceDTO struct {
	ID             string `json:"id"`
	EmployeeID     string `json:"employee_id"`
	Reason         string `json:"reason"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	ChargeableDays int    `json:"chargeable_days"`
	State          string `json:"state"`
	Approved       bool   `json:"approved"`
}

func toAbsenceDTO(r absence.Request) AbsenceDTO {
	return AbsenceDTO{
		ID:             string(r.ID),
		EmployeeID:     string(r.EmployeeID),
		Reason:         string(r.Reason),
		StartDate:      r.Start.String(),
		EndDate:        r.End.String(),
		ChargeableDays: r.ChargeableDays,
		State:          string(r.State),
		Approved:       r.Approved,
	}
}

// SubmitAbsenceRequest is the payload for submitting a new request.
// The chargeable-day count is never accepted from the client.
type SubmitAbsenceRequest struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	Reason     string `json:"reason" validate:"required,oneof=holiday sickness compassionate other"`
	StartDate  string `json:"start_date" validate:"required"`
	EndDate    string `json:"end_date" validate:"required"`
}

// ActionRequest identifies the actor behind an approve/deny/cancel call.
type ActionRequest struct {
	ActorID string `json:"actor_id" validate:"required"`
}

// =============================================================================
// DASHBOARD
// =============================================================================

// TimelineEventDTO is one bar on the dashboard absence timeline. EndDate
// is exclusive (one day past the last day off) so the bar covers the
// final day.
type TimelineEventDTO struct {
	ID           string `json:"id"`
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	StyleClass   string `json:"style_class"`
}

// GaugeDTO is the banded rating meter.
type GaugeDTO struct {
	Value     int   `json:"value"`
	Intervals []int `json:"intervals"`
}

// AllowanceDTO is the annual allowance summary. Values are decimal
// strings to keep the utilization percentage exact.
type AllowanceDTO struct {
	Allowed     string `json:"allowed"`
	Used        string `json:"used"`
	Remaining   string `json:"remaining"`
	Utilization string `json:"utilization"`
}

// DashboardDTO is the per-employee dashboard view.
type DashboardDTO struct {
	Employee  EmployeeDTO  `json:"employee"`
	Gauge     GaugeDTO     `json:"gauge"`
	Allowance AllowanceDTO `json:"allowance"`
}

// =============================================================================
// ERRORS
// =============================================================================

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
