/*
handlers.go - HTTP API handlers for the absence tracking system

PURPOSE:
  Exposes the absence engine via REST API. Handles HTTP request/response,
  JSON serialization and validation, and delegates every decision to the
  lifecycle manager and its policies.

ENDPOINTS:
  Employees:
    GET    /api/employees                 List all employees
    POST   /api/employees                 Sign up an employee
    GET    /api/employees/{id}            Get employee details
    GET    /api/employees/{id}/dashboard  Rating gauge + allowance summary

  Holidays:
    GET    /api/holidays                  List organization holidays
    POST   /api/holidays                  Add a holiday
    DELETE /api/holidays/{id}             Remove a holiday

  Absences:
    GET    /api/absences                  List all absence requests
    POST   /api/absences                  Submit a request
    GET    /api/absences/{id}             Get a request
    POST   /api/absences/{id}/approve     Approve (actor in body)
    POST   /api/absences/{id}/deny        Deny (actor in body)
    POST   /api/absences/{id}/cancel      Cancel (actor in body)

  Dashboard:
    GET    /api/timeline                  Timeline bars for all absences

ERROR HANDLING:
  The engine's error taxonomy maps onto HTTP status codes:
  - 400: validation errors
  - 403: authorization errors
  - 404: entity not found
  - 409: concurrent modification lost a race
  - 500: everything else

SECURITY NOTE:
  The actor is taken from the request body; there is no authentication
  layer. Session management is out of scope for this service.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/smylay/absence-engine/absence"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     absence.HolidayStore
	Lifecycle *absence.Lifecycle
	Validate  *validator.Validate
	Log       logrus.FieldLogger
}

// NewHandler creates a handler around the store and lifecycle manager.
func NewHandler(store absence.HolidayStore, lifecycle *absence.Lifecycle, log logrus.FieldLogger) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{
		Store:     store,
		Lifecycle: lifecycle,
		Validate:  validator.New(),
		Log:       log,
	}
}

// decode parses and validates a JSON request body.
func (h *Handler) decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &absence.ValidationError{Field: "body", Msg: "invalid JSON: " + err.Error()}
	}
	if err := h.Validate.Struct(dst); err != nil {
		return &absence.ValidationError{Field: "body", Msg: err.Error()}
	}
	return nil
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		h.error(w, err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateEmployee signs up a new employee with the standard defaults.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := h.decode(r, &req); err != nil {
		h.error(w, err)
		return
	}

	role := absence.RoleEmployee
	if req.Role != "" {
		role = absence.Role(req.Role)
	}

	emp := absence.NewEmployee(req.Name, req.JobTitle, req.Email, role)
	emp.Telephone = req.Telephone

	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		h.error(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(*emp))
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := absence.EmployeeID(chi.URLParam(r, "id"))

	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		h.error(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// GetDashboard returns the employee's rating gauge and allowance summary.
// The rating is refreshed before rendering so the gauge is never stale.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := absence.EmployeeID(chi.URLParam(r, "id"))

	rating, err := h.Lifecycle.RefreshRating(ctx, id)
	if err != nil {
		h.error(w, err)
		return
	}

	emp, err := h.Store.GetEmployee(ctx, id)
	if err != nil {
		h.error(w, err)
		return
	}

	allowance, err := h.Lifecycle.AllowanceFor(ctx, id)
	if err != nil {
		h.error(w, err)
		return
	}

	gauge := absence.GaugeFor(rating)
	writeJSON(w, http.StatusOK, DashboardDTO{
		Employee: toEmployeeDTO(*emp),
		Gauge:    GaugeDTO{Value: gauge.Value, Intervals: gauge.Intervals},
		Allowance: AllowanceDTO{
			Allowed:     allowance.Allowed.String(),
			Used:        allowance.Used.String(),
			Remaining:   allowance.Remaining.String(),
			Utilization: allowance.Utilization.String(),
		},
	})
}

// =============================================================================
// HOLIDAY HANDLERS
// =============================================================================

// ListHolidays returns all organization-wide holidays.
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	holidays, err := h.Store.FindHolidays(r.Context())
	if err != nil {
		h.error(w, err)
		return
	}

	dtos := make([]HolidayDTO, len(holidays))
	for i, hd := range holidays {
		dtos[i] = HolidayDTO{ID: hd.ID, Date: hd.Date.String(), Name: hd.Name}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateHoliday adds an organization-wide non-working date.
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req CreateHolidayRequest
	if err := h.decode(r, &req); err != nil {
		h.error(w, err)
		return
	}

	date, err := absence.ParseDate(req.Date)
	if err != nil {
		h.error(w, &absence.ValidationError{Field: "date", Msg: err.Error()})
		return
	}

	holiday := absence.Holiday{ID: uuid.NewString(), Date: date, Name: req.Name}
	if err := h.Store.SaveHoliday(r.Context(), holiday); err != nil {
		h.error(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, HolidayDTO{ID: holiday.ID, Date: holiday.Date.String(), Name: holiday.Name})
}

// DeleteHoliday removes a holiday.
func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteHoliday(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// ABSENCE HANDLERS
// =============================================================================

// ListAbsences returns every absence request.
func (h *Handler) ListAbsences(w http.ResponseWriter, r *http.Request) {
	requests, err := h.Store.ListRequests(r.Context())
	if err != nil {
		h.error(w, err)
		return
	}

	dtos := make([]AbsenceDTO, len(requests))
	for i, req := range requests {
		dtos[i] = toAbsenceDTO(req)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SubmitAbsence creates a draft for the owner and submits it.
func (h *Handler) SubmitAbsence(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req SubmitAbsenceRequest
	if err := h.decode(r, &req); err != nil {
		h.error(w, err)
		return
	}

	owner, err := h.Store.GetEmployee(ctx, absence.EmployeeID(req.EmployeeID))
	if err != nil {
		h.error(w, err)
		return
	}

	start, err := absence.ParseDate(req.StartDate)
	if err != nil {
		h.error(w, &absence.ValidationError{Field: "start_date", Msg: err.Error()})
		return
	}
	end, err := absence.ParseDate(req.EndDate)
	if err != nil {
		h.error(w, &absence.ValidationError{Field: "end_date", Msg: err.Error()})
		return
	}

	draft := h.Lifecycle.Create(owner)
	draft.Reason = absence.Reason(req.Reason)
	draft.Start = start
	draft.End = end

	if err := h.Lifecycle.Submit(ctx, draft); err != nil {
		h.error(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAbsenceDTO(*draft))
}

// GetAbsence returns a single request.
func (h *Handler) GetAbsence(w http.ResponseWriter, r *http.Request) {
	req, err := h.Store.GetRequest(r.Context(), absence.RequestID(chi.URLParam(r, "id")))
	if err != nil {
		h.error(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAbsenceDTO(*req))
}

// ApproveAbsence approves the request on behalf of the actor in the body.
func (h *Handler) ApproveAbsence(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := absence.RequestID(chi.URLParam(r, "id"))

	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	req, err := h.Lifecycle.Approve(ctx, actor, id)
	if err != nil {
		h.error(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAbsenceDTO(*req))
}

// DenyAbsence denies and removes the request.
func (h *Handler) DenyAbsence(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := absence.RequestID(chi.URLParam(r, "id"))

	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	if err := h.Lifecycle.Deny(ctx, actor, id); err != nil {
		h.error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CancelAbsence cancels and removes the request.
func (h *Handler) CancelAbsence(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := absence.RequestID(chi.URLParam(r, "id"))

	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	if err := h.Lifecycle.Cancel(ctx, actor, id); err != nil {
		h.error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// actor resolves the acting employee from the request body.
func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (*absence.Employee, bool) {
	var action ActionRequest
	if err := h.decode(r, &action); err != nil {
		h.error(w, err)
		return nil, false
	}

	actor, err := h.Store.GetEmployee(r.Context(), absence.EmployeeID(action.ActorID))
	if err != nil {
		h.error(w, err)
		return nil, false
	}
	return actor, true
}

// =============================================================================
// TIMELINE
// =============================================================================

// GetTimeline returns all absences as dashboard timeline bars.
func (h *Handler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	requests, err := h.Store.ListRequests(ctx)
	if err != nil {
		h.error(w, err)
		return
	}

	names := make(map[absence.EmployeeID]string)
	if employees, err := h.Store.ListEmployees(ctx); err == nil {
		for _, e := range employees {
			names[e.ID] = e.Name
		}
	}

	dtos := make([]TimelineEventDTO, len(requests))
	for i, req := range requests {
		dtos[i] = TimelineEventDTO{
			ID:           string(req.ID),
			EmployeeID:   string(req.EmployeeID),
			EmployeeName: names[req.EmployeeID],
			StartDate:    req.Start.String(),
			EndDate:      req.End.AddDays(1).String(),
			StyleClass:   timelineStyle(req),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// timelineStyle picks the bar color class: red for sickness, green for
// approved, orange for awaiting approval. Sickness wins over approved:
// sickness requests are auto-accepted, and the dashboard still renders
// them as sick days rather than booked holiday.
func timelineStyle(req absence.Request) string {
	switch {
	case req.Reason == absence.ReasonSickness:
		return "sickness"
	case req.Approved:
		return "approved"
	default:
		return "requested"
	}
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// error maps the engine's error taxonomy onto HTTP status codes.
func (h *Handler) error(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, absence.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, absence.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, absence.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, absence.ErrConflict):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		h.Log.WithError(err).Error("request failed")
	}
	writeJSON(w, status, ErrorResponse{Error: http.StatusText(status), Details: err.Error()})
}
