/*
lifecycle.go - Absence request state machine and orchestration

PURPOSE:
  Drives an absence request through its lifecycle:

      Draft ──submit──▶ PendingApproval ──approve──▶ Approved
        │                     │
        │                     ├──deny────▶ removed (Denied)
        │                     └──cancel──▶ removed (Cancelled)
        └──submit (sickness)─▶ Approved immediately (auto-accepted)

  Submission computes the chargeable-day count from the live holiday
  calendar. Actioned transitions pass through the authorization policy.
  Approval and denial refresh the owner's absence rating and notify them.

TERMINAL BEHAVIOR:
  Denied and cancelled requests are removed from storage rather than
  archived. Only approved requests are retained.

SIDE EFFECTS:
  Confined to persistence writes/deletes via DataStore, notification
  dispatch via Notifier, and rating recomputation on approve/deny.
  Notification and rating-refresh failures are logged and never abort the
  transition that triggered them.

CONCURRENCY:
  Transitions racing on the same request are serialized by the store's
  optimistic concurrency; the loser receives a ConflictError instead of
  double-applying.

SEE ALSO:
  - policy.go: the gates applied here
  - workdays.go: the day counter invoked on submission
  - rating.go: the Bradford Factor refreshed on approve/deny
*/
package absence

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Lifecycle orchestrates absence request transitions.
type Lifecycle struct {
	Store    DataStore
	Notifier Notifier
	Clock    Clock
	Log      logrus.FieldLogger
}

// NewLifecycle wires a lifecycle manager. Clock and Log default to the
// system clock and the standard logrus logger when nil.
func NewLifecycle(store DataStore, notifier Notifier, clock Clock, log logrus.FieldLogger) *Lifecycle {
	if clock == nil {
		clock = SystemClock{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Lifecycle{Store: store, Notifier: notifier, Clock: clock, Log: log}
}

// =============================================================================
// TRANSITIONS
// =============================================================================

// Create produces a draft request owned by the employee. Drafts live only
// in memory; nothing is persisted until Submit.
func (l *Lifecycle) Create(owner *Employee) *Request {
	return &Request{
		EmployeeID: owner.ID,
		State:      StateDraft,
		Approved:   false,
	}
}

// Submit validates the draft, derives its chargeable-day count from the
// current holiday calendar, and persists it. Non-sickness requests land in
// PendingApproval; sickness requests are auto-accepted and immediately
// Approved. Moderators are notified when there is something to action.
func (l *Lifecycle) Submit(ctx context.Context, req *Request) error {
	if req.State != StateDraft {
		return &ValidationError{Field: "state", Msg: fmt.Sprintf("can only submit draft requests, current state: %s", req.State)}
	}
	if req.EmployeeID == "" {
		return &ValidationError{Field: "employee_id", Msg: "request has no owner"}
	}
	if !req.Reason.Valid() {
		return &ValidationError{Field: "reason", Msg: fmt.Sprintf("unknown reason %q", req.Reason)}
	}

	holidays, err := l.Store.FindHolidays(ctx)
	if err != nil {
		return fmt.Errorf("failed to load holiday calendar: %w", err)
	}

	days, err := CountChargeableDays(req.Start, req.End, CalendarOf(holidays))
	if err != nil {
		return err
	}
	req.ChargeableDays = days

	if req.Reason.RequiresApproval() {
		req.State = StatePendingApproval
		req.Approved = false
	} else {
		// Sickness exemption: accepted without a moderator in the loop.
		req.State = StateApproved
		req.Approved = true
	}

	if req.ID == "" {
		req.ID = NewRequestID()
	}
	now := l.Clock.Now()
	req.CreatedAt = now
	req.UpdatedAt = now

	if err := l.Store.SaveRequest(ctx, req); err != nil {
		return fmt.Errorf("failed to persist request: %w", err)
	}

	l.Log.WithFields(logrus.Fields{
		"request":  req.ID,
		"employee": req.EmployeeID,
		"reason":   req.Reason,
		"days":     req.ChargeableDays,
		"state":    req.State,
	}).Info("absence request submitted")

	if req.State == StatePendingApproval {
		l.notifyModerators(ctx, req)
	}
	return nil
}

// Approve marks the request approved. Requires CanApprove; a concurrent
// transition on the same request surfaces as a ConflictError.
func (l *Lifecycle) Approve(ctx context.Context, actor *Employee, id RequestID) (*Request, error) {
	req, err := l.Store.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanApprove(actor, req) {
		return nil, &AuthorizationError{Actor: actor.ID, Action: "approve", Request: id}
	}

	req.Approved = true
	req.State = StateApproved
	req.UpdatedAt = l.Clock.Now()
	if err := l.Store.SaveRequest(ctx, req); err != nil {
		return nil, err
	}

	l.Log.WithFields(logrus.Fields{
		"request": req.ID,
		"actor":   actor.ID,
	}).Info("absence request approved")

	l.afterDecision(ctx, req, true)
	return req, nil
}

// Deny removes the request. The approval gate governs denial too.
func (l *Lifecycle) Deny(ctx context.Context, actor *Employee, id RequestID) error {
	req, err := l.Store.GetRequest(ctx, id)
	if err != nil {
		return err
	}
	if !CanApprove(actor, req) {
		return &AuthorizationError{Actor: actor.ID, Action: "deny", Request: id}
	}

	if err := l.Store.DeleteRequest(ctx, req); err != nil {
		return err
	}
	req.State = StateDenied

	l.Log.WithFields(logrus.Fields{
		"request": req.ID,
		"actor":   actor.ID,
	}).Info("absence request denied")

	l.afterDecision(ctx, req, false)
	return nil
}

// Cancel removes the request without notifying anyone.
func (l *Lifecycle) Cancel(ctx context.Context, actor *Employee, id RequestID) error {
	req, err := l.Store.GetRequest(ctx, id)
	if err != nil {
		return err
	}
	if !CanCancel(actor, req, l.Clock.Now()) {
		return &AuthorizationError{Actor: actor.ID, Action: "cancel", Request: id}
	}

	if err := l.Store.DeleteRequest(ctx, req); err != nil {
		return err
	}
	req.State = StateCancelled

	l.Log.WithFields(logrus.Fields{
		"request": req.ID,
		"actor":   actor.ID,
	}).Info("absence request cancelled")
	return nil
}

// =============================================================================
// RATING REFRESH
// =============================================================================

// RefreshRating recomputes the employee's Bradford Factor over the current
// calendar year, counting sickness absences only, and persists the result.
func (l *Lifecycle) RefreshRating(ctx context.Context, id EmployeeID) (int, error) {
	emp, err := l.Store.GetEmployee(ctx, id)
	if err != nil {
		return 0, err
	}

	window := YearOf(l.Clock.Now())
	spells, err := l.Store.CountAbsences(ctx, id, window, ReasonSickness)
	if err != nil {
		return 0, fmt.Errorf("failed to count absences: %w", err)
	}
	days, err := l.Store.SumChargeableDays(ctx, id, window, ReasonSickness)
	if err != nil {
		return 0, fmt.Errorf("failed to sum days absent: %w", err)
	}

	rating, err := Rating(spells, days)
	if err != nil {
		return 0, err
	}

	emp.AbsenceRating = rating
	emp.AbsenceCount = spells
	if err := l.Store.SaveEmployee(ctx, emp); err != nil {
		return 0, err
	}

	l.Log.WithFields(logrus.Fields{
		"employee": id,
		"rating":   rating,
		"spells":   spells,
	}).Info("absence rating refreshed")
	return rating, nil
}

// =============================================================================
// BEST-EFFORT SIDE EFFECTS
// =============================================================================

// afterDecision runs the side effects shared by approve and deny:
// owner notification and rating refresh. Both are best-effort.
func (l *Lifecycle) afterDecision(ctx context.Context, req *Request, approved bool) {
	owner, err := l.Store.GetEmployee(ctx, req.EmployeeID)
	if err != nil {
		l.Log.WithError(err).WithField("employee", req.EmployeeID).
			Warn("request owner lookup failed; skipping notification")
	} else if l.Notifier != nil {
		if approved {
			err = l.Notifier.NotifyApproved(ctx, *owner, *req)
		} else {
			err = l.Notifier.NotifyDenied(ctx, *owner, *req)
		}
		if err != nil {
			l.Log.WithError(err).WithField("request", req.ID).
				Warn("notification delivery failed")
		}
	}

	if _, err := l.RefreshRating(ctx, req.EmployeeID); err != nil {
		l.Log.WithError(err).WithField("employee", req.EmployeeID).
			Warn("rating refresh failed")
	}
}

// notifyModerators tells every manager and superuser about a new pending
// request. Best-effort.
func (l *Lifecycle) notifyModerators(ctx context.Context, req *Request) {
	if l.Notifier == nil {
		return
	}

	owner, err := l.Store.GetEmployee(ctx, req.EmployeeID)
	if err != nil {
		l.Log.WithError(err).WithField("employee", req.EmployeeID).
			Warn("request owner lookup failed; skipping notification")
		return
	}

	employees, err := l.Store.ListEmployees(ctx)
	if err != nil {
		l.Log.WithError(err).Warn("moderator lookup failed; skipping notification")
		return
	}
	var moderators []Employee
	for _, e := range employees {
		if e.Role.CanModerate() {
			moderators = append(moderators, e)
		}
	}
	if len(moderators) == 0 {
		return
	}

	if err := l.Notifier.NotifySubmitted(ctx, moderators, *owner, *req); err != nil {
		l.Log.WithError(err).WithField("request", req.ID).
			Warn("notification delivery failed")
	}
}
