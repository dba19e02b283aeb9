package absence_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/smylay/absence-engine/absence"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func employeeWithRole(role absence.Role) *absence.Employee {
	return &absence.Employee{ID: absence.NewEmployeeID(), Name: "test", Role: role}
}

func pendingRequest(owner absence.EmployeeID, reason absence.Reason) *absence.Request {
	return &absence.Request{
		ID:         absence.NewRequestID(),
		EmployeeID: owner,
		Reason:     reason,
		State:      absence.StatePendingApproval,
	}
}

// =============================================================================
// APPROVE / DENY GATE
// =============================================================================

func TestCanApprove_RoleGate(t *testing.T) {
	owner := employeeWithRole(absence.RoleEmployee)
	req := pendingRequest(owner.ID, absence.ReasonHoliday)

	assert.True(t, absence.CanApprove(employeeWithRole(absence.RoleManager), req))
	assert.True(t, absence.CanApprove(employeeWithRole(absence.RoleSuperuser), req))
	assert.False(t, absence.CanApprove(employeeWithRole(absence.RoleEmployee), req))

	// Not even on their own request.
	assert.False(t, absence.CanApprove(owner, req))
}

func TestCanApprove_AlreadyApproved(t *testing.T) {
	req := pendingRequest(absence.NewEmployeeID(), absence.ReasonHoliday)
	req.Approved = true
	req.State = absence.StateApproved

	assert.False(t, absence.CanApprove(employeeWithRole(absence.RoleManager), req))
}

func TestCanApprove_SicknessNeverApprovable(t *testing.T) {
	// Sickness requests are auto-accepted on submission, so there is
	// nothing for a moderator to action.
	req := pendingRequest(absence.NewEmployeeID(), absence.ReasonSickness)

	assert.False(t, absence.CanApprove(employeeWithRole(absence.RoleManager), req))
	assert.False(t, absence.CanApprove(employeeWithRole(absence.RoleSuperuser), req))
}

func TestCanApprove_NilSafe(t *testing.T) {
	req := pendingRequest(absence.NewEmployeeID(), absence.ReasonHoliday)

	assert.False(t, absence.CanApprove(nil, req))
	assert.False(t, absence.CanApprove(employeeWithRole(absence.RoleManager), nil))
}

// =============================================================================
// CANCEL GATE
// =============================================================================

func TestCanCancel_ModeratorsAlwaysMay(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	req := pendingRequest(absence.NewEmployeeID(), absence.ReasonSickness)
	req.Start = absence.NewDate(2026, time.March, 2) // already started
	req.End = absence.NewDate(2026, time.March, 20)

	assert.True(t, absence.CanCancel(employeeWithRole(absence.RoleManager), req, now))
	assert.True(t, absence.CanCancel(employeeWithRole(absence.RoleSuperuser), req, now))
}

func TestCanCancel_OwnerBeforeStart(t *testing.T) {
	// GIVEN: The owner's own future holiday request
	// THEN: The owner may cancel it before it starts, not after

	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	owner := employeeWithRole(absence.RoleEmployee)

	future := pendingRequest(owner.ID, absence.ReasonHoliday)
	future.Start = absence.NewDate(2026, time.March, 16)
	future.End = absence.NewDate(2026, time.March, 20)
	assert.True(t, absence.CanCancel(owner, future, now))

	started := pendingRequest(owner.ID, absence.ReasonHoliday)
	started.Start = absence.NewDate(2026, time.March, 9)
	started.End = absence.NewDate(2026, time.March, 13)
	assert.False(t, absence.CanCancel(owner, started, now))
}

func TestCanCancel_OwnerNeverCancelsSickness(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	owner := employeeWithRole(absence.RoleEmployee)

	req := pendingRequest(owner.ID, absence.ReasonSickness)
	req.Start = absence.NewDate(2026, time.March, 16)
	req.End = absence.NewDate(2026, time.March, 18)

	assert.False(t, absence.CanCancel(owner, req, now))
}

func TestCanCancel_StrangerMayNot(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	req := pendingRequest(absence.NewEmployeeID(), absence.ReasonHoliday)
	req.Start = absence.NewDate(2026, time.March, 16)
	req.End = absence.NewDate(2026, time.March, 20)

	assert.False(t, absence.CanCancel(employeeWithRole(absence.RoleEmployee), req, now))
}

func TestCanCancel_NilSafe(t *testing.T) {
	now := time.Now()
	assert.False(t, absence.CanCancel(nil, pendingRequest("x", absence.ReasonHoliday), now))
	assert.False(t, absence.CanCancel(employeeWithRole(absence.RoleManager), nil, now))
}
