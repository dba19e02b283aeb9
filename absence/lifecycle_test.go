package absence_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smylay/absence-engine/absence"
	"github.com/smylay/absence-engine/absence/store"
)

// =============================================================================
// TEST DOUBLES
// =============================================================================

// fixedClock pins the lifecycle to a known instant.
type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

// countingNotifier records notification dispatches.
type countingNotifier struct {
	approved  int
	denied    int
	submitted int

	lastModerators []absence.Employee
}

var _ absence.Notifier = (*countingNotifier)(nil)

func (n *countingNotifier) NotifyApproved(_ context.Context, _ absence.Employee, _ absence.Request) error {
	n.approved++
	return nil
}

func (n *countingNotifier) NotifyDenied(_ context.Context, _ absence.Employee, _ absence.Request) error {
	n.denied++
	return nil
}

func (n *countingNotifier) NotifySubmitted(_ context.Context, moderators []absence.Employee, _ absence.Employee, _ absence.Request) error {
	n.submitted++
	n.lastModerators = moderators
	return nil
}

// =============================================================================
// TEST SETUP
// =============================================================================

// monday is a known Monday used as "today" throughout these tests.
var monday = time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

type fixture struct {
	store     *store.Memory
	notifier  *countingNotifier
	lifecycle *absence.Lifecycle

	owner   *absence.Employee
	manager *absence.Employee
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	mem := store.NewMemory()
	notifier := &countingNotifier{}

	log := logrus.New()
	log.SetOutput(io.Discard)
	log.SetLevel(logrus.PanicLevel)

	lc := absence.NewLifecycle(mem, notifier, fixedClock{now: monday}, log)

	owner := absence.NewEmployee("Joe Bloggs", "Engineer", "joe@smylay.example", absence.RoleEmployee)
	manager := absence.NewEmployee("Jane Doe", "Head of Engineering", "jane@smylay.example", absence.RoleManager)
	require.NoError(t, mem.SaveEmployee(ctx, owner))
	require.NoError(t, mem.SaveEmployee(ctx, manager))

	return &fixture{store: mem, notifier: notifier, lifecycle: lc, owner: owner, manager: manager}
}

func (f *fixture) submit(t *testing.T, reason absence.Reason, start, end absence.Date) *absence.Request {
	t.Helper()

	req := f.lifecycle.Create(f.owner)
	req.Reason = reason
	req.Start = start
	req.End = end
	require.NoError(t, f.lifecycle.Submit(context.Background(), req))
	return req
}

// =============================================================================
// SUBMISSION
// =============================================================================

func TestSubmit_HolidayGoesPending(t *testing.T) {
	// GIVEN: A draft holiday request for a full work week
	// WHEN: Submitted
	// THEN: It awaits approval with five chargeable days, and the
	//       moderators hear about it

	f := newFixture(t)

	req := f.submit(t, absence.ReasonHoliday, date(2026, time.March, 9), date(2026, time.March, 13))

	assert.Equal(t, absence.StatePendingApproval, req.State)
	assert.False(t, req.Approved)
	assert.Equal(t, 5, req.ChargeableDays)
	assert.Equal(t, 1, f.notifier.submitted)

	// Only the manager moderates; the owner is not on the list.
	require.Len(t, f.notifier.lastModerators, 1)
	assert.Equal(t, f.manager.ID, f.notifier.lastModerators[0].ID)

	// And it is persisted.
	stored, err := f.store.GetRequest(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, absence.StatePendingApproval, stored.State)
}

func TestSubmit_SicknessAutoAccepted(t *testing.T) {
	// GIVEN: A sickness draft
	// WHEN: Submitted
	// THEN: Approved immediately, nobody is asked to action it

	f := newFixture(t)

	req := f.submit(t, absence.ReasonSickness, date(2026, time.March, 3), date(2026, time.March, 4))

	assert.Equal(t, absence.StateApproved, req.State)
	assert.True(t, req.Approved)
	assert.Equal(t, 0, f.notifier.submitted)
}

func TestSubmit_HolidayCalendarShrinksCharge(t *testing.T) {
	// GIVEN: A company holiday inside the requested week
	// THEN: The charge drops to four days

	f := newFixture(t)
	require.NoError(t, f.store.SaveHoliday(context.Background(), absence.Holiday{
		ID: "hol-1", Date: date(2026, time.March, 11), Name: "Founders Day",
	}))

	req := f.submit(t, absence.ReasonHoliday, date(2026, time.March, 9), date(2026, time.March, 13))
	assert.Equal(t, 4, req.ChargeableDays)
}

func TestSubmit_InvalidRangeRejected(t *testing.T) {
	f := newFixture(t)

	req := f.lifecycle.Create(f.owner)
	req.Reason = absence.ReasonHoliday
	req.Start = date(2026, time.March, 13)
	req.End = date(2026, time.March, 9)

	err := f.lifecycle.Submit(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, absence.ErrInvalidRange))
}

func TestSubmit_UnknownReasonRejected(t *testing.T) {
	f := newFixture(t)

	req := f.lifecycle.Create(f.owner)
	req.Reason = absence.Reason("sabbatical")
	req.Start = date(2026, time.March, 9)
	req.End = date(2026, time.March, 13)

	err := f.lifecycle.Submit(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, absence.ErrValidation))
}

func TestSubmit_OnlyDrafts(t *testing.T) {
	f := newFixture(t)

	req := f.submit(t, absence.ReasonHoliday, date(2026, time.March, 9), date(2026, time.March, 13))

	// Submitting again is rejected; the request already left Draft.
	err := f.lifecycle.Submit(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, absence.ErrValidation))
}

// =============================================================================
// APPROVAL
// =============================================================================

func TestApprove_ByManager(t *testing.T) {
	// GIVEN: A pending holiday request
	// WHEN: The manager approves it
	// THEN: It is approved, retained, and the owner is notified

	f := newFixture(t)
	ctx := context.Background()

	req := f.submit(t, absence.ReasonHoliday, date(2026, time.March, 9), date(2026, time.March, 13))

	approved, err := f.lifecycle.Approve(ctx, f.manager, req.ID)
	require.NoError(t, err)
	assert.True(t, approved.Approved)
	assert.Equal(t, absence.StateApproved, approved.State)
	assert.Equal(t, 1, f.notifier.approved)

	stored, err := f.store.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.True(t, stored.Approved)
}

func TestApprove_ByEmployeeForbidden(t *testing.T) {
	f := newFixture(t)

	req := f.submit(t, absence.ReasonHoliday, date(2026, time.March, 9), date(2026, time.March, 13))

	_, err := f.lifecycle.Approve(context.Background(), f.owner, req.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, absence.ErrUnauthorized))
	assert.Equal(t, 0, f.notifier.approved)
}

func TestApprove_TwiceForbidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := f.submit(t, absence.ReasonHoliday, date(2026, time.March, 9), date(2026, time.March, 13))

	_, err := f.lifecycle.Approve(ctx, f.manager, req.ID)
	require.NoError(t, err)

	_, err = f.lifecycle.Approve(ctx, f.manager, req.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, absence.ErrUnauthorized))
}

func TestApprove_MissingRequest(t *testing.T) {
	f := newFixture(t)

	_, err := f.lifecycle.Approve(context.Background(), f.manager, absence.NewRequestID())
	require.Error(t, err)
	assert.True(t, errors.Is(err, absence.ErrNotFound))
}

func TestApprove_StaleWriterLosesRace(t *testing.T) {
	// GIVEN: Two actors holding the same snapshot of a request
	// WHEN: One approval lands first
	// THEN: The stale writer's save is refused with a conflict

	f := newFixture(t)
	ctx := context.Background()

	req := f.submit(t, absence.ReasonHoliday, date(2026, time.March, 9), date(2026, time.March, 13))

	stale, err := f.store.GetRequest(ctx, req.ID)
	require.NoError(t, err)

	_, err = f.lifecycle.Approve(ctx, f.manager, req.ID)
	require.NoError(t, err)

	stale.Approved = true
	err = f.store.SaveRequest(ctx, stale)
	require.Error(t, err)
	assert.True(t, errors.Is(err, absence.ErrConflict))
}

// =============================================================================
// DENIAL AND CANCELLATION
// =============================================================================

func TestDeny_RemovesAndNotifies(t *testing.T) {
	// GIVEN: A pending request
	// WHEN: The manager denies it
	// THEN: It is gone from storage and the owner hears about it

	f := newFixture(t)
	ctx := context.Background()

	req := f.submit(t, absence.ReasonHoliday, date(2026, time.March, 9), date(2026, time.March, 13))

	require.NoError(t, f.lifecycle.Deny(ctx, f.manager, req.ID))
	assert.Equal(t, 1, f.notifier.denied)

	_, err := f.store.GetRequest(ctx, req.ID)
	assert.True(t, errors.Is(err, absence.ErrNotFound))
}

func TestDeny_ByEmployeeForbidden(t *testing.T) {
	f := newFixture(t)

	req := f.submit(t, absence.ReasonHoliday, date(2026, time.March, 9), date(2026, time.March, 13))

	err := f.lifecycle.Deny(context.Background(), f.owner, req.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, absence.ErrUnauthorized))
}

func TestCancel_OwnerBeforeStart(t *testing.T) {
	// GIVEN: The owner's future holiday request
	// WHEN: The owner cancels it
	// THEN: It is removed with no notification to anyone

	f := newFixture(t)
	ctx := context.Background()

	req := f.submit(t, absence.ReasonHoliday, date(2026, time.March, 9), date(2026, time.March, 13))

	require.NoError(t, f.lifecycle.Cancel(ctx, f.owner, req.ID))
	assert.Equal(t, 0, f.notifier.approved)
	assert.Equal(t, 0, f.notifier.denied)

	_, err := f.store.GetRequest(ctx, req.ID)
	assert.True(t, errors.Is(err, absence.ErrNotFound))
}

func TestCancel_OwnerAfterStartForbidden(t *testing.T) {
	// The fixture clock says Monday March 2; a request that started that
	// morning can no longer be pulled back by its owner.
	f := newFixture(t)

	req := f.submit(t, absence.ReasonHoliday, date(2026, time.March, 2), date(2026, time.March, 6))

	err := f.lifecycle.Cancel(context.Background(), f.owner, req.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, absence.ErrUnauthorized))
}

func TestCancel_ManagerAlways(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := f.submit(t, absence.ReasonSickness, date(2026, time.March, 2), date(2026, time.March, 6))

	require.NoError(t, f.lifecycle.Cancel(ctx, f.manager, req.ID))
	_, err := f.store.GetRequest(ctx, req.ID)
	assert.True(t, errors.Is(err, absence.ErrNotFound))
}

// =============================================================================
// RATING REFRESH
// =============================================================================

func TestRefreshRating_SicknessOnly(t *testing.T) {
	// GIVEN: Two sickness spells (3 + 2 days) and one holiday this year
	// WHEN: The rating is refreshed
	// THEN: B = 2^2 * 5 = 20; the holiday never enters the score

	f := newFixture(t)
	ctx := context.Background()

	f.submit(t, absence.ReasonSickness, date(2026, time.March, 2), date(2026, time.March, 4))
	f.submit(t, absence.ReasonSickness, date(2026, time.April, 6), date(2026, time.April, 7))
	f.submit(t, absence.ReasonHoliday, date(2026, time.May, 4), date(2026, time.May, 8))

	rating, err := f.lifecycle.RefreshRating(ctx, f.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, rating)

	emp, err := f.store.GetEmployee(ctx, f.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, emp.AbsenceRating)
	assert.Equal(t, 2, emp.AbsenceCount)
}

func TestRefreshRating_CleanYearScoresZero(t *testing.T) {
	f := newFixture(t)

	rating, err := f.lifecycle.RefreshRating(context.Background(), f.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, rating)
}

func TestApprove_RefreshesOwnerRating(t *testing.T) {
	// Approving a request recomputes the owner's rating as a side effect.
	f := newFixture(t)
	ctx := context.Background()

	f.submit(t, absence.ReasonSickness, date(2026, time.March, 2), date(2026, time.March, 4))
	req := f.submit(t, absence.ReasonHoliday, date(2026, time.April, 6), date(2026, time.April, 10))

	_, err := f.lifecycle.Approve(ctx, f.manager, req.ID)
	require.NoError(t, err)

	emp, err := f.store.GetEmployee(ctx, f.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, emp.AbsenceRating) // 1 spell, 3 days
	assert.Equal(t, 1, emp.AbsenceCount)
}

// =============================================================================
// ALLOWANCE
// =============================================================================

func TestAllowanceFor_HolidayUsage(t *testing.T) {
	// GIVEN: A 25-day allowance and a 5-day holiday this year
	// THEN: 5 used, 20 remaining, 20% utilization

	f := newFixture(t)

	f.submit(t, absence.ReasonHoliday, date(2026, time.March, 9), date(2026, time.March, 13))
	f.submit(t, absence.ReasonSickness, date(2026, time.April, 6), date(2026, time.April, 7))

	summary, err := f.lifecycle.AllowanceFor(context.Background(), f.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "25", summary.Allowed.String())
	assert.Equal(t, "5", summary.Used.String())
	assert.Equal(t, "20", summary.Remaining.String())
	assert.Equal(t, "20", summary.Utilization.String())
}

func TestAllowanceFor_ZeroAllowance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.owner.DaysAllowed = 0
	require.NoError(t, f.store.SaveEmployee(ctx, f.owner))

	summary, err := f.lifecycle.AllowanceFor(ctx, f.owner.ID)
	require.NoError(t, err)
	assert.True(t, summary.Utilization.IsZero())
}
