package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"careshift_backend/internal/appErrors"
	"careshift_backend/internal/models"
	"careshift_backend/internal/repositories"
	"careshift_backend/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplicationService_Apply(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	shift := env.createShift(t, shiftStart())
	message := "I have worked this home before"
	application, err := env.applications.Apply(ctx, shift.ID, testCaregiverID, &message)
	require.NoError(t, err)

	assert.NotEmpty(t, application.ID)
	assert.Equal(t, models.ApplicationStatusPending, application.Status)
	assert.Equal(t, shift.ID, application.ShiftID)
	assert.Equal(t, testCaregiverID, application.CaregiverID)
	assert.Nil(t, application.DecidedAt)
	assert.Equal(t, 1, env.sink.countByType(services.EventApplicationReceived))
}

func TestApplicationService_Apply_ShiftNotOpen(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	shift := env.createShift(t, shiftStart())
	application := env.apply(t, shift.ID, testCaregiverID)
	_, err := env.shifts.Offer(ctx, shift.ID, application.ID, testOperatorID)
	require.NoError(t, err)

	_, err = env.applications.Apply(ctx, shift.ID, otherCaregiver, nil)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidShiftStatus))
}

// A second apply while the first is still active surfaces a conflict and
// hands back the existing application instead of creating a duplicate.
func TestApplicationService_Apply_Duplicate(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	shift := env.createShift(t, shiftStart())
	first := env.apply(t, shift.ID, testCaregiverID)

	second, err := env.applications.Apply(ctx, shift.ID, testCaregiverID, nil)
	assert.True(t, appErrors.Is(err, appErrors.ErrDuplicateApplication))
	require.NotNil(t, second)
	assert.Equal(t, first.ID, second.ID)

	_, total, err := env.applications.ListForShift(ctx, shift.ID, testOperatorID, repositories.ApplicationCriteria{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestApplicationService_Apply_OverlapBlocked(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	// The caregiver is assigned to 08:00-16:00.
	busy := env.createShift(t, shiftStart())
	busyApplication := env.apply(t, busy.ID, testCaregiverID)
	env.offerAndAccept(t, busy.ID, busyApplication.ID, testCaregiverID)
	_, err := env.shifts.Confirm(ctx, busy.ID, testOperatorID)
	require.NoError(t, err)

	// 12:00-20:00 the same day intersects the commitment.
	overlapping, err := env.shifts.Create(ctx, services.CreateShiftInput{
		HomeID:     testHomeID,
		OperatorID: testOperatorID,
		StartTime:  shiftStart().Add(4 * time.Hour),
		EndTime:    shiftStart().Add(12 * time.Hour),
		HourlyRate: 22,
	})
	require.NoError(t, err)

	_, err = env.applications.Apply(ctx, overlapping.ID, testCaregiverID, nil)
	assert.True(t, appErrors.Is(err, appErrors.ErrScheduleOverlap))

	// An unencumbered caregiver can still apply.
	_, err = env.applications.Apply(ctx, overlapping.ID, otherCaregiver, nil)
	assert.NoError(t, err)
}

// Back-to-back windows share an instant but do not overlap.
func TestApplicationService_Apply_BackToBackAllowed(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	morning := env.createShift(t, shiftStart())
	morningApplication := env.apply(t, morning.ID, testCaregiverID)
	env.offerAndAccept(t, morning.ID, morningApplication.ID, testCaregiverID)
	_, err := env.shifts.Confirm(ctx, morning.ID, testOperatorID)
	require.NoError(t, err)

	// Starts exactly when the morning shift ends.
	evening := env.createShift(t, shiftStart().Add(8*time.Hour))
	_, err = env.applications.Apply(ctx, evening.ID, testCaregiverID, nil)
	assert.NoError(t, err)
}

// A pending application only blocks a shift once accepted: two pending
// applications on overlapping shifts are allowed.
func TestApplicationService_Apply_PendingDoesNotBlock(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	first := env.createShift(t, shiftStart())
	second, err := env.shifts.Create(ctx, services.CreateShiftInput{
		HomeID:     testHomeID,
		OperatorID: testOperatorID,
		StartTime:  shiftStart().Add(2 * time.Hour),
		EndTime:    shiftStart().Add(10 * time.Hour),
		HourlyRate: 22,
	})
	require.NoError(t, err)

	env.apply(t, first.ID, testCaregiverID)
	_, err = env.applications.Apply(ctx, second.ID, testCaregiverID, nil)
	assert.NoError(t, err)
}

func TestApplicationService_Withdraw(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	shift := env.createShift(t, shiftStart())
	application := env.apply(t, shift.ID, testCaregiverID)

	withdrawn, err := env.applications.Withdraw(ctx, application.ID, testCaregiverID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusWithdrawn, withdrawn.Status)
	assert.NotNil(t, withdrawn.DecidedAt)

	// Idempotent repeat.
	again, err := env.applications.Withdraw(ctx, application.ID, testCaregiverID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusWithdrawn, again.Status)
	assert.Equal(t, 1, env.sink.countByType(services.EventApplicationWithdrawn))
}

func TestApplicationService_Withdraw_NotOwner(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	shift := env.createShift(t, shiftStart())
	application := env.apply(t, shift.ID, testCaregiverID)

	_, err := env.applications.Withdraw(context.Background(), application.ID, otherCaregiver)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
}

// Withdrawing the candidate of an offered shift puts the shift back on the
// market: status open, no candidate.
func TestApplicationService_Withdraw_CandidateRevertsShift(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	shift := env.createShift(t, shiftStart())
	application := env.apply(t, shift.ID, testCaregiverID)
	_, err := env.shifts.Offer(ctx, shift.ID, application.ID, testOperatorID)
	require.NoError(t, err)

	_, err = env.applications.Withdraw(ctx, application.ID, testCaregiverID)
	require.NoError(t, err)

	reverted, err := env.shifts.GetShift(ctx, shift.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ShiftStatusOpen, reverted.Status)
	assert.Nil(t, reverted.CandidateApplicationID)
	assert.Equal(t, 1, env.sink.countByType(services.EventOfferDeclined))
	assert.Equal(t, 0, env.sink.countByType(services.EventApplicationWithdrawn))

	// The same caregiver may apply again after withdrawing.
	fresh, err := env.applications.Apply(ctx, shift.ID, testCaregiverID, nil)
	require.NoError(t, err)
	assert.NotEqual(t, application.ID, fresh.ID)
	assert.Equal(t, models.ApplicationStatusPending, fresh.Status)
}

// Once the shift is assigned the accepted application is locked in: the
// caregiver cannot withdraw out of a confirmed assignment, only the operator's
// cancel releases it.
func TestApplicationService_Withdraw_AssignedShiftIsConflict(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	shift := env.createShift(t, shiftStart())
	application := env.apply(t, shift.ID, testCaregiverID)
	env.offerAndAccept(t, shift.ID, application.ID, testCaregiverID)
	_, err := env.shifts.Confirm(ctx, shift.ID, testOperatorID)
	require.NoError(t, err)

	_, err = env.applications.Withdraw(ctx, application.ID, testCaregiverID)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidShiftStatus))

	// Assignment and acceptance are untouched.
	assigned, err := env.shifts.GetShift(ctx, shift.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ShiftStatusAssigned, assigned.Status)
	require.NotNil(t, assigned.AssignedCaregiverID)
	assert.Equal(t, testCaregiverID, *assigned.AssignedCaregiverID)

	current, err := env.applications.GetApplication(ctx, application.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusAccepted, current.Status)

	// Same after completion, and the operator-side reject is blocked the
	// same way.
	_, err = env.applications.Reject(ctx, application.ID, testOperatorID)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidShiftStatus))
	_, err = env.shifts.Complete(ctx, shift.ID, testOperatorID)
	require.NoError(t, err)
	_, err = env.applications.Withdraw(ctx, application.ID, testCaregiverID)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidShiftStatus))
}

func TestApplicationService_Withdraw_RejectedIsConflict(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	shift := env.createShift(t, shiftStart())
	application := env.apply(t, shift.ID, testCaregiverID)
	_, err := env.applications.Reject(ctx, application.ID, testOperatorID)
	require.NoError(t, err)

	_, err = env.applications.Withdraw(ctx, application.ID, testCaregiverID)
	assert.True(t, appErrors.Is(err, appErrors.ErrApplicationNotPending))
}

func TestApplicationService_Reject(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	shift := env.createShift(t, shiftStart())
	application := env.apply(t, shift.ID, testCaregiverID)

	rejected, err := env.applications.Reject(ctx, application.ID, testOperatorID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusRejected, rejected.Status)

	// Only the owning operator may reject.
	other := env.apply(t, shift.ID, otherCaregiver)
	_, err = env.applications.Reject(ctx, other.ID, otherCaregiver)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	// Idempotent repeat.
	_, err = env.applications.Reject(ctx, application.ID, testOperatorID)
	require.NoError(t, err)
	assert.Equal(t, 1, env.sink.countByType(services.EventApplicationRejected))
}

func TestApplicationService_Reject_CandidateRevertsShift(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	shift := env.createShift(t, shiftStart())
	application := env.apply(t, shift.ID, testCaregiverID)
	_, err := env.shifts.Offer(ctx, shift.ID, application.ID, testOperatorID)
	require.NoError(t, err)

	_, err = env.applications.Reject(ctx, application.ID, testOperatorID)
	require.NoError(t, err)

	reverted, err := env.shifts.GetShift(ctx, shift.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ShiftStatusOpen, reverted.Status)
	assert.Nil(t, reverted.CandidateApplicationID)
}

func TestApplicationService_Accept(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	shift := env.createShift(t, shiftStart())
	application := env.apply(t, shift.ID, testCaregiverID)
	_, err := env.shifts.Offer(ctx, shift.ID, application.ID, testOperatorID)
	require.NoError(t, err)

	accepted, err := env.applications.Accept(ctx, application.ID, testCaregiverID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusAccepted, accepted.Status)
	assert.NotNil(t, accepted.DecidedAt)

	// Idempotent repeat.
	again, err := env.applications.Accept(ctx, application.ID, testCaregiverID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusAccepted, again.Status)
	assert.Equal(t, 1, env.sink.countByType(services.EventOfferAccepted))
}

func TestApplicationService_Accept_RequiresCandidateSlot(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	shift := env.createShift(t, shiftStart())
	application := env.apply(t, shift.ID, testCaregiverID)

	// No offer yet.
	_, err := env.applications.Accept(ctx, application.ID, testCaregiverID)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotCandidate))

	// Offered to somebody else.
	other := env.apply(t, shift.ID, otherCaregiver)
	_, err = env.shifts.Offer(ctx, shift.ID, other.ID, testOperatorID)
	require.NoError(t, err)
	_, err = env.applications.Accept(ctx, application.ID, testCaregiverID)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotCandidate))

	// Wrong caregiver on the right application.
	_, err = env.applications.Accept(ctx, other.ID, testCaregiverID)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
}

// Accept re-runs the overlap check: a commitment picked up after applying
// blocks the acceptance.
func TestApplicationService_Accept_OverlapAppearedAfterApply(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	shift := env.createShift(t, shiftStart())
	application := env.apply(t, shift.ID, testCaregiverID)
	_, err := env.shifts.Offer(ctx, shift.ID, application.ID, testOperatorID)
	require.NoError(t, err)

	// Meanwhile the caregiver gets assigned to an overlapping shift.
	conflicting, err := env.shifts.Create(ctx, services.CreateShiftInput{
		HomeID:     testHomeID,
		OperatorID: testOperatorID,
		StartTime:  shiftStart().Add(-2 * time.Hour),
		EndTime:    shiftStart().Add(2 * time.Hour),
		HourlyRate: 25,
	})
	require.NoError(t, err)
	conflictingApplication := env.apply(t, conflicting.ID, testCaregiverID)
	env.offerAndAccept(t, conflicting.ID, conflictingApplication.ID, testCaregiverID)
	_, err = env.shifts.Confirm(ctx, conflicting.ID, testOperatorID)
	require.NoError(t, err)

	_, err = env.applications.Accept(ctx, application.ID, testCaregiverID)
	assert.True(t, appErrors.Is(err, appErrors.ErrScheduleOverlap))
}

// Accept races against a reassignment offer to somebody else. The store
// serializes both critical sections on the shift, so in either order the
// displaced application ends rejected and the candidate slot holds the new
// application; two accepted applications can never coexist.
func TestApplicationService_AcceptDuringReassignment(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	shift := env.createShift(t, shiftStart())
	first := env.apply(t, shift.ID, testCaregiverID)
	second := env.apply(t, shift.ID, otherCaregiver)
	_, err := env.shifts.Offer(ctx, shift.ID, first.ID, testOperatorID)
	require.NoError(t, err)

	var (
		wg       sync.WaitGroup
		offerErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		// May lose the race with ErrNotCandidate; must never interleave.
		_, _ = env.applications.Accept(ctx, first.ID, testCaregiverID)
	}()
	go func() {
		defer wg.Done()
		_, offerErr = env.shifts.Offer(ctx, shift.ID, second.ID, testOperatorID)
	}()
	wg.Wait()
	require.NoError(t, offerErr)

	final, err := env.shifts.GetShift(ctx, shift.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ShiftStatusOffered, final.Status)
	require.NotNil(t, final.CandidateApplicationID)
	assert.Equal(t, second.ID, *final.CandidateApplicationID)

	displaced, err := env.applications.GetApplication(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusRejected, displaced.Status)

	applications, _, err := env.applications.ListForShift(ctx, shift.ID, testOperatorID, repositories.ApplicationCriteria{
		Statuses: []models.ApplicationStatus{models.ApplicationStatusAccepted},
	})
	require.NoError(t, err)
	assert.Empty(t, applications, "no application may end accepted while the candidate slot moved on")
}

func TestApplicationService_Listing(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	shift := env.createShift(t, shiftStart())
	env.apply(t, shift.ID, testCaregiverID)
	env.apply(t, shift.ID, otherCaregiver)

	applications, total, err := env.applications.ListForShift(ctx, shift.ID, testOperatorID, repositories.ApplicationCriteria{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, applications, 2)

	// Non-owners may not inspect a shift's applications.
	_, _, err = env.applications.ListForShift(ctx, shift.ID, testCaregiverID, repositories.ApplicationCriteria{})
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	mine, total, err := env.applications.ListForCaregiver(ctx, testCaregiverID, testCaregiverID, repositories.ApplicationCriteria{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, mine, 1)
	assert.Equal(t, testCaregiverID, mine[0].CaregiverID)

	// Caregivers only see their own applications.
	_, _, err = env.applications.ListForCaregiver(ctx, testCaregiverID, otherCaregiver, repositories.ApplicationCriteria{})
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
}
