package services

import (
	"context"
	"time"

	"careshift_backend/internal/appErrors"
	"careshift_backend/internal/logger"
	"careshift_backend/internal/models"
	"careshift_backend/internal/repositories"
)

// AssignmentCoordinator owns the invariant that at most one caregiver is
// accepted or assigned per shift. The whole confirm step - state change plus
// bulk reject of the losing applications - runs as a single transaction; a
// crash mid-update is never observable.
type AssignmentCoordinator struct {
	store  repositories.Store
	events EventSink
}

func NewAssignmentCoordinator(store repositories.Store, events EventSink) *AssignmentCoordinator {
	return &AssignmentCoordinator{
		store:  store,
		events: events,
	}
}

// Confirm finalizes an offered shift whose candidate application has been
// accepted:
//
//  1. re-verify the shift is offered and the candidate is accepted,
//  2. set status assigned with the candidate's caregiver and bump the version,
//  3. bulk-reject every other pending application (no-op-safe),
//  4. emit one shift.assigned event.
//
// A concurrent caller that loses the race observes the already-assigned shift
// and returns success when the assignee matches its candidate, ErrAlreadyAssigned
// otherwise.
func (c *AssignmentCoordinator) Confirm(ctx context.Context, shiftID, actorID string) (*models.Shift, error) {
	if err := requireID(shiftID, "shift_id"); err != nil {
		return nil, err
	}
	if err := requireID(actorID, "actor_id"); err != nil {
		return nil, err
	}

	var (
		result   *models.Shift
		assigned *Event
	)
	err := withTxRetry(func() error {
		assigned = nil
		return c.store.InShiftTx(ctx, shiftID, func(tx repositories.Store) error {
			shift, err := tx.Shifts().GetByID(ctx, shiftID)
			if err != nil {
				return storeErr(err)
			}
			if shift.CreatedBy != actorID {
				return appErrors.ErrForbidden
			}

			if shift.Status == models.ShiftStatusAssigned {
				return c.resolveRepeatedConfirm(ctx, tx, shift, &result)
			}
			if shift.Status != models.ShiftStatusOffered {
				return appErrors.ErrInvalidShiftStatus.WithDetails(map[string]string{
					"status": string(shift.Status),
				})
			}
			if shift.CandidateApplicationID == nil {
				return appErrors.ErrNoAcceptedCandidate
			}

			candidate, err := tx.Applications().GetByID(ctx, *shift.CandidateApplicationID)
			if err != nil {
				return storeErr(err)
			}
			if candidate.Status != models.ApplicationStatusAccepted {
				return appErrors.ErrNoAcceptedCandidate.WithDetails(map[string]string{
					"candidate_status": string(candidate.Status),
				})
			}

			now := time.Now().UTC()
			caregiverID := candidate.CaregiverID
			shift.Status = models.ShiftStatusAssigned
			shift.AssignedCaregiverID = &caregiverID
			if err := tx.Shifts().UpdateVersioned(ctx, shift); err != nil {
				return storeErr(err)
			}

			rejected, err := tx.Applications().RejectOtherPending(ctx, shift.ID, candidate.ID, now)
			if err != nil {
				return storeErr(err)
			}

			assigned = &Event{
				Type:          EventShiftAssigned,
				ActorID:       actorID,
				ShiftID:       shift.ID,
				HomeID:        shift.HomeID,
				OperatorID:    shift.CreatedBy,
				ApplicationID: candidate.ID,
				CaregiverID:   caregiverID,
				Details:       map[string]interface{}{"rejected_applications": rejected},
				OccurredAt:    now,
			}
			result = shift
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	if assigned != nil {
		logger.CtxInfo(ctx, "shift assigned",
			"shift_id", assigned.ShiftID,
			"caregiver_id", assigned.CaregiverID,
		)
		c.events.Submit(*assigned)
	}
	return result, nil
}

// resolveRepeatedConfirm handles confirm on an already-assigned shift. The
// retry is benign when the assignee is the caregiver of the accepted
// candidate; no applications are re-rejected.
func (c *AssignmentCoordinator) resolveRepeatedConfirm(ctx context.Context, tx repositories.Store, shift *models.Shift, result **models.Shift) error {
	if shift.CandidateApplicationID == nil || shift.AssignedCaregiverID == nil {
		return appErrors.ErrAlreadyAssigned
	}
	candidate, err := tx.Applications().GetByID(ctx, *shift.CandidateApplicationID)
	if err != nil {
		return storeErr(err)
	}
	if candidate.Status == models.ApplicationStatusAccepted && candidate.CaregiverID == *shift.AssignedCaregiverID {
		*result = shift
		return nil
	}
	return appErrors.ErrAlreadyAssigned
}
