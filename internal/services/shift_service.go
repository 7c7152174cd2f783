package services

import (
	"context"
	"time"

	"careshift_backend/internal/appErrors"
	"careshift_backend/internal/logger"
	"careshift_backend/internal/models"
	"careshift_backend/internal/repositories"
)

// ShiftService owns the shift state machine:
//
//	open --offer--> offered --confirm--> assigned --complete--> completed
//	open|offered|assigned --cancel--> cancelled
//	offered --(candidate withdraws or is rejected)--> open
//
// Confirm is delegated to the AssignmentCoordinator, which performs the
// atomic assignment step.
type ShiftService struct {
	store       repositories.Store
	coordinator *AssignmentCoordinator
	events      EventSink
}

func NewShiftService(store repositories.Store, coordinator *AssignmentCoordinator, events EventSink) *ShiftService {
	return &ShiftService{
		store:       store,
		coordinator: coordinator,
		events:      events,
	}
}

type CreateShiftInput struct {
	HomeID     string
	OperatorID string
	StartTime  time.Time
	EndTime    time.Time
	HourlyRate float64
	Notes      *string
}

func (s *ShiftService) Create(ctx context.Context, input CreateShiftInput) (*models.Shift, error) {
	if err := requireID(input.HomeID, "home_id"); err != nil {
		return nil, err
	}
	if err := requireID(input.OperatorID, "operator_id"); err != nil {
		return nil, err
	}
	if !input.EndTime.After(input.StartTime) {
		return nil, appErrors.ErrInvalidTimeWindow
	}
	if input.HourlyRate <= 0 {
		return nil, appErrors.ErrInvalidRate
	}

	shift := &models.Shift{
		HomeID:     input.HomeID,
		CreatedBy:  input.OperatorID,
		StartTime:  input.StartTime.UTC(),
		EndTime:    input.EndTime.UTC(),
		HourlyRate: input.HourlyRate,
		Status:     models.ShiftStatusOpen,
		Notes:      input.Notes,
		Version:    1,
	}
	if err := s.store.Shifts().Create(ctx, shift); err != nil {
		return nil, storeErr(err)
	}

	logger.CtxInfo(ctx, "shift created", "shift_id", shift.ID, "home_id", shift.HomeID)
	s.events.Submit(Event{
		Type:       EventShiftCreated,
		ActorID:    input.OperatorID,
		ShiftID:    shift.ID,
		HomeID:     shift.HomeID,
		OperatorID: shift.CreatedBy,
		OccurredAt: time.Now().UTC(),
	})
	return shift, nil
}

// Offer selects an application as the shift's candidate and moves the shift
// to offered. Offering while already offered to a different application is an
// implicit reassignment: the prior candidate application becomes rejected.
// Re-offering to the current candidate is a no-op success.
func (s *ShiftService) Offer(ctx context.Context, shiftID, applicationID, actorID string) (*models.Shift, error) {
	if err := requireID(shiftID, "shift_id"); err != nil {
		return nil, err
	}
	if err := requireID(applicationID, "application_id"); err != nil {
		return nil, err
	}
	if err := requireID(actorID, "actor_id"); err != nil {
		return nil, err
	}

	var (
		result *models.Shift
		events []Event
	)
	err := withTxRetry(func() error {
		events = events[:0]
		return s.store.InShiftTx(ctx, shiftID, func(tx repositories.Store) error {
			shift, err := tx.Shifts().GetByID(ctx, shiftID)
			if err != nil {
				return storeErr(err)
			}
			if shift.CreatedBy != actorID {
				return appErrors.ErrForbidden
			}
			if shift.Status != models.ShiftStatusOpen && shift.Status != models.ShiftStatusOffered {
				return appErrors.ErrInvalidShiftStatus.WithDetails(map[string]string{
					"status": string(shift.Status),
				})
			}

			application, err := tx.Applications().GetByID(ctx, applicationID)
			if err != nil {
				return storeErr(err)
			}
			if application.ShiftID != shift.ID {
				return appErrors.ErrApplicationNotFound
			}

			if shift.CandidateApplicationID != nil && *shift.CandidateApplicationID == application.ID {
				result = shift
				return nil
			}

			if application.Status != models.ApplicationStatusPending {
				return appErrors.ErrApplicationNotPending.WithDetails(map[string]string{
					"status": string(application.Status),
				})
			}

			now := time.Now().UTC()

			// Reassignment: the displaced candidate is rejected.
			if shift.CandidateApplicationID != nil {
				prior, err := tx.Applications().GetByID(ctx, *shift.CandidateApplicationID)
				if err != nil {
					return storeErr(err)
				}
				if !prior.Status.IsTerminal() {
					if err := tx.Applications().UpdateStatus(ctx, prior.ID, models.ApplicationStatusRejected, now); err != nil {
						return storeErr(err)
					}
					events = append(events, Event{
						Type:          EventApplicationRejected,
						ActorID:       actorID,
						ShiftID:       shift.ID,
						HomeID:        shift.HomeID,
						OperatorID:    shift.CreatedBy,
						ApplicationID: prior.ID,
						CaregiverID:   prior.CaregiverID,
						Details:       map[string]interface{}{"reason": "reassigned"},
						OccurredAt:    now,
					})
				}
			}

			candidateID := application.ID
			shift.CandidateApplicationID = &candidateID
			shift.Status = models.ShiftStatusOffered
			if err := tx.Shifts().UpdateVersioned(ctx, shift); err != nil {
				return storeErr(err)
			}

			events = append(events, Event{
				Type:          EventShiftOffered,
				ActorID:       actorID,
				ShiftID:       shift.ID,
				HomeID:        shift.HomeID,
				OperatorID:    shift.CreatedBy,
				ApplicationID: application.ID,
				CaregiverID:   application.CaregiverID,
				OccurredAt:    now,
			})
			result = shift
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	for _, event := range events {
		s.events.Submit(event)
	}
	return result, nil
}

// Confirm finalizes the assignment of an offered shift whose candidate has
// accepted. Idempotent: confirming an already-assigned shift with the same
// accepted caregiver is a no-op success.
func (s *ShiftService) Confirm(ctx context.Context, shiftID, actorID string) (*models.Shift, error) {
	return s.coordinator.Confirm(ctx, shiftID, actorID)
}

// Complete closes out an assigned shift. Valid only from assigned; repeating
// the call on a completed shift is a no-op success.
func (s *ShiftService) Complete(ctx context.Context, shiftID, actorID string) (*models.Shift, error) {
	if err := requireID(shiftID, "shift_id"); err != nil {
		return nil, err
	}
	if err := requireID(actorID, "actor_id"); err != nil {
		return nil, err
	}

	var (
		result *models.Shift
		events []Event
	)
	err := withTxRetry(func() error {
		events = events[:0]
		return s.store.InShiftTx(ctx, shiftID, func(tx repositories.Store) error {
			shift, err := tx.Shifts().GetByID(ctx, shiftID)
			if err != nil {
				return storeErr(err)
			}
			if shift.CreatedBy != actorID {
				return appErrors.ErrForbidden
			}
			if shift.Status == models.ShiftStatusCompleted {
				result = shift
				return nil
			}
			if shift.Status != models.ShiftStatusAssigned {
				return appErrors.ErrInvalidShiftStatus.WithDetails(map[string]string{
					"status": string(shift.Status),
				})
			}

			shift.Status = models.ShiftStatusCompleted
			if err := tx.Shifts().UpdateVersioned(ctx, shift); err != nil {
				return storeErr(err)
			}

			events = append(events, Event{
				Type:        EventShiftCompleted,
				ActorID:     actorID,
				ShiftID:     shift.ID,
				HomeID:      shift.HomeID,
				OperatorID:  shift.CreatedBy,
				CaregiverID: derefString(shift.AssignedCaregiverID),
				OccurredAt:  time.Now().UTC(),
			})
			result = shift
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	for _, event := range events {
		s.events.Submit(event)
	}
	return result, nil
}

// Cancel drives the shift to its terminal cancelled state from open, offered
// or assigned. Cancelling an already-cancelled shift is a no-op success; a
// completed shift cannot be cancelled. Still-open applications on the shift
// are rejected in the same transaction, and if the shift was assigned a
// release event is emitted for the caregiver.
func (s *ShiftService) Cancel(ctx context.Context, shiftID, reason, actorID string) (*models.Shift, error) {
	if err := requireID(shiftID, "shift_id"); err != nil {
		return nil, err
	}
	if err := requireID(actorID, "actor_id"); err != nil {
		return nil, err
	}

	var (
		result *models.Shift
		events []Event
	)
	err := withTxRetry(func() error {
		events = events[:0]
		return s.store.InShiftTx(ctx, shiftID, func(tx repositories.Store) error {
			shift, err := tx.Shifts().GetByID(ctx, shiftID)
			if err != nil {
				return storeErr(err)
			}
			if shift.CreatedBy != actorID {
				return appErrors.ErrForbidden
			}
			if shift.Status == models.ShiftStatusCancelled {
				result = shift
				return nil
			}
			if shift.Status == models.ShiftStatusCompleted {
				return appErrors.ErrInvalidShiftStatus.WithDetails(map[string]string{
					"status": string(shift.Status),
				})
			}

			now := time.Now().UTC()
			releasedCaregiver := derefString(shift.AssignedCaregiverID)
			wasAssigned := shift.Status == models.ShiftStatusAssigned
			candidateID := derefString(shift.CandidateApplicationID)

			// Settle open applications so nobody is left holding a live
			// application on a dead shift.
			rejected, err := tx.Applications().RejectOtherPending(ctx, shift.ID, "", now)
			if err != nil {
				return storeErr(err)
			}
			if candidateID != "" {
				candidate, err := tx.Applications().GetByID(ctx, candidateID)
				if err != nil {
					return storeErr(err)
				}
				if candidate.Status == models.ApplicationStatusAccepted {
					if err := tx.Applications().UpdateStatus(ctx, candidateID, models.ApplicationStatusRejected, now); err != nil {
						return storeErr(err)
					}
					rejected++
				}
			}

			shift.Status = models.ShiftStatusCancelled
			shift.CandidateApplicationID = nil
			shift.AssignedCaregiverID = nil
			if err := tx.Shifts().UpdateVersioned(ctx, shift); err != nil {
				return storeErr(err)
			}

			events = append(events, Event{
				Type:       EventShiftCancelled,
				ActorID:    actorID,
				ShiftID:    shift.ID,
				HomeID:     shift.HomeID,
				OperatorID: shift.CreatedBy,
				Details:    map[string]interface{}{"reason": reason, "rejected_applications": rejected},
				OccurredAt: now,
			})
			if wasAssigned {
				events = append(events, Event{
					Type:        EventCaregiverReleased,
					ActorID:     actorID,
					ShiftID:     shift.ID,
					HomeID:      shift.HomeID,
					OperatorID:  shift.CreatedBy,
					CaregiverID: releasedCaregiver,
					Details:     map[string]interface{}{"reason": reason},
					OccurredAt:  now,
				})
			}
			result = shift
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	for _, event := range events {
		s.events.Submit(event)
	}
	return result, nil
}

func (s *ShiftService) GetShift(ctx context.Context, shiftID string) (*models.Shift, error) {
	if err := requireID(shiftID, "shift_id"); err != nil {
		return nil, err
	}
	shift, err := s.store.Shifts().GetByID(ctx, shiftID)
	if err != nil {
		return nil, storeErr(err)
	}
	return shift, nil
}

// ListOpenShifts lists shifts still accepting applications, optionally
// filtered by home and window.
func (s *ShiftService) ListOpenShifts(ctx context.Context, criteria repositories.ShiftCriteria) ([]models.Shift, int64, error) {
	if len(criteria.Statuses) == 0 {
		criteria.Statuses = []models.ShiftStatus{models.ShiftStatusOpen}
	}
	shifts, total, err := s.store.Shifts().List(ctx, criteria)
	if err != nil {
		return nil, 0, storeErr(err)
	}
	return shifts, total, nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
