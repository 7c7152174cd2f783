package services

import (
	"context"
	"time"

	"careshift_backend/internal/appErrors"
	"careshift_backend/internal/logger"
	"careshift_backend/internal/models"
	"careshift_backend/internal/repositories"
	"careshift_backend/internal/scheduling"
)

// ApplicationService manages caregiver applications against a shift: apply,
// withdraw, accept and operator-side reject. The cross-entity coupling lives
// here: losing the current candidate reverts an offered shift to open.
type ApplicationService struct {
	store     repositories.Store
	validator *scheduling.Validator
	events    EventSink
}

func NewApplicationService(store repositories.Store, validator *scheduling.Validator, events EventSink) *ApplicationService {
	return &ApplicationService{
		store:     store,
		validator: validator,
		events:    events,
	}
}

// Apply creates a pending application for an open shift. A caregiver with an
// active application on the shift gets the existing row back together with a
// conflict; a caregiver with an overlapping commitment gets an overlap error.
func (s *ApplicationService) Apply(ctx context.Context, shiftID, caregiverID string, message *string) (*models.Application, error) {
	if err := requireID(shiftID, "shift_id"); err != nil {
		return nil, err
	}
	if err := requireID(caregiverID, "caregiver_id"); err != nil {
		return nil, err
	}

	var (
		result *models.Application
		events []Event
	)
	err := s.store.InShiftTx(ctx, shiftID, func(tx repositories.Store) error {
		shift, err := tx.Shifts().GetByID(ctx, shiftID)
		if err != nil {
			return storeErr(err)
		}
		if shift.Status != models.ShiftStatusOpen {
			return appErrors.ErrInvalidShiftStatus.WithDetails(map[string]string{
				"status": string(shift.Status),
			})
		}

		existing, err := tx.Applications().FindActiveByShiftAndCaregiver(ctx, shiftID, caregiverID)
		if err != nil {
			return storeErr(err)
		}
		if existing != nil {
			result = existing
			return appErrors.ErrDuplicateApplication.WithDetails(map[string]string{
				"application_id": existing.ID,
			})
		}

		conflicts, err := s.validator.FindConflicts(ctx, caregiverID, shift.StartTime, shift.EndTime, shift.ID)
		if err != nil {
			return storeErr(err)
		}
		if len(conflicts) > 0 {
			return appErrors.ErrScheduleOverlap.WithDetails(map[string]interface{}{
				"conflicting_shift_ids": shiftIDs(conflicts),
			})
		}

		application := &models.Application{
			ShiftID:     shift.ID,
			CaregiverID: caregiverID,
			Status:      models.ApplicationStatusPending,
			Message:     message,
			AppliedAt:   time.Now().UTC(),
		}
		if err := tx.Applications().Create(ctx, application); err != nil {
			return storeErr(err)
		}

		events = append(events, Event{
			Type:          EventApplicationReceived,
			ActorID:       caregiverID,
			ShiftID:       shift.ID,
			HomeID:        shift.HomeID,
			OperatorID:    shift.CreatedBy,
			ApplicationID: application.ID,
			CaregiverID:   caregiverID,
			OccurredAt:    application.AppliedAt,
		})
		result = application
		return nil
	})
	if err != nil {
		// The duplicate case still hands the existing application back.
		return result, err
	}

	for _, event := range events {
		s.events.Submit(event)
	}
	return result, nil
}

// Withdraw retracts the caregiver's own application from pending or accepted.
// Withdrawing the current candidate of an offered shift reverts the shift to
// open. Once the shift is assigned (or completed) the application is locked
// in and withdraw is a conflict. Repeating a withdraw is a no-op success.
func (s *ApplicationService) Withdraw(ctx context.Context, applicationID, caregiverID string) (*models.Application, error) {
	if err := requireID(applicationID, "application_id"); err != nil {
		return nil, err
	}
	if err := requireID(caregiverID, "caregiver_id"); err != nil {
		return nil, err
	}

	application, err := s.store.Applications().GetByID(ctx, applicationID)
	if err != nil {
		return nil, storeErr(err)
	}
	if application.CaregiverID != caregiverID {
		return nil, appErrors.ErrForbidden
	}

	var (
		result *models.Application
		events []Event
	)
	err = withTxRetry(func() error {
		events = events[:0]
		return s.store.InShiftTx(ctx, application.ShiftID, func(tx repositories.Store) error {
			current, err := tx.Applications().GetByID(ctx, applicationID)
			if err != nil {
				return storeErr(err)
			}
			if current.Status == models.ApplicationStatusWithdrawn {
				result = current
				return nil
			}
			if current.Status == models.ApplicationStatusRejected {
				return appErrors.ErrApplicationNotPending.WithDetails(map[string]string{
					"status": string(current.Status),
				})
			}

			shift, err := tx.Shifts().GetByID(ctx, current.ShiftID)
			if err != nil {
				return storeErr(err)
			}
			// Once the shift is assigned the caregiver cannot walk away
			// unilaterally; releasing the assignment is the operator's cancel.
			if shift.Status == models.ShiftStatusAssigned || shift.Status == models.ShiftStatusCompleted {
				return appErrors.ErrInvalidShiftStatus.WithDetails(map[string]string{
					"status": string(shift.Status),
				})
			}

			now := time.Now().UTC()
			if err := tx.Applications().UpdateStatus(ctx, current.ID, models.ApplicationStatusWithdrawn, now); err != nil {
				return storeErr(err)
			}
			current.Status = models.ApplicationStatusWithdrawn
			current.DecidedAt = &now

			eventType := EventApplicationWithdrawn
			if shift.Status == models.ShiftStatusOffered &&
				shift.CandidateApplicationID != nil && *shift.CandidateApplicationID == current.ID {
				// The candidate walked away: the shift goes back on the market.
				shift.Status = models.ShiftStatusOpen
				shift.CandidateApplicationID = nil
				if err := tx.Shifts().UpdateVersioned(ctx, shift); err != nil {
					return storeErr(err)
				}
				eventType = EventOfferDeclined
			}

			events = append(events, Event{
				Type:          eventType,
				ActorID:       caregiverID,
				ShiftID:       shift.ID,
				HomeID:        shift.HomeID,
				OperatorID:    shift.CreatedBy,
				ApplicationID: current.ID,
				CaregiverID:   caregiverID,
				OccurredAt:    now,
			})
			result = current
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

// Reject is the operator-side decision on an application. Rejecting the sole
// candidate of an offered shift reverts the shift to open. Rejecting an
// already-rejected application is a no-op success; once the shift is assigned
// the accepted application can only be released through Cancel.
func (s *ApplicationService) Reject(ctx context.Context, applicationID, actorID string) (*models.Application, error) {
	if err := requireID(applicationID, "application_id"); err != nil {
		return nil, err
	}
	if err := requireID(actorID, "actor_id"); err != nil {
		return nil, err
	}

	application, err := s.store.Applications().GetByID(ctx, applicationID)
	if err != nil {
		return nil, storeErr(err)
	}

	var (
		result *models.Application
		events []Event
	)
	err = withTxRetry(func() error {
		events = events[:0]
		return s.store.InShiftTx(ctx, application.ShiftID, func(tx repositories.Store) error {
			current, err := tx.Applications().GetByID(ctx, applicationID)
			if err != nil {
				return storeErr(err)
			}
			shift, err := tx.Shifts().GetByID(ctx, current.ShiftID)
			if err != nil {
				return storeErr(err)
			}
			if shift.CreatedBy != actorID {
				return appErrors.ErrForbidden
			}
			if current.Status == models.ApplicationStatusRejected {
				result = current
				return nil
			}
			if current.Status == models.ApplicationStatusWithdrawn {
				return appErrors.ErrApplicationNotPending.WithDetails(map[string]string{
					"status": string(current.Status),
				})
			}
			// The accepted application of an assigned shift can only be
			// released through Cancel.
			if shift.Status == models.ShiftStatusAssigned || shift.Status == models.ShiftStatusCompleted {
				return appErrors.ErrInvalidShiftStatus.WithDetails(map[string]string{
					"status": string(shift.Status),
				})
			}

			now := time.Now().UTC()
			if err := tx.Applications().UpdateStatus(ctx, current.ID, models.ApplicationStatusRejected, now); err != nil {
				return storeErr(err)
			}
			current.Status = models.ApplicationStatusRejected
			current.DecidedAt = &now

			if shift.Status == models.ShiftStatusOffered &&
				shift.CandidateApplicationID != nil && *shift.CandidateApplicationID == current.ID {
				shift.Status = models.ShiftStatusOpen
				shift.CandidateApplicationID = nil
				if err := tx.Shifts().UpdateVersioned(ctx, shift); err != nil {
					return storeErr(err)
				}
			}

			events = append(events, Event{
				Type:          EventApplicationRejected,
				ActorID:       actorID,
				ShiftID:       shift.ID,
				HomeID:        shift.HomeID,
				OperatorID:    shift.CreatedBy,
				ApplicationID: current.ID,
				CaregiverID:   current.CaregiverID,
				OccurredAt:    now,
			})
			result = current
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

// Accept is the caregiver's acceptance of an offer. The application must hold
// the candidate slot of an offered shift; the overlap check runs again since
// commitments may have appeared after apply. Accepting an already-accepted
// candidate is a no-op success.
func (s *ApplicationService) Accept(ctx context.Context, applicationID, caregiverID string) (*models.Application, error) {
	if err := requireID(applicationID, "application_id"); err != nil {
		return nil, err
	}
	if err := requireID(caregiverID, "caregiver_id"); err != nil {
		return nil, err
	}

	application, err := s.store.Applications().GetByID(ctx, applicationID)
	if err != nil {
		return nil, storeErr(err)
	}
	if application.CaregiverID != caregiverID {
		return nil, appErrors.ErrForbidden
	}

	var (
		result *models.Application
		events []Event
	)
	err = withTxRetry(func() error {
		events = events[:0]
		return s.store.InShiftTx(ctx, application.ShiftID, func(tx repositories.Store) error {
			current, err := tx.Applications().GetByID(ctx, applicationID)
			if err != nil {
				return storeErr(err)
			}
			shift, err := tx.Shifts().GetByID(ctx, current.ShiftID)
			if err != nil {
				return storeErr(err)
			}

			if shift.Status != models.ShiftStatusOffered ||
				shift.CandidateApplicationID == nil || *shift.CandidateApplicationID != current.ID {
				return appErrors.ErrNotCandidate
			}
			if current.Status == models.ApplicationStatusAccepted {
				result = current
				return nil
			}
			if current.Status != models.ApplicationStatusPending {
				return appErrors.ErrApplicationNotPending.WithDetails(map[string]string{
					"status": string(current.Status),
				})
			}

			conflicts, err := s.validator.FindConflicts(ctx, caregiverID, shift.StartTime, shift.EndTime, shift.ID)
			if err != nil {
				return storeErr(err)
			}
			if len(conflicts) > 0 {
				return appErrors.ErrScheduleOverlap.WithDetails(map[string]interface{}{
					"conflicting_shift_ids": shiftIDs(conflicts),
				})
			}

			now := time.Now().UTC()
			if err := tx.Applications().UpdateStatus(ctx, current.ID, models.ApplicationStatusAccepted, now); err != nil {
				return storeErr(err)
			}
			current.Status = models.ApplicationStatusAccepted
			current.DecidedAt = &now

			events = append(events, Event{
				Type:          EventOfferAccepted,
				ActorID:       caregiverID,
				ShiftID:       shift.ID,
				HomeID:        shift.HomeID,
				OperatorID:    shift.CreatedBy,
				ApplicationID: current.ID,
				CaregiverID:   caregiverID,
				OccurredAt:    now,
			})
			result = current
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	logger.CtxInfo(ctx, "offer accepted", "application_id", applicationID)
	for _, event := range events {
		s.events.Submit(event)
	}
	return result, nil
}

func (s *ApplicationService) GetApplication(ctx context.Context, applicationID string) (*models.Application, error) {
	if err := requireID(applicationID, "application_id"); err != nil {
		return nil, err
	}
	application, err := s.store.Applications().GetByID(ctx, applicationID)
	if err != nil {
		return nil, storeErr(err)
	}
	return application, nil
}

// ListForShift returns the shift's applications; only the owning operator may
// see them.
func (s *ApplicationService) ListForShift(ctx context.Context, shiftID, actorID string, criteria repositories.ApplicationCriteria) ([]models.Application, int64, error) {
	if err := requireID(shiftID, "shift_id"); err != nil {
		return nil, 0, err
	}
	shift, err := s.store.Shifts().GetByID(ctx, shiftID)
	if err != nil {
		return nil, 0, storeErr(err)
	}
	if shift.CreatedBy != actorID {
		return nil, 0, appErrors.ErrForbidden
	}

	applications, total, err := s.store.Applications().ListByShift(ctx, shiftID, criteria)
	if err != nil {
		return nil, 0, storeErr(err)
	}
	return applications, total, nil
}

// ListForCaregiver returns the caregiver's own applications.
func (s *ApplicationService) ListForCaregiver(ctx context.Context, caregiverID, actorID string, criteria repositories.ApplicationCriteria) ([]models.Application, int64, error) {
	if err := requireID(caregiverID, "caregiver_id"); err != nil {
		return nil, 0, err
	}
	if caregiverID != actorID {
		return nil, 0, appErrors.ErrForbidden
	}

	applications, total, err := s.store.Applications().ListByCaregiver(ctx, caregiverID, criteria)
	if err != nil {
		return nil, 0, storeErr(err)
	}
	return applications, total, nil
}

func shiftIDs(shifts []models.Shift) []string {
	ids := make([]string, 0, len(shifts))
	for _, shift := range shifts {
		ids = append(ids, shift.ID)
	}
	return ids
}
