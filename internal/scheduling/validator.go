// Package scheduling answers one question: does a caregiver already hold a
// commitment whose time window intersects a given shift window. It never
// mutates state.
package scheduling

import (
	"context"
	"time"

	"careshift_backend/internal/models"
	"careshift_backend/internal/repositories"
)

// Overlaps tests half-open interval overlap: [aStart, aEnd) intersects
// [bStart, bEnd) iff aStart < bEnd && bStart < aEnd. Back-to-back windows
// (one ends exactly when the other starts) do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

type Validator struct {
	store repositories.Store
}

func NewValidator(store repositories.Store) *Validator {
	return &Validator{store: store}
}

// FindConflicts returns the caregiver's non-terminal commitments overlapping
// [start, end): shifts the caregiver is assigned to, plus shifts where the
// caregiver holds an accepted application. excludeShiftID drops the shift
// being decided on itself, so accepting an offer is not blocked by the offer.
func (v *Validator) FindConflicts(ctx context.Context, caregiverID string, start, end time.Time, excludeShiftID string) ([]models.Shift, error) {
	commitments, err := v.store.Shifts().FindOverlappingCommitments(ctx, caregiverID, start, end)
	if err != nil {
		return nil, err
	}

	var conflicts []models.Shift
	for _, shift := range commitments {
		if shift.ID == excludeShiftID {
			continue
		}
		conflicts = append(conflicts, shift)
	}
	return conflicts, nil
}

// HasConflict is FindConflicts reduced to a boolean.
func (v *Validator) HasConflict(ctx context.Context, caregiverID string, start, end time.Time, excludeShiftID string) (bool, error) {
	conflicts, err := v.FindConflicts(ctx, caregiverID, start, end, excludeShiftID)
	if err != nil {
		return false, err
	}
	return len(conflicts) > 0, nil
}
