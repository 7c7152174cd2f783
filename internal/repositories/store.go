package repositories

import (
	"context"
	"errors"
	"time"

	"careshift_backend/internal/models"
)

var (
	ErrShiftNotFound       = errors.New("shift not found")
	ErrApplicationNotFound = errors.New("application not found")

	// ErrStaleVersion means the shift was written by a concurrent
	// transaction between read and write. Callers retry a bounded
	// number of times.
	ErrStaleVersion = errors.New("shift version is stale")
)

// Store is the transactional persistence boundary for shifts and their
// applications. It is always injected, never a singleton, so tests can run
// isolated instances concurrently.
type Store interface {
	Shifts() ShiftRepository
	Applications() ApplicationRepository

	// InShiftTx runs fn inside a transaction that serializes all mutations
	// of the given shift and its applications. Either every write inside fn
	// commits or none does.
	InShiftTx(ctx context.Context, shiftID string, fn func(tx Store) error) error
}

// ShiftCriteria filters shift listings.
type ShiftCriteria struct {
	HomeID   string
	Statuses []models.ShiftStatus
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
}

// ApplicationCriteria filters application listings.
type ApplicationCriteria struct {
	Statuses []models.ApplicationStatus
	Limit    int
	Offset   int
}

type ShiftRepository interface {
	Create(ctx context.Context, shift *models.Shift) error
	GetByID(ctx context.Context, id string) (*models.Shift, error)

	// UpdateVersioned writes the shift conditioned on its version being
	// unchanged since the read, then bumps it. Returns ErrStaleVersion on a
	// lost update.
	UpdateVersioned(ctx context.Context, shift *models.Shift) error

	List(ctx context.Context, criteria ShiftCriteria) ([]models.Shift, int64, error)

	// FindOverlappingCommitments returns shifts that block the caregiver in
	// [start, end): shifts offered or assigned where the caregiver either is
	// the assignee or holds an accepted application.
	FindOverlappingCommitments(ctx context.Context, caregiverID string, start, end time.Time) ([]models.Shift, error)

	// ExpireUnassigned cancels open and offered shifts whose window already
	// ended. Used by the sweep worker only.
	ExpireUnassigned(ctx context.Context, now time.Time) (int64, error)
}

type ApplicationRepository interface {
	Create(ctx context.Context, application *models.Application) error
	GetByID(ctx context.Context, id string) (*models.Application, error)
	UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus, decidedAt time.Time) error

	// FindActiveByShiftAndCaregiver returns the caregiver's pending or
	// accepted application for the shift, or nil when there is none.
	FindActiveByShiftAndCaregiver(ctx context.Context, shiftID, caregiverID string) (*models.Application, error)

	ListByShift(ctx context.Context, shiftID string, criteria ApplicationCriteria) ([]models.Application, int64, error)
	ListByCaregiver(ctx context.Context, caregiverID string, criteria ApplicationCriteria) ([]models.Application, int64, error)

	// RejectOtherPending moves every pending application of the shift except
	// keepID to rejected. An empty keepID rejects all of them. Safe to call
	// when no such applications exist.
	RejectOtherPending(ctx context.Context, shiftID, keepID string, decidedAt time.Time) (int64, error)
}
