// Package memstore is a map-backed repositories.Store used by unit tests.
// Writes to a shift and its applications are guarded by a mutex keyed by
// shift id, and InShiftTx restores the previous state when fn fails, so the
// semantics observable by the services match the transactional Postgres
// store.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"careshift_backend/internal/models"
	"careshift_backend/internal/repositories"
	"careshift_backend/internal/scheduling"

	"github.com/google/uuid"
)

type Store struct {
	mu           sync.RWMutex
	shifts       map[string]models.Shift
	applications map[string]models.Application

	lockMu     sync.Mutex
	shiftLocks map[string]*sync.Mutex
}

func New() *Store {
	return &Store{
		shifts:       make(map[string]models.Shift),
		applications: make(map[string]models.Application),
		shiftLocks:   make(map[string]*sync.Mutex),
	}
}

func (s *Store) Shifts() repositories.ShiftRepository {
	return &shiftRepo{s: s}
}

func (s *Store) Applications() repositories.ApplicationRepository {
	return &applicationRepo{s: s}
}

func (s *Store) InShiftTx(ctx context.Context, shiftID string, fn func(tx repositories.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	lock := s.lockFor(shiftID)
	lock.Lock()
	defer lock.Unlock()

	snapshot := s.snapshot(shiftID)
	if err := fn(s); err != nil {
		s.restore(shiftID, snapshot)
		return err
	}
	return nil
}

func (s *Store) lockFor(shiftID string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	lock, ok := s.shiftLocks[shiftID]
	if !ok {
		lock = &sync.Mutex{}
		s.shiftLocks[shiftID] = lock
	}
	return lock
}

type txSnapshot struct {
	shift        *models.Shift
	applications map[string]models.Application
}

// snapshot copies the shift row and every application of the shift so a
// failed transaction can be rolled back.
func (s *Store) snapshot(shiftID string) txSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := txSnapshot{applications: make(map[string]models.Application)}
	if shift, ok := s.shifts[shiftID]; ok {
		copied := shift
		snap.shift = &copied
	}
	for id, application := range s.applications {
		if application.ShiftID == shiftID {
			snap.applications[id] = application
		}
	}
	return snap
}

func (s *Store) restore(shiftID string, snap txSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snap.shift != nil {
		s.shifts[shiftID] = *snap.shift
	} else {
		delete(s.shifts, shiftID)
	}
	for id, application := range s.applications {
		if application.ShiftID != shiftID {
			continue
		}
		if prev, ok := snap.applications[id]; ok {
			s.applications[id] = prev
		} else {
			delete(s.applications, id)
		}
	}
	for id, application := range snap.applications {
		s.applications[id] = application
	}
}

// shiftRepo

type shiftRepo struct {
	s *Store
}

func (r *shiftRepo) Create(ctx context.Context, shift *models.Shift) error {
	if shift.ID == "" {
		shift.ID = uuid.NewString()
	}
	if shift.Version == 0 {
		shift.Version = 1
	}
	now := time.Now().UTC()
	if shift.CreatedAt.IsZero() {
		shift.CreatedAt = now
	}
	shift.UpdatedAt = now

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.shifts[shift.ID] = *shift
	return nil
}

func (r *shiftRepo) GetByID(ctx context.Context, id string) (*models.Shift, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	shift, ok := r.s.shifts[id]
	if !ok {
		return nil, repositories.ErrShiftNotFound
	}
	copied := shift
	return &copied, nil
}

func (r *shiftRepo) UpdateVersioned(ctx context.Context, shift *models.Shift) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.shifts[shift.ID]
	if !ok {
		return repositories.ErrShiftNotFound
	}
	if current.Version != shift.Version {
		return repositories.ErrStaleVersion
	}

	shift.Version++
	shift.UpdatedAt = time.Now().UTC()
	r.s.shifts[shift.ID] = *shift
	return nil
}

func (r *shiftRepo) List(ctx context.Context, criteria repositories.ShiftCriteria) ([]models.Shift, int64, error) {
	r.s.mu.RLock()
	var matched []models.Shift
	for _, shift := range r.s.shifts {
		if criteria.HomeID != "" && shift.HomeID != criteria.HomeID {
			continue
		}
		if len(criteria.Statuses) > 0 && !containsShiftStatus(criteria.Statuses, shift.Status) {
			continue
		}
		if criteria.From != nil && !shift.EndTime.After(*criteria.From) {
			continue
		}
		if criteria.To != nil && !shift.StartTime.Before(*criteria.To) {
			continue
		}
		matched = append(matched, shift)
	}
	r.s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].StartTime.Before(matched[j].StartTime)
	})

	total := int64(len(matched))
	return paginate(matched, criteria.Limit, criteria.Offset), total, nil
}

func (r *shiftRepo) FindOverlappingCommitments(ctx context.Context, caregiverID string, start, end time.Time) ([]models.Shift, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	acceptedShiftIDs := make(map[string]bool)
	for _, application := range r.s.applications {
		if application.CaregiverID == caregiverID && application.Status == models.ApplicationStatusAccepted {
			acceptedShiftIDs[application.ShiftID] = true
		}
	}

	var conflicts []models.Shift
	for _, shift := range r.s.shifts {
		if shift.Status != models.ShiftStatusOffered && shift.Status != models.ShiftStatusAssigned {
			continue
		}
		if !shift.IsAssignedTo(caregiverID) && !acceptedShiftIDs[shift.ID] {
			continue
		}
		if scheduling.Overlaps(shift.StartTime, shift.EndTime, start, end) {
			conflicts = append(conflicts, shift)
		}
	}

	sort.Slice(conflicts, func(i, j int) bool {
		return conflicts[i].StartTime.Before(conflicts[j].StartTime)
	})
	return conflicts, nil
}

func (r *shiftRepo) ExpireUnassigned(ctx context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var expired int64
	for id, shift := range r.s.shifts {
		if shift.Status != models.ShiftStatusOpen && shift.Status != models.ShiftStatusOffered {
			continue
		}
		if !shift.EndTime.Before(now) {
			continue
		}
		shift.Status = models.ShiftStatusCancelled
		shift.CandidateApplicationID = nil
		shift.Version++
		shift.UpdatedAt = now
		r.s.shifts[id] = shift
		expired++
	}
	return expired, nil
}

// applicationRepo

type applicationRepo struct {
	s *Store
}

func (r *applicationRepo) Create(ctx context.Context, application *models.Application) error {
	if application.ID == "" {
		application.ID = uuid.NewString()
	}
	if application.AppliedAt.IsZero() {
		application.AppliedAt = time.Now().UTC()
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.applications[application.ID] = *application
	return nil
}

func (r *applicationRepo) GetByID(ctx context.Context, id string) (*models.Application, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	application, ok := r.s.applications[id]
	if !ok {
		return nil, repositories.ErrApplicationNotFound
	}
	copied := application
	return &copied, nil
}

func (r *applicationRepo) UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus, decidedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	application, ok := r.s.applications[id]
	if !ok {
		return repositories.ErrApplicationNotFound
	}
	application.Status = status
	application.DecidedAt = &decidedAt
	r.s.applications[id] = application
	return nil
}

func (r *applicationRepo) FindActiveByShiftAndCaregiver(ctx context.Context, shiftID, caregiverID string) (*models.Application, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, application := range r.s.applications {
		if application.ShiftID == shiftID && application.CaregiverID == caregiverID && application.IsActive() {
			copied := application
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *applicationRepo) ListByShift(ctx context.Context, shiftID string, criteria repositories.ApplicationCriteria) ([]models.Application, int64, error) {
	return r.listWhere(func(a models.Application) bool { return a.ShiftID == shiftID }, criteria)
}

func (r *applicationRepo) ListByCaregiver(ctx context.Context, caregiverID string, criteria repositories.ApplicationCriteria) ([]models.Application, int64, error) {
	return r.listWhere(func(a models.Application) bool { return a.CaregiverID == caregiverID }, criteria)
}

func (r *applicationRepo) listWhere(match func(models.Application) bool, criteria repositories.ApplicationCriteria) ([]models.Application, int64, error) {
	r.s.mu.RLock()
	var matched []models.Application
	for _, application := range r.s.applications {
		if !match(application) {
			continue
		}
		if len(criteria.Statuses) > 0 && !containsApplicationStatus(criteria.Statuses, application.Status) {
			continue
		}
		matched = append(matched, application)
	}
	r.s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].AppliedAt.Before(matched[j].AppliedAt)
	})

	total := int64(len(matched))
	return paginate(matched, criteria.Limit, criteria.Offset), total, nil
}

func (r *applicationRepo) RejectOtherPending(ctx context.Context, shiftID, keepID string, decidedAt time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var rejected int64
	for id, application := range r.s.applications {
		if application.ShiftID != shiftID || id == keepID {
			continue
		}
		if application.Status != models.ApplicationStatusPending {
			continue
		}
		application.Status = models.ApplicationStatusRejected
		decided := decidedAt
		application.DecidedAt = &decided
		r.s.applications[id] = application
		rejected++
	}
	return rejected, nil
}

// helpers

func paginate[T any](items []T, limit, offset int) []T {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func containsShiftStatus(statuses []models.ShiftStatus, status models.ShiftStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func containsApplicationStatus(statuses []models.ApplicationStatus, status models.ApplicationStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}
