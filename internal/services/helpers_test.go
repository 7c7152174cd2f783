package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"careshift_backend/internal/models"
	"careshift_backend/internal/repositories/memstore"
	"careshift_backend/internal/scheduling"
	"careshift_backend/internal/services"

	"github.com/stretchr/testify/require"
)

const (
	testHomeID      = "11111111-1111-1111-1111-111111111111"
	testOperatorID  = "22222222-2222-2222-2222-222222222222"
	testCaregiverID = "33333333-3333-3333-3333-333333333333"
	otherCaregiver  = "44444444-4444-4444-4444-444444444444"
)

// recordingSink collects submitted events so tests can assert on them.
type recordingSink struct {
	mu     sync.Mutex
	events []services.Event
}

func (s *recordingSink) Submit(event services.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *recordingSink) all() []services.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]services.Event(nil), s.events...)
}

func (s *recordingSink) countByType(eventType string) int {
	count := 0
	for _, event := range s.all() {
		if event.Type == eventType {
			count++
		}
	}
	return count
}

type testEnv struct {
	store        *memstore.Store
	shifts       *services.ShiftService
	applications *services.ApplicationService
	coordinator  *services.AssignmentCoordinator
	sink         *recordingSink
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memstore.New()
	sink := &recordingSink{}
	coordinator := services.NewAssignmentCoordinator(store, sink)
	return &testEnv{
		store:        store,
		shifts:       services.NewShiftService(store, coordinator, sink),
		applications: services.NewApplicationService(store, scheduling.NewValidator(store), sink),
		coordinator:  coordinator,
		sink:         sink,
	}
}

// createShift makes an open shift owned by testOperatorID [start, start+8h).
func (env *testEnv) createShift(t *testing.T, start time.Time) *models.Shift {
	t.Helper()
	shift, err := env.shifts.Create(context.Background(), services.CreateShiftInput{
		HomeID:     testHomeID,
		OperatorID: testOperatorID,
		StartTime:  start,
		EndTime:    start.Add(8 * time.Hour),
		HourlyRate: 24.50,
	})
	require.NoError(t, err)
	return shift
}

func (env *testEnv) apply(t *testing.T, shiftID, caregiverID string) *models.Application {
	t.Helper()
	application, err := env.applications.Apply(context.Background(), shiftID, caregiverID, nil)
	require.NoError(t, err)
	return application
}

// offerAndAccept walks a shift to offered with an accepted candidate.
func (env *testEnv) offerAndAccept(t *testing.T, shiftID, applicationID, caregiverID string) {
	t.Helper()
	ctx := context.Background()
	_, err := env.shifts.Offer(ctx, shiftID, applicationID, testOperatorID)
	require.NoError(t, err)
	_, err = env.applications.Accept(ctx, applicationID, caregiverID)
	require.NoError(t, err)
}

func shiftStart() time.Time {
	return time.Date(2026, 10, 5, 8, 0, 0, 0, time.UTC)
}
