package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"careshift_backend/internal/app"
	"careshift_backend/internal/config"
	"careshift_backend/internal/middleware"
	"careshift_backend/internal/models"
	"careshift_backend/internal/repositories"
	"careshift_backend/internal/repositories/memstore"
	"careshift_backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret"

// memNotificationRepo is an in-memory NotificationRepository so handler tests
// run without Postgres.
type memNotificationRepo struct {
	mu   sync.Mutex
	rows map[string]models.Notification
}

func newMemNotificationRepo() *memNotificationRepo {
	return &memNotificationRepo{rows: make(map[string]models.Notification)}
}

func (r *memNotificationRepo) Create(ctx context.Context, notification *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now().UTC()
	}
	r.rows[notification.ID] = *notification
	return nil
}

func (r *memNotificationRepo) ListByRecipient(ctx context.Context, recipientID string, onlyUnread bool, limit, offset int) ([]models.Notification, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []models.Notification
	for _, row := range r.rows {
		if row.RecipientID != recipientID {
			continue
		}
		if onlyUnread && row.IsRead {
			continue
		}
		matched = append(matched, row)
	}
	return matched, int64(len(matched)), nil
}

func (r *memNotificationRepo) MarkAsRead(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return repositories.ErrNotificationNotFound
	}
	now := time.Now().UTC()
	row.IsRead = true
	row.ReadAt = &now
	r.rows[id] = row
	return nil
}

func (r *memNotificationRepo) MarkAllAsRead(ctx context.Context, recipientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	for id, row := range r.rows {
		if row.RecipientID == recipientID && !row.IsRead {
			row.IsRead = true
			row.ReadAt = &now
			r.rows[id] = row
		}
	}
	return nil
}

func (r *memNotificationRepo) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, row := range r.rows {
		if row.RecipientID == recipientID && !row.IsRead {
			count++
		}
	}
	return count, nil
}

// memAuditRepo is an in-memory AuditRepository.
type memAuditRepo struct {
	mu   sync.Mutex
	rows []models.AuditLog
}

func (r *memAuditRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	r.rows = append(r.rows, *entry)
	return nil
}

func (r *memAuditRepo) ListByResource(ctx context.Context, resourceType, resourceID string, limit, offset int) ([]models.AuditLog, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []models.AuditLog
	for _, row := range r.rows {
		if row.ResourceType == resourceType && row.ResourceID == resourceID {
			matched = append(matched, row)
		}
	}
	return matched, int64(len(matched)), nil
}

func (r *memAuditRepo) ListByActor(ctx context.Context, actorID string, limit, offset int) ([]models.AuditLog, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []models.AuditLog
	for _, row := range r.rows {
		if row.ActorID == actorID {
			matched = append(matched, row)
		}
	}
	return matched, int64(len(matched)), nil
}

type testServer struct {
	router           *gin.Engine
	store            *memstore.Store
	notificationRepo *memNotificationRepo
	auditRepo        *memAuditRepo
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.Server.Env = "test"
	cfg.JWT.Secret = testJWTSecret

	store := memstore.New()
	notificationRepo := newMemNotificationRepo()
	auditRepo := &memAuditRepo{}

	return &testServer{
		router:           app.SetupRouter(cfg, store, notificationRepo, auditRepo, services.NopSink),
		store:            store,
		notificationRepo: notificationRepo,
		auditRepo:        auditRepo,
	}
}

func signToken(t *testing.T, subject string, role models.ActorRole) string {
	t.Helper()
	claims := middleware.ActorClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return token
}

// sendRequest performs an in-process request and returns status and body.
func (ts *testServer) sendRequest(t *testing.T, method, path, token string, body interface{}) (int, string) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	ts.router.ServeHTTP(recorder, req)
	return recorder.Code, recorder.Body.String()
}

func decodeBody(t *testing.T, body string, target interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(body), target))
}

func shiftWindow() (time.Time, time.Time) {
	start := time.Date(2026, 10, 5, 8, 0, 0, 0, time.UTC)
	return start, start.Add(8 * time.Hour)
}
