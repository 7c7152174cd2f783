package workers

import (
	"context"
	"encoding/json"

	"careshift_backend/internal/models"
	"careshift_backend/internal/repositories"

	"gorm.io/datatypes"
)

// notificationStoreSink persists notifications as in-app rows. Push or email
// delivery on top of these rows is an external concern.
type notificationStoreSink struct {
	repo repositories.NotificationRepository
}

func NewNotificationStoreSink(repo repositories.NotificationRepository) NotificationSink {
	return &notificationStoreSink{repo: repo}
}

var notificationTitles = map[string]string{
	"application_received":  "New application for your shift",
	"shift_offered":         "You have been offered a shift",
	"offer_accepted":        "Your shift offer was accepted",
	"offer_declined":        "Your shift offer was declined",
	"application_withdrawn": "An application was withdrawn",
	"application_rejected":  "Your application was not selected",
	"shift_assigned":        "You are confirmed for a shift",
	"shift_completed":       "Shift completed",
	"caregiver_released":    "An assigned shift was cancelled",
}

func (s *notificationStoreSink) Notify(ctx context.Context, recipientID, notificationType string, payload map[string]interface{}) error {
	title, ok := notificationTitles[notificationType]
	if !ok {
		title = notificationType
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return s.repo.Create(ctx, &models.Notification{
		RecipientID: recipientID,
		Type:        notificationType,
		Title:       title,
		Data:        datatypes.JSON(data),
	})
}

// auditStoreLogger persists audit entries via the audit repository.
type auditStoreLogger struct {
	repo repositories.AuditRepository
}

func NewAuditStoreLogger(repo repositories.AuditRepository) AuditLogger {
	return &auditStoreLogger{repo: repo}
}

func (l *auditStoreLogger) Record(ctx context.Context, actorID, action, resourceType, resourceID string, details map[string]interface{}) error {
	data, err := json.Marshal(details)
	if err != nil {
		return err
	}

	return l.repo.Create(ctx, &models.AuditLog{
		ActorID:      actorID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      datatypes.JSON(data),
	})
}
