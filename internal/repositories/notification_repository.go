package repositories

import (
	"context"
	"errors"
	"time"

	"careshift_backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrNotificationNotFound = errors.New("notification not found")

// Notification types emitted by the dispatcher.
const (
	NotificationTypeApplicationReceived = "application_received"
	NotificationTypeShiftOffered        = "shift_offered"
	NotificationTypeOfferAccepted       = "offer_accepted"
	NotificationTypeOfferDeclined       = "offer_declined"
	NotificationTypeApplicationRejected = "application_rejected"
	NotificationTypeShiftAssigned       = "shift_assigned"
	NotificationTypeShiftCancelled      = "shift_cancelled"
	NotificationTypeShiftCompleted      = "shift_completed"
	NotificationTypeCaregiverReleased   = "caregiver_released"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListByRecipient(ctx context.Context, recipientID string, onlyUnread bool, limit, offset int) ([]models.Notification, int64, error)
	MarkAsRead(ctx context.Context, id string) error
	MarkAllAsRead(ctx context.Context, recipientID string) error
	UnreadCount(ctx context.Context, recipientID string) (int64, error)
}

type gormNotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &gormNotificationRepository{db: db}
}

func (r *gormNotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *gormNotificationRepository) ListByRecipient(ctx context.Context, recipientID string, onlyUnread bool, limit, offset int) ([]models.Notification, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ?", recipientID)
	if onlyUnread {
		query = query.Where("is_read = false")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var notifications []models.Notification
	err := query.Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&notifications).Error
	if err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

func (r *gormNotificationRepository) MarkAsRead(ctx context.Context, id string) error {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND is_read = false", id).
		Updates(map[string]interface{}{"is_read": true, "read_at": now})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.Notification{}).
			Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotificationNotFound
		}
	}
	return nil
}

func (r *gormNotificationRepository) MarkAllAsRead(ctx context.Context, recipientID string) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = false", recipientID).
		Updates(map[string]interface{}{"is_read": true, "read_at": now}).Error
}

func (r *gormNotificationRepository) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = false", recipientID).
		Count(&count).Error
	return count, err
}
