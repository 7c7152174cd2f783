package repositories

import (
	"context"
	"errors"
	"time"

	"careshift_backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type gormApplicationRepository struct {
	db *gorm.DB
}

func (r *gormApplicationRepository) Create(ctx context.Context, application *models.Application) error {
	if application.ID == "" {
		application.ID = uuid.NewString()
	}
	if application.AppliedAt.IsZero() {
		application.AppliedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(application).Error
}

func (r *gormApplicationRepository) GetByID(ctx context.Context, id string) (*models.Application, error) {
	var application models.Application
	err := r.db.WithContext(ctx).First(&application, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return &application, nil
}

func (r *gormApplicationRepository) UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus, decidedAt time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.Application{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"decided_at": decidedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrApplicationNotFound
	}
	return nil
}

func (r *gormApplicationRepository) FindActiveByShiftAndCaregiver(ctx context.Context, shiftID, caregiverID string) (*models.Application, error) {
	var application models.Application
	err := r.db.WithContext(ctx).
		Where("shift_id = ? AND caregiver_id = ?", shiftID, caregiverID).
		Where("status IN ?", []models.ApplicationStatus{models.ApplicationStatusPending, models.ApplicationStatusAccepted}).
		First(&application).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &application, nil
}

func (r *gormApplicationRepository) ListByShift(ctx context.Context, shiftID string, criteria ApplicationCriteria) ([]models.Application, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Application{}).
		Where("shift_id = ?", shiftID)
	return r.list(query, criteria)
}

func (r *gormApplicationRepository) ListByCaregiver(ctx context.Context, caregiverID string, criteria ApplicationCriteria) ([]models.Application, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Application{}).
		Where("caregiver_id = ?", caregiverID)
	return r.list(query, criteria)
}

func (r *gormApplicationRepository) list(query *gorm.DB, criteria ApplicationCriteria) ([]models.Application, int64, error) {
	if len(criteria.Statuses) > 0 {
		query = query.Where("status IN ?", criteria.Statuses)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := criteria.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var applications []models.Application
	err := query.Order("applied_at ASC").
		Limit(limit).
		Offset(criteria.Offset).
		Find(&applications).Error
	if err != nil {
		return nil, 0, err
	}
	return applications, total, nil
}

func (r *gormApplicationRepository) RejectOtherPending(ctx context.Context, shiftID, keepID string, decidedAt time.Time) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Application{}).
		Where("shift_id = ? AND status = ?", shiftID, models.ApplicationStatusPending)
	if keepID != "" {
		query = query.Where("id <> ?", keepID)
	}
	result := query.Updates(map[string]interface{}{
		"status":     models.ApplicationStatusRejected,
		"decided_at": decidedAt,
	})
	return result.RowsAffected, result.Error
}
