package repositories

import (
	"context"
	"errors"
	"time"

	"careshift_backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type gormShiftRepository struct {
	db *gorm.DB
}

func (r *gormShiftRepository) Create(ctx context.Context, shift *models.Shift) error {
	if shift.ID == "" {
		shift.ID = uuid.NewString()
	}
	if shift.Version == 0 {
		shift.Version = 1
	}
	return r.db.WithContext(ctx).Create(shift).Error
}

func (r *gormShiftRepository) GetByID(ctx context.Context, id string) (*models.Shift, error) {
	var shift models.Shift
	err := r.db.WithContext(ctx).First(&shift, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, err
	}
	return &shift, nil
}

func (r *gormShiftRepository) UpdateVersioned(ctx context.Context, shift *models.Shift) error {
	result := r.db.WithContext(ctx).Model(&models.Shift{}).
		Where("id = ? AND version = ?", shift.ID, shift.Version).
		Updates(map[string]interface{}{
			"status":                   shift.Status,
			"candidate_application_id": shift.CandidateApplicationID,
			"assigned_caregiver_id":    shift.AssignedCaregiverID,
			"notes":                    shift.Notes,
			"version":                  shift.Version + 1,
			"updated_at":               time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.Shift{}).
			Where("id = ?", shift.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrShiftNotFound
		}
		return ErrStaleVersion
	}
	shift.Version++
	return nil
}

func (r *gormShiftRepository) List(ctx context.Context, criteria ShiftCriteria) ([]models.Shift, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Shift{})

	if criteria.HomeID != "" {
		query = query.Where("home_id = ?", criteria.HomeID)
	}
	if len(criteria.Statuses) > 0 {
		query = query.Where("status IN ?", criteria.Statuses)
	}
	if criteria.From != nil {
		query = query.Where("end_time > ?", *criteria.From)
	}
	if criteria.To != nil {
		query = query.Where("start_time < ?", *criteria.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := criteria.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var shifts []models.Shift
	err := query.Order("start_time ASC").
		Limit(limit).
		Offset(criteria.Offset).
		Find(&shifts).Error
	if err != nil {
		return nil, 0, err
	}
	return shifts, total, nil
}

func (r *gormShiftRepository) FindOverlappingCommitments(ctx context.Context, caregiverID string, start, end time.Time) ([]models.Shift, error) {
	var shifts []models.Shift
	err := r.db.WithContext(ctx).
		Where("status IN ?", []models.ShiftStatus{models.ShiftStatusOffered, models.ShiftStatusAssigned}).
		Where("start_time < ? AND ? < end_time", end, start).
		Where(
			"assigned_caregiver_id = ? OR id IN (?)",
			caregiverID,
			r.db.Model(&models.Application{}).
				Select("shift_id").
				Where("caregiver_id = ? AND status = ?", caregiverID, models.ApplicationStatusAccepted),
		).
		Order("start_time ASC").
		Find(&shifts).Error
	if err != nil {
		return nil, err
	}
	return shifts, nil
}

func (r *gormShiftRepository) ExpireUnassigned(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Shift{}).
		Where("status IN ?", []models.ShiftStatus{models.ShiftStatusOpen, models.ShiftStatusOffered}).
		Where("end_time < ?", now).
		Updates(map[string]interface{}{
			"status":                   models.ShiftStatusCancelled,
			"candidate_application_id": nil,
			"version":                  gorm.Expr("version + 1"),
			"updated_at":               now,
		})
	return result.RowsAffected, result.Error
}
