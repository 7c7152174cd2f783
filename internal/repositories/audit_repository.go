package repositories

import (
	"context"

	"careshift_backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	ListByResource(ctx context.Context, resourceType, resourceID string, limit, offset int) ([]models.AuditLog, int64, error)
	ListByActor(ctx context.Context, actorID string, limit, offset int) ([]models.AuditLog, int64, error)
}

type gormAuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &gormAuditRepository{db: db}
}

func (r *gormAuditRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *gormAuditRepository) ListByResource(ctx context.Context, resourceType, resourceID string, limit, offset int) ([]models.AuditLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.AuditLog{}).
		Where("resource_type = ? AND resource_id = ?", resourceType, resourceID)
	return r.list(query, limit, offset)
}

func (r *gormAuditRepository) ListByActor(ctx context.Context, actorID string, limit, offset int) ([]models.AuditLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.AuditLog{}).
		Where("actor_id = ?", actorID)
	return r.list(query, limit, offset)
}

func (r *gormAuditRepository) list(query *gorm.DB, limit, offset int) ([]models.AuditLog, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var entries []models.AuditLog
	err := query.Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
