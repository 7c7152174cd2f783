package repositories

import (
	"context"
	"errors"

	"careshift_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore is the production Store backed by Postgres via gorm.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Shifts() ShiftRepository {
	return &gormShiftRepository{db: s.db}
}

func (s *GormStore) Applications() ApplicationRepository {
	return &gormApplicationRepository{db: s.db}
}

// InShiftTx serializes every critical section touching the shift: the shift
// row is locked FOR UPDATE before fn runs, so concurrent transactions on the
// same shift queue instead of interleaving. The version check in
// UpdateVersioned stays as a second line of defense against lost updates.
func (s *GormStore) InShiftTx(ctx context.Context, shiftID string, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked models.Shift
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", shiftID).
			First(&locked).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrShiftNotFound
			}
			return err
		}
		return fn(&GormStore{db: tx})
	})
}
