package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification is an in-app notification row written by the event dispatcher.
// Delivery (push, email) is an external concern; losing one never affects a
// shift or application transition.
type Notification struct {
	ID          string         `gorm:"type:uuid;primaryKey" json:"id"`
	RecipientID string         `gorm:"type:uuid;index;not null" json:"recipient_id"`
	Type        string         `gorm:"type:varchar(48);index;not null" json:"type"`
	Title       string         `gorm:"not null" json:"title"`
	Body        string         `json:"body"`
	Data        datatypes.JSON `gorm:"type:jsonb" json:"data,omitempty"`
	IsRead      bool           `gorm:"not null;default:false" json:"is_read"`
	CreatedAt   time.Time      `gorm:"default:now()" json:"created_at"`
	ReadAt      *time.Time     `json:"read_at,omitempty"`
}

func (Notification) TableName() string {
	return "notifications"
}
