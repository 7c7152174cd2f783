package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog records who did what to which resource. Written asynchronously,
// never as part of the transaction it describes.
type AuditLog struct {
	ID           string         `gorm:"type:uuid;primaryKey" json:"id"`
	ActorID      string         `gorm:"type:uuid;index;not null" json:"actor_id"`
	Action       string         `gorm:"type:varchar(48);index;not null" json:"action"`
	ResourceType string         `gorm:"type:varchar(32);index;not null" json:"resource_type"`
	ResourceID   string         `gorm:"type:uuid;index;not null" json:"resource_id"`
	Details      datatypes.JSON `gorm:"type:jsonb" json:"details,omitempty"`
	CreatedAt    time.Time      `gorm:"default:now()" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
