package models

import "time"

// Application is a caregiver's request to work a specific shift. Terminal
// applications (rejected, withdrawn) are retained for audit; re-applying
// after a withdrawal creates a fresh pending row.
type Application struct {
	ID          string            `gorm:"type:uuid;primaryKey" json:"id"`
	ShiftID     string            `gorm:"type:uuid;index;not null" json:"shift_id"`
	CaregiverID string            `gorm:"type:uuid;index;not null" json:"caregiver_id"`
	Status      ApplicationStatus `gorm:"type:varchar(16);index;not null" json:"status"`
	Message     *string           `json:"message,omitempty"`
	AppliedAt   time.Time         `gorm:"not null;default:now()" json:"applied_at"`
	DecidedAt   *time.Time        `json:"decided_at,omitempty"`
}

func (Application) TableName() string {
	return "shift_applications"
}

// IsActive reports whether the application still occupies the caregiver's
// slot on the shift (at most one active application per shift and caregiver).
func (a *Application) IsActive() bool {
	return a.Status == ApplicationStatusPending || a.Status == ApplicationStatusAccepted
}
