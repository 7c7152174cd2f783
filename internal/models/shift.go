package models

import "time"

// Shift is a bounded window of caregiving work at a home. It is created by
// an operator, driven through open -> offered -> assigned -> completed (or
// cancelled) and never deleted.
type Shift struct {
	BaseModel
	HomeID     string      `gorm:"type:uuid;index;not null" json:"home_id"`
	CreatedBy  string      `gorm:"type:uuid;index;not null" json:"created_by"`
	StartTime  time.Time   `gorm:"not null;index" json:"start_time"`
	EndTime    time.Time   `gorm:"not null" json:"end_time"`
	HourlyRate float64     `gorm:"not null" json:"hourly_rate"`
	Status     ShiftStatus `gorm:"type:varchar(16);index;not null" json:"status"`
	Notes      *string     `json:"notes,omitempty"`

	// CandidateApplicationID points at the application the operator has
	// currently offered the shift to. Set while the shift is offered and,
	// after confirm, keeps referencing the accepted application.
	CandidateApplicationID *string `gorm:"type:uuid" json:"candidate_application_id,omitempty"`

	// AssignedCaregiverID is non-nil exactly while status is assigned or completed.
	AssignedCaregiverID *string `gorm:"type:uuid;index" json:"assigned_caregiver_id,omitempty"`

	// Version is bumped on every write; stale-version writes are rejected.
	Version int64 `gorm:"not null;default:1" json:"version"`
}

func (Shift) TableName() string {
	return "shifts"
}

// Window returns the shift's half-open time window [start, end).
func (s *Shift) Window() (time.Time, time.Time) {
	return s.StartTime, s.EndTime
}

// IsAssignedTo reports whether the shift is currently held by the caregiver.
func (s *Shift) IsAssignedTo(caregiverID string) bool {
	return s.AssignedCaregiverID != nil && *s.AssignedCaregiverID == caregiverID
}
