package dto

import (
	"time"

	"careshift_backend/internal/models"
)

type CreateShiftRequest struct {
	HomeID     string    `json:"home_id" validate:"required"`
	StartTime  time.Time `json:"start_time" validate:"required"`
	EndTime    time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
	HourlyRate float64   `json:"hourly_rate" validate:"required,gt=0"`
	Notes      *string   `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type OfferShiftRequest struct {
	ApplicationID string `json:"application_id" validate:"required"`
}

type CancelShiftRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

type ListShiftsQuery struct {
	HomeID   string   `form:"home_id"`
	Statuses []string `form:"status" validate:"omitempty,dive,shift_status"`
	From     *string  `form:"from"`
	To       *string  `form:"to"`
	Limit    int      `form:"limit" validate:"omitempty,min=1,max=100"`
	Offset   int      `form:"offset" validate:"omitempty,min=0"`
}

type ShiftResponse struct {
	ID                     string             `json:"id"`
	HomeID                 string             `json:"home_id"`
	CreatedBy              string             `json:"created_by"`
	StartTime              time.Time          `json:"start_time"`
	EndTime                time.Time          `json:"end_time"`
	HourlyRate             float64            `json:"hourly_rate"`
	Status                 models.ShiftStatus `json:"status"`
	Notes                  *string            `json:"notes,omitempty"`
	CandidateApplicationID *string            `json:"candidate_application_id,omitempty"`
	AssignedCaregiverID    *string            `json:"assigned_caregiver_id,omitempty"`
	Version                int64              `json:"version"`
	CreatedAt              time.Time          `json:"created_at"`
	UpdatedAt              time.Time          `json:"updated_at"`
}

func NewShiftResponse(shift *models.Shift) ShiftResponse {
	return ShiftResponse{
		ID:                     shift.ID,
		HomeID:                 shift.HomeID,
		CreatedBy:              shift.CreatedBy,
		StartTime:              shift.StartTime,
		EndTime:                shift.EndTime,
		HourlyRate:             shift.HourlyRate,
		Status:                 shift.Status,
		Notes:                  shift.Notes,
		CandidateApplicationID: shift.CandidateApplicationID,
		AssignedCaregiverID:    shift.AssignedCaregiverID,
		Version:                shift.Version,
		CreatedAt:              shift.CreatedAt,
		UpdatedAt:              shift.UpdatedAt,
	}
}

type ShiftListResponse struct {
	Shifts []ShiftResponse `json:"shifts"`
	Total  int64           `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}
