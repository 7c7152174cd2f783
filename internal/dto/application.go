package dto

import (
	"time"

	"careshift_backend/internal/models"
)

type ApplyRequest struct {
	Message *string `json:"message,omitempty" validate:"omitempty,max=1000"`
}

type ListApplicationsQuery struct {
	Statuses []string `form:"status" validate:"omitempty,dive,application_status"`
	Limit    int      `form:"limit" validate:"omitempty,min=1,max=100"`
	Offset   int      `form:"offset" validate:"omitempty,min=0"`
}

type ApplicationResponse struct {
	ID          string                   `json:"id"`
	ShiftID     string                   `json:"shift_id"`
	CaregiverID string                   `json:"caregiver_id"`
	Status      models.ApplicationStatus `json:"status"`
	Message     *string                  `json:"message,omitempty"`
	AppliedAt   time.Time                `json:"applied_at"`
	DecidedAt   *time.Time               `json:"decided_at,omitempty"`
}

func NewApplicationResponse(application *models.Application) ApplicationResponse {
	return ApplicationResponse{
		ID:          application.ID,
		ShiftID:     application.ShiftID,
		CaregiverID: application.CaregiverID,
		Status:      application.Status,
		Message:     application.Message,
		AppliedAt:   application.AppliedAt,
		DecidedAt:   application.DecidedAt,
	}
}

type ApplicationListResponse struct {
	Applications []ApplicationResponse `json:"applications"`
	Total        int64                 `json:"total"`
	Limit        int                   `json:"limit"`
	Offset       int                   `json:"offset"`
}
