package handlers

import (
	"net/http"

	"careshift_backend/internal/appErrors"
	"careshift_backend/internal/dto"
	"careshift_backend/internal/middleware"
	"careshift_backend/internal/models"
	"careshift_backend/internal/repositories"
	"careshift_backend/internal/services"

	"github.com/gin-gonic/gin"
)

type ApplicationHandler struct {
	*BaseHandler
	applicationService *services.ApplicationService
}

func NewApplicationHandler(base *BaseHandler, applicationService *services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{
		BaseHandler:        base,
		applicationService: applicationService,
	}
}

// Apply handles POST /shifts/:shiftId/apply
func (h *ApplicationHandler) Apply(c *gin.Context) {
	var req dto.ApplyRequest
	if !h.BindJSON(c, &req) {
		return
	}

	application, err := h.applicationService.Apply(c.Request.Context(), c.Param("shiftId"), middleware.ActorID(c), req.Message)
	if err != nil {
		// A duplicate still returns the existing application alongside the 409.
		if appErrors.Is(err, appErrors.ErrDuplicateApplication) && application != nil {
			c.JSON(http.StatusConflict, gin.H{
				"error":       err,
				"application": dto.NewApplicationResponse(application),
			})
			return
		}
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Application submitted successfully",
		"application": dto.NewApplicationResponse(application),
	})
}

// Withdraw handles POST /applications/:applicationId/withdraw
func (h *ApplicationHandler) Withdraw(c *gin.Context) {
	application, err := h.applicationService.Withdraw(c.Request.Context(), c.Param("applicationId"), middleware.ActorID(c))
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Application withdrawn successfully",
		"application": dto.NewApplicationResponse(application),
	})
}

// Accept handles POST /applications/:applicationId/accept
func (h *ApplicationHandler) Accept(c *gin.Context) {
	application, err := h.applicationService.Accept(c.Request.Context(), c.Param("applicationId"), middleware.ActorID(c))
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Offer accepted successfully",
		"application": dto.NewApplicationResponse(application),
	})
}

// Reject handles POST /applications/:applicationId/reject
func (h *ApplicationHandler) Reject(c *gin.Context) {
	application, err := h.applicationService.Reject(c.Request.Context(), c.Param("applicationId"), middleware.ActorID(c))
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Application rejected successfully",
		"application": dto.NewApplicationResponse(application),
	})
}

// ListForShift handles GET /shifts/:shiftId/applications
func (h *ApplicationHandler) ListForShift(c *gin.Context) {
	criteria, ok := h.bindApplicationCriteria(c)
	if !ok {
		return
	}

	applications, total, err := h.applicationService.ListForShift(c.Request.Context(), c.Param("shiftId"), middleware.ActorID(c), criteria)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newApplicationListResponse(applications, total, criteria))
}

// ListMine handles GET /applications/my
func (h *ApplicationHandler) ListMine(c *gin.Context) {
	criteria, ok := h.bindApplicationCriteria(c)
	if !ok {
		return
	}

	actorID := middleware.ActorID(c)
	applications, total, err := h.applicationService.ListForCaregiver(c.Request.Context(), actorID, actorID, criteria)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newApplicationListResponse(applications, total, criteria))
}

func (h *ApplicationHandler) bindApplicationCriteria(c *gin.Context) (repositories.ApplicationCriteria, bool) {
	var query dto.ListApplicationsQuery
	if !h.BindQuery(c, &query) {
		return repositories.ApplicationCriteria{}, false
	}

	statuses := make([]models.ApplicationStatus, 0, len(query.Statuses))
	for _, status := range query.Statuses {
		statuses = append(statuses, models.ApplicationStatus(status))
	}
	return repositories.ApplicationCriteria{
		Statuses: statuses,
		Limit:    query.Limit,
		Offset:   query.Offset,
	}, true
}

func newApplicationListResponse(applications []models.Application, total int64, criteria repositories.ApplicationCriteria) dto.ApplicationListResponse {
	response := dto.ApplicationListResponse{
		Applications: make([]dto.ApplicationResponse, 0, len(applications)),
		Total:        total,
		Limit:        criteria.Limit,
		Offset:       criteria.Offset,
	}
	for i := range applications {
		response.Applications = append(response.Applications, dto.NewApplicationResponse(&applications[i]))
	}
	return response
}
