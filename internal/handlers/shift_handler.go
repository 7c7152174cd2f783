package handlers

import (
	"net/http"

	"careshift_backend/internal/dto"
	"careshift_backend/internal/middleware"
	"careshift_backend/internal/models"
	"careshift_backend/internal/repositories"
	"careshift_backend/internal/services"

	"github.com/gin-gonic/gin"
)

type ShiftHandler struct {
	*BaseHandler
	shiftService *services.ShiftService
}

func NewShiftHandler(base *BaseHandler, shiftService *services.ShiftService) *ShiftHandler {
	return &ShiftHandler{
		BaseHandler:  base,
		shiftService: shiftService,
	}
}

// CreateShift handles POST /shifts
func (h *ShiftHandler) CreateShift(c *gin.Context) {
	var req dto.CreateShiftRequest
	if !h.BindJSON(c, &req) {
		return
	}

	shift, err := h.shiftService.Create(c.Request.Context(), services.CreateShiftInput{
		HomeID:     req.HomeID,
		OperatorID: middleware.ActorID(c),
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		HourlyRate: req.HourlyRate,
		Notes:      req.Notes,
	})
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Shift created successfully",
		"shift":   dto.NewShiftResponse(shift),
	})
}

// GetShift handles GET /shifts/:shiftId
func (h *ShiftHandler) GetShift(c *gin.Context) {
	shift, err := h.shiftService.GetShift(c.Request.Context(), c.Param("shiftId"))
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shift": dto.NewShiftResponse(shift)})
}

// ListShifts handles GET /shifts
func (h *ShiftHandler) ListShifts(c *gin.Context) {
	var query dto.ListShiftsQuery
	if !h.BindQuery(c, &query) {
		return
	}

	from, ok := h.ParseTimeParam(c, "from", query.From)
	if !ok {
		return
	}
	to, ok := h.ParseTimeParam(c, "to", query.To)
	if !ok {
		return
	}

	statuses := make([]models.ShiftStatus, 0, len(query.Statuses))
	for _, status := range query.Statuses {
		statuses = append(statuses, models.ShiftStatus(status))
	}

	criteria := repositories.ShiftCriteria{
		HomeID:   query.HomeID,
		Statuses: statuses,
		From:     from,
		To:       to,
		Limit:    query.Limit,
		Offset:   query.Offset,
	}
	shifts, total, err := h.shiftService.ListOpenShifts(c.Request.Context(), criteria)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	response := dto.ShiftListResponse{
		Shifts: make([]dto.ShiftResponse, 0, len(shifts)),
		Total:  total,
		Limit:  criteria.Limit,
		Offset: criteria.Offset,
	}
	for i := range shifts {
		response.Shifts = append(response.Shifts, dto.NewShiftResponse(&shifts[i]))
	}
	c.JSON(http.StatusOK, response)
}

// OfferShift handles POST /shifts/:shiftId/offer
func (h *ShiftHandler) OfferShift(c *gin.Context) {
	var req dto.OfferShiftRequest
	if !h.BindJSON(c, &req) {
		return
	}

	shift, err := h.shiftService.Offer(c.Request.Context(), c.Param("shiftId"), req.ApplicationID, middleware.ActorID(c))
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Shift offered successfully",
		"shift":   dto.NewShiftResponse(shift),
	})
}

// ConfirmShift handles POST /shifts/:shiftId/confirm
func (h *ShiftHandler) ConfirmShift(c *gin.Context) {
	shift, err := h.shiftService.Confirm(c.Request.Context(), c.Param("shiftId"), middleware.ActorID(c))
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Shift confirmed successfully",
		"shift":   dto.NewShiftResponse(shift),
	})
}

// CompleteShift handles POST /shifts/:shiftId/complete
func (h *ShiftHandler) CompleteShift(c *gin.Context) {
	shift, err := h.shiftService.Complete(c.Request.Context(), c.Param("shiftId"), middleware.ActorID(c))
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Shift completed successfully",
		"shift":   dto.NewShiftResponse(shift),
	})
}

// CancelShift handles POST /shifts/:shiftId/cancel
func (h *ShiftHandler) CancelShift(c *gin.Context) {
	var req dto.CancelShiftRequest
	if !h.BindJSON(c, &req) {
		return
	}

	shift, err := h.shiftService.Cancel(c.Request.Context(), c.Param("shiftId"), req.Reason, middleware.ActorID(c))
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Shift cancelled successfully",
		"shift":   dto.NewShiftResponse(shift),
	})
}
