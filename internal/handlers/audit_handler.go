package handlers

import (
	"net/http"
	"strconv"

	"careshift_backend/internal/repositories"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	*BaseHandler
	auditRepo repositories.AuditRepository
}

func NewAuditHandler(base *BaseHandler, auditRepo repositories.AuditRepository) *AuditHandler {
	return &AuditHandler{
		BaseHandler: base,
		auditRepo:   auditRepo,
	}
}

// ListForShift handles GET /audit/shifts/:shiftId (admin only)
func (h *AuditHandler) ListForShift(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	entries, total, err := h.auditRepo.ListByResource(c.Request.Context(), "shift", c.Param("shiftId"), limit, offset)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"total":   total,
	})
}
