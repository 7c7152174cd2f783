package handlers

import (
	"errors"
	"net/http"
	"time"

	"careshift_backend/internal/appErrors"
	"careshift_backend/internal/logger"
	"careshift_backend/internal/validator"

	"github.com/gin-gonic/gin"
)

type BaseHandler struct {
	validator *validator.Validator
}

func NewBaseHandler(v *validator.Validator) *BaseHandler {
	return &BaseHandler{validator: v}
}

// BindJSON binds and validates the request body. Returns false after writing
// the error response.
func (h *BaseHandler) BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return false
	}
	return h.validate(c, obj)
}

// BindQuery binds and validates query parameters.
func (h *BaseHandler) BindQuery(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return false
	}
	return h.validate(c, obj)
}

func (h *BaseHandler) validate(c *gin.Context, obj interface{}) bool {
	if err := h.validator.Validate(obj); err != nil {
		var validationErr *validator.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":      "Validation failed",
				"validation": validationErr.Errors,
			})
			return false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// RespondError maps application errors onto HTTP statuses.
func (h *BaseHandler) RespondError(c *gin.Context, err error) {
	var appErr *appErrors.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPCode, gin.H{"error": appErr})
		return
	}

	logger.CtxWithError(c.Request.Context(), "unexpected handler error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "An unexpected error occurred"})
}

// ParseTimeParam parses an RFC 3339 query value, writing a 400 on failure.
func (h *BaseHandler) ParseTimeParam(c *gin.Context, name string, value *string) (*time.Time, bool) {
	if value == nil || *value == "" {
		return nil, true
	}
	parsed, err := time.Parse(time.RFC3339, *value)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name + " parameter, expected RFC 3339 timestamp"})
		return nil, false
	}
	return &parsed, true
}
