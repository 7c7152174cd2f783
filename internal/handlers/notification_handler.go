package handlers

import (
	"net/http"
	"strconv"

	"careshift_backend/internal/middleware"
	"careshift_backend/internal/repositories"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	*BaseHandler
	notificationRepo repositories.NotificationRepository
}

func NewNotificationHandler(base *BaseHandler, notificationRepo repositories.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{
		BaseHandler:      base,
		notificationRepo: notificationRepo,
	}
}

// ListMine handles GET /notifications
func (h *NotificationHandler) ListMine(c *gin.Context) {
	onlyUnread := c.Query("unread") == "true"
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	notifications, total, err := h.notificationRepo.ListByRecipient(c.Request.Context(), middleware.ActorID(c), onlyUnread, limit, offset)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"total":         total,
	})
}

// MarkRead handles POST /notifications/:notificationId/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.notificationRepo.MarkAsRead(c.Request.Context(), c.Param("notificationId")); err != nil {
		if err == repositories.ErrNotificationNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
			return
		}
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// MarkAllRead handles POST /notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	if err := h.notificationRepo.MarkAllAsRead(c.Request.Context(), middleware.ActorID(c)); err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read"})
}
