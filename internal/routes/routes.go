package routes

import (
	"careshift_backend/internal/handlers"
	"careshift_backend/internal/middleware"
	"careshift_backend/internal/models"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires the API surface. Role gates live here, in the
// transport layer; the services only check resource ownership.
func RegisterRoutes(router *gin.Engine, appHandlers *handlers.AppHandlers, jwtSecret string) {
	api := router.Group("/api/v1")

	// Public reads
	api.GET("/shifts", appHandlers.ShiftHandler.ListShifts)
	api.GET("/shifts/:shiftId", appHandlers.ShiftHandler.GetShift)

	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware(jwtSecret))

	// Operator lifecycle operations
	operator := authed.Group("")
	operator.Use(middleware.RequireRoles(models.ActorRoleOperator, models.ActorRoleAdmin))
	{
		operator.POST("/shifts", appHandlers.ShiftHandler.CreateShift)
		operator.POST("/shifts/:shiftId/offer", appHandlers.ShiftHandler.OfferShift)
		operator.POST("/shifts/:shiftId/confirm", appHandlers.ShiftHandler.ConfirmShift)
		operator.POST("/shifts/:shiftId/complete", appHandlers.ShiftHandler.CompleteShift)
		operator.POST("/shifts/:shiftId/cancel", appHandlers.ShiftHandler.CancelShift)
		operator.GET("/shifts/:shiftId/applications", appHandlers.ApplicationHandler.ListForShift)
		operator.POST("/applications/:applicationId/reject", appHandlers.ApplicationHandler.Reject)
	}

	// Caregiver application operations
	caregiver := authed.Group("")
	caregiver.Use(middleware.RequireRoles(models.ActorRoleCaregiver))
	{
		caregiver.POST("/shifts/:shiftId/apply", appHandlers.ApplicationHandler.Apply)
		caregiver.POST("/applications/:applicationId/withdraw", appHandlers.ApplicationHandler.Withdraw)
		caregiver.POST("/applications/:applicationId/accept", appHandlers.ApplicationHandler.Accept)
		caregiver.GET("/applications/my", appHandlers.ApplicationHandler.ListMine)
	}

	// Any authenticated actor
	authed.GET("/notifications", appHandlers.NotificationHandler.ListMine)
	authed.POST("/notifications/:notificationId/read", appHandlers.NotificationHandler.MarkRead)
	authed.POST("/notifications/read-all", appHandlers.NotificationHandler.MarkAllRead)

	// Admin
	admin := authed.Group("")
	admin.Use(middleware.RequireRoles(models.ActorRoleAdmin))
	{
		admin.GET("/audit/shifts/:shiftId", appHandlers.AuditHandler.ListForShift)
	}
}
