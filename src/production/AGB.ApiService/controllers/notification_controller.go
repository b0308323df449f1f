package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.ApiService/middleware"
	logger "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Logger"
	interfaces "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Repository/Interfaces"
)

// NotificationController handles notification listing and read receipts
type NotificationController struct {
	notifications  interfaces.NotificationRepository
	logger         *logger.Logger
	authMiddleware *middleware.AuthMiddleware
}

// NewNotificationController creates a new notification controller
func NewNotificationController(notifications interfaces.NotificationRepository, logger *logger.Logger, authMiddleware *middleware.AuthMiddleware) *NotificationController {
	return &NotificationController{
		notifications:  notifications,
		logger:         logger,
		authMiddleware: authMiddleware,
	}
}

// RegisterRoutes registers the notification routes with Gin
func (c *NotificationController) RegisterRoutes(router *gin.Engine) {
	notifications := router.Group("/api/notifications")
	{
		notifications.GET("", c.authMiddleware.Authenticate(), c.GetAllNotifications)
		notifications.PATCH("/:notifId/read", c.authMiddleware.Authenticate(), c.MarkAsRead)
	}
}

func (c *NotificationController) GetAllNotifications(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	notifications, err := c.notifications.ListByUser(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// MarkAsRead marks one notification read, scoped to the caller's
// ownership. Repeating the call succeeds and changes nothing further.
func (c *NotificationController) MarkAsRead(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	notifID, err := primitive.ObjectIDFromHex(ctx.Param("notifId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}

	notification, err := c.notifications.MarkRead(ctx.Request.Context(), userID, notifID)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, notification)
}
