package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.ApiService/middleware"
	logger "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Logger"
	telemetry "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Telemetry"
)

// PumpController handles manual pump control requests
type PumpController struct {
	pump           *telemetry.PumpService
	logger         *logger.Logger
	authMiddleware *middleware.AuthMiddleware
}

// NewPumpController creates a new pump controller
func NewPumpController(pump *telemetry.PumpService, logger *logger.Logger, authMiddleware *middleware.AuthMiddleware) *PumpController {
	return &PumpController{
		pump:           pump,
		logger:         logger,
		authMiddleware: authMiddleware,
	}
}

// RegisterRoutes registers the pump routes with Gin
func (c *PumpController) RegisterRoutes(router *gin.Engine) {
	pumps := router.Group("/api/pumps")
	{
		pumps.POST("/:kitId/control", c.authMiddleware.Authenticate(), c.ControlPump)
	}
}

type controlRequest struct {
	Status *bool `json:"status"`
}

// ControlPump validates and dispatches one manual pump command. A
// threshold breach comes back as 400 with the rejection message; the
// outbound publish never influences this response.
func (c *PumpController) ControlPump(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	kitID, err := primitive.ObjectIDFromHex(ctx.Param("kitId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid kit id"})
		return
	}

	var req controlRequest
	if err := ctx.ShouldBindJSON(&req); err != nil || req.Status == nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	kit, err := c.pump.Control(ctx.Request.Context(), userID, kitID, *req.Status)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, kit)
}
