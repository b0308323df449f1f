package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.ApiService/middleware"
	logger "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Logger"
	interfaces "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Repository/Interfaces"
)

// KitController handles kit listing and reads
type KitController struct {
	kits           interfaces.KitRepository
	logger         *logger.Logger
	authMiddleware *middleware.AuthMiddleware
}

// NewKitController creates a new kit controller
func NewKitController(kits interfaces.KitRepository, logger *logger.Logger, authMiddleware *middleware.AuthMiddleware) *KitController {
	return &KitController{
		kits:           kits,
		logger:         logger,
		authMiddleware: authMiddleware,
	}
}

// RegisterRoutes registers the kit routes with Gin
func (c *KitController) RegisterRoutes(router *gin.Engine) {
	kits := router.Group("/api/kits")
	{
		kits.GET("", c.authMiddleware.Authenticate(), c.GetAllKits)
		kits.GET("/:kitId", c.authMiddleware.Authenticate(), c.GetKitByID)
	}
}

func (c *KitController) GetAllKits(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	kits, err := c.kits.ListByUser(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"kits": kits})
}

func (c *KitController) GetKitByID(ctx *gin.Context) {
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

	kit, err := c.kits.FindByIDForUser(ctx.Request.Context(), kitID, userID)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, kit)
}
