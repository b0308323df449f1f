package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.ApiService/middleware"
	logger "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Logger"
	metrics "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Metrics"
	agbmodels "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Models"
	interfaces "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Repository/Interfaces"
	telemetry "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Telemetry"
)

// periodWindows are the only query windows supported; there are no
// arbitrary ranges.
var periodWindows = map[string]time.Duration{
	"24h": 24 * time.Hour,
	"7d":  168 * time.Hour,
	"30d": 720 * time.Hour,
}

// latestTypes are the reading types resolved by the latest-per-type query.
var latestTypes = []string{
	agbmodels.ReadingHumidity,
	agbmodels.ReadingTemp,
	agbmodels.ReadingVoltage,
	agbmodels.ReadingCurrent,
}

// SensorController handles telemetry ingestion and reading queries
type SensorController struct {
	ingest         *telemetry.IngestService
	kits           interfaces.KitRepository
	sensorData     interfaces.SensorDataRepository
	logger         *logger.Logger
	authMiddleware *middleware.AuthMiddleware
}

// NewSensorController creates a new sensor controller
func NewSensorController(ingest *telemetry.IngestService, kits interfaces.KitRepository, sensorData interfaces.SensorDataRepository, logger *logger.Logger, authMiddleware *middleware.AuthMiddleware) *SensorController {
	return &SensorController{
		ingest:         ingest,
		kits:           kits,
		sensorData:     sensorData,
		logger:         logger,
		authMiddleware: authMiddleware,
	}
}

// RegisterRoutes registers the sensor routes with Gin
func (c *SensorController) RegisterRoutes(router *gin.Engine) {
	sensors := router.Group("/api/sensors")
	{
		// Device-facing ingestion endpoint, unauthenticated.
		sensors.POST("/log", c.LogSensorData)

		sensors.GET("/:kitId", c.authMiddleware.Authenticate(), c.GetSensorData)
		sensors.GET("/:kitId/latest", c.authMiddleware.Authenticate(), c.GetLatestSensorData)
		sensors.GET("/:kitId/type", c.authMiddleware.Authenticate(), c.GetSensorDataByType)
	}
}

// LogSensorData ingests one telemetry payload over HTTP. It runs the
// exact same normalizer and ingestion use case as the MQTT subscriber.
func (c *SensorController) LogSensorData(ctx *gin.Context) {
	body, err := ctx.GetRawData()
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "unable to read request body"})
		return
	}

	metrics.EventsIngested.WithLabelValues("http").Inc()

	ev, err := telemetry.ParseEvent(body)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	result, err := c.ingest.Ingest(ctx.Request.Context(), ev)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message":   "sensor data recorded",
		"count":     result.Count,
		"timestamp": result.Timestamp,
	})
}

func (c *SensorController) GetSensorData(ctx *gin.Context) {
	window, ok := periodWindows[ctx.DefaultQuery("period", "24h")]
	if !ok {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid period parameter"})
		return
	}

	kit, ok := c.ownedKit(ctx)
	if !ok {
		return
	}

	data, err := c.sensorData.FindWindow(ctx.Request.Context(), kit.ID, time.Now().UTC().Add(-window))
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": data})
}

func (c *SensorController) GetLatestSensorData(ctx *gin.Context) {
	kit, ok := c.ownedKit(ctx)
	if !ok {
		return
	}

	data, err := c.sensorData.LatestByTypes(ctx.Request.Context(), kit.ID, latestTypes)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": data})
}

func (c *SensorController) GetSensorDataByType(ctx *gin.Context) {
	readingType := ctx.Query("type")
	window, okPeriod := periodWindows[ctx.DefaultQuery("period", "24h")]
	if !agbmodels.ValidReadingType(readingType) || !okPeriod {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid type or period parameter"})
		return
	}

	kit, ok := c.ownedKit(ctx)
	if !ok {
		return
	}

	data, err := c.sensorData.FindWindowByType(ctx.Request.Context(), kit.ID, readingType, time.Now().UTC().Add(-window))
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": data})
}

// ownedKit resolves the :kitId path parameter scoped to the caller.
func (c *SensorController) ownedKit(ctx *gin.Context) (*agbmodels.Kit, bool) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return nil, false
	}

	kitID, err := primitive.ObjectIDFromHex(ctx.Param("kitId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid kit id"})
		return nil, false
	}

	kit, err := c.kits.FindByIDForUser(ctx.Request.Context(), kitID, userID)
	if err != nil {
		respondError(ctx, c.logger, err)
		return nil, false
	}
	return kit, true
}
