package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.ApiService/middleware"
	logger "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Logger"
	agbmodels "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Models"
	interfaces "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Repository/Interfaces"
)

// ScheduleController manages the inert irrigation schedule records
// embedded in a kit. Schedules are stored and edited only; nothing in
// this server executes them.
type ScheduleController struct {
	kits           interfaces.KitRepository
	logger         *logger.Logger
	authMiddleware *middleware.AuthMiddleware
}

// NewScheduleController creates a new schedule controller
func NewScheduleController(kits interfaces.KitRepository, logger *logger.Logger, authMiddleware *middleware.AuthMiddleware) *ScheduleController {
	return &ScheduleController{
		kits:           kits,
		logger:         logger,
		authMiddleware: authMiddleware,
	}
}

// RegisterRoutes registers the schedule routes with Gin
func (c *ScheduleController) RegisterRoutes(router *gin.Engine) {
	schedules := router.Group("/api/schedules")
	{
		schedules.POST("/:kitId", c.authMiddleware.Authenticate(), c.CreateSchedule)
		schedules.PUT("/:kitId/:scheduleIndex", c.authMiddleware.Authenticate(), c.UpdateSchedule)
		schedules.DELETE("/:kitId/:scheduleIndex", c.authMiddleware.Authenticate(), c.DeleteSchedule)
	}
}

type scheduleRequest struct {
	StartTime         *time.Time `json:"startTime"`
	DurationMinutes   *int       `json:"durationMinutes"`
	DaysOfWeek        []string   `json:"daysOfWeek"`
	ThresholdHumidity *float64   `json:"thresholdHumidity"`
	IsActive          *bool      `json:"isActive"`
}

func (c *ScheduleController) CreateSchedule(ctx *gin.Context) {
	kit, ok := c.ownedKit(ctx)
	if !ok {
		return
	}

	var req scheduleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil || req.StartTime == nil || req.DurationMinutes == nil || *req.DurationMinutes < 1 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "startTime and durationMinutes are required"})
		return
	}

	schedule := agbmodels.IrrigationSchedule{
		StartTime:         *req.StartTime,
		DurationMinutes:   *req.DurationMinutes,
		DaysOfWeek:        req.DaysOfWeek,
		ThresholdHumidity: req.ThresholdHumidity,
		IsActive:          true,
		CreatedAt:         time.Now().UTC(),
	}
	if schedule.DaysOfWeek == nil {
		schedule.DaysOfWeek = []string{}
	}

	kit.IrrigationSchedules = append(kit.IrrigationSchedules, schedule)
	c.persistSchedules(ctx, kit)
}

func (c *ScheduleController) UpdateSchedule(ctx *gin.Context) {
	kit, ok := c.ownedKit(ctx)
	if !ok {
		return
	}

	index, ok := c.scheduleIndex(ctx, kit)
	if !ok {
		return
	}

	var req scheduleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid schedule body"})
		return
	}

	schedule := &kit.IrrigationSchedules[index]
	if req.StartTime != nil {
		schedule.StartTime = *req.StartTime
	}
	if req.DurationMinutes != nil {
		schedule.DurationMinutes = *req.DurationMinutes
	}
	if req.DaysOfWeek != nil {
		schedule.DaysOfWeek = req.DaysOfWeek
	}
	if req.ThresholdHumidity != nil {
		schedule.ThresholdHumidity = req.ThresholdHumidity
	}
	if req.IsActive != nil {
		schedule.IsActive = *req.IsActive
	}

	c.persistSchedules(ctx, kit)
}

func (c *ScheduleController) DeleteSchedule(ctx *gin.Context) {
	kit, ok := c.ownedKit(ctx)
	if !ok {
		return
	}

	index, ok := c.scheduleIndex(ctx, kit)
	if !ok {
		return
	}

	kit.IrrigationSchedules = append(kit.IrrigationSchedules[:index], kit.IrrigationSchedules[index+1:]...)
	c.persistSchedules(ctx, kit)
}

func (c *ScheduleController) ownedKit(ctx *gin.Context) (*agbmodels.Kit, bool) {
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

func (c *ScheduleController) scheduleIndex(ctx *gin.Context, kit *agbmodels.Kit) (int, bool) {
	index, err := strconv.Atoi(ctx.Param("scheduleIndex"))
	if err != nil || index < 0 || index >= len(kit.IrrigationSchedules) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "schedule not found"})
		return 0, false
	}
	return index, true
}

func (c *ScheduleController) persistSchedules(ctx *gin.Context, kit *agbmodels.Kit) {
	now := time.Now().UTC()
	if err := c.kits.ReplaceSchedules(ctx.Request.Context(), kit.ID, kit.IrrigationSchedules, now); err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	kit.UpdatedAt = now
	ctx.JSON(http.StatusOK, kit)
}
