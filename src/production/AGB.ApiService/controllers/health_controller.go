package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	gateway "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Gateway"
)

// HealthController reports process health
type HealthController struct {
	client  *mongo.Client
	gateway *gateway.Gateway
}

// NewHealthController creates a new health controller
func NewHealthController(client *mongo.Client, gw *gateway.Gateway) *HealthController {
	return &HealthController{client: client, gateway: gw}
}

// RegisterRoutes registers the health route with Gin
func (c *HealthController) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", c.Health)
}

func (c *HealthController) Health(ctx *gin.Context) {
	overall := "ok"
	status := http.StatusOK

	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	mongoStatus := "ok"
	if err := c.client.Ping(pingCtx, readpref.Primary()); err != nil {
		mongoStatus = "unreachable"
		overall = "degraded"
		status = http.StatusServiceUnavailable
	}

	mqttStatus := "ok"
	if !c.gateway.IsConnected() {
		mqttStatus = "disconnected"
		overall = "degraded"
	}

	ctx.JSON(status, gin.H{
		"status": overall,
		"mongo":  mongoStatus,
		"mqtt":   mqttStatus,
	})
}
