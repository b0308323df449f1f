package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.ApiService/controllers"
	jwtService "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.ApiService/implementation/jwt"
	authMiddleware "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.ApiService/middleware"
	container "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Container"
	gateway "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Gateway"
	metrics "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Metrics"
	api_models "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Models/api"
	implementation "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Repository/Implementation"
	telemetry "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Telemetry"
)

func main() {
	// Initialize dependency injection container
	ctr, err := container.NewContainer()
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize container: %v", err))
	}
	defer ctr.Shutdown(context.Background())

	logger := ctr.GetLogger()
	logger.Info("Starting AGRO BOOST telemetry server")

	config := ctr.GetConfig()

	// Connect to MongoDB
	db, err := ctr.GetDatabase()
	if err != nil {
		logger.FatalWithError(err, "Failed to connect to MongoDB")
	}
	client, _ := ctr.GetMongoClient()

	// Create repositories
	kitRepo := implementation.NewMongoKitRepository(db.Collection(implementation.KitsCollection))
	sensorRepo := implementation.NewMongoSensorDataRepository(db.Collection(implementation.SensorDataCollection))
	notificationRepo := implementation.NewMongoNotificationRepository(db.Collection(implementation.NotificationsCollection))
	userRepo := implementation.NewMongoUserRepository(db.Collection(implementation.UsersCollection))

	// The shared ingestion use case, invoked by both transport adapters
	ingestService := telemetry.NewIngestService(kitRepo, sensorRepo, notificationRepo, logger)

	// Broker gateway: constructed once, passed by reference everywhere
	gw := gateway.New(config, ingestService, logger)
	if err := gw.Connect(); err != nil {
		logger.FatalWithError(err, "Failed to connect to MQTT broker")
	}
	ctr.AddCleanupFunc(func() error {
		gw.Disconnect()
		return nil
	})

	pumpService := telemetry.NewPumpService(kitRepo, notificationRepo, gw, logger)

	// Initialize JWT service and auth middleware
	jwtSvc := jwtService.NewService(api_models.Config{
		SecretKey:     config.Auth.JWTSecretKey,
		TokenDuration: config.Auth.TokenDuration,
		Issuer:        config.Auth.JWTIssuer,
	})
	authMw := authMiddleware.NewAuthMiddleware(jwtSvc, authMiddleware.DefaultConfig())

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Configure CORS from config
	router.Use(cors.New(cors.Config{
		AllowOrigins:     config.CORS.AllowedOrigins,
		AllowMethods:     config.CORS.AllowedMethods,
		AllowHeaders:     config.CORS.AllowedHeaders,
		ExposeHeaders:    config.CORS.ExposedHeaders,
		AllowCredentials: config.CORS.AllowCredentials,
		MaxAge:           time.Duration(config.CORS.MaxAge) * time.Second,
	}))

	// Create controllers and register routes
	controllers.NewAuthController(userRepo, jwtSvc, logger).RegisterRoutes(router)
	controllers.NewKitController(kitRepo, logger, authMw).RegisterRoutes(router)
	controllers.NewSensorController(ingestService, kitRepo, sensorRepo, logger, authMw).RegisterRoutes(router)
	controllers.NewPumpController(pumpService, logger, authMw).RegisterRoutes(router)
	controllers.NewNotificationController(notificationRepo, logger, authMw).RegisterRoutes(router)
	controllers.NewScheduleController(kitRepo, logger, authMw).RegisterRoutes(router)
	controllers.NewHealthController(client, gw).RegisterRoutes(router)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Create HTTP server with timeouts
	port := config.Server.Port
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  config.Server.ReadTimeout,
		WriteTimeout: config.Server.WriteTimeout,
		IdleTimeout:  config.Server.IdleTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		logger.Info("HTTP server starting on port " + port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.FatalWithError(err, "Failed to start HTTP server")
		}
	}()

	logger.Info("Telemetry server running... press Ctrl+C to stop")

	// Wait for shutdown signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithError(err, "Server forced to shutdown")
	}
}
