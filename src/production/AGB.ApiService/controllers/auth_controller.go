package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
	jwt "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.ApiService/implementation/jwt"
	logger "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Logger"
	agbmodels "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Models"
	api_models "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Models/api"
	interfaces "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Repository/Interfaces"
)

// AuthController handles registration and login
type AuthController struct {
	users      interfaces.UserRepository
	jwtService *jwt.Service
	logger     *logger.Logger
}

// NewAuthController creates a new auth controller
func NewAuthController(users interfaces.UserRepository, jwtService *jwt.Service, logger *logger.Logger) *AuthController {
	return &AuthController{
		users:      users,
		jwtService: jwtService,
		logger:     logger,
	}
}

// RegisterRoutes registers the auth routes with Gin
func (c *AuthController) RegisterRoutes(router *gin.Engine) {
	auth := router.Group("/api/auth")
	{
		auth.POST("/register", c.Register)
		auth.POST("/login", c.Login)
	}
}

func (c *AuthController) Register(ctx *gin.Context) {
	var req api_models.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	if _, err := c.users.FindByUsername(ctx.Request.Context(), req.Username); err == nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "username already taken"})
		return
	} else {
		var notFound *agbmodels.NotFoundError
		if !errors.As(err, &notFound) {
			respondError(ctx, c.logger, err)
			return
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	user, err := c.users.Create(ctx.Request.Context(), agbmodels.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		Kits:         []primitive.ObjectID{},
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	c.respondWithToken(ctx, user)
}

func (c *AuthController) Login(ctx *gin.Context) {
	var req api_models.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	user, err := c.users.FindByUsername(ctx.Request.Context(), req.Username)
	if err != nil {
		var notFound *agbmodels.NotFoundError
		if errors.As(err, &notFound) {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
			return
		}
		respondError(ctx, c.logger, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
		return
	}

	c.respondWithToken(ctx, user)
}

func (c *AuthController) respondWithToken(ctx *gin.Context, user *agbmodels.User) {
	token, err := c.jwtService.GenerateToken(user.ID.Hex())
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	kits := make([]string, 0, len(user.Kits))
	for _, id := range user.Kits {
		kits = append(kits, id.Hex())
	}

	ctx.JSON(http.StatusOK, api_models.AuthResponse{
		Token:    token,
		UserID:   user.ID.Hex(),
		Username: user.Username,
		Kits:     kits,
	})
}
