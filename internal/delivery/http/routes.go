package http

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/recipelens/backend/config"
)

// ToolServer serves MCP tool calls
type ToolServer interface {
	Handle(c *gin.Context)
}

// SetupRouter creates and configures the Gin router. tools may be nil.
func SetupRouter(cfg *config.Config, handler *Handler, tools ToolServer, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware(logger))
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))
	router.Use(RateLimitMiddleware(cfg.RateLimit.PerIP, logger))
	if cfg.Server.RequestTimeout > 0 {
		router.Use(timeoutMiddleware(cfg.Server.RequestTimeout))
	}

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		nutrition := v1.Group("/nutrition")
		{
			nutrition.POST("/recipe", handler.CalculateRecipe)
			nutrition.POST("/ingredient", handler.CalculateIngredient)
			nutrition.POST("/selection", handler.SumSelection)
		}
	}

	if tools != nil {
		router.POST("/mcp", tools.Handle)
	}

	return router
}

// timeoutMiddleware bounds the request context
func timeoutMiddleware(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
