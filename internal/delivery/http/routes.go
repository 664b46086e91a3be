package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/servconnect/mlservices/config"
	"github.com/servconnect/mlservices/internal/logger"
)

// ServiceHandler is the HTTP surface of one ML service
type ServiceHandler interface {
	RegisterRoutes(r gin.IRoutes)
}

// SetupRouter creates and configures the Gin router for a single service
func SetupRouter(cfg *config.Config, handler ServiceHandler, log *zap.Logger) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(logger.Recovery(log))
	router.Use(RequestIDMiddleware())
	router.Use(logger.GinMiddleware(log))
	router.Use(MetricsMiddleware(cfg.Service))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/")
	if cfg.Server.BodyLimit > 0 {
		api.Use(BodyLimitMiddleware(cfg.Server.BodyLimit))
	}
	api.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	handler.RegisterRoutes(api)

	return router
}
