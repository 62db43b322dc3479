package http

import (
	"net/http"

	"github.com/dietcoach/backend/config"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SetupRouter creates and configures the Gin router.
// metricsHandler may be nil, in which case /metrics is not served.
func SetupRouter(cfg *config.Config, handler *Handler, metricsHandler http.Handler, log *zap.Logger) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()

	// Global middleware
	router.Use(RequestIDMiddleware())
	router.Use(TraceMiddleware())
	router.Use(LoggerMiddleware(log))
	router.Use(RecoveryMiddleware(log))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)
	if metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(NewIPRateLimiter(cfg.RateLimit.PerIP)))
	{
		shopping := v1.Group("/shopping")
		{
			shopping.GET("/search", handler.SearchProducts)
			shopping.POST("/resolve", handler.ResolveIngredient)
			shopping.POST("/resolve/batch", handler.ResolveBatch)
			shopping.GET("/cost-per-100g", handler.CostPer100g)
		}

		budget := v1.Group("/budget")
		{
			budget.POST("/proposal", handler.ProposeBudget)
		}
	}

	return router
}
