package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lawxpert-backend/internal/analysis"
	"lawxpert-backend/internal/services/health"
	"lawxpert-backend/internal/shared/config"
	"lawxpert-backend/internal/shared/metrics"
	"lawxpert-backend/internal/shared/server/middleware"
	"lawxpert-backend/internal/shared/server/respond"
)

// RouterDeps holds handler dependencies for routing.
type RouterDeps struct {
	Config          config.Config
	AnalysisHandler *analysis.Handler
	Health          *health.Service
	RateLimiter     *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService(nil)
	}
	r.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, healthSvc.Status(c.Request.Context()))
	})
	r.GET("/metrics", metrics.Handler())

	if deps.AnalysisHandler != nil {
		deps.AnalysisHandler.RegisterRoutes(&r.RouterGroup, middleware.RateLimit(deps.RateLimiter))
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8000"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
