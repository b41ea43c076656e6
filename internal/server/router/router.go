package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/platelog/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(entries *handlers.EntryHandler, analysis *handlers.AnalysisHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	api.POST("/analyze", analysis.Analyze)

	api.POST("/entries", entries.Create)
	api.GET("/entries", entries.List)
	api.DELETE("/entries/:id", entries.Delete)

	api.GET("/days", entries.Days)
	api.POST("/days/analyze", entries.AnalyzeDay)
	api.GET("/stats/today", entries.Stats)

	api.GET("/settings", entries.GetSettings)
	api.PUT("/settings", entries.PutSettings)
	api.GET("/onboarding", entries.GetOnboarding)
	api.PUT("/onboarding", entries.PutOnboarding)

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
