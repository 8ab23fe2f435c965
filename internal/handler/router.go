package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ad-tracker/youtube-keyword-analytics/internal/middleware"
)

// NewRouter wires all routes. metricsHandler is mounted on /metrics when non-nil.
func NewRouter(analysis *AnalysisHandler, health *HealthHandler, metricsHandler http.Handler, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Recovery(logger), middleware.RequestLogger(logger))

	router.GET("/health/live", health.LivenessProbe)
	router.GET("/health/ready", health.ReadinessProbe)
	if metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}

	api := router.Group("/api/v1")
	api.GET("/analysis", analysis.Analyze)
	api.GET("/quota", analysis.Quota)
	api.GET("/reports", analysis.ListReports)
	api.GET("/reports/:id", analysis.GetReport)

	return router
}
