// Package handler provides HTTP request handlers for the application.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports database reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthReporter reports broker connection health.
type HealthReporter interface {
	IsHealthy() bool
}

// HealthHandler handles health check endpoints. Nil dependencies are reported as
// disabled and do not affect readiness.
type HealthHandler struct {
	database  Pinger
	publisher HealthReporter
}

// NewHealthHandler creates a new HealthHandler instance.
func NewHealthHandler(database Pinger, publisher HealthReporter) *HealthHandler {
	return &HealthHandler{
		database:  database,
		publisher: publisher,
	}
}

// LivenessProbe checks if the application is running.
func (h *HealthHandler) LivenessProbe(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "UP",
		"time":   time.Now(),
	})
}

// ReadinessProbe checks if the application is ready to serve traffic.
func (h *HealthHandler) ReadinessProbe(c *gin.Context) {
	ctx := c.Request.Context()

	databaseStatus := "disabled"
	if h.database != nil {
		if err := h.database.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "DOWN",
				"database": "unhealthy",
				"error":    err.Error(),
				"time":     time.Now(),
			})
			return
		}
		databaseStatus = "healthy"
	}

	rabbitStatus := "disabled"
	if h.publisher != nil {
		if !h.publisher.IsHealthy() {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "DOWN",
				"rabbitmq": "unhealthy",
				"time":     time.Now(),
			})
			return
		}
		rabbitStatus = "healthy"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "UP",
		"database": databaseStatus,
		"rabbitmq": rabbitStatus,
		"time":     time.Now(),
	})
}
