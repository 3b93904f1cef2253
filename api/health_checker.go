package api

import (
	"context"
	"net/http"
	"time"

	"github.com/ericfitz/personnel/auth/db"
	"github.com/ericfitz/personnel/internal/slogging"
	"github.com/gin-gonic/gin"
)

// Overall health values
const (
	HealthOK       = "OK"
	HealthDegraded = "DEGRADED"
)

// HealthChecker performs health checks on system components
type HealthChecker struct {
	database db.Pinger
	redis    db.Pinger
	timeout  time.Duration
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status   string             `json:"status"`
	Version  Version            `json:"version"`
	Database db.ComponentHealth `json:"database"`
	Redis    db.ComponentHealth `json:"redis"`
}

// NewHealthChecker creates a checker. A nil redis pinger reports disabled.
func NewHealthChecker(database, redis db.Pinger, timeout time.Duration) *HealthChecker {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &HealthChecker{database: database, redis: redis, timeout: timeout}
}

// CheckHealth pings every component
func (h *HealthChecker) CheckHealth(ctx context.Context) HealthResponse {
	result := HealthResponse{
		Status:   HealthOK,
		Version:  GetVersion(),
		Database: db.CheckComponent(ctx, h.database, h.timeout),
		Redis:    db.CheckComponent(ctx, h.redis, h.timeout),
	}
	for _, component := range []db.ComponentHealth{result.Database, result.Redis} {
		if component.Status == db.StatusUnhealthy {
			result.Status = HealthDegraded
		}
	}
	return result
}

// HandleHealth serves GET /health; a degraded service answers 503
func (h *HealthChecker) HandleHealth(c *gin.Context) {
	result := h.CheckHealth(c.Request.Context())
	status := http.StatusOK
	if result.Status != HealthOK {
		slogging.GetContextLogger(c).Warn("Health check degraded: database=%s redis=%s", result.Database.Status, result.Redis.Status)
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, result)
}
