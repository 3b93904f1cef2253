package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/ericfitz/personnel/internal/slogging"
)

// ComponentHealth is the status of one dependency
type ComponentHealth struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Health status values
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
	StatusDisabled  = "disabled"
)

// Pinger is anything that can be pinged
type Pinger interface {
	Ping(ctx context.Context) error
}

// CheckComponent pings p with a timeout. A nil pinger reports disabled.
func CheckComponent(ctx context.Context, p Pinger, timeout time.Duration) ComponentHealth {
	if p == nil {
		return ComponentHealth{Status: StatusDisabled}
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	if err := p.Ping(ctx); err != nil {
		return ComponentHealth{Status: StatusUnhealthy, Error: err.Error()}
	}
	return ComponentHealth{Status: StatusHealthy, Latency: time.Since(start).String()}
}

// RefreshConnectionPool closes idle connections and warms the pool with
// fresh ones. Run after schema migrations.
func RefreshConnectionPool(ctx context.Context, db *sql.DB) error {
	logger := slogging.Get()

	db.SetMaxIdleConns(0)
	db.SetMaxIdleConns(DefaultMaxIdleConns)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	for i := range 3 {
		if err := db.PingContext(ctx); err != nil {
			logger.Error("Pool refresh ping %d/3 failed: %v", i+1, err)
			return err
		}
	}

	stats := db.Stats()
	logger.Debug("Connection pool refreshed: open=%d, inUse=%d, idle=%d", stats.OpenConnections, stats.InUse, stats.Idle)
	return nil
}
