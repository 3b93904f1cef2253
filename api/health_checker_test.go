package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ericfitz/personnel/auth/db"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func TestHealthChecker_CheckHealth(t *testing.T) {
	tests := []struct {
		name     string
		database db.Pinger
		redis    db.Pinger
		overall  string
		redisSt  string
	}{
		{name: "AllHealthy", database: fakePinger{}, redis: fakePinger{}, overall: HealthOK, redisSt: db.StatusHealthy},
		{name: "RedisDisabled", database: fakePinger{}, overall: HealthOK, redisSt: db.StatusDisabled},
		{name: "RedisDown", database: fakePinger{}, redis: fakePinger{err: errors.New("refused")}, overall: HealthDegraded, redisSt: db.StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewHealthChecker(tt.database, tt.redis, 100*time.Millisecond).CheckHealth(context.Background())
			assert.Equal(t, tt.overall, result.Status)
			assert.Equal(t, db.StatusHealthy, result.Database.Status)
			assert.Equal(t, tt.redisSt, result.Redis.Status)
		})
	}
}

func TestHealthChecker_DefaultTimeout(t *testing.T) {
	assert.Equal(t, 2*time.Second, NewHealthChecker(nil, nil, 0).timeout)
}

func TestHealthChecker_HandleHealthDegraded(t *testing.T) {
	r := gin.New()
	r.GET("/health", NewHealthChecker(fakePinger{err: errors.New("down")}, nil, time.Second).HandleHealth)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"DEGRADED"`)
}
