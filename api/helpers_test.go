package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/ericfitz/personnel/api/fieldschema"
	"github.com/ericfitz/personnel/api/models"
	"github.com/ericfitz/personnel/auth/db"
	"github.com/ericfitz/personnel/internal/slogging"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// setupTestDB opens a migrated in-memory SQLite database
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.OpenDialector(sqlite.Open(":memory:"), db.GormConfig{Type: db.DatabaseTypeSQLite})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(models.AllModels()...))
	t.Cleanup(func() { _ = gdb.Close() })
	return gdb.DB()
}

// recordingPublisher keeps every published topic
type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) Topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.topics...)
}

func textDefinition(name string, order int) *fieldschema.Definition {
	return &fieldschema.Definition{
		Name:   name,
		Label:  name,
		Kind:   fieldschema.KindText,
		Order:  order,
		Active: true,
	}
}

func decimalRef(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func intRef(i int) *int { return &i }

func validEmployeeInput(email string) map[string]any {
	return map[string]any{
		"name":       "Ada Lovelace",
		"email":      email,
		"department": "IT",
		"role":       "Engineer",
	}
}

// newTestRouter builds the full API on a fresh database
func newTestRouter(t *testing.T) (*gin.Engine, *recordingPublisher) {
	t.Helper()
	publisher := &recordingPublisher{}
	server := NewServer(ServerDeps{DB: setupTestDB(t), Publisher: publisher})
	r := NewRouter(server, nil, func(c *gin.Context) {
		if user := c.GetHeader("X-Test-User"); user != "" {
			c.Set(slogging.UserKey, user)
		}
		c.Next()
	})
	return r, publisher
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
