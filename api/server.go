package api

import (
	"net/http"
	"time"

	"github.com/ericfitz/personnel/auth/db"
	"github.com/ericfitz/personnel/internal/events"
	"github.com/ericfitz/personnel/internal/slogging"
	"github.com/ericfitz/personnel/internal/telemetry"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ServerDeps carries the infrastructure the API is built on
type ServerDeps struct {
	DB *gorm.DB
	// Redis enables the schema cache when set.
	Redis     *db.RedisDB
	Keys      *db.RedisKeyBuilder
	CacheTTL  time.Duration
	Publisher events.Publisher
	Metrics   *telemetry.DomainMetrics
	// Health pingers; a nil Redis pinger reports disabled.
	DatabasePinger db.Pinger
	RedisPinger    db.Pinger
}

// Server is the main API server instance
type Server struct {
	definitions *FieldDefinitionHandler
	forms       *FormHandler
	schema      *SchemaHandler
	employees   *EmployeeHandler
	health      *HealthChecker
}

// NewServer wires stores, services and handlers
func NewServer(deps ServerDeps) *Server {
	var (
		definitions FieldDefinitionStore = NewGormFieldDefinitionStore(deps.DB)
		forms       FormStore            = NewGormFormStore(deps.DB)
	)
	if deps.Redis != nil {
		keys := deps.Keys
		if keys == nil {
			keys = db.NewRedisKeyBuilder("")
		}
		cache := NewSchemaCache(deps.Redis, keys, deps.CacheTTL, deps.Metrics)
		definitions = NewCachedFieldDefinitionStore(definitions, cache)
		forms = NewCachedFormStore(forms, cache)
		slogging.Get().Info("Schema cache enabled ttl=%v", deps.CacheTTL)
	}

	publisher := deps.Publisher
	if publisher == nil {
		publisher = &events.NoopPublisher{}
	}

	schema := NewSchemaService(definitions, forms)
	employees := NewEmployeeService(NewGormEmployeeStore(deps.DB), schema, publisher, deps.Metrics)

	return &Server{
		definitions: NewFieldDefinitionHandler(definitions, publisher, deps.Metrics),
		forms:       NewFormHandler(forms, publisher, deps.Metrics),
		schema:      NewSchemaHandler(schema, employees),
		employees:   NewEmployeeHandler(employees, schema),
		health:      NewHealthChecker(deps.DatabasePinger, deps.RedisPinger, 0),
	}
}

// RegisterRoutes mounts the API under /api/v1. Health and metrics stay
// outside authentication.
func (s *Server) RegisterRoutes(r *gin.Engine, metrics http.Handler, authenticate gin.HandlerFunc) {
	r.GET("/health", s.health.HandleHealth)
	if metrics != nil {
		r.GET("/metrics", gin.WrapH(metrics))
	}

	v1 := r.Group("/api/v1")
	v1.GET("/health", s.health.HandleHealth)
	if authenticate != nil {
		v1.Use(authenticate)
	}

	defs := v1.Group("/employee-field-definitions")
	defs.GET("", s.definitions.ListFieldDefinitions)
	defs.POST("", s.definitions.CreateFieldDefinition)
	defs.GET("/:name", s.definitions.GetFieldDefinition)
	defs.PUT("/:name", s.definitions.UpdateFieldDefinition)
	defs.PATCH("/:name", s.definitions.PatchFieldDefinition)
	defs.DELETE("/:name", s.definitions.DeleteFieldDefinition)
	defs.POST("/:name/deactivate", s.definitions.DeactivateFieldDefinition)
	defs.POST("/:name/reactivate", s.definitions.ReactivateFieldDefinition)

	forms := v1.Group("/forms")
	forms.GET("", s.forms.ListForms)
	forms.POST("", s.forms.CreateForm)
	forms.GET("/current", s.forms.GetCurrentForm)
	forms.PUT("/current", s.forms.UpdateCurrentForm)
	forms.PATCH("/current", s.forms.PatchCurrentForm)
	forms.DELETE("/current", s.forms.DeleteCurrentForm)
	forms.GET("/current/fields", s.forms.GetCurrentFormFields)

	v1.GET("/schema", s.schema.GetSchema)
	v1.POST("/validate", s.schema.ValidateRecord)

	employees := v1.Group("/employees")
	employees.GET("", s.employees.ListEmployees)
	employees.POST("", s.employees.CreateEmployee)
	employees.GET("/export.xlsx", s.employees.ExportEmployees)
	employees.GET("/:id", s.employees.GetEmployee)
	employees.PUT("/:id", s.employees.UpdateEmployee)
	employees.PATCH("/:id", s.employees.PatchEmployee)
	employees.DELETE("/:id", s.employees.DeleteEmployee)
}

// NewRouter builds a gin engine with the logging and recovery middleware,
// any extra middleware, and the API routes.
func NewRouter(s *Server, metrics http.Handler, authenticate gin.HandlerFunc, middleware ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(slogging.LoggerMiddleware(), slogging.Recoverer())
	r.Use(middleware...)
	r.HandleMethodNotAllowed = true
	r.NoRoute(func(c *gin.Context) {
		HandleRequestError(c, NotFoundError("Route not found"))
	})
	s.RegisterRoutes(r, metrics, authenticate)
	return r
}
