package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfitz/personnel/api/fieldschema"
	"github.com/ericfitz/personnel/internal/events"
	"github.com/ericfitz/personnel/internal/slogging"
	"github.com/ericfitz/personnel/internal/telemetry"
	"github.com/gin-gonic/gin"
)

// FieldDefinitionHandler serves the custom field registry
type FieldDefinitionHandler struct {
	store     FieldDefinitionStore
	publisher events.Publisher
	metrics   *telemetry.DomainMetrics
}

// NewFieldDefinitionHandler creates a registry handler. publisher and metrics may be nil.
func NewFieldDefinitionHandler(store FieldDefinitionStore, publisher events.Publisher, metrics *telemetry.DomainMetrics) *FieldDefinitionHandler {
	if publisher == nil {
		publisher = &events.NoopPublisher{}
	}
	return &FieldDefinitionHandler{store: store, publisher: publisher, metrics: metrics}
}

// decodeOnto decodes body over dst so that absent keys keep their current values
func decodeOnto(body []byte, dst any) error {
	if err := json.Unmarshal(body, dst); err != nil {
		return InvalidInputError("Invalid JSON format: " + err.Error())
	}
	return nil
}

// ListFieldDefinitions returns the registry, optionally with inactive fields
func (h *FieldDefinitionHandler) ListFieldDefinitions(c *gin.Context) {
	includeInactive, err := parseBoolQuery(c, "include_inactive")
	if err != nil {
		HandleRequestError(c, err)
		return
	}

	defs, err := h.store.List(c.Request.Context(), includeInactive)
	if err != nil {
		HandleRequestError(c, err)
		return
	}
	c.JSON(http.StatusOK, ListFieldDefinitionsResponse{FieldDefinitions: defs, Total: len(defs)})
}

// CreateFieldDefinition registers a new custom field
func (h *FieldDefinitionHandler) CreateFieldDefinition(c *gin.Context) {
	logger := slogging.GetContextLogger(c)

	body, err := readBody(c)
	if err != nil {
		HandleRequestError(c, err)
		return
	}
	def := fieldschema.Definition{Active: true, Options: []fieldschema.Option{}}
	if err := decodeOnto(body, &def); err != nil {
		HandleRequestError(c, err)
		return
	}
	def.ID = ""
	def.CreatedAt, def.UpdatedAt = time.Time{}, time.Time{}
	def.CreatedBy = actorFromContext(c)

	if err := h.store.Create(c.Request.Context(), &def); err != nil {
		logger.Debug("Field definition %s rejected: %v", def.Name, err)
		HandleRequestError(c, err)
		return
	}

	logger.Info("Created field definition %s (%s)", def.Name, def.Kind)
	h.changed(c, events.TopicFieldDefinitionCreated, &def)
	c.JSON(http.StatusCreated, def)
}

// GetFieldDefinition returns one definition by field name
func (h *FieldDefinitionHandler) GetFieldDefinition(c *gin.Context) {
	def, err := h.store.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		HandleRequestError(c, err)
		return
	}
	c.JSON(http.StatusOK, def)
}

// UpdateFieldDefinition changes the mutable attributes given in the body
func (h *FieldDefinitionHandler) UpdateFieldDefinition(c *gin.Context) {
	name := c.Param("name")
	current, err := h.store.Get(c.Request.Context(), name)
	if err != nil {
		HandleRequestError(c, err)
		return
	}

	body, err := readBody(c)
	if err != nil {
		HandleRequestError(c, err)
		return
	}
	next := *current
	if err := decodeOnto(body, &next); err != nil {
		HandleRequestError(c, err)
		return
	}
	h.update(c, name, &next)
}

// PatchFieldDefinition applies a JSON Patch or merge patch to a definition
func (h *FieldDefinitionHandler) PatchFieldDefinition(c *gin.Context) {
	name := c.Param("name")
	current, err := h.store.Get(c.Request.Context(), name)
	if err != nil {
		HandleRequestError(c, err)
		return
	}

	modified, err := applyPatch(c, current)
	if err != nil {
		HandleRequestError(c, err)
		return
	}
	var next fieldschema.Definition
	if err := decodeOnto(modified, &next); err != nil {
		HandleRequestError(c, err)
		return
	}
	h.update(c, name, &next)
}

func (h *FieldDefinitionHandler) update(c *gin.Context, name string, next *fieldschema.Definition) {
	if err := h.store.Update(c.Request.Context(), name, next); err != nil {
		HandleRequestError(c, err)
		return
	}
	slogging.GetContextLogger(c).Info("Updated field definition %s", name)
	h.changed(c, events.TopicFieldDefinitionUpdated, next)
	c.JSON(http.StatusOK, next)
}

// DeactivateFieldDefinition hides a field from new schemas
func (h *FieldDefinitionHandler) DeactivateFieldDefinition(c *gin.Context) {
	def, err := h.store.Deactivate(c.Request.Context(), c.Param("name"))
	if err != nil {
		HandleRequestError(c, err)
		return
	}
	h.changed(c, events.TopicFieldDefinitionDeactivated, def)
	c.JSON(http.StatusOK, def)
}

// ReactivateFieldDefinition restores a deactivated field
func (h *FieldDefinitionHandler) ReactivateFieldDefinition(c *gin.Context) {
	def, err := h.store.Reactivate(c.Request.Context(), c.Param("name"))
	if err != nil {
		HandleRequestError(c, err)
		return
	}
	h.changed(c, events.TopicFieldDefinitionReactivated, def)
	c.JSON(http.StatusOK, def)
}

// DeleteFieldDefinition removes a definition; stored values are kept
func (h *FieldDefinitionHandler) DeleteFieldDefinition(c *gin.Context) {
	name := c.Param("name")
	if err := h.store.Delete(c.Request.Context(), name); err != nil {
		HandleRequestError(c, err)
		return
	}
	slogging.GetContextLogger(c).Info("Deleted field definition %s", name)
	h.changed(c, events.TopicFieldDefinitionDeleted, &fieldschema.Definition{Name: name})
	c.Status(http.StatusNoContent)
}

func (h *FieldDefinitionHandler) changed(c *gin.Context, topic string, def *fieldschema.Definition) {
	ctx := context.WithoutCancel(c.Request.Context())
	h.metrics.SchemaChange(ctx, topic)
	err := h.publisher.Publish(ctx, topic, events.FieldDefinitionChanged{
		FieldName: def.Name,
		FieldType: string(def.Kind),
		IsActive:  def.Active,
		Actor:     actorFromContext(c),
	})
	if err != nil {
		slogging.GetContextLogger(c).Warn("Failed to publish %s: %v", topic, err)
	}
}
