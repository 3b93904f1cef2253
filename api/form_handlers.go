package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/ericfitz/personnel/api/fieldschema"
	"github.com/ericfitz/personnel/api/models"
	"github.com/ericfitz/personnel/internal/events"
	"github.com/ericfitz/personnel/internal/slogging"
	"github.com/ericfitz/personnel/internal/telemetry"
	"github.com/gin-gonic/gin"
)

// FormHandler serves the singleton employee form
type FormHandler struct {
	store     FormStore
	publisher events.Publisher
	metrics   *telemetry.DomainMetrics
}

// NewFormHandler creates a form handler. publisher and metrics may be nil.
func NewFormHandler(store FormStore, publisher events.Publisher, metrics *telemetry.DomainMetrics) *FormHandler {
	if publisher == nil {
		publisher = &events.NoopPublisher{}
	}
	return &FormHandler{store: store, publisher: publisher, metrics: metrics}
}

// ListForms returns the form document as a list of zero or one element
func (h *FormHandler) ListForms(c *gin.Context) {
	doc, err := h.store.Get(c.Request.Context())
	if errors.Is(err, fieldschema.ErrNotFound) {
		c.JSON(http.StatusOK, []FormDocument{})
		return
	}
	if err != nil {
		HandleRequestError(c, err)
		return
	}
	c.JSON(http.StatusOK, []FormDocument{*doc})
}

// CreateForm writes the form. When one already exists it is updated in
// place and 200 is returned instead of 201.
func (h *FormHandler) CreateForm(c *gin.Context) {
	ctx := c.Request.Context()
	_, err := h.store.Get(ctx)
	exists := err == nil
	if err != nil && !errors.Is(err, fieldschema.ErrNotFound) {
		HandleRequestError(c, err)
		return
	}

	body, err := readBody(c)
	if err != nil {
		HandleRequestError(c, err)
		return
	}
	doc := FormDocument{
		FormName:        models.DefaultFormName,
		FormDescription: models.DefaultFormDescription,
		Fields:          []fieldschema.Field{},
		IsActive:        true,
	}
	if err := decodeOnto(body, &doc); err != nil {
		HandleRequestError(c, err)
		return
	}
	doc.CreatedBy = actorFromContext(c)

	if err := h.store.Save(ctx, &doc); err != nil {
		HandleRequestError(c, err)
		return
	}
	h.changed(c, events.TopicFormUpdated, &doc)

	status := http.StatusCreated
	if exists {
		status = http.StatusOK
	}
	c.JSON(status, doc)
}

// GetCurrentForm returns the form, creating the default one on first access
func (h *FormHandler) GetCurrentForm(c *gin.Context) {
	doc, err := h.store.GetOrCreate(c.Request.Context(), actorFromContext(c))
	if err != nil {
		HandleRequestError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// GetCurrentFormFields returns fixed and custom fields of the form, ordered
func (h *FormHandler) GetCurrentFormFields(c *gin.Context) {
	doc, err := h.store.GetOrCreate(c.Request.Context(), actorFromContext(c))
	if err != nil {
		HandleRequestError(c, err)
		return
	}
	c.JSON(http.StatusOK, SchemaResponse{
		Source: fieldschema.SourceForm,
		Fields: fieldschema.ComposeForm(doc.Fields),
	})
}

// UpdateCurrentForm applies a partial update; absent keys keep their values
func (h *FormHandler) UpdateCurrentForm(c *gin.Context) {
	current, err := h.store.GetOrCreate(c.Request.Context(), actorFromContext(c))
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
	// decoding into the old slice would leave stale attributes behind
	next.Fields = nil
	if err := decodeOnto(body, &next); err != nil {
		HandleRequestError(c, err)
		return
	}
	if next.Fields == nil {
		next.Fields = current.Fields
	}
	h.save(c, &next)
}

// PatchCurrentForm applies a JSON Patch or merge patch to the form
func (h *FormHandler) PatchCurrentForm(c *gin.Context) {
	current, err := h.store.GetOrCreate(c.Request.Context(), actorFromContext(c))
	if err != nil {
		HandleRequestError(c, err)
		return
	}
	modified, err := applyPatch(c, current)
	if err != nil {
		HandleRequestError(c, err)
		return
	}
	var next FormDocument
	if err := decodeOnto(modified, &next); err != nil {
		HandleRequestError(c, err)
		return
	}
	h.save(c, &next)
}

func (h *FormHandler) save(c *gin.Context, doc *FormDocument) {
	if err := h.store.Save(c.Request.Context(), doc); err != nil {
		HandleRequestError(c, err)
		return
	}
	h.changed(c, events.TopicFormUpdated, doc)
	c.JSON(http.StatusOK, doc)
}

// DeleteCurrentForm removes the form document
func (h *FormHandler) DeleteCurrentForm(c *gin.Context) {
	current, err := h.store.Get(c.Request.Context())
	if err != nil {
		HandleRequestError(c, err)
		return
	}
	if err := h.store.Delete(c.Request.Context()); err != nil {
		HandleRequestError(c, err)
		return
	}
	h.changed(c, events.TopicFormDeleted, current)
	c.Status(http.StatusNoContent)
}

func (h *FormHandler) changed(c *gin.Context, topic string, doc *FormDocument) {
	ctx := context.WithoutCancel(c.Request.Context())
	h.metrics.SchemaChange(ctx, topic)
	err := h.publisher.Publish(ctx, topic, events.FormChanged{
		FormID:     doc.ID,
		FieldCount: len(doc.Fields),
		Actor:      actorFromContext(c),
	})
	if err != nil {
		slogging.GetContextLogger(c).Warn("Failed to publish %s: %v", topic, err)
	}
}
