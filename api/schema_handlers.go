package api

import (
	"net/http"

	"github.com/ericfitz/personnel/api/fieldschema"
	"github.com/gin-gonic/gin"
)

// SchemaHandler exposes the composed schema and dry-run validation
type SchemaHandler struct {
	schema    *SchemaService
	employees *EmployeeService
}

// NewSchemaHandler creates a schema handler
func NewSchemaHandler(schema *SchemaService, employees *EmployeeService) *SchemaHandler {
	return &SchemaHandler{schema: schema, employees: employees}
}

func sourceParam(c *gin.Context) (fieldschema.Source, error) {
	source, err := fieldschema.ParseSource(c.Query("source"))
	if err != nil {
		return "", InvalidInputError("source must be registry or form")
	}
	return source, nil
}

// GetSchema returns the composed schema for ?source=registry|form
func (h *SchemaHandler) GetSchema(c *gin.Context) {
	source, err := sourceParam(c)
	if err != nil {
		HandleRequestError(c, err)
		return
	}
	fields, err := h.schema.Compose(c.Request.Context(), source)
	if err != nil {
		HandleRequestError(c, err)
		return
	}
	c.JSON(http.StatusOK, SchemaResponse{Source: source, Fields: fields})
}

// ValidateRecord validates a candidate employee record without storing it
func (h *SchemaHandler) ValidateRecord(c *gin.Context) {
	source, err := sourceParam(c)
	if err != nil {
		HandleRequestError(c, err)
		return
	}
	body, err := ParseRequestBody[map[string]any](c)
	if err != nil {
		HandleRequestError(c, err)
		return
	}
	input, err := flattenEmployeeInput(body)
	if err != nil {
		HandleRequestError(c, err)
		return
	}
	rec, err := h.employees.Validate(c.Request.Context(), source, input)
	if err != nil {
		HandleRequestError(c, err)
		return
	}
	c.JSON(http.StatusOK, ValidateResponse{Valid: true, Record: rec})
}
