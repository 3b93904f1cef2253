package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"

	"github.com/ericfitz/personnel/api/fieldschema"
	"github.com/ericfitz/personnel/internal/slogging"
	"github.com/gin-gonic/gin"
)

// EmployeeHandler serves employee records
type EmployeeHandler struct {
	employees *EmployeeService
	schema    *SchemaService
}

// NewEmployeeHandler creates an employee handler
func NewEmployeeHandler(employees *EmployeeService, schema *SchemaService) *EmployeeHandler {
	return &EmployeeHandler{employees: employees, schema: schema}
}

func employeeIDParam(c *gin.Context) (string, error) {
	id := c.Param("id")
	if _, err := ParseUUID(id); err != nil {
		return "", InvalidIDError("Invalid employee ID format, must be a valid UUID")
	}
	return id, nil
}

func (h *EmployeeHandler) filterParams(c *gin.Context) (EmployeeFilter, error) {
	filter := EmployeeFilter{
		Department: c.Query("department"),
		Status:     c.Query("status"),
	}
	if filter.Department != "" && !slices.Contains(fieldschema.Departments(), filter.Department) {
		return filter, InvalidInputError(fmt.Sprintf("department must be one of %v", fieldschema.Departments()))
	}
	if filter.Status != "" && !slices.Contains(fieldschema.Statuses(), filter.Status) {
		return filter, InvalidInputError(fmt.Sprintf("status must be one of %v", fieldschema.Statuses()))
	}
	return filter, nil
}

// ListEmployees returns a page of employees, newest first
func (h *EmployeeHandler) ListEmployees(c *gin.Context) {
	filter, err := h.filterParams(c)
	if err != nil {
		HandleRequestError(c, err)
		return
	}
	filter.Limit, filter.Offset, err = parsePagination(c)
	if err != nil {
		HandleRequestError(c, err)
		return
	}

	employees, total, err := h.employees.List(c.Request.Context(), filter)
	if err != nil {
		HandleRequestError(c, err)
		return
	}

	items := make([]EmployeeListItem, 0, len(employees))
	for i := range employees {
		items = append(items, employees[i].ListItem())
	}
	c.JSON(http.StatusOK, ListEmployeesResponse{
		Employees: items,
		Total:     total,
		Limit:     filter.Limit,
		Offset:    filter.Offset,
	})
}

// CreateEmployee validates and stores a new employee
func (h *EmployeeHandler) CreateEmployee(c *gin.Context) {
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

	employee, err := h.employees.Create(c.Request.Context(), source, input, actorFromContext(c))
	if err != nil {
		HandleRequestError(c, err)
		return
	}
	slogging.GetContextLogger(c).Info("Created employee %s", employee.ID)
	c.JSON(http.StatusCreated, employee)
}

// GetEmployee returns one employee
func (h *EmployeeHandler) GetEmployee(c *gin.Context) {
	id, err := employeeIDParam(c)
	if err != nil {
		HandleRequestError(c, err)
		return
	}
	employee, err := h.employees.Get(c.Request.Context(), id)
	if err != nil {
		HandleRequestError(c, err)
		return
	}
	c.JSON(http.StatusOK, employee)
}

// UpdateEmployee applies a partial update and revalidates the whole record
func (h *EmployeeHandler) UpdateEmployee(c *gin.Context) {
	id, err := employeeIDParam(c)
	if err != nil {
		HandleRequestError(c, err)
		return
	}
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
	changes, err := flattenEmployeeInput(body)
	if err != nil {
		HandleRequestError(c, err)
		return
	}

	employee, err := h.employees.Update(c.Request.Context(), source, id, changes, actorFromContext(c))
	if err != nil {
		HandleRequestError(c, err)
		return
	}
	c.JSON(http.StatusOK, employee)
}

// PatchEmployee applies a JSON Patch or merge patch to the employee document
func (h *EmployeeHandler) PatchEmployee(c *gin.Context) {
	id, err := employeeIDParam(c)
	if err != nil {
		HandleRequestError(c, err)
		return
	}
	source, err := sourceParam(c)
	if err != nil {
		HandleRequestError(c, err)
		return
	}
	current, err := h.employees.Get(c.Request.Context(), id)
	if err != nil {
		HandleRequestError(c, err)
		return
	}

	modified, err := applyPatch(c, current)
	if err != nil {
		HandleRequestError(c, err)
		return
	}
	var doc map[string]any
	dec := json.NewDecoder(bytes.NewReader(modified))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		HandleRequestError(c, InvalidInputError("Patched document is not an object"))
		return
	}
	record, err := flattenEmployeeInput(doc)
	if err != nil {
		HandleRequestError(c, err)
		return
	}

	employee, err := h.employees.Replace(c.Request.Context(), source, id, record, actorFromContext(c))
	if err != nil {
		HandleRequestError(c, err)
		return
	}
	c.JSON(http.StatusOK, employee)
}

// DeleteEmployee removes an employee
func (h *EmployeeHandler) DeleteEmployee(c *gin.Context) {
	id, err := employeeIDParam(c)
	if err != nil {
		HandleRequestError(c, err)
		return
	}
	if err := h.employees.Delete(c.Request.Context(), id, actorFromContext(c)); err != nil {
		HandleRequestError(c, err)
		return
	}
	slogging.GetContextLogger(c).Info("Deleted employee %s", id)
	c.Status(http.StatusNoContent)
}

// ExportEmployees streams the filtered employees as an xlsx workbook
func (h *EmployeeHandler) ExportEmployees(c *gin.Context) {
	source, err := sourceParam(c)
	if err != nil {
		HandleRequestError(c, err)
		return
	}
	filter, err := h.filterParams(c)
	if err != nil {
		HandleRequestError(c, err)
		return
	}

	schema, err := h.schema.Compose(c.Request.Context(), source)
	if err != nil {
		HandleRequestError(c, err)
		return
	}
	employees, _, err := h.employees.List(c.Request.Context(), filter)
	if err != nil {
		HandleRequestError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := WriteEmployeeWorkbook(&buf, schema, employees); err != nil {
		HandleRequestError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFileName))
	c.Data(http.StatusOK, ContentTypeXLSX, buf.Bytes())
}
