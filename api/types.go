package api

import (
	"maps"
	"time"

	"github.com/ericfitz/personnel/api/fieldschema"
	"github.com/google/uuid"
)

// ParseUUID validates an id path parameter
func ParseUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}

// FormDocument is the singleton master form. Its embedded fields are a
// snapshot independent of the field definition registry.
type FormDocument struct {
	ID              string              `json:"id"`
	FormName        string              `json:"form_name"`
	FormDescription string              `json:"form_description"`
	Fields          []fieldschema.Field `json:"fields"`
	IsActive        bool                `json:"is_active"`
	CreatedBy       string              `json:"created_by,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// Employee is the API shape of a personnel record
type Employee struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Email       string         `json:"email"`
	Department  string         `json:"department"`
	Role        string         `json:"role"`
	Status      string         `json:"status"`
	HireDate    *string        `json:"hire_date"`
	DynamicData map[string]any `json:"dynamic_data"`
	CreatedBy   string         `json:"created_by,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// EmployeeListItem is the light projection returned by the list endpoint
type EmployeeListItem struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Department string    `json:"department"`
	Role       string    `json:"role"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// EmployeeFilter narrows an employee listing. A zero Limit returns every row.
type EmployeeFilter struct {
	Department string
	Status     string
	Limit      int
	Offset     int
}

// ListEmployeesResponse is a page of employees
type ListEmployeesResponse struct {
	Employees []EmployeeListItem `json:"employees"`
	Total     int64              `json:"total"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
}

// ListFieldDefinitionsResponse wraps the registry listing
type ListFieldDefinitionsResponse struct {
	FieldDefinitions []fieldschema.Definition `json:"field_definitions"`
	Total            int                      `json:"total"`
}

// SchemaResponse is a composed schema
type SchemaResponse struct {
	Source fieldschema.Source  `json:"source"`
	Fields []fieldschema.Field `json:"fields"`
}

// ValidateResponse reports a successful dry run
type ValidateResponse struct {
	Valid  bool               `json:"valid"`
	Record fieldschema.Record `json:"record"`
}

// Record flattens the employee into a validation input: fixed attributes
// and dynamic data share one namespace.
func (e *Employee) Record() map[string]any {
	rec := make(map[string]any, len(e.DynamicData)+6)
	maps.Copy(rec, e.DynamicData)
	rec[fieldschema.FieldName] = e.Name
	rec[fieldschema.FieldEmail] = e.Email
	rec[fieldschema.FieldDepartment] = e.Department
	rec[fieldschema.FieldRole] = e.Role
	rec[fieldschema.FieldStatus] = e.Status
	if e.HireDate != nil {
		rec[fieldschema.FieldHireDate] = *e.HireDate
	}
	return rec
}

// ListItem projects the employee for listings
func (e *Employee) ListItem() EmployeeListItem {
	return EmployeeListItem{
		ID:         e.ID,
		Name:       e.Name,
		Email:      e.Email,
		Department: e.Department,
		Role:       e.Role,
		Status:     e.Status,
		CreatedAt:  e.CreatedAt,
	}
}

// employeeFromRecord splits a normalized record into fixed attributes and
// dynamic data.
func employeeFromRecord(rec fieldschema.Record) Employee {
	e := Employee{DynamicData: make(map[string]any)}
	for name, v := range rec {
		switch name {
		case fieldschema.FieldName:
			e.Name = v.Str()
		case fieldschema.FieldEmail:
			e.Email = v.Str()
		case fieldschema.FieldDepartment:
			e.Department = v.Str()
		case fieldschema.FieldRole:
			e.Role = v.Str()
		case fieldschema.FieldStatus:
			e.Status = v.Str()
		case fieldschema.FieldHireDate:
			d := v.String()
			e.HireDate = &d
		default:
			e.DynamicData[name] = v
		}
	}
	if e.Status == "" {
		e.Status = fieldschema.StatusActive
	}
	return e
}
