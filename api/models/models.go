// Package models defines the GORM models of the personnel database. The
// models run on PostgreSQL, MySQL, SQL Server, SQLite and Oracle through
// GORM's dialect abstraction and the portable column types in types.go.
package models

import (
	"time"

	"github.com/ericfitz/personnel/internal/uuidgen"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FormSingletonKey is the only value the form singleton_key column may hold.
// Its unique index makes a second form row impossible.
const FormSingletonKey = "employee_form"

// Default form document attributes.
const (
	DefaultFormName        = "Employee Form"
	DefaultFormDescription = "Master form for employee data collection"
)

// FieldDefinition is an administrator-defined custom employee field.
type FieldDefinition struct {
	ID           string              `gorm:"column:id;primaryKey;type:varchar(36)"`
	FieldName    string              `gorm:"column:field_name;type:varchar(100);not null;uniqueIndex"`
	FieldLabel   string              `gorm:"column:field_label;type:varchar(255);not null"`
	FieldType    string              `gorm:"column:field_type;type:varchar(50);not null"`
	IsRequired   DBBool              `gorm:"column:is_required;not null"`
	SortOrder    int                 `gorm:"column:sort_order;not null;index:idx_field_definitions_order,priority:1"`
	Options      OptionList          `gorm:"column:options"`
	MinLength    *int                `gorm:"column:min_length"`
	MaxLength    *int                `gorm:"column:max_length"`
	MinValue     decimal.NullDecimal `gorm:"column:min_value;type:decimal(10,2)"`
	MaxValue     decimal.NullDecimal `gorm:"column:max_value;type:decimal(10,2)"`
	Pattern      *string             `gorm:"column:pattern;type:varchar(500)"`
	DefaultValue *string             `gorm:"column:default_value;type:varchar(500)"`
	IsActive     DBBool              `gorm:"column:is_active;not null;index"`
	CreatedBy    *string             `gorm:"column:created_by;type:varchar(255)"`
	CreatedAt    time.Time           `gorm:"column:created_at;not null;autoCreateTime;index:idx_field_definitions_order,priority:2"`
	UpdatedAt    time.Time           `gorm:"column:updated_at;not null;autoUpdateTime"`
}

// TableName specifies the table name for FieldDefinition
func (FieldDefinition) TableName() string {
	return "employee_field_definitions"
}

// BeforeCreate generates a UUID if not set
func (d *FieldDefinition) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuidgen.NewString(uuidgen.EntityTypeFieldDefinition)
	}
	return nil
}

// EmployeeForm is the single master form document.
type EmployeeForm struct {
	ID              string    `gorm:"column:id;primaryKey;type:varchar(36)"`
	SingletonKey    string    `gorm:"column:singleton_key;type:varchar(32);not null;uniqueIndex"`
	FormName        string    `gorm:"column:form_name;type:varchar(255);not null"`
	FormDescription DBText    `gorm:"column:form_description"`
	Fields          FieldList `gorm:"column:fields"`
	IsActive        DBBool    `gorm:"column:is_active;not null"`
	CreatedBy       *string   `gorm:"column:created_by;type:varchar(255)"`
	CreatedAt       time.Time `gorm:"column:created_at;not null;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;not null;autoUpdateTime"`
}

// TableName specifies the table name for EmployeeForm
func (EmployeeForm) TableName() string {
	return "employee_forms"
}

// BeforeCreate generates a UUID and pins the singleton key.
func (f *EmployeeForm) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuidgen.NewString(uuidgen.EntityTypeForm)
	}
	f.SingletonKey = FormSingletonKey
	return nil
}

// Employee is one personnel record: fixed attributes as columns and custom
// field values in DynamicData.
type Employee struct {
	ID          string     `gorm:"column:id;primaryKey;type:varchar(36)"`
	Name        string     `gorm:"column:name;type:varchar(255);not null;index"`
	Email       string     `gorm:"column:email;type:varchar(254);not null;uniqueIndex"`
	Department  string     `gorm:"column:department;type:varchar(50);not null;index"`
	Role        string     `gorm:"column:role;type:varchar(100);not null"`
	Status      string     `gorm:"column:status;type:varchar(20);not null;index"`
	HireDate    *time.Time `gorm:"column:hire_date;type:date"`
	DynamicData JSONMap    `gorm:"column:dynamic_data"`
	CreatedBy   *string    `gorm:"column:created_by;type:varchar(255)"`
	CreatedAt   time.Time  `gorm:"column:created_at;not null;autoCreateTime;index"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;not null;autoUpdateTime"`
}

// TableName specifies the table name for Employee
func (Employee) TableName() string {
	return "employees"
}

// BeforeCreate generates a UUID if not set
func (e *Employee) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuidgen.NewString(uuidgen.EntityTypeEmployee)
	}
	return nil
}

// AllModels returns every model for migration.
func AllModels() []interface{} {
	return []interface{}{
		&FieldDefinition{},
		&EmployeeForm{},
		&Employee{},
	}
}
