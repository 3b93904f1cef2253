// Package models - hooks.go contains GORM lifecycle hooks for validation.
// These hooks replace CHECK constraints so every supported database enforces
// the same column rules.
package models

import (
	"fmt"
	"slices"

	"github.com/ericfitz/personnel/api/fieldschema"
	"gorm.io/gorm"
)

// BeforeSave rejects unknown field types.
func (d *FieldDefinition) BeforeSave(tx *gorm.DB) error {
	if !fieldschema.FieldKind(d.FieldType).Valid() {
		return fmt.Errorf("field_type: unknown field type %q", d.FieldType)
	}
	return nil
}

// BeforeSave keeps department and status within their enumerations.
func (e *Employee) BeforeSave(tx *gorm.DB) error {
	if err := validateEnum("department", e.Department, fieldschema.Departments()); err != nil {
		return err
	}
	return validateEnum("status", e.Status, fieldschema.Statuses())
}

func validateEnum(field, value string, allowed []string) error {
	if slices.Contains(allowed, value) {
		return nil
	}
	return fmt.Errorf("%s: %q is not one of %v", field, value, allowed)
}
