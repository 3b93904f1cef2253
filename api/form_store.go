package api

import (
	"context"
	"fmt"

	"github.com/ericfitz/personnel/api/fieldschema"
	"github.com/ericfitz/personnel/internal/idgen"
)

// FormStore persists the singleton form document
type FormStore interface {
	// Get returns the form, or ErrNotFound when none exists yet
	Get(ctx context.Context) (*FormDocument, error)
	// GetOrCreate returns the form, creating it with defaults when absent.
	// Concurrent callers observe the same single row.
	GetOrCreate(ctx context.Context, actor string) (*FormDocument, error)
	// Save writes doc over the singleton, creating it when absent
	Save(ctx context.Context, doc *FormDocument) error
	// Delete removes the form document
	Delete(ctx context.Context) error
}

// prepareFormFields checks every embedded descriptor and assigns ids to new
// ones. Names must be unique and may not shadow a fixed field.
func prepareFormFields(fields []fieldschema.Field) error {
	seen := make(map[string]bool, len(fields))
	for i := range fields {
		f := &fields[i]
		if f.Name == "" {
			return fieldschema.InvalidConstraint("", "form field %d has no name", i)
		}
		if fieldschema.IsReserved(f.Name) {
			return fieldschema.DuplicateFieldName(f.Name)
		}
		if seen[f.Name] {
			return fieldschema.DuplicateFieldName(f.Name)
		}
		seen[f.Name] = true
		if f.Label == "" {
			f.Label = f.Name
		}
		f.Fixed = false
		if err := fieldschema.CheckField(*f); err != nil {
			return err
		}
		if f.ID == "" {
			id, err := idgen.NewFieldID()
			if err != nil {
				return fmt.Errorf("failed to assign form field id: %w", err)
			}
			f.ID = id
		}
	}
	return nil
}
