package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/ericfitz/personnel/api/fieldschema"
)

// SchemaService composes the active schema from the registry or the form
type SchemaService struct {
	definitions FieldDefinitionStore
	forms       FormStore
}

// NewSchemaService creates a schema service over the two custom field sources
func NewSchemaService(definitions FieldDefinitionStore, forms FormStore) *SchemaService {
	return &SchemaService{definitions: definitions, forms: forms}
}

// Compose returns fixed fields plus the active custom fields of source,
// ordered by rank. A missing or inactive form contributes no custom fields.
func (s *SchemaService) Compose(ctx context.Context, source fieldschema.Source) ([]fieldschema.Field, error) {
	switch source {
	case fieldschema.SourceForm:
		doc, err := s.forms.Get(ctx)
		if errors.Is(err, fieldschema.ErrNotFound) {
			return fieldschema.ComposeForm(nil), nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load form: %w", err)
		}
		if !doc.IsActive {
			return fieldschema.ComposeForm(nil), nil
		}
		return fieldschema.ComposeForm(doc.Fields), nil
	default:
		defs, err := s.definitions.List(ctx, false)
		if err != nil {
			return nil, fmt.Errorf("failed to load field definitions: %w", err)
		}
		return fieldschema.ComposeRegistry(defs), nil
	}
}
