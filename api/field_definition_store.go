package api

import (
	"context"

	"github.com/ericfitz/personnel/api/fieldschema"
)

// FieldDefinitionStore persists custom field definitions. Names are unique
// across active and inactive definitions.
type FieldDefinitionStore interface {
	// Create validates and stores a new definition, filling ID and timestamps
	Create(ctx context.Context, def *fieldschema.Definition) error
	// Get returns the definition named name, active or not
	Get(ctx context.Context, name string) (*fieldschema.Definition, error)
	// Update replaces the mutable attributes of the definition named name.
	// The name and the field type cannot change.
	Update(ctx context.Context, name string, def *fieldschema.Definition) error
	// Deactivate hides the field from composed schemas without touching records
	Deactivate(ctx context.Context, name string) (*fieldschema.Definition, error)
	// Reactivate brings a deactivated field back
	Reactivate(ctx context.Context, name string) (*fieldschema.Definition, error)
	// Delete removes the definition. Stored record values are left in place.
	Delete(ctx context.Context, name string) error
	// List returns definitions ordered by order, then creation time
	List(ctx context.Context, includeInactive bool) ([]fieldschema.Definition, error)
}

// checkImmutable rejects updates that rename a field or change its type
func checkImmutable(current, next *fieldschema.Definition) error {
	if next.Name != "" && next.Name != current.Name {
		return fieldschema.InvalidConstraint(current.Name, "field_name cannot be changed")
	}
	if next.Kind != "" && next.Kind != current.Kind {
		return fieldschema.InvalidConstraint(current.Name, "field_type cannot be changed")
	}
	return nil
}
