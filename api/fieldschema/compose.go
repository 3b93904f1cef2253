package fieldschema

import (
	"cmp"
	"fmt"
	"slices"
)

// Source selects where the custom part of a composed schema comes from.
type Source string

const (
	// SourceRegistry composes fixed fields with the active definitions.
	SourceRegistry Source = "registry"
	// SourceForm composes fixed fields with the form document's embedded fields.
	SourceForm Source = "form"
)

// ParseSource defaults an empty string to SourceRegistry.
func ParseSource(s string) (Source, error) {
	switch Source(s) {
	case "", SourceRegistry:
		return SourceRegistry, nil
	case SourceForm:
		return SourceForm, nil
	default:
		return "", fmt.Errorf("unknown schema source %q", s)
	}
}

// Compose merges the fixed fields with the active entries of custom and sorts
// the result by order. The sort is stable and fixed fields are seeded first,
// so on equal order a fixed field precedes a custom one and custom fields keep
// their relative input order.
func Compose(custom []Field) []Field {
	schema := FixedFields()
	for _, f := range custom {
		if f.IsActive() && !IsReserved(f.Name) {
			schema = append(schema, f)
		}
	}
	slices.SortStableFunc(schema, func(a, b Field) int {
		return cmp.Compare(a.Order, b.Order)
	})
	return schema
}

// ComposeRegistry composes a schema from stored definitions. Inactive
// definitions are left out; equal orders fall back to creation time.
func ComposeRegistry(defs []Definition) []Field {
	sorted := slices.Clone(defs)
	SortDefinitions(sorted)
	custom := make([]Field, 0, len(sorted))
	for _, d := range sorted {
		if d.Active {
			custom = append(custom, d.Field())
		}
	}
	return Compose(custom)
}

// ComposeForm composes a schema from a form document's embedded field list.
func ComposeForm(fields []Field) []Field {
	return Compose(fields)
}

// SortDefinitions orders definitions by order, then creation time.
func SortDefinitions(defs []Definition) {
	slices.SortStableFunc(defs, func(a, b Definition) int {
		if c := cmp.Compare(a.Order, b.Order); c != 0 {
			return c
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
}

// Lookup finds a field by name.
func Lookup(schema []Field, name string) (Field, bool) {
	for _, f := range schema {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
