// Package fieldschema holds the employee field type system: the catalogue of
// field kinds, custom field definitions, the built-in fixed fields, schema
// composition and the validation engine that every employee write goes through.
//
// Everything in this package is a pure function of its inputs. Persistence and
// transport live in the api package.
package fieldschema

import (
	"fmt"
	"strings"
)

// FieldKind is the type tag of a field. It decides which coercion runs on a
// submitted value and which constraints a definition may carry.
type FieldKind string

const (
	KindText     FieldKind = "TEXT"
	KindEmail    FieldKind = "EMAIL"
	KindNumber   FieldKind = "NUMBER"
	KindDecimal  FieldKind = "DECIMAL"
	KindDate     FieldKind = "DATE"
	KindTextarea FieldKind = "TEXTAREA"
	KindSelect   FieldKind = "SELECT"
	KindCheckbox FieldKind = "CHECKBOX"
	KindRadio    FieldKind = "RADIO"
	KindFile     FieldKind = "FILE"
	KindPhone    FieldKind = "PHONE"
	KindURL      FieldKind = "URL"
)

// AllKinds lists every supported kind in catalogue order.
var AllKinds = []FieldKind{
	KindText, KindEmail, KindNumber, KindDate, KindTextarea, KindSelect,
	KindCheckbox, KindRadio, KindFile, KindPhone, KindURL, KindDecimal,
}

var kindLabels = map[FieldKind]string{
	KindText:     "Text",
	KindEmail:    "Email",
	KindNumber:   "Number",
	KindDecimal:  "Decimal",
	KindDate:     "Date",
	KindTextarea: "Text Area",
	KindSelect:   "Select Dropdown",
	KindCheckbox: "Checkbox",
	KindRadio:    "Radio Button",
	KindFile:     "File Upload",
	KindPhone:    "Phone",
	KindURL:      "URL",
}

// Valid reports whether k is one of the supported kinds.
func (k FieldKind) Valid() bool {
	_, ok := kindLabels[k]
	return ok
}

// Label returns the human readable name of the kind.
func (k FieldKind) Label() string {
	return kindLabels[k]
}

// ParseFieldKind resolves a kind name case-insensitively.
func ParseFieldKind(s string) (FieldKind, error) {
	k := FieldKind(strings.ToUpper(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("unknown field kind %q", s)
	}
	return k, nil
}

// Constraint identifies one constraint parameter of a definition.
type Constraint uint8

const (
	MinLength Constraint = 1 << iota
	MaxLength
	MinValue
	MaxValue
	Pattern
	Options
)

var constraintKeys = []struct {
	c   Constraint
	key string
}{
	{MinLength, "min_length"},
	{MaxLength, "max_length"},
	{MinValue, "min_value"},
	{MaxValue, "max_value"},
	{Pattern, "pattern"},
	{Options, "options"},
}

// Key returns the wire name of the constraint.
func (c Constraint) Key() string {
	for _, ck := range constraintKeys {
		if ck.c == c {
			return ck.key
		}
	}
	return fmt.Sprintf("constraint(%d)", uint8(c))
}

// ConstraintSet is a set of constraints. The zero value is empty.
type ConstraintSet uint8

// Has reports whether c is a member of the set.
func (s ConstraintSet) Has(c Constraint) bool {
	return uint8(s)&uint8(c) != 0
}

// Keys returns the wire names of the members in a fixed order.
func (s ConstraintSet) Keys() []string {
	keys := make([]string, 0, len(constraintKeys))
	for _, ck := range constraintKeys {
		if s.Has(ck.c) {
			keys = append(keys, ck.key)
		}
	}
	return keys
}

func constraints(cs ...Constraint) ConstraintSet {
	var s ConstraintSet
	for _, c := range cs {
		s |= ConstraintSet(c)
	}
	return s
}

var (
	textConstraints    = constraints(MinLength, MaxLength, Pattern)
	numericConstraints = constraints(MinValue, MaxValue)
	choiceConstraints  = constraints(Options)
)

// kindConstraints is read-only after package initialisation.
var kindConstraints = map[FieldKind]ConstraintSet{
	KindText:     textConstraints,
	KindTextarea: textConstraints,
	KindEmail:    textConstraints,
	KindPhone:    textConstraints,
	KindURL:      textConstraints,
	KindNumber:   numericConstraints,
	KindDecimal:  numericConstraints,
	KindSelect:   choiceConstraints,
	KindRadio:    choiceConstraints,
	KindCheckbox: choiceConstraints,
	KindDate:     0,
	KindFile:     0,
}

// ConstraintsFor returns the constraints that are meaningful for kind. An
// unknown kind has no applicable constraints.
func ConstraintsFor(kind FieldKind) ConstraintSet {
	return kindConstraints[kind]
}

// IsChoice reports whether values of kind are drawn from an options list.
func (k FieldKind) IsChoice() bool {
	return ConstraintsFor(k).Has(Options)
}

// IsNumeric reports whether values of kind are numbers.
func (k FieldKind) IsNumeric() bool {
	return k == KindNumber || k == KindDecimal
}
