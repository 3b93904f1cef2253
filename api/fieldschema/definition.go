package fieldschema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Column limits of the persisted definition.
const (
	MaxFieldNameLen    = 100
	MaxFieldLabelLen   = 255
	MaxPatternLen      = 500
	MaxDefaultValueLen = 500

	// min_value and max_value are stored as DECIMAL(10,2).
	decimalPlaces  = 2
	decimalDigits  = 10
	decimalIntPart = decimalDigits - decimalPlaces
)

var fieldNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var decimalLimit = decimal.New(1, decimalIntPart)

// Option is one allowed value of a choice field. On the wire an option is
// either a bare string or an object with value and label.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label,omitempty"`
}

func (o Option) MarshalJSON() ([]byte, error) {
	if o.Label == "" {
		return json.Marshal(o.Value)
	}
	type plain Option
	return json.Marshal(plain(o))
}

func (o *Option) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		o.Label = ""
		return json.Unmarshal(data, &o.Value)
	}
	type plain Option
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("option must be a string or an object with a value: %w", err)
	}
	*o = Option(p)
	return nil
}

// OptionValues builds options from bare values.
func OptionValues(values ...string) []Option {
	opts := make([]Option, len(values))
	for i, v := range values {
		opts[i] = Option{Value: v}
	}
	return opts
}

// Field is one entry of a composed schema. Form documents embed their custom
// fields in this shape as well.
type Field struct {
	ID        string           `json:"id,omitempty"`
	Name      string           `json:"name"`
	Label     string           `json:"label"`
	Kind      FieldKind        `json:"type"`
	Required  bool             `json:"required"`
	Order     float64          `json:"order"`
	Options   []Option         `json:"options,omitempty"`
	MinLength *int             `json:"min_length,omitempty"`
	MaxLength *int             `json:"max_length,omitempty"`
	MinValue  *decimal.Decimal `json:"min_value,omitempty"`
	MaxValue  *decimal.Decimal `json:"max_value,omitempty"`
	Pattern   string           `json:"pattern,omitempty"`
	Default   *string          `json:"default_value,omitempty"`
	Active    *bool            `json:"is_active,omitempty"`
	Fixed     bool             `json:"fixed,omitempty"`
}

// IsActive treats an unset flag as active.
func (f Field) IsActive() bool {
	return f.Active == nil || *f.Active
}

func (f Field) hasOption(v string) bool {
	for _, o := range f.Options {
		if o.Value == v {
			return true
		}
	}
	return false
}

func compilePattern(p string) (*regexp.Regexp, error) {
	return regexp.Compile(`^(?:` + p + `)$`)
}

// Definition is a custom field registered by an administrator.
type Definition struct {
	ID        string           `json:"id"`
	Name      string           `json:"field_name"`
	Label     string           `json:"field_label"`
	Kind      FieldKind        `json:"field_type"`
	Required  bool             `json:"is_required"`
	Order     int              `json:"order"`
	Options   []Option         `json:"options"`
	MinLength *int             `json:"min_length"`
	MaxLength *int             `json:"max_length"`
	MinValue  *decimal.Decimal `json:"min_value"`
	MaxValue  *decimal.Decimal `json:"max_value"`
	Pattern   string           `json:"pattern"`
	Default   *string          `json:"default_value"`
	Active    bool             `json:"is_active"`
	CreatedBy string           `json:"created_by,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Field converts the definition into a schema entry.
func (d Definition) Field() Field {
	active := d.Active
	return Field{
		ID:        d.ID,
		Name:      d.Name,
		Label:     d.Label,
		Kind:      d.Kind,
		Required:  d.Required,
		Order:     float64(d.Order),
		Options:   d.Options,
		MinLength: d.MinLength,
		MaxLength: d.MaxLength,
		MinValue:  d.MinValue,
		MaxValue:  d.MaxValue,
		Pattern:   d.Pattern,
		Default:   d.Default,
		Active:    &active,
	}
}

// CheckDefinition validates a definition before it is stored: identity rules
// first, then the constraint grammar of its kind.
func CheckDefinition(d Definition) error {
	switch {
	case d.Name == "":
		return invalidConstraint(d.Name, "field_name is required")
	case utf8.RuneCountInString(d.Name) > MaxFieldNameLen:
		return invalidConstraint(d.Name, "field_name exceeds %d characters", MaxFieldNameLen)
	case !fieldNamePattern.MatchString(d.Name):
		return invalidConstraint(d.Name, "field_name must start with a letter or underscore and contain only letters, digits and underscores")
	case IsReserved(d.Name):
		return &DefinitionError{Code: CodeDuplicateFieldName, Field: d.Name, Message: "field name is reserved for a fixed field"}
	case d.Label == "":
		return invalidConstraint(d.Name, "field_label is required")
	case utf8.RuneCountInString(d.Label) > MaxFieldLabelLen:
		return invalidConstraint(d.Name, "field_label exceeds %d characters", MaxFieldLabelLen)
	}
	for _, v := range []*decimal.Decimal{d.MinValue, d.MaxValue} {
		if v == nil {
			continue
		}
		if !v.Equal(v.Round(decimalPlaces)) {
			return invalidConstraint(d.Name, "min_value and max_value allow at most %d decimal places", decimalPlaces)
		}
		if v.Abs().GreaterThanOrEqual(decimalLimit) {
			return invalidConstraint(d.Name, "min_value and max_value must have at most %d integer digits", decimalIntPart)
		}
	}
	return CheckField(d.Field())
}

// CheckField validates the constraint grammar of a single field: the kind is
// known, every constraint set applies to the kind, bounds are ordered, the
// pattern compiles, choice kinds list their options and the default value is
// itself a valid value of the field.
func CheckField(f Field) error {
	if !f.Kind.Valid() {
		return invalidConstraint(f.Name, "unknown field type %q", f.Kind)
	}
	allowed := ConstraintsFor(f.Kind)
	set := map[Constraint]bool{
		MinLength: f.MinLength != nil,
		MaxLength: f.MaxLength != nil,
		MinValue:  f.MinValue != nil,
		MaxValue:  f.MaxValue != nil,
		Pattern:   f.Pattern != "",
		Options:   len(f.Options) > 0,
	}
	for _, ck := range constraintKeys {
		if set[ck.c] && !allowed.Has(ck.c) {
			return invalidConstraint(f.Name, "%s does not apply to %s fields", ck.key, f.Kind)
		}
	}

	if f.MinLength != nil && *f.MinLength < 0 {
		return invalidConstraint(f.Name, "min_length must not be negative")
	}
	if f.MaxLength != nil && *f.MaxLength < 1 {
		return invalidConstraint(f.Name, "max_length must be at least 1")
	}
	if f.MinLength != nil && f.MaxLength != nil && *f.MinLength > *f.MaxLength {
		return invalidConstraint(f.Name, "min_length %d is greater than max_length %d", *f.MinLength, *f.MaxLength)
	}
	if f.MinValue != nil && f.MaxValue != nil && f.MinValue.GreaterThan(*f.MaxValue) {
		return invalidConstraint(f.Name, "min_value %s is greater than max_value %s", f.MinValue, f.MaxValue)
	}

	if f.Pattern != "" {
		if utf8.RuneCountInString(f.Pattern) > MaxPatternLen {
			return invalidConstraint(f.Name, "pattern exceeds %d characters", MaxPatternLen)
		}
		if _, err := compilePattern(f.Pattern); err != nil {
			return invalidConstraint(f.Name, "pattern does not compile: %v", err)
		}
	}

	if f.Kind.IsChoice() && f.Kind != KindCheckbox && len(f.Options) == 0 {
		return invalidConstraint(f.Name, "%s fields need at least one option", f.Kind)
	}
	seen := make(map[string]bool, len(f.Options))
	for _, o := range f.Options {
		if o.Value == "" {
			return invalidConstraint(f.Name, "option values must not be empty")
		}
		if seen[o.Value] {
			return invalidConstraint(f.Name, "duplicate option %q", o.Value)
		}
		seen[o.Value] = true
	}

	if f.Default != nil {
		if utf8.RuneCountInString(*f.Default) > MaxDefaultValueLen {
			return invalidConstraint(f.Name, "default_value exceeds %d characters", MaxDefaultValueLen)
		}
		if *f.Default != "" {
			if errs := checkValue(f, *f.Default); len(errs) > 0 {
				return invalidConstraint(f.Name, "default_value is not a valid value: %s", errs[0].Message)
			}
		}
	}
	return nil
}
