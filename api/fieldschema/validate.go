package fieldschema

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Validate checks record against schema and returns the normalized record.
//
// Each field is checked in schema order: presence, then the optional-absent
// short circuit (which applies a configured default), then coercion to the
// field's kind, then every constraint that applies to the kind. Errors from
// all fields are collected; on failure the returned error is a
// *ValidationError listing them in order. Keys not named by the schema are
// dropped from the normalized record.
//
// Validate is pure and running it on its own output returns the same record.
func Validate(schema []Field, record map[string]any) (Record, error) {
	out := make(Record, len(schema))
	var errs []FieldError

	for _, f := range schema {
		raw, present := record[f.Name]
		if !present || isBlank(raw) {
			if f.Required {
				errs = append(errs, FieldError{
					Field:   f.Name,
					Code:    CodeRequiredFieldMissing,
					Message: "this field is required",
				})
				continue
			}
			if f.Default != nil && *f.Default != "" {
				if v, ok := coerce(f, *f.Default); ok {
					out[f.Name] = v
				}
			}
			continue
		}

		v, ok := coerce(f, raw)
		if !ok {
			errs = append(errs, typeMismatch(f))
			continue
		}
		if fieldErrs := checkConstraints(f, v); len(fieldErrs) > 0 {
			errs = append(errs, fieldErrs...)
			continue
		}
		out[f.Name] = v
	}

	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}
	return out, nil
}

// ValidateRecord validates a normalized record again, for example a stored
// record merged with a partial update.
func ValidateRecord(schema []Field, record Record) (Record, error) {
	return Validate(schema, record.Map())
}

// checkValue runs coercion and constraint checks for a single value.
func checkValue(f Field, raw any) []FieldError {
	v, ok := coerce(f, raw)
	if !ok {
		return []FieldError{typeMismatch(f)}
	}
	return checkConstraints(f, v)
}

func typeMismatch(f Field) FieldError {
	return FieldError{
		Field:    f.Name,
		Code:     CodeTypeMismatch,
		Message:  fmt.Sprintf("expected a value of type %s", f.Kind),
		Expected: f.Kind,
	}
}

// checkConstraints applies the constraints of f's kind that are set on f.
func checkConstraints(f Field, v Value) []FieldError {
	var errs []FieldError
	add := func(code ErrorCode, format string, args ...any) {
		errs = append(errs, FieldError{Field: f.Name, Code: code, Message: fmt.Sprintf(format, args...)})
	}
	applicable := ConstraintsFor(f.Kind)

	if v.Type() == TypeString {
		n := utf8.RuneCountInString(v.Str())
		if applicable.Has(MinLength) && f.MinLength != nil && n < *f.MinLength {
			add(CodeTooShort, "must be at least %d characters", *f.MinLength)
		}
		if applicable.Has(MaxLength) && f.MaxLength != nil && n > *f.MaxLength {
			add(CodeTooLong, "must be at most %d characters", *f.MaxLength)
		}
		if applicable.Has(Pattern) && f.Pattern != "" {
			re, err := compilePattern(f.Pattern)
			if err != nil || !re.MatchString(v.Str()) {
				add(CodePatternMismatch, "does not match the required pattern")
			}
		}
	}

	if v.Type() == TypeNumber {
		if applicable.Has(MinValue) && f.MinValue != nil && v.Number().LessThan(*f.MinValue) {
			add(CodeBelowMinimum, "must be at least %s", f.MinValue.String())
		}
		if applicable.Has(MaxValue) && f.MaxValue != nil && v.Number().GreaterThan(*f.MaxValue) {
			add(CodeAboveMaximum, "must be at most %s", f.MaxValue.String())
		}
	}

	if applicable.Has(Options) && len(f.Options) > 0 {
		var invalid []string
		switch v.Type() {
		case TypeString:
			if !f.hasOption(v.Str()) {
				invalid = append(invalid, v.Str())
			}
		case TypeList:
			for _, item := range v.List() {
				if !f.hasOption(item) {
					invalid = append(invalid, item)
				}
			}
		}
		if len(invalid) > 0 {
			add(CodeInvalidOption, "%q is not a valid choice", strings.Join(invalid, ", "))
		}
	}
	return errs
}
