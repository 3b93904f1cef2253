package fieldschema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by stores when a definition, form or record does not exist.
var ErrNotFound = errors.New("not found")

// ErrorCode names one class of failure.
type ErrorCode string

const (
	CodeDuplicateFieldName   ErrorCode = "DuplicateFieldName"
	CodeInvalidConstraint    ErrorCode = "InvalidConstraint"
	CodeNotFound             ErrorCode = "NotFound"
	CodeRequiredFieldMissing ErrorCode = "RequiredFieldMissing"
	CodeTypeMismatch         ErrorCode = "TypeMismatch"
	CodeTooShort             ErrorCode = "TooShort"
	CodeTooLong              ErrorCode = "TooLong"
	CodeBelowMinimum         ErrorCode = "BelowMinimum"
	CodeAboveMaximum         ErrorCode = "AboveMaximum"
	CodePatternMismatch      ErrorCode = "PatternMismatch"
	CodeInvalidOption        ErrorCode = "InvalidOption"
)

// FieldError is one failed check on one field.
type FieldError struct {
	Field    string    `json:"field"`
	Code     ErrorCode `json:"code"`
	Message  string    `json:"message"`
	Expected FieldKind `json:"expected,omitempty"`
}

func (e FieldError) String() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError carries every field error found in one record, in schema order.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		msgs[i] = fe.String()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// Codes returns the error codes reported for field, in order.
func (e *ValidationError) Codes(field string) []ErrorCode {
	var codes []ErrorCode
	for _, fe := range e.Errors {
		if fe.Field == field {
			codes = append(codes, fe.Code)
		}
	}
	return codes
}

// DefinitionError rejects a definition create or update.
type DefinitionError struct {
	Code    ErrorCode
	Field   string
	Message string
}

func (e *DefinitionError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Code, e.Field, e.Message)
}

// Is lets errors.Is match on code alone.
func (e *DefinitionError) Is(target error) bool {
	t, ok := target.(*DefinitionError)
	return ok && t.Code == e.Code && t.Field == "" && t.Message == ""
}

// Sentinels for errors.Is.
var (
	ErrDuplicateFieldName = &DefinitionError{Code: CodeDuplicateFieldName}
	ErrInvalidConstraint  = &DefinitionError{Code: CodeInvalidConstraint}
)

func duplicateName(name string) *DefinitionError {
	return &DefinitionError{Code: CodeDuplicateFieldName, Field: name, Message: "field name already exists"}
}

func invalidConstraint(name, format string, args ...any) *DefinitionError {
	return &DefinitionError{Code: CodeInvalidConstraint, Field: name, Message: fmt.Sprintf(format, args...)}
}

// DuplicateFieldName builds the error returned when name is already taken.
func DuplicateFieldName(name string) error {
	return duplicateName(name)
}

// InvalidConstraint builds a definition error for name.
func InvalidConstraint(name, format string, args ...any) error {
	return invalidConstraint(name, format, args...)
}
