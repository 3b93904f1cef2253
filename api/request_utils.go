package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/ericfitz/personnel/api/fieldschema"
	"github.com/ericfitz/personnel/internal/slogging"
	"github.com/gin-gonic/gin"
)

// Pagination limits
const (
	DefaultPageLimit   = 50
	MaxPaginationLimit = 1000
)

// Error is the JSON body of every error response
type Error struct {
	Error            string                   `json:"error"`
	ErrorDescription string                   `json:"error_description"`
	Details          *ErrorDetails            `json:"details,omitempty"`
	FieldErrors      []fieldschema.FieldError `json:"field_errors,omitempty"`
}

// RequestError represents an error that should be returned as an HTTP response
type RequestError struct {
	Status      int
	Code        string
	Message     string
	Details     *ErrorDetails
	FieldErrors []fieldschema.FieldError
}

// ErrorDetails provides structured context for errors
type ErrorDetails struct {
	Code       *string        `json:"code,omitempty"`
	Context    map[string]any `json:"context,omitempty"`
	Suggestion *string        `json:"suggestion,omitempty"`
}

func (e *RequestError) Error() string {
	return e.Message
}

// HandleRequestError sends an appropriate HTTP error response. Domain errors
// from the stores and the validation engine are translated first.
func HandleRequestError(c *gin.Context, err error) {
	reqErr := toRequestError(err)

	if reqErr.Status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}
	if reqErr.Status >= http.StatusInternalServerError {
		slogging.GetContextLogger(c).Error("Request failed: %v", err)
	}

	c.AbortWithStatusJSON(reqErr.Status, Error{
		Error:            reqErr.Code,
		ErrorDescription: reqErr.Message,
		Details:          reqErr.Details,
		FieldErrors:      reqErr.FieldErrors,
	})
}

func toRequestError(err error) *RequestError {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr
	}

	var valErr *fieldschema.ValidationError
	if errors.As(err, &valErr) {
		return ValidationFailedError(valErr.Errors)
	}

	var defErr *fieldschema.DefinitionError
	if errors.As(err, &defErr) {
		code := string(defErr.Code)
		details := &ErrorDetails{Code: &code}
		if defErr.Field != "" {
			details.Context = map[string]any{"field": defErr.Field}
		}
		status := http.StatusBadRequest
		if defErr.Code == fieldschema.CodeDuplicateFieldName {
			status = http.StatusConflict
		}
		return &RequestError{
			Status:  status,
			Code:    errorCodeSlug(defErr.Code),
			Message: defErr.Message,
			Details: details,
		}
	}

	if errors.Is(err, fieldschema.ErrNotFound) {
		return NotFoundError(err.Error())
	}

	// Only the first line reaches the client.
	return ServerError("Internal server error: " + truncateBeforeStackTrace(err.Error()))
}

// errorCodeSlug turns DuplicateFieldName into duplicate_field_name.
func errorCodeSlug(code fieldschema.ErrorCode) string {
	var b strings.Builder
	for i, r := range string(code) {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

func truncateBeforeStackTrace(msg string) string {
	for _, marker := range []string{"\ngoroutine ", "\n\t", "\n"} {
		if idx := strings.Index(msg, marker); idx >= 0 {
			msg = msg[:idx]
		}
	}
	return msg
}

// ValidationFailedError carries the ordered field errors of a rejected record
func ValidationFailedError(fieldErrors []fieldschema.FieldError) *RequestError {
	return &RequestError{
		Status:      http.StatusBadRequest,
		Code:        "validation_failed",
		Message:     fmt.Sprintf("Record failed validation with %d error(s)", len(fieldErrors)),
		FieldErrors: fieldErrors,
	}
}

// InvalidInputError creates a RequestError for validation failures
func InvalidInputError(message string) *RequestError {
	return &RequestError{
		Status:  http.StatusBadRequest,
		Code:    "invalid_input",
		Message: message,
	}
}

// InvalidIDError creates a RequestError for invalid ID formats
func InvalidIDError(message string) *RequestError {
	return &RequestError{
		Status:  http.StatusBadRequest,
		Code:    "invalid_id",
		Message: message,
	}
}

// NotFoundError creates a RequestError for resource not found
func NotFoundError(message string) *RequestError {
	return &RequestError{
		Status:  http.StatusNotFound,
		Code:    "not_found",
		Message: message,
	}
}

// ServerError creates a RequestError for internal server errors
func ServerError(message string) *RequestError {
	return &RequestError{
		Status:  http.StatusInternalServerError,
		Code:    "server_error",
		Message: message,
	}
}

func UnauthorizedError(message string) *RequestError {
	return &RequestError{
		Status:  http.StatusUnauthorized,
		Code:    "unauthorized",
		Message: message,
	}
}

// ConflictError creates a RequestError for resource conflicts
func ConflictError(message string) *RequestError {
	return &RequestError{
		Status:  http.StatusConflict,
		Code:    "conflict",
		Message: message,
	}
}

// readBody reads the raw request body and resets it for later binding
func readBody(c *gin.Context) ([]byte, error) {
	bodyBytes, err := c.GetRawData()
	if err != nil {
		return nil, InvalidInputError("Failed to read request body: " + err.Error())
	}
	if len(bytes.TrimSpace(bodyBytes)) == 0 {
		return nil, InvalidInputError("Request body is empty")
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(bodyBytes))

	if !json.Valid(bodyBytes) {
		return nil, InvalidInputError("Request body contains invalid JSON")
	}
	// RFC 8259 recommends unique keys
	if err := checkDuplicateJSONKeys(bodyBytes); err != nil {
		return nil, err
	}
	return bodyBytes, nil
}

// ParseRequestBody parses JSON request body into the specified type
func ParseRequestBody[T any](c *gin.Context) (T, error) {
	var zero T

	bodyBytes, err := readBody(c)
	if err != nil {
		return zero, err
	}

	var result T
	dec := json.NewDecoder(bytes.NewReader(bodyBytes))
	dec.UseNumber()
	if err := dec.Decode(&result); err != nil {
		return zero, InvalidInputError("Invalid JSON format: " + err.Error())
	}
	return result, nil
}

// checkDuplicateJSONKeys checks for duplicate keys in a JSON object
func checkDuplicateJSONKeys(jsonBytes []byte) error {
	dec := json.NewDecoder(bytes.NewReader(jsonBytes))
	return checkDuplicateKeysInDecoder(dec, "")
}

func checkDuplicateKeysInDecoder(dec *json.Decoder, path string) error {
	t, err := dec.Token()
	if err != nil {
		return nil // syntax errors are reported by the decoder
	}

	switch t {
	case json.Delim('{'):
		keys := make(map[string]bool)
		for dec.More() {
			keyToken, err := dec.Token()
			if err != nil {
				return nil
			}
			key, ok := keyToken.(string)
			if !ok {
				continue
			}
			keyPath := key
			if path != "" {
				keyPath = path + "." + key
			}
			if keys[key] {
				return InvalidInputError(fmt.Sprintf("Duplicate key '%s' in JSON object", keyPath))
			}
			keys[key] = true
			if err := checkDuplicateKeysInDecoder(dec, keyPath); err != nil {
				return err
			}
		}
		_, _ = dec.Token()
	case json.Delim('['):
		for dec.More() {
			if err := checkDuplicateKeysInDecoder(dec, path); err != nil {
				return err
			}
		}
		_, _ = dec.Token()
	}
	return nil
}

// parseBoolQuery reads an optional boolean query parameter
func parseBoolQuery(c *gin.Context, name string) (bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, InvalidInputError(fmt.Sprintf("%s must be true or false", name))
	}
	return v, nil
}

// parsePagination reads limit and offset, applying defaults
func parsePagination(c *gin.Context) (limit, offset int, err error) {
	limit, offset = DefaultPageLimit, 0
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > MaxPaginationLimit {
			return 0, 0, InvalidInputError(fmt.Sprintf("limit must be between 1 and %d", MaxPaginationLimit))
		}
	}
	if raw := c.Query("offset"); raw != "" {
		offset, err = strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return 0, 0, InvalidInputError("offset must be non-negative")
		}
	}
	return limit, offset, nil
}

// actorFromContext returns the authenticated subject set by the auth middleware
func actorFromContext(c *gin.Context) string {
	if v, ok := c.Get(slogging.UserKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
