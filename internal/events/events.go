// Package events publishes schema and record change notifications.
package events

import "context"

// Topics, relative to the configured subject prefix
const (
	TopicFieldDefinitionCreated     = "field_definition.created"
	TopicFieldDefinitionUpdated     = "field_definition.updated"
	TopicFieldDefinitionDeleted     = "field_definition.deleted"
	TopicFieldDefinitionDeactivated = "field_definition.deactivated"
	TopicFieldDefinitionReactivated = "field_definition.reactivated"

	TopicFormUpdated = "form.updated"
	TopicFormDeleted = "form.deleted"

	TopicEmployeeCreated = "employee.created"
	TopicEmployeeUpdated = "employee.updated"
	TopicEmployeeDeleted = "employee.deleted"
)

// FieldDefinitionChanged is emitted for every registry mutation
type FieldDefinitionChanged struct {
	FieldName string `json:"field_name"`
	FieldType string `json:"field_type,omitempty"`
	IsActive  bool   `json:"is_active"`
	Actor     string `json:"actor,omitempty"`
}

// FormChanged is emitted when the singleton form is written or removed
type FormChanged struct {
	FormID     string `json:"form_id"`
	FieldCount int    `json:"field_count"`
	Actor      string `json:"actor,omitempty"`
}

// EmployeeChanged is emitted for employee record writes
type EmployeeChanged struct {
	EmployeeID string `json:"employee_id"`
	Department string `json:"department,omitempty"`
	Actor      string `json:"actor,omitempty"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
