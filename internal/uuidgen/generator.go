package uuidgen

import (
	"fmt"

	"github.com/google/uuid"
)

// EntityType represents the different entity types in the system
type EntityType string

const (
	EntityTypeEmployee        EntityType = "employee"
	EntityTypeFieldDefinition EntityType = "field_definition"
	EntityTypeForm            EntityType = "form"
)

// NewForEntity generates a UUID appropriate for the given entity type.
// Employees are the high-volume table and use UUIDv7 for index locality;
// everything else uses UUIDv4.
func NewForEntity(entityType EntityType) (uuid.UUID, error) {
	switch entityType {
	case EntityTypeEmployee:
		return uuid.NewV7()
	default:
		return uuid.NewRandom()
	}
}

// MustNewForEntity is like NewForEntity but panics on error.
func MustNewForEntity(entityType EntityType) uuid.UUID {
	id, err := NewForEntity(entityType)
	if err != nil {
		panic(fmt.Sprintf("failed to generate UUID for entity type %s: %v", entityType, err))
	}
	return id
}

// NewString returns the string form of a new id for entityType
func NewString(entityType EntityType) string {
	return MustNewForEntity(entityType).String()
}
