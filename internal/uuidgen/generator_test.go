package uuidgen

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewForEntity(t *testing.T) {
	tests := []struct {
		name       string
		entityType EntityType
		version    uuid.Version
	}{
		{"employee uses UUIDv7", EntityTypeEmployee, 7},
		{"field definition uses UUIDv4", EntityTypeFieldDefinition, 4},
		{"form uses UUIDv4", EntityTypeForm, 4},
		{"unknown entity uses UUIDv4", EntityType("other"), 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := NewForEntity(tt.entityType)
			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, id)
			assert.Equal(t, tt.version, id.Version())
		})
	}
}

func TestMustNewForEntity_Unique(t *testing.T) {
	seen := make(map[uuid.UUID]bool)
	for range 100 {
		id := MustNewForEntity(EntityTypeEmployee)
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestNewString(t *testing.T) {
	s := NewString(EntityTypeForm)
	_, err := uuid.Parse(s)
	assert.NoError(t, err)
}
