package api

import (
	"context"
	"testing"

	"github.com/ericfitz/personnel/api/fieldschema"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormFieldDefinitionStore_CreateAndGet(t *testing.T) {
	store := NewGormFieldDefinitionStore(setupTestDB(t))
	ctx := context.Background()

	def := &fieldschema.Definition{
		Name:     "salary",
		Label:    "Salary",
		Kind:     fieldschema.KindDecimal,
		Required: true,
		Order:    10,
		MinValue: decimalRef("0"),
		MaxValue: decimalRef("99999999.99"),
		Active:   true,
	}
	require.NoError(t, store.Create(ctx, def))
	assert.NotEmpty(t, def.ID)
	assert.False(t, def.CreatedAt.IsZero())

	loaded, err := store.Get(ctx, "salary")
	require.NoError(t, err)
	assert.Equal(t, def.ID, loaded.ID)
	assert.Equal(t, fieldschema.KindDecimal, loaded.Kind)
	assert.True(t, loaded.Required)
	require.NotNil(t, loaded.MaxValue)
	assert.True(t, loaded.MaxValue.Equal(decimal.RequireFromString("99999999.99")))
}

func TestGormFieldDefinitionStore_CreateRejects(t *testing.T) {
	store := NewGormFieldDefinitionStore(setupTestDB(t))
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, textDefinition("nickname", 1)))

	t.Run("Duplicate", func(t *testing.T) {
		err := store.Create(ctx, textDefinition("nickname", 2))
		assert.ErrorIs(t, err, fieldschema.ErrDuplicateFieldName)
	})

	t.Run("Reserved", func(t *testing.T) {
		err := store.Create(ctx, textDefinition("email", 2))
		assert.ErrorIs(t, err, fieldschema.ErrDuplicateFieldName)
	})

	t.Run("BadConstraint", func(t *testing.T) {
		def := textDefinition("age", 3)
		def.Kind = fieldschema.KindNumber
		def.MinLength = intRef(1)
		err := store.Create(ctx, def)
		assert.ErrorIs(t, err, fieldschema.ErrInvalidConstraint)
	})

	t.Run("TooManyDecimalPlaces", func(t *testing.T) {
		def := textDefinition("bonus", 4)
		def.Kind = fieldschema.KindDecimal
		def.MinValue = decimalRef("1.005")
		err := store.Create(ctx, def)
		assert.ErrorIs(t, err, fieldschema.ErrInvalidConstraint)
	})
}

func TestGormFieldDefinitionStore_Update(t *testing.T) {
	store := NewGormFieldDefinitionStore(setupTestDB(t))
	ctx := context.Background()
	created := textDefinition("nickname", 1)
	created.CreatedBy = "alice"
	require.NoError(t, store.Create(ctx, created))

	next := *created
	next.Label = "Nick Name"
	next.MaxLength = intRef(20)
	next.CreatedBy = "mallory"
	require.NoError(t, store.Update(ctx, "nickname", &next))
	assert.Equal(t, "Nick Name", next.Label)
	assert.Equal(t, "alice", next.CreatedBy)
	assert.Equal(t, created.ID, next.ID)

	loaded, err := store.Get(ctx, "nickname")
	require.NoError(t, err)
	require.NotNil(t, loaded.MaxLength)
	assert.Equal(t, 20, *loaded.MaxLength)

	t.Run("KindIsImmutable", func(t *testing.T) {
		changed := *loaded
		changed.Kind = fieldschema.KindNumber
		err := store.Update(ctx, "nickname", &changed)
		assert.ErrorIs(t, err, fieldschema.ErrInvalidConstraint)
	})

	t.Run("NameIsImmutable", func(t *testing.T) {
		changed := *loaded
		changed.Name = "alias"
		err := store.Update(ctx, "nickname", &changed)
		assert.ErrorIs(t, err, fieldschema.ErrInvalidConstraint)
	})

	t.Run("Missing", func(t *testing.T) {
		err := store.Update(ctx, "missing", textDefinition("missing", 1))
		assert.ErrorIs(t, err, fieldschema.ErrNotFound)
	})
}

func TestGormFieldDefinitionStore_ActivationAndList(t *testing.T) {
	store := NewGormFieldDefinitionStore(setupTestDB(t))
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, textDefinition("third", 30)))
	require.NoError(t, store.Create(ctx, textDefinition("first", 10)))
	require.NoError(t, store.Create(ctx, textDefinition("second", 20)))

	defs, err := store.List(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, definitionNames(defs))

	def, err := store.Deactivate(ctx, "second")
	require.NoError(t, err)
	assert.False(t, def.Active)

	defs, err = store.List(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "third"}, definitionNames(defs))

	defs, err = store.List(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, definitionNames(defs))

	def, err = store.Reactivate(ctx, "second")
	require.NoError(t, err)
	assert.True(t, def.Active)

	_, err = store.Deactivate(ctx, "missing")
	assert.ErrorIs(t, err, fieldschema.ErrNotFound)
}

func TestGormFieldDefinitionStore_Delete(t *testing.T) {
	store := NewGormFieldDefinitionStore(setupTestDB(t))
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, textDefinition("nickname", 1)))

	require.NoError(t, store.Delete(ctx, "nickname"))
	_, err := store.Get(ctx, "nickname")
	assert.ErrorIs(t, err, fieldschema.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "nickname"), fieldschema.ErrNotFound)

	// the name is free again
	require.NoError(t, store.Create(ctx, textDefinition("nickname", 1)))
}

func definitionNames(defs []fieldschema.Definition) []string {
	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.Name
	}
	return names
}
