package api

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/ericfitz/personnel/api/fieldschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStoredEmployee(email, department string) *Employee {
	hire := "2024-03-01"
	return &Employee{
		Name:        "Grace Hopper",
		Email:       email,
		Department:  department,
		Role:        "Admiral",
		Status:      fieldschema.StatusActive,
		HireDate:    &hire,
		DynamicData: map[string]any{"nickname": "Amazing Grace", "years": 40},
		CreatedBy:   "alice",
	}
}

func TestGormEmployeeStore_CreateAndGet(t *testing.T) {
	store := NewGormEmployeeStore(setupTestDB(t))
	ctx := context.Background()

	e := newStoredEmployee("grace@example.com", "IT")
	require.NoError(t, store.Create(ctx, e))
	_, err := ParseUUID(e.ID)
	require.NoError(t, err)
	assert.False(t, e.CreatedAt.IsZero())

	loaded, err := store.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Grace Hopper", loaded.Name)
	require.NotNil(t, loaded.HireDate)
	assert.Equal(t, "2024-03-01", *loaded.HireDate)
	assert.Equal(t, "Amazing Grace", loaded.DynamicData["nickname"])
	assert.Equal(t, json.Number("40"), loaded.DynamicData["years"])
	assert.Equal(t, "alice", loaded.CreatedBy)

	_, err = store.Get(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, fieldschema.ErrNotFound)
}

func TestGormEmployeeStore_EmailConflict(t *testing.T) {
	store := NewGormEmployeeStore(setupTestDB(t))
	ctx := context.Background()

	first := newStoredEmployee("grace@example.com", "IT")
	require.NoError(t, store.Create(ctx, first))

	err := store.Create(ctx, newStoredEmployee("grace@example.com", "HR"))
	assert.ErrorIs(t, err, fieldschema.ErrDuplicateFieldName)

	second := newStoredEmployee("other@example.com", "HR")
	require.NoError(t, store.Create(ctx, second))
	second.Email = "grace@example.com"
	assert.ErrorIs(t, store.Update(ctx, second), fieldschema.ErrDuplicateFieldName)

	// keeping one's own email is not a conflict
	first.Role = "Rear Admiral"
	assert.NoError(t, store.Update(ctx, first))
}

func TestGormEmployeeStore_UpdateKeepsCreator(t *testing.T) {
	store := NewGormEmployeeStore(setupTestDB(t))
	ctx := context.Background()

	e := newStoredEmployee("grace@example.com", "IT")
	require.NoError(t, store.Create(ctx, e))
	createdAt := e.CreatedAt

	update := *e
	update.CreatedBy = ""
	update.Department = "OPERATIONS"
	update.DynamicData = map[string]any{}
	update.HireDate = nil
	require.NoError(t, store.Update(ctx, &update))

	loaded, err := store.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "OPERATIONS", loaded.Department)
	assert.Equal(t, "alice", loaded.CreatedBy)
	assert.Equal(t, createdAt.Unix(), loaded.CreatedAt.Unix())
	assert.Nil(t, loaded.HireDate)
	assert.Empty(t, loaded.DynamicData)

	missing := newStoredEmployee("x@example.com", "IT")
	missing.ID = "00000000-0000-0000-0000-000000000000"
	assert.ErrorIs(t, store.Update(ctx, missing), fieldschema.ErrNotFound)
}

func TestGormEmployeeStore_ListAndDelete(t *testing.T) {
	store := NewGormEmployeeStore(setupTestDB(t))
	ctx := context.Background()

	departments := []string{"IT", "HR", "IT", "SALES", "IT"}
	ids := make([]string, len(departments))
	for i, dept := range departments {
		e := newStoredEmployee(fmt.Sprintf("e%d@example.com", i), dept)
		e.CreatedAt = time.Date(2025, 1, 1, 0, 0, i, 0, time.UTC)
		require.NoError(t, store.Create(ctx, e))
		ids[i] = e.ID
	}

	all, total, err := store.List(ctx, EmployeeFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, all, 5)
	assert.Equal(t, ids[4], all[0].ID, "newest first")
	assert.Equal(t, ids[0], all[4].ID)

	it, total, err := store.List(ctx, EmployeeFilter{Department: "IT", Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, it, 2)
	assert.Equal(t, ids[2], it[0].ID)
	assert.Equal(t, ids[0], it[1].ID)

	none, total, err := store.List(ctx, EmployeeFilter{Status: fieldschema.StatusLeave})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, none)

	require.NoError(t, store.Delete(ctx, ids[0]))
	assert.ErrorIs(t, store.Delete(ctx, ids[0]), fieldschema.ErrNotFound)
}
