package api

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ericfitz/personnel/api/fieldschema"
	"github.com/ericfitz/personnel/api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormFormStore_GetOrCreateDefaults(t *testing.T) {
	store := NewGormFormStore(setupTestDB(t))
	ctx := context.Background()

	_, err := store.Get(ctx)
	assert.ErrorIs(t, err, fieldschema.ErrNotFound)

	doc, err := store.GetOrCreate(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultFormName, doc.FormName)
	assert.Equal(t, models.DefaultFormDescription, doc.FormDescription)
	assert.True(t, doc.IsActive)
	assert.Empty(t, doc.Fields)
	assert.Equal(t, "alice", doc.CreatedBy)

	again, err := store.GetOrCreate(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, doc.ID, again.ID)
	assert.Equal(t, "alice", again.CreatedBy)
}

func TestGormFormStore_ConcurrentGetOrCreate(t *testing.T) {
	gdb := setupTestDB(t)
	store := NewGormFormStore(gdb)
	ctx := context.Background()

	const callers = 16
	ids := make([]string, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			doc, err := store.GetOrCreate(ctx, "")
			if assert.NoError(t, err) {
				ids[i] = doc.ID
			}
		}()
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	var count int64
	require.NoError(t, gdb.Model(&models.EmployeeForm{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGormFormStore_GetOrCreateCanceledCaller(t *testing.T) {
	store := NewGormFormStore(setupTestDB(t))
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				_, err := store.GetOrCreate(canceled, "")
				if err != nil {
					assert.ErrorIs(t, err, context.Canceled)
				}
				return
			}
			doc, err := store.GetOrCreate(context.Background(), "")
			if assert.NoError(t, err) {
				assert.Equal(t, models.DefaultFormName, doc.FormName)
			}
		}()
	}
	wg.Wait()

	// a canceled caller alone still lets the shared creation finish
	store = NewGormFormStore(setupTestDB(t))
	_, err := store.GetOrCreate(canceled, "")
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Eventually(t, func() bool {
		_, err := store.Get(context.Background())
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
}

func TestGormFormStore_Save(t *testing.T) {
	store := NewGormFormStore(setupTestDB(t))
	ctx := context.Background()

	created, err := store.GetOrCreate(ctx, "alice")
	require.NoError(t, err)

	doc := &FormDocument{
		FormName: "Onboarding",
		IsActive: true,
		Fields: []fieldschema.Field{
			{Name: "shirt_size", Kind: fieldschema.KindSelect, Order: 8, Options: fieldschema.OptionValues("S", "M", "L")},
			{ID: "keep-me", Name: "nickname", Label: "Nickname", Kind: fieldschema.KindText, Order: 7},
		},
	}
	require.NoError(t, store.Save(ctx, doc))
	assert.Equal(t, created.ID, doc.ID)
	assert.Equal(t, "alice", doc.CreatedBy)
	require.Len(t, doc.Fields, 2)
	assert.NotEmpty(t, doc.Fields[0].ID)
	assert.Equal(t, "shirt_size", doc.Fields[0].Label)
	assert.Equal(t, "keep-me", doc.Fields[1].ID)

	loaded, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Onboarding", loaded.FormName)
	assert.Equal(t, doc.Fields[0].ID, loaded.Fields[0].ID)
	assert.Equal(t, created.CreatedAt.Unix(), loaded.CreatedAt.Unix())
}

func TestGormFormStore_SaveRejects(t *testing.T) {
	store := NewGormFormStore(setupTestDB(t))
	ctx := context.Background()

	tests := []struct {
		name   string
		doc    FormDocument
		target error
	}{
		{
			name: "ReservedName",
			doc: FormDocument{FormName: "f", Fields: []fieldschema.Field{
				{Name: "department", Kind: fieldschema.KindText},
			}},
			target: fieldschema.ErrDuplicateFieldName,
		},
		{
			name: "DuplicateName",
			doc: FormDocument{FormName: "f", Fields: []fieldschema.Field{
				{Name: "nickname", Kind: fieldschema.KindText},
				{Name: "nickname", Kind: fieldschema.KindText},
			}},
			target: fieldschema.ErrDuplicateFieldName,
		},
		{
			name: "UnknownKind",
			doc: FormDocument{FormName: "f", Fields: []fieldschema.Field{
				{Name: "nickname", Kind: "COLOR"},
			}},
			target: fieldschema.ErrInvalidConstraint,
		},
		{
			name: "SelectWithoutOptions",
			doc: FormDocument{FormName: "f", Fields: []fieldschema.Field{
				{Name: "size", Kind: fieldschema.KindSelect},
			}},
			target: fieldschema.ErrInvalidConstraint,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := tt.doc
			assert.ErrorIs(t, store.Save(ctx, &doc), tt.target)
		})
	}

	t.Run("MissingFormName", func(t *testing.T) {
		var reqErr *RequestError
		assert.ErrorAs(t, store.Save(ctx, &FormDocument{}), &reqErr)
	})
}

func TestGormFormStore_Delete(t *testing.T) {
	store := NewGormFormStore(setupTestDB(t))
	ctx := context.Background()

	assert.ErrorIs(t, store.Delete(ctx), fieldschema.ErrNotFound)

	_, err := store.GetOrCreate(ctx, "")
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx))

	_, err = store.Get(ctx)
	assert.ErrorIs(t, err, fieldschema.ErrNotFound)
}
