package api

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/ericfitz/personnel/api/fieldschema"
	"github.com/ericfitz/personnel/api/models"
	"github.com/ericfitz/personnel/internal/slogging"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormFormStore implements FormStore using GORM. The unique singleton_key
// column guarantees a single row across processes; singleflight collapses
// concurrent creates within one process.
type GormFormStore struct {
	db    *gorm.DB
	group singleflight.Group
}

// NewGormFormStore creates a new GORM-backed form store
func NewGormFormStore(db *gorm.DB) *GormFormStore {
	return &GormFormStore{db: db}
}

func formNotFound() error {
	return fmt.Errorf("employee form %w", fieldschema.ErrNotFound)
}

// Get returns the form document
func (s *GormFormStore) Get(ctx context.Context) (*FormDocument, error) {
	model, err := s.load(s.db.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return modelToForm(model), nil
}

func (s *GormFormStore) load(tx *gorm.DB) (*models.EmployeeForm, error) {
	var model models.EmployeeForm
	if err := tx.Where("singleton_key = ?", models.FormSingletonKey).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, formNotFound()
		}
		return nil, fmt.Errorf("failed to load employee form: %w", err)
	}
	return &model, nil
}

// GetOrCreate returns the form, creating it with defaults when absent.
// The shared flight is detached from any one caller's cancellation; each
// caller stops waiting when its own ctx is done.
func (s *GormFormStore) GetOrCreate(ctx context.Context, actor string) (*FormDocument, error) {
	flight := context.WithoutCancel(ctx)
	ch := s.group.DoChan(models.FormSingletonKey, func() (any, error) {
		return s.getOrCreate(flight, actor)
	})
	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	doc := *res.Val.(*FormDocument)
	doc.Fields = slices.Clone(doc.Fields)
	return &doc, nil
}

func (s *GormFormStore) getOrCreate(ctx context.Context, actor string) (*FormDocument, error) {
	tx := s.db.WithContext(ctx)
	if model, err := s.load(tx); err == nil {
		return modelToForm(model), nil
	} else if !errors.Is(err, fieldschema.ErrNotFound) {
		return nil, err
	}

	slogging.Get().Info("Creating default employee form")
	model := &models.EmployeeForm{
		FormName:        models.DefaultFormName,
		FormDescription: models.DefaultFormDescription,
		Fields:          models.FieldList{},
		IsActive:        true,
	}
	if actor != "" {
		model.CreatedBy = &actor
	}
	// another process may have won the race; its row is the form
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "singleton_key"}},
		DoNothing: true,
	}).Create(model).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create employee form: %w", err)
	}

	stored, err := s.load(tx)
	if err != nil {
		return nil, err
	}
	return modelToForm(stored), nil
}

// Save writes doc over the singleton. The original creator and creation
// time are kept.
func (s *GormFormStore) Save(ctx context.Context, doc *FormDocument) error {
	if doc.FormName == "" {
		return InvalidInputError("form_name is required")
	}
	if err := prepareFormFields(doc.Fields); err != nil {
		return err
	}

	current, err := s.GetOrCreate(ctx, doc.CreatedBy)
	if err != nil {
		return err
	}

	model := formToModel(doc)
	model.ID = current.ID
	model.SingletonKey = models.FormSingletonKey
	model.CreatedAt = current.CreatedAt
	model.CreatedBy = nil
	if current.CreatedBy != "" {
		model.CreatedBy = &current.CreatedBy
	}

	if err := s.db.WithContext(ctx).Save(model).Error; err != nil {
		return fmt.Errorf("failed to save employee form: %w", err)
	}
	*doc = *modelToForm(model)
	return nil
}

// Delete removes the form document
func (s *GormFormStore) Delete(ctx context.Context) error {
	result := s.db.WithContext(ctx).Where("singleton_key = ?", models.FormSingletonKey).Delete(&models.EmployeeForm{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete employee form: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return formNotFound()
	}
	return nil
}

func formToModel(doc *FormDocument) *models.EmployeeForm {
	model := &models.EmployeeForm{
		ID:              doc.ID,
		FormName:        doc.FormName,
		FormDescription: models.DBText(doc.FormDescription),
		Fields:          models.FieldList(doc.Fields),
		IsActive:        models.DBBool(doc.IsActive),
		CreatedAt:       doc.CreatedAt,
		UpdatedAt:       doc.UpdatedAt,
	}
	if doc.CreatedBy != "" {
		v := doc.CreatedBy
		model.CreatedBy = &v
	}
	return model
}

func modelToForm(model *models.EmployeeForm) *FormDocument {
	doc := &FormDocument{
		ID:              model.ID,
		FormName:        model.FormName,
		FormDescription: model.FormDescription.String(),
		Fields:          []fieldschema.Field(model.Fields),
		IsActive:        model.IsActive.Bool(),
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
	if doc.Fields == nil {
		doc.Fields = []fieldschema.Field{}
	}
	if model.CreatedBy != nil {
		doc.CreatedBy = *model.CreatedBy
	}
	return doc
}
