package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/ericfitz/personnel/api/fieldschema"
	"github.com/ericfitz/personnel/api/models"
	"github.com/ericfitz/personnel/auth/db"
	"github.com/ericfitz/personnel/internal/slogging"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormFieldDefinitionStore implements FieldDefinitionStore using GORM
type GormFieldDefinitionStore struct {
	db *gorm.DB
}

// NewGormFieldDefinitionStore creates a new GORM-backed field definition store
func NewGormFieldDefinitionStore(db *gorm.DB) *GormFieldDefinitionStore {
	return &GormFieldDefinitionStore{db: db}
}

func definitionNotFound(name string) error {
	return fmt.Errorf("field definition %q %w", name, fieldschema.ErrNotFound)
}

// Create validates and stores a new definition
func (s *GormFieldDefinitionStore) Create(ctx context.Context, def *fieldschema.Definition) error {
	logger := slogging.Get()
	logger.Debug("Creating field definition: %s (%s)", def.Name, def.Kind)

	if err := fieldschema.CheckDefinition(*def); err != nil {
		return err
	}

	model := definitionToModel(def)
	model.ID = ""

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.FieldDefinition{}).Where("field_name = ?", def.Name).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check field name: %w", err)
		}
		if count > 0 {
			return fieldschema.DuplicateFieldName(def.Name)
		}
		if err := tx.Create(model).Error; err != nil {
			// the unique index catches a concurrent create of the same name
			if db.IsUniqueViolation(err) {
				return fieldschema.DuplicateFieldName(def.Name)
			}
			return fmt.Errorf("failed to create field definition: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	*def = modelToDefinition(model)
	logger.Debug("Created field definition %s with id %s", def.Name, def.ID)
	return nil
}

// Get returns the definition named name
func (s *GormFieldDefinitionStore) Get(ctx context.Context, name string) (*fieldschema.Definition, error) {
	model, err := s.find(s.db.WithContext(ctx), name)
	if err != nil {
		return nil, err
	}
	def := modelToDefinition(model)
	return &def, nil
}

func (s *GormFieldDefinitionStore) find(tx *gorm.DB, name string) (*models.FieldDefinition, error) {
	var model models.FieldDefinition
	if err := tx.Where("field_name = ?", name).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, definitionNotFound(name)
		}
		return nil, fmt.Errorf("failed to load field definition %q: %w", name, err)
	}
	return &model, nil
}

// Update replaces the mutable attributes of the definition named name
func (s *GormFieldDefinitionStore) Update(ctx context.Context, name string, def *fieldschema.Definition) error {
	logger := slogging.Get()
	logger.Debug("Updating field definition: %s", name)

	var updated *models.FieldDefinition
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.find(tx, name)
		if err != nil {
			return err
		}
		currentDef := modelToDefinition(current)
		if err := checkImmutable(&currentDef, def); err != nil {
			return err
		}

		next := *def
		next.ID = current.ID
		next.Name = current.FieldName
		next.Kind = fieldschema.FieldKind(current.FieldType)
		next.CreatedBy = currentDef.CreatedBy
		next.CreatedAt = current.CreatedAt
		if err := fieldschema.CheckDefinition(next); err != nil {
			return err
		}

		updated = definitionToModel(&next)
		if err := tx.Save(updated).Error; err != nil {
			return fmt.Errorf("failed to update field definition: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	*def = modelToDefinition(updated)
	return nil
}

// Deactivate hides the field from composed schemas
func (s *GormFieldDefinitionStore) Deactivate(ctx context.Context, name string) (*fieldschema.Definition, error) {
	return s.setActive(ctx, name, false)
}

// Reactivate brings a deactivated field back
func (s *GormFieldDefinitionStore) Reactivate(ctx context.Context, name string) (*fieldschema.Definition, error) {
	return s.setActive(ctx, name, true)
}

func (s *GormFieldDefinitionStore) setActive(ctx context.Context, name string, active bool) (*fieldschema.Definition, error) {
	slogging.Get().Debug("Setting field definition %s active=%t", name, active)

	var model *models.FieldDefinition
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		model, err = s.find(tx, name)
		if err != nil {
			return err
		}
		if model.IsActive.Bool() == active {
			return nil
		}
		if err := tx.Model(model).Update("is_active", models.DBBool(active)).Error; err != nil {
			return fmt.Errorf("failed to update field definition %q: %w", name, err)
		}
		model.IsActive = models.DBBool(active)
		return nil
	})
	if err != nil {
		return nil, err
	}
	def := modelToDefinition(model)
	return &def, nil
}

// Delete removes the definition. Employee dynamic data keeps the field's values.
func (s *GormFieldDefinitionStore) Delete(ctx context.Context, name string) error {
	slogging.Get().Debug("Deleting field definition: %s", name)

	result := s.db.WithContext(ctx).Where("field_name = ?", name).Delete(&models.FieldDefinition{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete field definition %q: %w", name, result.Error)
	}
	if result.RowsAffected == 0 {
		return definitionNotFound(name)
	}
	return nil
}

// List returns definitions ordered by order, then creation time
func (s *GormFieldDefinitionStore) List(ctx context.Context, includeInactive bool) ([]fieldschema.Definition, error) {
	query := s.db.WithContext(ctx).Model(&models.FieldDefinition{})
	if !includeInactive {
		query = query.Where("is_active = ?", models.DBBool(true))
	}

	var rows []models.FieldDefinition
	if err := query.Order("sort_order ASC").Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list field definitions: %w", err)
	}

	defs := make([]fieldschema.Definition, 0, len(rows))
	for i := range rows {
		defs = append(defs, modelToDefinition(&rows[i]))
	}
	// timestamps may tie at database precision; keep the order stable
	fieldschema.SortDefinitions(defs)
	return defs, nil
}

func definitionToModel(def *fieldschema.Definition) *models.FieldDefinition {
	model := &models.FieldDefinition{
		ID:         def.ID,
		FieldName:  def.Name,
		FieldLabel: def.Label,
		FieldType:  string(def.Kind),
		IsRequired: models.DBBool(def.Required),
		SortOrder:  def.Order,
		Options:    models.OptionList(def.Options),
		MinLength:  def.MinLength,
		MaxLength:  def.MaxLength,
		MinValue:   nullDecimal(def.MinValue),
		MaxValue:   nullDecimal(def.MaxValue),
		IsActive:   models.DBBool(def.Active),
		CreatedAt:  def.CreatedAt,
		UpdatedAt:  def.UpdatedAt,
	}
	if def.Pattern != "" {
		model.Pattern = &def.Pattern
	}
	if def.Default != nil {
		v := *def.Default
		model.DefaultValue = &v
	}
	if def.CreatedBy != "" {
		v := def.CreatedBy
		model.CreatedBy = &v
	}
	return model
}

func modelToDefinition(model *models.FieldDefinition) fieldschema.Definition {
	def := fieldschema.Definition{
		ID:        model.ID,
		Name:      model.FieldName,
		Label:     model.FieldLabel,
		Kind:      fieldschema.FieldKind(model.FieldType),
		Required:  model.IsRequired.Bool(),
		Order:     model.SortOrder,
		Options:   []fieldschema.Option(model.Options),
		MinLength: model.MinLength,
		MaxLength: model.MaxLength,
		MinValue:  decimalPtr(model.MinValue),
		MaxValue:  decimalPtr(model.MaxValue),
		Default:   model.DefaultValue,
		Active:    model.IsActive.Bool(),
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
	if def.Options == nil {
		def.Options = []fieldschema.Option{}
	}
	if model.Pattern != nil {
		def.Pattern = *model.Pattern
	}
	if model.CreatedBy != nil {
		def.CreatedBy = *model.CreatedBy
	}
	return def
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

func decimalPtr(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}
