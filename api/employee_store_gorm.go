package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ericfitz/personnel/api/fieldschema"
	"github.com/ericfitz/personnel/api/models"
	"github.com/ericfitz/personnel/auth/db"
	"github.com/ericfitz/personnel/internal/slogging"
	"gorm.io/gorm"
)

// GormEmployeeStore implements EmployeeStore using GORM
type GormEmployeeStore struct {
	db *gorm.DB
}

// NewGormEmployeeStore creates a new GORM-backed employee store
func NewGormEmployeeStore(db *gorm.DB) *GormEmployeeStore {
	return &GormEmployeeStore{db: db}
}

func employeeNotFound(id string) error {
	return fmt.Errorf("employee %s %w", id, fieldschema.ErrNotFound)
}

func emailTaken() error {
	return &fieldschema.DefinitionError{
		Code:    fieldschema.CodeDuplicateFieldName,
		Field:   fieldschema.FieldEmail,
		Message: "an employee with this email already exists",
	}
}

// Create stores a new employee
func (s *GormEmployeeStore) Create(ctx context.Context, employee *Employee) error {
	logger := slogging.Get()
	logger.Debug("Creating employee: %s", slogging.RedactEmail(employee.Email))

	model, err := employeeToModel(employee)
	if err != nil {
		return err
	}
	model.ID = ""

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.checkEmail(tx, model.Email, ""); err != nil {
			return err
		}
		if err := tx.Create(model).Error; err != nil {
			if db.IsUniqueViolation(err) {
				return emailTaken()
			}
			return fmt.Errorf("failed to create employee: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	*employee = modelToEmployee(model)
	logger.Debug("Created employee %s", employee.ID)
	return nil
}

func (s *GormEmployeeStore) checkEmail(tx *gorm.DB, email, exceptID string) error {
	query := tx.Model(&models.Employee{}).Where("email = ?", email)
	if exceptID != "" {
		query = query.Where("id <> ?", exceptID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if count > 0 {
		return emailTaken()
	}
	return nil
}

// Get retrieves an employee by ID
func (s *GormEmployeeStore) Get(ctx context.Context, id string) (*Employee, error) {
	var model models.Employee
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, employeeNotFound(id)
		}
		return nil, fmt.Errorf("failed to load employee %s: %w", id, err)
	}
	e := modelToEmployee(&model)
	return &e, nil
}

// Update overwrites the stored employee. Creator and creation time are kept.
func (s *GormEmployeeStore) Update(ctx context.Context, employee *Employee) error {
	slogging.Get().Debug("Updating employee %s", employee.ID)

	model, err := employeeToModel(employee)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Employee
		if err := tx.Where("id = ?", employee.ID).First(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return employeeNotFound(employee.ID)
			}
			return fmt.Errorf("failed to load employee %s: %w", employee.ID, err)
		}
		if err := s.checkEmail(tx, model.Email, model.ID); err != nil {
			return err
		}
		model.CreatedAt = current.CreatedAt
		model.CreatedBy = current.CreatedBy
		if err := tx.Save(model).Error; err != nil {
			if db.IsUniqueViolation(err) {
				return emailTaken()
			}
			return fmt.Errorf("failed to update employee: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	*employee = modelToEmployee(model)
	return nil
}

// Delete removes an employee
func (s *GormEmployeeStore) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Employee{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete employee %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return employeeNotFound(id)
	}
	return nil
}

// List returns employees newest first
func (s *GormEmployeeStore) List(ctx context.Context, filter EmployeeFilter) ([]Employee, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Employee{})
	if filter.Department != "" {
		query = query.Where("department = ?", filter.Department)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count employees: %w", err)
	}

	query = query.Order("created_at DESC").Order("id DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var rows []models.Employee
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list employees: %w", err)
	}

	employees := make([]Employee, 0, len(rows))
	for i := range rows {
		employees = append(employees, modelToEmployee(&rows[i]))
	}
	return employees, total, nil
}

func employeeToModel(e *Employee) (*models.Employee, error) {
	dynamic, err := plainJSON(e.DynamicData)
	if err != nil {
		return nil, fmt.Errorf("failed to encode dynamic data: %w", err)
	}
	model := &models.Employee{
		ID:          e.ID,
		Name:        e.Name,
		Email:       e.Email,
		Department:  e.Department,
		Role:        e.Role,
		Status:      e.Status,
		DynamicData: models.JSONMap(dynamic),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
	if e.HireDate != nil && *e.HireDate != "" {
		t, err := time.Parse(fieldschema.DateLayout, *e.HireDate)
		if err != nil {
			return nil, InvalidInputError("hire_date must be a YYYY-MM-DD date")
		}
		model.HireDate = &t
	}
	if e.CreatedBy != "" {
		v := e.CreatedBy
		model.CreatedBy = &v
	}
	return model, nil
}

func modelToEmployee(model *models.Employee) Employee {
	e := Employee{
		ID:          model.ID,
		Name:        model.Name,
		Email:       model.Email,
		Department:  model.Department,
		Role:        model.Role,
		Status:      model.Status,
		DynamicData: map[string]any(model.DynamicData),
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
	if e.DynamicData == nil {
		e.DynamicData = map[string]any{}
	}
	if model.HireDate != nil {
		d := model.HireDate.UTC().Format(fieldschema.DateLayout)
		e.HireDate = &d
	}
	if model.CreatedBy != nil {
		e.CreatedBy = *model.CreatedBy
	}
	return e
}

// plainJSON converts coerced values to their stored JSON form, so that a
// freshly written record reads the same as one loaded from the database.
// Numbers stay json.Number to keep every digit.
func plainJSON(m map[string]any) (map[string]any, error) {
	out := map[string]any{}
	if len(m) == 0 {
		return out, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}
