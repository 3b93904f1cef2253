package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(AllModels()...)
	require.NoError(t, err)

	return db
}

func TestFieldDefinition_CreateAndLoad(t *testing.T) {
	db := setupTestDB(t)

	pattern := "^https://.*"
	def := &FieldDefinition{
		FieldName:  "linkedin_url",
		FieldLabel: "LinkedIn",
		FieldType:  "URL",
		SortOrder:  7,
		Pattern:    &pattern,
		IsActive:   true,
		MinValue:   decimal.NullDecimal{},
	}
	require.NoError(t, db.Create(def).Error)
	_, err := uuid.Parse(def.ID)
	assert.NoError(t, err, "ID should be a valid UUID")

	var loaded FieldDefinition
	require.NoError(t, db.First(&loaded, "field_name = ?", "linkedin_url").Error)
	assert.Equal(t, "URL", loaded.FieldType)
	assert.True(t, loaded.IsActive.Bool())
	assert.False(t, loaded.IsRequired.Bool())
	require.NotNil(t, loaded.Pattern)
	assert.Equal(t, pattern, *loaded.Pattern)
	assert.False(t, loaded.MinValue.Valid)
	assert.Empty(t, loaded.Options)
}

func TestFieldDefinition_DecimalBounds(t *testing.T) {
	db := setupTestDB(t)

	def := &FieldDefinition{
		FieldName:  "salary",
		FieldLabel: "Salary",
		FieldType:  "DECIMAL",
		MinValue:   decimal.NewNullDecimal(decimal.RequireFromString("0.50")),
		MaxValue:   decimal.NewNullDecimal(decimal.RequireFromString("99999.99")),
		IsActive:   true,
	}
	require.NoError(t, db.Create(def).Error)

	var loaded FieldDefinition
	require.NoError(t, db.First(&loaded, "id = ?", def.ID).Error)
	require.True(t, loaded.MinValue.Valid)
	assert.True(t, loaded.MinValue.Decimal.Equal(decimal.RequireFromString("0.5")))
	assert.True(t, loaded.MaxValue.Decimal.Equal(decimal.RequireFromString("99999.99")))
}

func TestFieldDefinition_UniqueName(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.Create(&FieldDefinition{FieldName: "badge", FieldLabel: "Badge", FieldType: "TEXT"}).Error)
	err := db.Create(&FieldDefinition{FieldName: "badge", FieldLabel: "Badge 2", FieldType: "TEXT"}).Error
	assert.Error(t, err)
}

func TestFieldDefinition_RejectsUnknownType(t *testing.T) {
	db := setupTestDB(t)

	err := db.Create(&FieldDefinition{FieldName: "fav", FieldLabel: "Fav", FieldType: "COLOR"}).Error
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown field type")
}

func TestEmployeeForm_SingletonKey(t *testing.T) {
	db := setupTestDB(t)

	first := &EmployeeForm{FormName: DefaultFormName, IsActive: true}
	require.NoError(t, db.Create(first).Error)
	assert.Equal(t, FormSingletonKey, first.SingletonKey)

	second := &EmployeeForm{FormName: "Another", SingletonKey: "other"}
	err := db.Create(second).Error
	assert.Error(t, err, "singleton key is pinned so a second row violates the unique index")

	var count int64
	require.NoError(t, db.Model(&EmployeeForm{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestEmployee_CreateWithDynamicData(t *testing.T) {
	db := setupTestDB(t)

	hire := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	emp := &Employee{
		Name:        "Ada Lovelace",
		Email:       "ada@example.com",
		Department:  "IT",
		Role:        "Engineer",
		Status:      "ACTIVE",
		HireDate:    &hire,
		DynamicData: JSONMap{"years_experience": 12, "linkedin_url": "https://linkedin.com/in/ada"},
	}
	require.NoError(t, db.Create(emp).Error)

	var loaded Employee
	require.NoError(t, db.First(&loaded, "id = ?", emp.ID).Error)
	assert.Equal(t, json.Number("12"), loaded.DynamicData["years_experience"])
	require.NotNil(t, loaded.HireDate)
	assert.Equal(t, "2024-01-15", loaded.HireDate.Format("2006-01-02"))
}

func TestEmployee_Hooks(t *testing.T) {
	db := setupTestDB(t)

	err := db.Create(&Employee{Name: "X", Email: "x@example.com", Department: "LEGAL", Role: "R", Status: "ACTIVE"}).Error
	require.Error(t, err)
	assert.Contains(t, err.Error(), "department")

	err = db.Create(&Employee{Name: "X", Email: "x@example.com", Department: "IT", Role: "R", Status: "RETIRED"}).Error
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status")
}

func TestEmployee_UniqueEmail(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.Create(&Employee{Name: "A", Email: "a@example.com", Department: "IT", Role: "R", Status: "ACTIVE"}).Error)
	err := db.Create(&Employee{Name: "B", Email: "a@example.com", Department: "HR", Role: "R", Status: "ACTIVE"}).Error
	assert.Error(t, err)
}
