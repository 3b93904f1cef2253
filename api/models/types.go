package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ericfitz/personnel/api/fieldschema"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Dialect constants for database type detection
const (
	dialectPostgres  = "postgres"
	dialectOracle    = "oracle"
	dialectMySQL     = "mysql"
	dialectSQLServer = "sqlserver"
	dialectSQLite    = "sqlite"
)

// jsonColumnType returns the column type used for JSON documents on each dialect.
func jsonColumnType(db *gorm.DB) string {
	switch db.Name() {
	case dialectPostgres:
		return "JSONB"
	case dialectOracle:
		return "CLOB"
	case dialectMySQL:
		return "JSON"
	case dialectSQLServer:
		return "NVARCHAR(MAX)"
	default:
		return "TEXT"
	}
}

// scanJSON decodes a JSON column value into dst, keeping numbers as
// json.Number. It reports whether the column held anything.
func scanJSON(value interface{}, dst interface{}, typeName string) (bool, error) {
	if value == nil {
		return false, nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return false, fmt.Errorf("cannot scan type %T into %s", value, typeName)
	}
	if len(bytes) == 0 || string(bytes) == "null" {
		return false, nil
	}
	dec := json.NewDecoder(strings.NewReader(string(bytes)))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return false, fmt.Errorf("cannot decode %s: %w", typeName, err)
	}
	return true, nil
}

// valueJSON encodes v as a JSON string. Strings rather than []byte keep Oracle
// CLOB columns happy.
func valueJSON(v interface{}, empty string) (driver.Value, error) {
	bytes, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(bytes) == "null" {
		return empty, nil
	}
	return string(bytes), nil
}

// JSONMap stores a JSON object. Employee dynamic data lives in one.
type JSONMap map[string]interface{}

// GormDBDataType implements the GormDBDataTypeInterface to return
// dialect-specific column types for cross-database compatibility
func (JSONMap) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	return jsonColumnType(db)
}

// Value implements the driver.Valuer interface for database writes
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	return valueJSON(map[string]interface{}(m), "{}")
}

// Scan implements the sql.Scanner interface for database reads
func (m *JSONMap) Scan(value interface{}) error {
	out := make(map[string]interface{})
	if _, err := scanJSON(value, &out, "JSONMap"); err != nil {
		return err
	}
	*m = out
	return nil
}

// OptionList stores the options of a choice field as a JSON array.
type OptionList []fieldschema.Option

func (OptionList) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	return jsonColumnType(db)
}

func (l OptionList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	return valueJSON([]fieldschema.Option(l), "[]")
}

func (l *OptionList) Scan(value interface{}) error {
	out := []fieldschema.Option{}
	if _, err := scanJSON(value, &out, "OptionList"); err != nil {
		return err
	}
	*l = out
	return nil
}

// FieldList stores the embedded custom field descriptors of the form document.
type FieldList []fieldschema.Field

func (FieldList) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	return jsonColumnType(db)
}

func (l FieldList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	return valueJSON([]fieldschema.Field(l), "[]")
}

func (l *FieldList) Scan(value interface{}) error {
	out := []fieldschema.Field{}
	if _, err := scanJSON(value, &out, "FieldList"); err != nil {
		return err
	}
	*l = out
	return nil
}

// DBText is a cross-database large text type.
// Uses TEXT on PostgreSQL, CLOB on Oracle, LONGTEXT on MySQL,
// NVARCHAR(MAX) on SQL Server, and TEXT on SQLite.
type DBText string

func (DBText) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	switch db.Name() {
	case dialectOracle:
		return "CLOB"
	case dialectMySQL:
		return "LONGTEXT"
	case dialectSQLServer:
		return "NVARCHAR(MAX)"
	default:
		return "TEXT"
	}
}

func (t *DBText) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*t = ""
	case []byte:
		*t = DBText(v)
	case string:
		*t = DBText(v)
	default:
		return fmt.Errorf("cannot scan type %T into DBText", value)
	}
	return nil
}

func (t DBText) Value() (driver.Value, error) {
	return string(t), nil
}

func (t DBText) String() string {
	return string(t)
}

// DBBool is a cross-database boolean. Oracle uses NUMBER(1), MySQL TINYINT(1),
// SQL Server BIT and SQLite INTEGER; PostgreSQL has a native boolean.
type DBBool bool

func (DBBool) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	switch db.Name() {
	case dialectOracle:
		return "NUMBER(1)"
	case dialectMySQL:
		return "TINYINT(1)"
	case dialectSQLServer:
		return "BIT"
	case dialectSQLite:
		return "INTEGER"
	default:
		return "BOOLEAN"
	}
}

// Scan accepts native booleans, integers and numeric types that only
// implement fmt.Stringer, such as godror.Number.
func (b *DBBool) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*b = false
	case bool:
		*b = DBBool(v)
	case int64:
		*b = v != 0
	case int:
		*b = v != 0
	case int32:
		*b = v != 0
	case float64:
		*b = v != 0
	default:
		stringer, ok := value.(fmt.Stringer)
		if !ok {
			return fmt.Errorf("cannot scan type %T into DBBool", value)
		}
		str := stringer.String()
		*b = str != "0" && str != ""
	}
	return nil
}

func (b DBBool) Value() (driver.Value, error) {
	return bool(b), nil
}

func (b DBBool) Bool() bool {
	return bool(b)
}
