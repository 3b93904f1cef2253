package fieldschema

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func employeeSchema(custom ...Field) []Field {
	return Compose(custom)
}

func baseRecord() map[string]any {
	return map[string]any{
		"name":       "Ada Lovelace",
		"email":      "ada@example.com",
		"department": "IT",
		"role":       "Engineer",
		"hire_date":  "2024-01-15",
	}
}

func validationErrors(t *testing.T, err error) *ValidationError {
	t.Helper()
	require.Error(t, err)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	return ve
}

func TestValidate_ValidRecord(t *testing.T) {
	out, err := Validate(employeeSchema(), baseRecord())
	require.NoError(t, err)

	assert.Equal(t, StringValue("Ada Lovelace"), out["name"])
	assert.Equal(t, TypeDate, out["hire_date"].Type())
	assert.Equal(t, "2024-01-15", out["hire_date"].String())
	assert.Equal(t, StringValue(StatusActive), out["status"], "status default applied")
}

func TestValidate_LinkedinPattern(t *testing.T) {
	schema := employeeSchema(Field{
		Name:    "linkedin_url",
		Label:   "LinkedIn",
		Kind:    KindURL,
		Order:   7,
		Pattern: "^https://.*",
	})

	rec := baseRecord()
	rec["linkedin_url"] = "ftp://x"
	_, err := Validate(schema, rec)
	ve := validationErrors(t, err)
	require.Len(t, ve.Errors, 1)
	assert.Equal(t, []ErrorCode{CodePatternMismatch}, ve.Codes("linkedin_url"))

	out, err := Validate(schema, baseRecord())
	require.NoError(t, err)
	_, present := out["linkedin_url"]
	assert.False(t, present, "no default configured")

	rec["linkedin_url"] = "https://linkedin.com/in/ada"
	out, err = Validate(schema, rec)
	require.NoError(t, err)
	assert.Equal(t, "https://linkedin.com/in/ada", out["linkedin_url"].Str())
}

func TestValidate_YearsExperience(t *testing.T) {
	schema := employeeSchema(Field{
		Name:     "years_experience",
		Label:    "Years of Experience",
		Kind:     KindNumber,
		Order:    8,
		MinValue: decPtr("0"),
		MaxValue: decPtr("50"),
	})

	tests := []struct {
		name  string
		value any
		code  ErrorCode
	}{
		{"below minimum", -1.0, CodeBelowMinimum},
		{"above maximum", 51.0, CodeAboveMaximum},
		{"not a number", "abc", CodeTypeMismatch},
		{"fractional", 2.5, CodeTypeMismatch},
		{"boolean", true, CodeTypeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := baseRecord()
			rec["years_experience"] = tt.value
			_, err := Validate(schema, rec)
			ve := validationErrors(t, err)
			assert.Equal(t, []ErrorCode{tt.code}, ve.Codes("years_experience"))
		})
	}

	rec := baseRecord()
	rec["years_experience"] = 12.0
	out, err := Validate(schema, rec)
	require.NoError(t, err)
	v := out["years_experience"]
	assert.Equal(t, TypeNumber, v.Type())
	assert.True(t, v.Number().Equal(decimal.NewFromInt(12)))

	raw, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, "12", string(raw))

	rec["years_experience"] = "12"
	out, err = Validate(schema, rec)
	require.NoError(t, err)
	assert.True(t, out["years_experience"].Number().Equal(decimal.NewFromInt(12)))
}

func TestValidate_RequiredMissingAccumulates(t *testing.T) {
	schema := employeeSchema(Field{Name: "badge", Label: "Badge", Kind: KindNumber, Order: 7})
	rec := baseRecord()
	delete(rec, "name")
	rec["email"] = "not-an-email"
	rec["department"] = "LEGAL"
	rec["badge"] = "x"

	_, err := Validate(schema, rec)
	ve := validationErrors(t, err)

	assert.Equal(t, []ErrorCode{CodeRequiredFieldMissing}, ve.Codes("name"))
	assert.Equal(t, []ErrorCode{CodeTypeMismatch}, ve.Codes("email"))
	assert.Equal(t, []ErrorCode{CodeInvalidOption}, ve.Codes("department"))
	assert.Equal(t, []ErrorCode{CodeTypeMismatch}, ve.Codes("badge"))

	fields := make([]string, len(ve.Errors))
	for i, fe := range ve.Errors {
		fields[i] = fe.Field
	}
	assert.Equal(t, []string{"name", "email", "department", "badge"}, fields, "errors follow schema order")
}

func TestValidate_BlankCountsAsMissing(t *testing.T) {
	for _, blank := range []any{nil, "", "   "} {
		rec := baseRecord()
		rec["role"] = blank
		_, err := Validate(employeeSchema(), rec)
		ve := validationErrors(t, err)
		assert.Equal(t, []ErrorCode{CodeRequiredFieldMissing}, ve.Codes("role"))
	}
}

func TestValidate_TextLengthAndNormalisation(t *testing.T) {
	schema := employeeSchema(Field{
		Name:      "nickname",
		Label:     "Nickname",
		Kind:      KindText,
		Order:     7,
		MinLength: intPtr(2),
		MaxLength: intPtr(5),
	})

	rec := baseRecord()
	rec["nickname"] = "A"
	_, err := Validate(schema, rec)
	assert.Equal(t, []ErrorCode{CodeTooShort}, validationErrors(t, err).Codes("nickname"))

	rec["nickname"] = "Adaline"
	_, err = Validate(schema, rec)
	assert.Equal(t, []ErrorCode{CodeTooLong}, validationErrors(t, err).Codes("nickname"))

	rec["nickname"] = "  Café "
	out, err := Validate(schema, rec)
	require.NoError(t, err)
	assert.Equal(t, "Café", out["nickname"].Str(), "trimmed and NFC composed")
}

func TestValidate_ChoiceKinds(t *testing.T) {
	schema := employeeSchema(
		Field{Name: "shift", Label: "Shift", Kind: KindRadio, Order: 7, Options: OptionValues("day", "night")},
		Field{Name: "skills", Label: "Skills", Kind: KindCheckbox, Order: 8, Options: OptionValues("go", "sql", "k8s")},
		Field{Name: "remote", Label: "Remote", Kind: KindCheckbox, Order: 9},
	)

	rec := baseRecord()
	rec["shift"] = "night"
	rec["skills"] = []any{"go", "sql"}
	rec["remote"] = false
	out, err := Validate(schema, rec)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "sql"}, out["skills"].List())
	assert.Equal(t, BoolValue(false), out["remote"])

	rec["shift"] = "evening"
	rec["skills"] = []any{"go", "cobol"}
	rec["remote"] = "maybe"
	_, err = Validate(schema, rec)
	ve := validationErrors(t, err)
	assert.Equal(t, []ErrorCode{CodeInvalidOption}, ve.Codes("shift"))
	assert.Equal(t, []ErrorCode{CodeInvalidOption}, ve.Codes("skills"))
	assert.Equal(t, []ErrorCode{CodeTypeMismatch}, ve.Codes("remote"))
}

func TestValidate_DatesAndDecimals(t *testing.T) {
	schema := employeeSchema(
		Field{Name: "salary", Label: "Salary", Kind: KindDecimal, Order: 7, MinValue: decPtr("0.01")},
		Field{Name: "phone", Label: "Phone", Kind: KindPhone, Order: 8},
	)

	rec := baseRecord()
	rec["hire_date"] = "2024-02-30"
	rec["salary"] = "0.00"
	rec["phone"] = "call me"
	_, err := Validate(schema, rec)
	ve := validationErrors(t, err)
	assert.Equal(t, []ErrorCode{CodeTypeMismatch}, ve.Codes("hire_date"))
	assert.Equal(t, []ErrorCode{CodeBelowMinimum}, ve.Codes("salary"))
	assert.Equal(t, []ErrorCode{CodeTypeMismatch}, ve.Codes("phone"))

	rec["hire_date"] = "2024-02-29T10:00:00Z"
	rec["salary"] = json.Number("85000.50")
	rec["phone"] = "+1 (555) 010-9999"
	out, err := Validate(schema, rec)
	require.NoError(t, err)
	assert.True(t, out["hire_date"].Date().Equal(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "85000.5", out["salary"].String())
}

func TestValidate_TimestampKeepsLocalDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2024-01-01T23:00:00-05:00", "2024-01-01"},
		{"2024-01-02T01:30:00+09:00", "2024-01-02"},
		{"2024-01-01T23:59:59Z", "2024-01-01"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			rec := baseRecord()
			rec["hire_date"] = tt.in
			out, err := Validate(employeeSchema(), rec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out["hire_date"].String())
		})
	}
}

func TestValidate_DropsUnknownKeys(t *testing.T) {
	rec := baseRecord()
	rec["shoe_size"] = 44
	out, err := Validate(employeeSchema(), rec)
	require.NoError(t, err)
	_, present := out["shoe_size"]
	assert.False(t, present)
}

func TestValidate_Idempotent(t *testing.T) {
	schema := employeeSchema(
		Field{Name: "skills", Label: "Skills", Kind: KindCheckbox, Order: 7, Options: OptionValues("go", "sql")},
		Field{Name: "years_experience", Label: "Years", Kind: KindNumber, Order: 8, MinValue: decPtr("0")},
		Field{Name: "start", Label: "Start", Kind: KindDate, Order: 9},
		Field{Name: "remote", Label: "Remote", Kind: KindCheckbox, Order: 10, Default: strPtr("true")},
	)
	rec := baseRecord()
	rec["skills"] = "go, sql"
	rec["years_experience"] = 7.0
	rec["start"] = "2024-03-01"
	rec["extra"] = "dropped"

	first, err := Validate(schema, rec)
	require.NoError(t, err)

	second, err := ValidateRecord(schema, first)
	require.NoError(t, err)
	assert.True(t, first.Equal(second))

	raw, err := json.Marshal(first)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	third, err := Validate(schema, decoded)
	require.NoError(t, err)
	assert.True(t, first.Equal(third), "stored JSON validates to the same record")
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Errors: []FieldError{
		{Field: "name", Code: CodeRequiredFieldMissing, Message: "this field is required"},
		{Field: "email", Code: CodeTypeMismatch, Message: "expected a value of type EMAIL"},
	}}
	assert.True(t, err.HasErrors())
	assert.Equal(t, "validation failed: name: this field is required; email: expected a value of type EMAIL", err.Error())
}
