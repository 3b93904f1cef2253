package fieldschema

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func validDefinition() Definition {
	return Definition{
		Name:     "years_experience",
		Label:    "Years of Experience",
		Kind:     KindNumber,
		MinValue: decPtr("0"),
		MaxValue: decPtr("50"),
		Active:   true,
	}
}

func TestCheckDefinition_Valid(t *testing.T) {
	require.NoError(t, CheckDefinition(validDefinition()))

	d := Definition{
		Name:    "tshirt_size",
		Label:   "T-Shirt Size",
		Kind:    KindSelect,
		Options: OptionValues("S", "M", "L"),
		Default: strPtr("M"),
	}
	require.NoError(t, CheckDefinition(d))
}

func TestCheckDefinition_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Definition)
		want   error
	}{
		{"missing name", func(d *Definition) { d.Name = "" }, ErrInvalidConstraint},
		{"bad name", func(d *Definition) { d.Name = "years experience" }, ErrInvalidConstraint},
		{"long name", func(d *Definition) { d.Name = strings.Repeat("a", MaxFieldNameLen+1) }, ErrInvalidConstraint},
		{"reserved name", func(d *Definition) { d.Name = "email" }, ErrDuplicateFieldName},
		{"missing label", func(d *Definition) { d.Label = "" }, ErrInvalidConstraint},
		{"unknown kind", func(d *Definition) { d.Kind = "COLOR" }, ErrInvalidConstraint},
		{"length on number", func(d *Definition) { d.MaxLength = intPtr(10) }, ErrInvalidConstraint},
		{"min above max", func(d *Definition) { d.MinValue = decPtr("60") }, ErrInvalidConstraint},
		{"three decimal places", func(d *Definition) { d.MaxValue = decPtr("1.005") }, ErrInvalidConstraint},
		{"too many integer digits", func(d *Definition) { d.MaxValue = decPtr("100000000") }, ErrInvalidConstraint},
		{"default out of range", func(d *Definition) { d.Default = strPtr("51") }, ErrInvalidConstraint},
		{"default wrong type", func(d *Definition) { d.Default = strPtr("many") }, ErrInvalidConstraint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDefinition()
			tt.mutate(&d)
			err := CheckDefinition(d)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestCheckField_TextConstraints(t *testing.T) {
	base := Field{Name: "nickname", Label: "Nickname", Kind: KindText}

	f := base
	f.MinValue = decPtr("1")
	assert.ErrorIs(t, CheckField(f), ErrInvalidConstraint, "min_value does not apply to TEXT")

	f = base
	f.MinLength, f.MaxLength = intPtr(5), intPtr(2)
	assert.ErrorIs(t, CheckField(f), ErrInvalidConstraint)

	f = base
	f.MinLength = intPtr(-1)
	assert.ErrorIs(t, CheckField(f), ErrInvalidConstraint)

	f = base
	f.Pattern = "("
	assert.ErrorIs(t, CheckField(f), ErrInvalidConstraint)

	f = base
	f.Pattern = `[a-z]+`
	f.Default = strPtr("ABC")
	assert.ErrorIs(t, CheckField(f), ErrInvalidConstraint)

	f = base
	f.Pattern = `[a-z]+`
	f.MinLength, f.MaxLength = intPtr(1), intPtr(20)
	assert.NoError(t, CheckField(f))
}

func TestCheckField_ChoiceConstraints(t *testing.T) {
	f := Field{Name: "shift", Label: "Shift", Kind: KindRadio}
	assert.ErrorIs(t, CheckField(f), ErrInvalidConstraint, "radio needs options")

	f.Options = OptionValues("day", "day")
	assert.ErrorIs(t, CheckField(f), ErrInvalidConstraint, "duplicate option")

	f.Options = OptionValues("day", "")
	assert.ErrorIs(t, CheckField(f), ErrInvalidConstraint, "empty option")

	f.Options = OptionValues("day", "night")
	f.Default = strPtr("evening")
	assert.ErrorIs(t, CheckField(f), ErrInvalidConstraint, "default must be an option")

	f.Default = strPtr("night")
	assert.NoError(t, CheckField(f))

	consent := Field{Name: "consent", Label: "Consent", Kind: KindCheckbox, Default: strPtr("false")}
	assert.NoError(t, CheckField(consent), "boolean checkbox needs no options")
}

func TestDefinitionError(t *testing.T) {
	err := DuplicateFieldName("skills")
	assert.ErrorIs(t, err, ErrDuplicateFieldName)
	assert.False(t, errors.Is(err, ErrInvalidConstraint))
	assert.Equal(t, "DuplicateFieldName: skills: field name already exists", err.Error())

	var de *DefinitionError
	require.ErrorAs(t, InvalidConstraint("skills", "bad %s", "thing"), &de)
	assert.Equal(t, CodeInvalidConstraint, de.Code)
	assert.Equal(t, "bad thing", de.Message)
}

func TestOptionJSON(t *testing.T) {
	var opts []Option
	require.NoError(t, json.Unmarshal([]byte(`["S", {"value": "M", "label": "Medium"}]`), &opts))
	assert.Equal(t, []Option{{Value: "S"}, {Value: "M", Label: "Medium"}}, opts)

	out, err := json.Marshal(opts)
	require.NoError(t, err)
	assert.JSONEq(t, `["S", {"value": "M", "label": "Medium"}]`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`[42]`), &opts))
}

func TestDefinitionField(t *testing.T) {
	d := validDefinition()
	d.Order = 7
	f := d.Field()
	assert.Equal(t, "years_experience", f.Name)
	assert.Equal(t, 7.0, f.Order)
	assert.True(t, f.IsActive())

	d.Active = false
	assert.False(t, d.Field().IsActive())
}
