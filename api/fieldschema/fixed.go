package fieldschema

import "slices"

// Department values.
const (
	DepartmentHR         = "HR"
	DepartmentIT         = "IT"
	DepartmentSales      = "SALES"
	DepartmentMarketing  = "MARKETING"
	DepartmentFinance    = "FINANCE"
	DepartmentOperations = "OPERATIONS"
	DepartmentOther      = "OTHER"
)

// Employment status values.
const (
	StatusActive   = "ACTIVE"
	StatusInactive = "INACTIVE"
	StatusLeave    = "LEAVE"
)

// Names of the fixed employee attributes.
const (
	FieldName       = "name"
	FieldEmail      = "email"
	FieldDepartment = "department"
	FieldRole       = "role"
	FieldHireDate   = "hire_date"
	FieldStatus     = "status"
)

var (
	departmentOptions = []Option{
		{Value: DepartmentHR, Label: "Human Resources"},
		{Value: DepartmentIT, Label: "Information Technology"},
		{Value: DepartmentSales, Label: "Sales"},
		{Value: DepartmentMarketing, Label: "Marketing"},
		{Value: DepartmentFinance, Label: "Finance"},
		{Value: DepartmentOperations, Label: "Operations"},
		{Value: DepartmentOther, Label: "Other"},
	}
	statusOptions = []Option{
		{Value: StatusActive, Label: "Active"},
		{Value: StatusInactive, Label: "Inactive"},
		{Value: StatusLeave, Label: "On Leave"},
	}
)

func intPtr(i int) *int { return &i }

func strPtr(s string) *string { return &s }

var fixedFields = []Field{
	{ID: "fixed_name", Name: FieldName, Label: "Full Name", Kind: KindText, Required: true, Order: 1, MaxLength: intPtr(255)},
	{ID: "fixed_email", Name: FieldEmail, Label: "Email", Kind: KindEmail, Required: true, Order: 2, MaxLength: intPtr(254)},
	{ID: "fixed_department", Name: FieldDepartment, Label: "Department", Kind: KindSelect, Required: true, Order: 3, Options: departmentOptions},
	{ID: "fixed_role", Name: FieldRole, Label: "Role", Kind: KindText, Required: true, Order: 4, MaxLength: intPtr(100)},
	{ID: "fixed_hire_date", Name: FieldHireDate, Label: "Hire Date", Kind: KindDate, Required: false, Order: 5},
	{ID: "fixed_status", Name: FieldStatus, Label: "Status", Kind: KindSelect, Required: false, Order: 6, Options: statusOptions, Default: strPtr(StatusActive)},
}

// FixedFields returns a fresh copy of the six built-in employee attributes,
// ordered 1 to 6.
func FixedFields() []Field {
	out := make([]Field, len(fixedFields))
	for i, f := range fixedFields {
		f.Fixed = true
		f.Options = slices.Clone(f.Options)
		if f.MaxLength != nil {
			f.MaxLength = intPtr(*f.MaxLength)
		}
		if f.Default != nil {
			f.Default = strPtr(*f.Default)
		}
		out[i] = f
	}
	return out
}

// IsReserved reports whether name belongs to a fixed field.
func IsReserved(name string) bool {
	for _, f := range fixedFields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Departments lists the department values in declaration order.
func Departments() []string {
	return optionValues(departmentOptions)
}

// Statuses lists the employment status values in declaration order.
func Statuses() []string {
	return optionValues(statusOptions)
}

func optionValues(opts []Option) []string {
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = o.Value
	}
	return out
}
