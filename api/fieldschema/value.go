package fieldschema

import (
	"bytes"
	"encoding/json"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of DATE values.
const DateLayout = "2006-01-02"

// ValueType tags the variant held by a Value.
type ValueType uint8

const (
	TypeNone ValueType = iota
	TypeString
	TypeNumber
	TypeBool
	TypeDate
	TypeList
)

func (t ValueType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeNumber:
		return "number"
	case TypeBool:
		return "boolean"
	case TypeDate:
		return "date"
	case TypeList:
		return "list"
	default:
		return "none"
	}
}

// Value is a coerced field value: a string, a number, a boolean, a calendar
// date or a list of strings. The zero Value holds nothing.
type Value struct {
	typ  ValueType
	str  string
	num  decimal.Decimal
	flag bool
	date time.Time
	list []string
}

func StringValue(s string) Value { return Value{typ: TypeString, str: s} }

func NumberValue(d decimal.Decimal) Value { return Value{typ: TypeNumber, num: d} }

func BoolValue(b bool) Value { return Value{typ: TypeBool, flag: b} }

// DateValue keeps only the calendar date of t, in UTC.
func DateValue(t time.Time) Value {
	y, m, d := t.Date()
	return Value{typ: TypeDate, date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func ListValue(items []string) Value {
	return Value{typ: TypeList, list: slices.Clone(items)}
}

func (v Value) Type() ValueType { return v.typ }

func (v Value) IsZero() bool { return v.typ == TypeNone }

func (v Value) Str() string { return v.str }

func (v Value) Number() decimal.Decimal { return v.num }

func (v Value) Bool() bool { return v.flag }

func (v Value) Date() time.Time { return v.date }

func (v Value) List() []string { return slices.Clone(v.list) }

// String renders the value for display and export.
func (v Value) String() string {
	switch v.typ {
	case TypeString:
		return v.str
	case TypeNumber:
		return v.num.String()
	case TypeBool:
		if v.flag {
			return "true"
		}
		return "false"
	case TypeDate:
		return v.date.Format(DateLayout)
	case TypeList:
		var b bytes.Buffer
		for i, item := range v.list {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(item)
		}
		return b.String()
	default:
		return ""
	}
}

// Interface returns the plain Go form of the value: string, decimal.Decimal,
// bool, time.Time or []string. The zero Value yields nil.
func (v Value) Interface() any {
	switch v.typ {
	case TypeString:
		return v.str
	case TypeNumber:
		return v.num
	case TypeBool:
		return v.flag
	case TypeDate:
		return v.date
	case TypeList:
		return v.List()
	default:
		return nil
	}
}

// Equal compares type and content.
func (v Value) Equal(o Value) bool {
	if v.typ != o.typ {
		return false
	}
	switch v.typ {
	case TypeString:
		return v.str == o.str
	case TypeNumber:
		return v.num.Equal(o.num)
	case TypeBool:
		return v.flag == o.flag
	case TypeDate:
		return v.date.Equal(o.date)
	case TypeList:
		return slices.Equal(v.list, o.list)
	default:
		return true
	}
}

// MarshalJSON writes numbers as bare JSON numbers and dates as YYYY-MM-DD.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.typ {
	case TypeString:
		return json.Marshal(v.str)
	case TypeNumber:
		return []byte(v.num.String()), nil
	case TypeBool:
		return json.Marshal(v.flag)
	case TypeDate:
		return json.Marshal(v.date.Format(DateLayout))
	case TypeList:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	default:
		return []byte("null"), nil
	}
}

// Record is a normalized record: field name to coerced value.
type Record map[string]Value

// Map converts the record to a JSON-compatible map suitable for storage.
func (r Record) Map() map[string]any {
	out := make(map[string]any, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Equal reports whether both records hold the same keys and values.
func (r Record) Equal(o Record) bool {
	if len(r) != len(o) {
		return false
	}
	for k, v := range r {
		ov, ok := o[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}
