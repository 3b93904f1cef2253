package fieldschema

import (
	"encoding/json"
	"math"
	"net/mail"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9()\-. ]+$`)

const minPhoneDigits = 7

// isBlank reports whether raw counts as no value: nil, a blank string, the
// zero Value or an empty list.
func isBlank(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case Value:
		switch v.typ {
		case TypeNone:
			return true
		case TypeString:
			return v.str == ""
		case TypeList:
			return len(v.list) == 0
		}
		return false
	case []any:
		return len(v) == 0
	case []string:
		return len(v) == 0
	}
	return false
}

// coerce converts raw into the native representation of f's kind.
func coerce(f Field, raw any) (Value, bool) {
	if v, ok := raw.(Value); ok {
		raw = v.Interface()
	}
	switch f.Kind {
	case KindText, KindTextarea, KindFile:
		s, ok := coerceText(raw)
		return StringValue(s), ok
	case KindEmail:
		s, ok := coerceText(raw)
		if !ok {
			return Value{}, false
		}
		addr, err := mail.ParseAddress(s)
		if err != nil || addr.Address != s {
			return Value{}, false
		}
		return StringValue(s), true
	case KindURL:
		s, ok := coerceText(raw)
		if !ok {
			return Value{}, false
		}
		u, err := url.ParseRequestURI(s)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return Value{}, false
		}
		return StringValue(s), true
	case KindPhone:
		s, ok := coerceText(raw)
		if !ok || !phonePattern.MatchString(s) || countDigits(s) < minPhoneDigits {
			return Value{}, false
		}
		return StringValue(s), true
	case KindNumber, KindDecimal:
		d, ok := coerceNumber(raw)
		if !ok || (f.Kind == KindNumber && !d.IsInteger()) {
			return Value{}, false
		}
		return NumberValue(d), true
	case KindDate:
		t, ok := coerceDate(raw)
		return DateValue(t), ok
	case KindSelect, KindRadio:
		s, ok := coerceChoice(raw)
		return StringValue(s), ok
	case KindCheckbox:
		if len(f.Options) > 0 {
			items, ok := coerceList(raw)
			return ListValue(items), ok
		}
		b, ok := coerceBool(raw)
		return BoolValue(b), ok
	}
	return Value{}, false
}

func coerceText(raw any) (string, bool) {
	s, ok := raw.(string)
	if !ok {
		return "", false
	}
	return norm.NFC.String(strings.TrimSpace(s)), true
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

func coerceNumber(raw any) (decimal.Decimal, bool) {
	switch v := raw.(type) {
	case decimal.Decimal:
		return v, true
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Decimal{}, false
		}
		return decimal.NewFromFloat(v), true
	case float32:
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return decimal.Decimal{}, false
		}
		return decimal.NewFromFloat32(v), true
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int32:
		return decimal.NewFromInt32(v), true
	case int64:
		return decimal.NewFromInt(v), true
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		return d, err == nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		return d, err == nil
	}
	return decimal.Decimal{}, false
}

func coerceDate(raw any) (time.Time, bool) {
	switch v := raw.(type) {
	case time.Time:
		return v, true
	case string:
		s := strings.TrimSpace(v)
		if t, err := time.Parse(DateLayout, s); err == nil {
			return t, true
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func coerceBool(raw any) (bool, bool) {
	switch v := raw.(type) {
	case bool:
		return v, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return b, err == nil
	}
	return false, false
}

// coerceChoice accepts strings and, for numeric option sets, numbers.
func coerceChoice(raw any) (string, bool) {
	if s, ok := coerceText(raw); ok {
		return s, true
	}
	if d, ok := coerceNumber(raw); ok {
		return d.String(), true
	}
	return "", false
}

// coerceList accepts a list of strings or a single comma separated string.
func coerceList(raw any) ([]string, bool) {
	switch v := raw.(type) {
	case []string:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, norm.NFC.String(strings.TrimSpace(item)))
		}
		return out, true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := coerceChoice(item)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	case string:
		var out []string
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, norm.NFC.String(p))
			}
		}
		return out, true
	}
	return nil, false
}
