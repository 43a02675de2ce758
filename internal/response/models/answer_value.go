package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	dErrors "canvass/pkg/domain-errors"
)

// AnswerValue is the typed-but-dynamic payload of a single answer. The
// in-memory shapes are closed: null, string, number (float64), bool, or
// []string. Constructors normalize everything else into one of those or
// reject it.
type AnswerValue struct {
	value any
}

// NullValue is the absent answer.
func NullValue() AnswerValue { return AnswerValue{} }

func StringValue(v string) AnswerValue { return AnswerValue{value: v} }

func NumberValue(v float64) AnswerValue { return AnswerValue{value: v} }

func BoolValue(v bool) AnswerValue { return AnswerValue{value: v} }

func ArrayValue(v []string) AnswerValue {
	return AnswerValue{value: append([]string(nil), v...)}
}

// NewAnswerValue normalizes a raw submitted payload into the canonical
// in-memory shape. Integer kinds widen to float64; []any arrays must hold
// strings only.
func NewAnswerValue(raw any) (AnswerValue, error) {
	switch v := raw.(type) {
	case nil:
		return NullValue(), nil
	case string:
		return StringValue(v), nil
	case bool:
		return BoolValue(v), nil
	case float64:
		return NumberValue(v), nil
	case float32:
		return NumberValue(float64(v)), nil
	case int:
		return NumberValue(float64(v)), nil
	case int32:
		return NumberValue(float64(v)), nil
	case int64:
		return NumberValue(float64(v)), nil
	case []string:
		return ArrayValue(v), nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return AnswerValue{}, dErrors.New(dErrors.CodeInvalidAnswer,
					fmt.Sprintf("array answers may contain only strings, got %T", item))
			}
			out = append(out, s)
		}
		return ArrayValue(out), nil
	default:
		return AnswerValue{}, dErrors.New(dErrors.CodeInvalidAnswer,
			fmt.Sprintf("unsupported answer payload type %T", raw))
	}
}

// MustAnswerValue normalizes raw, panicking on unsupported shapes. Tests only.
func MustAnswerValue(raw any) AnswerValue {
	v, err := NewAnswerValue(raw)
	if err != nil {
		panic(err)
	}
	return v
}

func (v AnswerValue) IsNull() bool { return v.value == nil }

func (v AnswerValue) IsString() bool {
	_, ok := v.value.(string)
	return ok
}

func (v AnswerValue) IsNumeric() bool {
	_, ok := v.value.(float64)
	return ok
}

func (v AnswerValue) IsBool() bool {
	_, ok := v.value.(bool)
	return ok
}

func (v AnswerValue) IsArray() bool {
	_, ok := v.value.([]string)
	return ok
}

// ToMixed returns the underlying payload in its canonical shape.
func (v AnswerValue) ToMixed() any {
	if arr, ok := v.value.([]string); ok {
		return append([]string(nil), arr...)
	}
	return v.value
}

func (v AnswerValue) AsString() (string, bool) {
	s, ok := v.value.(string)
	return s, ok
}

func (v AnswerValue) AsNumber() (float64, bool) {
	n, ok := v.value.(float64)
	return n, ok
}

func (v AnswerValue) AsBool() (bool, bool) {
	b, ok := v.value.(bool)
	return b, ok
}

func (v AnswerValue) AsArray() ([]string, bool) {
	arr, ok := v.value.([]string)
	if !ok {
		return nil, false
	}
	return append([]string(nil), arr...), true
}

// String renders the canonical display form: numbers without a trailing
// decimal when integral, arrays comma-joined.
func (v AnswerValue) String() string {
	switch val := v.value.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case []string:
		return strings.Join(val, ", ")
	default:
		return fmt.Sprintf("%v", val)
	}
}

// Equal compares payloads structurally.
func (v AnswerValue) Equal(other AnswerValue) bool {
	a, aOK := v.value.([]string)
	b, bOK := other.value.([]string)
	if aOK || bOK {
		if aOK != bOK || len(a) != len(b) {
			return false
		}
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
		return true
	}
	return v.value == other.value
}

func (v AnswerValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.value)
}

func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := NewAnswerValue(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
