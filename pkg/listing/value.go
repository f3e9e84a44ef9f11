package listing

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Value is a loosely typed JSON value from an upstream record. VaultRE mixes
// numbers, numeric strings and free text in the same fields, so callers ask
// for the representation they need instead of fixing one at decode time.
type Value struct {
	v any // nil, bool, json.Number, string, []any or map[string]any
}

// decodeValue decodes raw into a Value. Malformed input yields the null Value.
func decodeValue(raw json.RawMessage) Value {
	var v Value
	_ = v.UnmarshalJSON(raw) // malformed input stays null
	return v
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	v.v = nil
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return err
	}
	v.v = out
	return nil
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.v)
}

// IsNull reports whether the value is JSON null or absent.
func (v Value) IsNull() bool {
	return v.v == nil
}

// String returns scalar values as text and "" for null, arrays and objects.
func (v Value) String() string {
	switch t := v.v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// Float64 returns the numeric value of a number or numeric string.
func (v Value) Float64() (float64, bool) {
	switch t := v.v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Truthy reports whether the value counts as set: null, false, zero, "",
// "0" and empty collections do not.
func (v Value) Truthy() bool {
	switch t := v.v.(type) {
	case nil:
		return false
	case bool:
		return t
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case string:
		return t != "" && t != "0"
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}

// Interface returns the decoded Go value.
func (v Value) Interface() any {
	return v.v
}
