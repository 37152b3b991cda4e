package core

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Value is a normalized, displayable cell value: either a number or a string.
// The zero Value is the empty string, meaning "no value" (distinct from 0).
type Value struct {
	num   float64
	str   string
	isNum bool
}

// Number returns a numeric Value.
func Number(f float64) Value {
	return Value{num: f, isNum: true}
}

// Text returns a string Value.
func Text(s string) Value {
	return Value{str: s}
}

// IsNumber reports whether the value is numeric.
func (v Value) IsNumber() bool { return v.isNum }

// IsEmpty reports whether the value is the empty string.
func (v Value) IsEmpty() bool { return !v.isNum && v.str == "" }

// Float returns the numeric value, or 0 for strings.
func (v Value) Float() float64 { return v.num }

// String returns the value as plain text.
func (v Value) String() string {
	if v.isNum {
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	}
	return v.str
}

// MarshalJSON encodes numbers as JSON numbers and everything else as strings.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.isNum {
		return []byte(strconv.FormatFloat(v.num, 'f', -1, 64)), nil
	}
	return json.Marshal(v.str)
}

// MarshalYAML encodes the value as a YAML number or string.
func (v Value) MarshalYAML() (any, error) {
	if v.isNum {
		return v.num, nil
	}
	return v.str, nil
}

// UnmarshalJSON accepts a JSON number, string or null.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = Value{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Text(s)
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*v = Number(f)
	return nil
}
