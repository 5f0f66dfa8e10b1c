package model

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// ListSeparator is used when a list value has to be rendered as one string
// (templates, previews, tag formats without native multi-value support).
const ListSeparator = "; "

// Value is a field value: either a single string or an ordered list of strings.
type Value struct {
	str    string
	list   []string
	isList bool
}

// String creates a string Value.
func String(s string) Value {
	return Value{str: s}
}

// List creates a list Value. The slice is copied.
func List(items []string) Value {
	return Value{list: slices.Clone(items), isList: true}
}

// IsList returns true if the value holds an ordered list.
func (v Value) IsList() bool {
	return v.isList
}

// AsString returns the value as a string, if it is one.
func (v Value) AsString() (string, bool) {
	if v.isList {
		return "", false
	}
	return v.str, true
}

// AsList returns a copy of the list, if the value is one.
func (v Value) AsList() ([]string, bool) {
	if !v.isList {
		return nil, false
	}
	return slices.Clone(v.list), true
}

// Strings returns the list items, or the single string as a one-element
// slice. An empty string yields no elements.
func (v Value) Strings() []string {
	if v.isList {
		return slices.Clone(v.list)
	}
	if v.str == "" {
		return nil
	}
	return []string{v.str}
}

// Text renders the value as a single string, joining lists with sep.
func (v Value) Text(sep string) string {
	if v.isList {
		return strings.Join(v.list, sep)
	}
	return v.str
}

// Display renders the value for human output.
func (v Value) Display() string {
	if v.isList {
		return "[" + strings.Join(v.list, ", ") + "]"
	}
	return v.str
}

// IsEmpty reports whether the value holds no data.
func (v Value) IsEmpty() bool {
	if v.isList {
		return len(v.list) == 0
	}
	return v.str == ""
}

// Equal compares two values, including their shape.
func (v Value) Equal(other Value) bool {
	if v.isList != other.isList {
		return false
	}
	if v.isList {
		return slices.Equal(v.list, other.list)
	}
	return v.str == other.str
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.isList {
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	}
	return json.Marshal(v.str)
}

// UnmarshalJSON implements json.Unmarshaler. Numbers and booleans are kept
// as their string form.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := FromRaw(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// FromRaw converts a decoded JSON/YAML value into a Value.
func FromRaw(raw interface{}) (Value, error) {
	switch t := raw.(type) {
	case nil:
		return String(""), nil
	case string:
		return String(t), nil
	case []interface{}:
		items := make([]string, 0, len(t))
		for _, item := range t {
			if item == nil {
				continue
			}
			items = append(items, fmt.Sprint(item))
		}
		return List(items), nil
	case []string:
		return List(t), nil
	case float64, int, int64, bool:
		return String(fmt.Sprint(t)), nil
	}
	return Value{}, fmt.Errorf("unsupported field value of type %T", raw)
}
