// Package multivalue parses add/remove/set/delete field operations from
// command-line tokens and merges add/remove deltas into multi-value fields
// without disturbing the values already present.
package multivalue

import (
	"fmt"
	"sort"
	"strings"
)

// Kind distinguishes how a multi-value field is stored.
type Kind int

const (
	// KindList is a field stored as an ordered list of strings.
	KindList Kind = iota + 1
	// KindDelimited is a string field whose values are joined by a delimiter.
	KindDelimited
)

func (k Kind) String() string {
	switch k {
	case KindList:
		return "list"
	case KindDelimited:
		return "delimited"
	default:
		return "unknown"
	}
}

// Field is a declared multi-value field.
type Field struct {
	Name      string
	Kind      Kind
	Delimiter string // only for KindDelimited
}

// builtinListFields are stored as true lists by the library.
var builtinListFields = []string{
	"artists",
	"albumartists",
	"artists_sort",
	"artists_credit",
	"albumartists_sort",
	"albumartists_credit",
	"mb_artistids",
	"mb_albumartistids",
}

// BuiltinListFields returns the names of the built-in list fields.
func BuiltinListFields() []string {
	out := make([]string, len(builtinListFields))
	copy(out, builtinListFields)
	return out
}

// IsBuiltinListField reports whether name is one of the built-in list fields.
func IsBuiltinListField(name string) bool {
	for _, f := range builtinListFields {
		if f == name {
			return true
		}
	}
	return false
}

// Declarations maps field names to their multi-value declaration.
type Declarations map[string]Field

// NewDeclarations resolves the built-in list fields plus the configured
// delimited string fields (field name -> delimiter).
func NewDeclarations(stringFields map[string]string) (Declarations, error) {
	decls := make(Declarations, len(builtinListFields)+len(stringFields))
	for _, name := range builtinListFields {
		decls[name] = Field{Name: name, Kind: KindList}
	}

	names := make([]string, 0, len(stringFields))
	for name := range stringFields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		delimiter := stringFields[name]
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("string field name cannot be empty")
		}
		if delimiter == "" {
			return nil, fmt.Errorf("string field '%s' has an empty delimiter", name)
		}
		if IsBuiltinListField(name) {
			return nil, fmt.Errorf("'%s' is a list field and cannot be declared as a string field", name)
		}
		decls[name] = Field{Name: name, Kind: KindDelimited, Delimiter: delimiter}
	}

	return decls, nil
}

// Lookup returns the declaration for a field.
func (d Declarations) Lookup(name string) (Field, bool) {
	f, ok := d[name]
	return f, ok
}

// Names returns the declared field names, sorted.
func (d Declarations) Names() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
