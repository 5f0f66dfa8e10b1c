package multivalue

import (
	"fmt"
	"strings"
)

// OpKind is the kind of a field operation.
type OpKind int

const (
	OpAdd OpKind = iota + 1
	OpRemove
	OpSet
	OpDelete
)

func (k OpKind) String() string {
	switch k {
	case OpAdd:
		return "add"
	case OpRemove:
		return "remove"
	case OpSet:
		return "set"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Operation is one parsed instruction targeting one field.
type Operation struct {
	Field string
	Kind  OpKind
	Value string // empty for OpDelete
}

func (o Operation) String() string {
	switch o.Kind {
	case OpAdd:
		return o.Field + addMarker + o.Value
	case OpRemove:
		return o.Field + removeMarker + o.Value
	case OpSet:
		return o.Field + setMarker + o.Value
	case OpDelete:
		return o.Field + deleteSuffix
	}
	return o.Field
}

const (
	addMarker    = "+="
	removeMarker = "-="
	setMarker    = "="
	deleteSuffix = "!"

	// queryFieldSep separates field and pattern in query terms ("artist:Eric").
	queryFieldSep = ":"
)

// UndeclaredFieldError is returned when an add/remove targets a field that is
// neither a list field nor a configured string field.
type UndeclaredFieldError struct {
	Field string
}

func (e *UndeclaredFieldError) Error() string {
	return fmt.Sprintf("'%s' is not a declared multivalue field", e.Field)
}

// Suggestion returns a hint for fixing the error.
func (e *UndeclaredFieldError) Suggestion() string {
	return fmt.Sprintf("Declare it under [multivalue.string_fields] in config.toml (e.g. %s = \",\"), or run 'mvtag fields' to list declared fields", e.Field)
}

// ConflictingOperationError is returned when a field is both set/deleted and
// modified, or set/deleted more than once, in one invocation.
type ConflictingOperationError struct {
	Field  string
	Reason string
}

func (e *ConflictingOperationError) Error() string {
	return fmt.Sprintf("conflicting operations on field '%s': %s", e.Field, e.Reason)
}

// Classify splits command tokens into query terms and field operations.
//
// Tokens are tested in order for "field+=value", "field-=value",
// "field=value" and "field!". A marker only counts when no ':' appears
// before it, so query terms such as "title:a+=b" stay query terms. Only the
// first marker occurrence splits the token.
func Classify(tokens []string, decls Declarations) ([]string, []Operation, error) {
	var query []string
	var ops []Operation

	for _, token := range tokens {
		if field, value, ok := splitOperation(token, addMarker); ok {
			if _, declared := decls.Lookup(field); !declared {
				return nil, nil, &UndeclaredFieldError{Field: field}
			}
			ops = append(ops, Operation{Field: field, Kind: OpAdd, Value: value})
			continue
		}

		if field, value, ok := splitOperation(token, removeMarker); ok {
			if _, declared := decls.Lookup(field); !declared {
				return nil, nil, &UndeclaredFieldError{Field: field}
			}
			ops = append(ops, Operation{Field: field, Kind: OpRemove, Value: value})
			continue
		}

		if field, value, ok := splitOperation(token, setMarker); ok && field != "" {
			ops = append(ops, Operation{Field: field, Kind: OpSet, Value: value})
			continue
		}

		if field, ok := parseDelete(token); ok {
			ops = append(ops, Operation{Field: field, Kind: OpDelete})
			continue
		}

		query = append(query, token)
	}

	if err := checkConflicts(ops); err != nil {
		return nil, nil, err
	}

	return query, ops, nil
}

// splitOperation splits token on the first occurrence of marker, unless a
// query field separator precedes it.
func splitOperation(token, marker string) (string, string, bool) {
	idx := strings.Index(token, marker)
	if idx < 0 {
		return "", "", false
	}
	field := token[:idx]
	if strings.Contains(field, queryFieldSep) {
		return "", "", false
	}
	return field, token[idx+len(marker):], true
}

func parseDelete(token string) (string, bool) {
	if len(token) <= len(deleteSuffix) || !strings.HasSuffix(token, deleteSuffix) {
		return "", false
	}
	if strings.Contains(token, queryFieldSep) || strings.Contains(token, setMarker) {
		return "", false
	}
	return strings.TrimSuffix(token, deleteSuffix), true
}

func checkConflicts(ops []Operation) error {
	singular := make(map[string]OpKind)
	modified := make(map[string]bool)

	for _, op := range ops {
		switch op.Kind {
		case OpSet, OpDelete:
			if prev, ok := singular[op.Field]; ok {
				return &ConflictingOperationError{
					Field:  op.Field,
					Reason: fmt.Sprintf("%s given after %s", op.Kind, prev),
				}
			}
			singular[op.Field] = op.Kind
		case OpAdd, OpRemove:
			modified[op.Field] = true
		}
	}

	for _, op := range ops {
		kind, ok := singular[op.Field]
		if ok && modified[op.Field] {
			return &ConflictingOperationError{
				Field:  op.Field,
				Reason: fmt.Sprintf("cannot %s and add/remove values in the same command", kind),
			}
		}
	}
	return nil
}
