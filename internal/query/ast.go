// Package query parses library query terms into record matchers.
//
// A query is a list of terms. Terms are ANDed; a bare "," term starts a new
// OR group. Each term is one of:
//
//	word            substring of any default field, case-insensitive
//	field:value     substring of field, case-insensitive
//	field:=value    field equals value exactly
//	field::pattern  field matches a regular expression
//	field:lo..hi    field is a number in [lo, hi]; either bound may be omitted
//	path:glob       path matches a glob when the value holds * ? [ or {
//
// Prefixing a term with ^ or - negates it. List fields match when any
// element matches.
package query

import "strings"

// DefaultFields are searched by terms without a field.
var DefaultFields = []string{
	"title",
	"artist",
	"artists",
	"album",
	"albumartist",
	"genre",
	"comments",
	"path",
}

// Query is a disjunction of term groups.
type Query struct {
	groups [][]*Term
	source []string
}

// Term is one parsed query term.
type Term struct {
	// Field is the field to test; empty means DefaultFields.
	Field  string
	Negate bool
	Raw    string

	pred predicate
}

// predicate tests a single string value.
type predicate interface {
	matchString(s string) bool
}

// String returns the query terms joined by spaces.
func (q *Query) String() string {
	return strings.Join(q.source, " ")
}

// IsEmpty reports whether the query has no terms and so matches everything.
func (q *Query) IsEmpty() bool {
	for _, g := range q.groups {
		if len(g) > 0 {
			return false
		}
	}
	return true
}

// Terms returns every parsed term, in order.
func (q *Query) Terms() []*Term {
	var out []*Term
	for _, g := range q.groups {
		out = append(out, g...)
	}
	return out
}
