package multivalue

import (
	"slices"
	"strings"
)

// Split splits a delimited field value into its values. An empty string has
// no values (not one empty value), so adding to an empty field never produces
// a leading delimiter.
func Split(value, delimiter string) []string {
	if value == "" {
		return nil
	}
	return strings.Split(value, delimiter)
}

// Join joins values with delimiter.
func Join(values []string, delimiter string) string {
	return strings.Join(values, delimiter)
}

// MergeString applies adds then removes to a delimited string value.
//
// Adds are appended in order unless already present. Each remove drops the
// first matching value, wherever it is; removes that match nothing are
// ignored. Existing values keep their relative order.
func MergeString(current string, adds, removes []string, delimiter string) string {
	values := Split(current, delimiter)
	for _, a := range adds {
		if !slices.Contains(values, a) {
			values = append(values, a)
		}
	}
	for _, r := range removes {
		if i := slices.Index(values, r); i >= 0 {
			values = slices.Delete(values, i, i+1)
		}
	}
	return Join(values, delimiter)
}

// MergeList drops every value of current found in removes, then appends the
// adds that are not already present. current is not modified.
func MergeList(current, adds, removes []string) []string {
	merged := make([]string, 0, len(current)+len(adds))
	for _, v := range current {
		if !slices.Contains(removes, v) {
			merged = append(merged, v)
		}
	}
	for _, a := range adds {
		if !slices.Contains(merged, a) {
			merged = append(merged, a)
		}
	}
	return merged
}
