// Package slugs turns field values into filesystem-friendly path components.
package slugs

import (
	"strings"

	goslug "github.com/gosimple/slug"
)

// Component slugifies one path component. Text that slugifies to nothing
// (for example only punctuation) falls back to a lowercased, dashed form.
func Component(s string) string {
	slugged := goslug.Make(s)
	if slugged == "" {
		slugged = strings.ToLower(strings.Join(strings.Fields(s), "-"))
	}
	return slugged
}
