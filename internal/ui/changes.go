package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aidanlsb/mvtag/internal/multivalue"
)

const changeIndent = "  "

// RenderChanges renders the preview block for one record: the label on the
// first line and one "field: old -> new" line per change. When a line would
// exceed width, the new value moves to its own line.
func RenderChanges(label string, changes []multivalue.Change, width int) string {
	var b strings.Builder
	b.WriteString(Bold.Render(label))
	b.WriteString("\n")

	for _, c := range changes {
		prefix := changeIndent + Accent.Render(c.Field) + ": "

		var line string
		switch {
		case c.Deleted:
			line = prefix + Strike.Render(c.Old.Display())
		case !c.HadOld:
			line = prefix + Accent.Render(c.New.Display())
		default:
			old := Muted.Render(c.Old.Display())
			next := Accent.Render(c.New.Display())
			line = prefix + old + " -> " + next
			if width > 0 && lipgloss.Width(line) > width {
				line = prefix + old + "\n" + changeIndent + changeIndent + "-> " + next
			}
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
