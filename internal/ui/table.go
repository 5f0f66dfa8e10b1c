package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table renders rows with space-aligned columns and no borders. Column
// widths are measured in terminal cells so styled cells align.
type Table struct {
	rows       [][]string
	colWidths  []int
	colPadding int
	maxWidth   int
}

// NewTable creates a table with the given number of columns.
func NewTable(cols int) *Table {
	return &Table{
		colWidths:  make([]int, cols),
		colPadding: 2,
	}
}

// SetMaxWidth truncates the last column so rows fit in width cells.
// Zero disables truncation.
func (t *Table) SetMaxWidth(width int) {
	t.maxWidth = width
}

// AddRow adds a row. Missing cells are blank and extra cells are dropped.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.colWidths))
	for i := 0; i < len(t.colWidths) && i < len(cells); i++ {
		row[i] = cells[i]
		if w := lipgloss.Width(cells[i]); w > t.colWidths[i] {
			t.colWidths[i] = w
		}
	}
	t.rows = append(t.rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// String renders the table.
func (t *Table) String() string {
	if len(t.rows) == 0 {
		return ""
	}

	var sb strings.Builder
	padding := strings.Repeat(" ", t.colPadding)

	for _, row := range t.rows {
		var line strings.Builder
		for i, cell := range row {
			if i > 0 {
				line.WriteString(padding)
			}
			line.WriteString(cell)
			if i < len(row)-1 {
				line.WriteString(strings.Repeat(" ", t.colWidths[i]-lipgloss.Width(cell)))
			}
		}
		out := strings.TrimRight(line.String(), " ")
		if t.maxWidth > 0 {
			out = TruncateWithEllipsis(out, t.maxWidth)
		}
		sb.WriteString(out)
		sb.WriteString("\n")
	}
	return sb.String()
}

// TruncateWithEllipsis shortens plain text to maxLen runes, ending in "...".
func TruncateWithEllipsis(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
