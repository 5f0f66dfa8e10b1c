package ui

import (
	"io"
	"os"

	"github.com/charmbracelet/x/term"
)

// DefaultTermWidth is used when output is not a terminal.
const DefaultTermWidth = 100

// DisplayContext describes where output is rendered.
type DisplayContext struct {
	TermWidth int
	IsTTY     bool
}

// DisplayFor inspects w. Writers other than terminals get DefaultTermWidth.
func DisplayFor(w io.Writer) *DisplayContext {
	d := &DisplayContext{TermWidth: DefaultTermWidth}
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(f.Fd()) {
		return d
	}
	d.IsTTY = true
	if width, _, err := term.GetSize(f.Fd()); err == nil && width > 0 {
		d.TermWidth = width
	}
	return d
}

// AvailableWidth returns the width left after a left margin, at least 1.
func (d *DisplayContext) AvailableWidth(leftMargin int) int {
	if w := d.TermWidth - leftMargin; w > 0 {
		return w
	}
	return 1
}
