package ui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
)

// Progress displays a counted progress line on a terminal. On other
// writers it stays silent.
type Progress struct {
	out     io.Writer
	tty     bool
	total   int
	current int
	message string
	mu      sync.Mutex
}

// NewProgress creates a progress indicator writing to w.
func NewProgress(w io.Writer, message string, total int) *Progress {
	tty := false
	if f, ok := w.(*os.File); ok {
		tty = isatty.IsTerminal(f.Fd())
	}
	return &Progress{out: w, tty: tty, message: message, total: total}
}

// Increment advances the progress by one.
func (p *Progress) Increment() {
	p.mu.Lock()
	p.current++
	current := p.current
	p.mu.Unlock()
	if p.tty {
		fmt.Fprintf(p.out, "\r%s %s", p.message, Muted.Render(fmt.Sprintf("(%d/%d)", current, p.total)))
	}
}

// Current returns the number of completed steps.
func (p *Progress) Current() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Done clears the progress line.
func (p *Progress) Done() {
	if p.tty {
		fmt.Fprint(p.out, "\r\033[K")
	}
}
