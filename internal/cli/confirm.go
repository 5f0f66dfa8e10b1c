package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/aidanlsb/mvtag/internal/ui"
)

// isInteractive reports whether a confirmation prompt can be shown.
var isInteractive = func() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) && isatty.IsTerminal(os.Stdin.Fd())
}

func shouldPromptForConfirm() bool {
	if isJSONOutput() {
		return false
	}
	return isInteractive()
}

type answer int

const (
	answerNo answer = iota
	answerYes
	answerSelect
)

// prompter reads confirmation answers line by line.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, w io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: w}
}

// ask prints message and reads one answer. EOF and empty input mean no.
func (p *prompter) ask(message string, allowSelect bool) answer {
	options := "[y/N]"
	if allowSelect {
		options = "[y/N/s]"
	}
	fmt.Fprintf(p.out, "%s %s ", message, ui.Hint(options))

	line, _ := p.in.ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return answerYes
	case "s", "select":
		if allowSelect {
			return answerSelect
		}
	}
	return answerNo
}

// confirmProposals asks whether to apply all proposals, none, or a
// selection made one record at a time.
func confirmProposals(p *prompter, verb string, proposals []*proposal, width int) []*proposal {
	switch p.ask(fmt.Sprintf("Really %s?", verb), true) {
	case answerYes:
		return proposals
	case answerSelect:
		var accepted []*proposal
		for _, prop := range proposals {
			fmt.Fprint(p.out, ui.RenderChanges(prop.Label, prop.Changes, width))
			if p.ask("Modify?", false) == answerYes {
				accepted = append(accepted, prop)
			}
		}
		return accepted
	}
	return nil
}
