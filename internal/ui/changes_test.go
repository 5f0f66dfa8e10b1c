package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/aidanlsb/mvtag/internal/model"
	"github.com/aidanlsb/mvtag/internal/multivalue"
)

func plainStyles(t *testing.T) {
	t.Helper()
	origAccent, origMuted, origBold, origStrike := Accent, Muted, Bold, Strike
	t.Cleanup(func() {
		Accent, Muted, Bold, Strike = origAccent, origMuted, origBold, origStrike
	})
	Accent, Muted, Bold, Strike = lipgloss.NewStyle(), lipgloss.NewStyle(), lipgloss.NewStyle(), lipgloss.NewStyle()
}

func TestRenderChanges(t *testing.T) {
	plainStyles(t)

	changes := []multivalue.Change{
		{Field: "artists", Old: model.List([]string{"Eric"}), HadOld: true, New: model.List([]string{"Eric", "Jamel"})},
		{Field: "comments", Old: model.String("hi"), HadOld: true, Deleted: true},
		{Field: "genre", New: model.String("Rock")},
	}

	got := RenderChanges("Eric Dolphy - Out to Lunch - Hat and Beard", changes, 0)
	want := "Eric Dolphy - Out to Lunch - Hat and Beard\n" +
		"  artists: [Eric] -> [Eric, Jamel]\n" +
		"  comments: hi\n" +
		"  genre: Rock\n"
	if got != want {
		t.Fatalf("RenderChanges() =\n%s\nwant\n%s", got, want)
	}
}

func TestRenderChangesWrapsLongLines(t *testing.T) {
	plainStyles(t)

	changes := []multivalue.Change{
		{Field: "genre", Old: model.String("Classic,Rock"), HadOld: true, New: model.String("Classic,Rock,Blues Chill")},
	}
	got := RenderChanges("x", changes, 20)
	if !strings.Contains(got, "  genre: Classic,Rock\n    -> Classic,Rock,Blues Chill\n") {
		t.Fatalf("expected wrapped change, got %q", got)
	}
}
