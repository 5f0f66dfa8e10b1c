package cli

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aidanlsb/mvtag/internal/model"
	"github.com/aidanlsb/mvtag/internal/multivalue"
	"github.com/aidanlsb/mvtag/internal/tagio"
	"github.com/aidanlsb/mvtag/internal/testutil"
)

func TestMultivalueItemScenarios(t *testing.T) {
	tests := []struct {
		name  string
		sep   string
		field string
		start map[string]model.Value
		args  []string
		want  model.Value
	}{
		{"list add value", ",", "artists", map[string]model.Value{"artists": list("Eric")}, []string{"artists+=Jamel"}, list("Eric", "Jamel")},
		{"list remove value", ",", "artists", map[string]model.Value{"artists": list("Eric", "Jamel")}, []string{"artists-=Jamel"}, list("Eric")},
		{"list double action", ",", "artists", map[string]model.Value{"artists": list("Eric", "Jamel")}, []string{"artists-=Jamel", "artists+=Jean"}, list("Eric", "Jean")},
		{"list remove no match", ",", "artists", map[string]model.Value{"artists": list("Eric")}, []string{"artists-=Jamel"}, list("Eric")},
		{"list remove last", ",", "artists", map[string]model.Value{"artists": list("Eric")}, []string{"artists-=Eric"}, list()},
		{"list add first", ",", "artists", map[string]model.Value{"artists": list()}, []string{"artists+=Eric"}, list("Eric")},
		{"string add value", ",", "genre", map[string]model.Value{"genre": str("Classic")}, []string{"genre+=Rock"}, str("Classic,Rock")},
		{"string remove value", ",", "genre", map[string]model.Value{"genre": str("Classic,Rock")}, []string{"genre-=Rock"}, str("Classic")},
		{"string double action", ",", "genre", map[string]model.Value{"genre": str("Classic,Rock")}, []string{"genre-=Rock", "genre+=Blues Chill"}, str("Classic,Blues Chill")},
		{"string remove no match", ",", "genre", map[string]model.Value{"genre": str("Classic")}, []string{"genre-=Blues"}, str("Classic")},
		{"string remove last", ",", "genre", map[string]model.Value{"genre": str("Classic")}, []string{"genre-=Classic"}, str("")},
		{"string add first", ",", "genre", map[string]model.Value{}, []string{"genre+=Classic"}, str("Classic")},
		{"string add to empty", ",", "genre", map[string]model.Value{"genre": str("")}, []string{"genre+=Classic"}, str("Classic")},
		{"string other separator", ";", "genre", map[string]model.Value{"genre": str("Classic")}, []string{"genre+=Blues"}, str("Classic;Blues")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lib := testutil.NewTestLibrary(t).
				WithStringFields(map[string]string{"genre": tt.sep}).
				WithItem(tt.start).
				Build()

			mustRun(t, lib, append([]string{"multivalue", "-y"}, tt.args...)...)
			lib.AssertItemField(1, tt.field, tt.want)
		})
	}
}

func TestMultivalueUndeclaredField(t *testing.T) {
	lib := testutil.NewTestLibrary(t).
		WithItem(map[string]model.Value{"genre": str("Classic")}).
		Build()

	res := runCommand(t, lib, "", "multivalue", "-y", "genre+=Blues")
	var undeclared *multivalue.UndeclaredFieldError
	if !errors.As(res.Err, &undeclared) {
		t.Fatalf("expected UndeclaredFieldError, got %v", res.Err)
	}
	if !strings.Contains(res.Err.Error(), "'genre' is not a declared multivalue field") {
		t.Errorf("unexpected message: %v", res.Err)
	}
	lib.AssertItemField(1, "genre", str("Classic"))
}

func TestMultivalueUndeclaredFieldJSON(t *testing.T) {
	lib := testutil.NewTestLibrary(t).Build()

	res := runCommand(t, lib, "", "--json", "multivalue", "-y", "genre-=Blues")
	if res.Err == nil {
		t.Fatal("expected a non-nil error so the exit status is non-zero")
	}
	resp := decodeResponse(t, res.Stdout)
	if resp.OK || resp.Error == nil || resp.Error.Code != ErrUndeclaredField {
		t.Fatalf("unexpected response: %s", res.Stdout)
	}
	if resp.Error.Suggestion == "" {
		t.Error("expected a suggestion for undeclared fields")
	}
}

func TestMultivalueNoMatch(t *testing.T) {
	lib := testutil.NewTestLibrary(t).
		WithItem(map[string]model.Value{"title": str("River"), "artists": list("Joni")}).
		Build()

	res := runCommand(t, lib, "", "multivalue", "-y", "title:Nothing", "artists+=X")
	if res.Err == nil || !strings.HasPrefix(res.Err.Error(), "no matching items found") {
		t.Fatalf("expected no-match error, got %v", res.Err)
	}

	res = runCommand(t, lib, "", "multivalue", "-y", "-a", "album:Nothing", "artists+=X")
	if res.Err == nil || !strings.Contains(res.Err.Error(), "no matching albums found") {
		t.Fatalf("expected album no-match error, got %v", res.Err)
	}

	res = runCommand(t, lib, "", "--json", "multivalue", "-y", "title:Nothing", "artists+=X")
	if resp := decodeResponse(t, res.Stdout); resp.Error == nil || resp.Error.Code != ErrNoMatch {
		t.Fatalf("expected NO_MATCH, got %s", res.Stdout)
	}
}

func TestMultivalueNoChanges(t *testing.T) {
	lib := testutil.NewTestLibrary(t).
		WithItem(map[string]model.Value{"artists": list("Eric")}).
		Build()

	stdout := mustRun(t, lib, "multivalue", "-y", "artists+=Eric")
	if !strings.Contains(stdout, "Modifying 1 item.") || !strings.Contains(stdout, "No changes to make.") {
		t.Fatalf("unexpected output:\n%s", stdout)
	}
}

func TestMultivalueQuerySelectsItems(t *testing.T) {
	lib := testutil.NewTestLibrary(t).
		WithItem(map[string]model.Value{"title": str("River"), "artists": list("Joni")}).
		WithItem(map[string]model.Value{"title": str("Hejira"), "artists": list("Joni")}).
		Build()

	stdout := mustRun(t, lib, "multivalue", "-y", "title:river", "artists+=Jaco")
	if !strings.Contains(stdout, "artists: [Joni] -> [Joni, Jaco]") {
		t.Errorf("expected preview line, got:\n%s", stdout)
	}
	lib.AssertItemField(1, "artists", list("Joni", "Jaco"))
	lib.AssertItemField(2, "artists", list("Joni"))
}

func TestMultivalueSetAndDelete(t *testing.T) {
	lib := testutil.NewTestLibrary(t).
		WithItem(map[string]model.Value{"title": str("river"), "comments": str("old")}).
		Build()

	mustRun(t, lib, "multivalue", "-y", "title=%title{$title}", "comments!")
	lib.AssertItemField(1, "title", str("River"))
	lib.AssertItemFieldMissing(1, "comments")
}

func TestMultivalueConflictingOperations(t *testing.T) {
	lib := testutil.NewTestLibrary(t).Build()

	res := runCommand(t, lib, "", "--json", "multivalue", "-y", "artists=A", "artists+=B")
	resp := decodeResponse(t, res.Stdout)
	if resp.Error == nil || resp.Error.Code != ErrInvalidInput {
		t.Fatalf("expected INVALID_INPUT, got %s", res.Stdout)
	}
}

func TestMultivalueRequiresModification(t *testing.T) {
	lib := testutil.NewTestLibrary(t).Build()

	res := runCommand(t, lib, "", "multivalue", "-y", "artist:Joni")
	if res.Err == nil || !strings.Contains(res.Err.Error(), "no modifications specified") {
		t.Fatalf("expected missing-modification error, got %v", res.Err)
	}
}

func TestMultivalueJSONPreviewWithoutYes(t *testing.T) {
	lib := testutil.NewTestLibrary(t).
		WithItem(map[string]model.Value{"artists": list("Eric")}).
		Build()

	res := runCommand(t, lib, "", "--json", "multivalue", "artists+=Jamel")
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	resp := decodeResponse(t, res.Stdout)

	var data struct {
		Preview bool `json:"preview"`
		Matched int  `json:"matched"`
		Applied int  `json:"applied"`
		Changes []struct {
			ID      int64 `json:"id"`
			Changes []struct {
				Field string          `json:"field"`
				Old   json.RawMessage `json:"old"`
				New   json.RawMessage `json:"new"`
			} `json:"changes"`
		} `json:"changes"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatal(err)
	}
	if !data.Preview || data.Applied != 0 || data.Matched != 1 {
		t.Fatalf("unexpected data: %s", resp.Data)
	}
	if len(data.Changes) != 1 || data.Changes[0].Changes[0].Field != "artists" {
		t.Fatalf("unexpected changes: %s", resp.Data)
	}
	var next []string
	if err := json.Unmarshal(data.Changes[0].Changes[0].New, &next); err != nil {
		t.Fatal(err)
	}
	if len(next) != 2 || next[0] != "Eric" || next[1] != "Jamel" {
		t.Errorf("new = %v", next)
	}
	if len(resp.Warnings) == 0 || resp.Warnings[0].Code != WarnConfirmationRequired {
		t.Errorf("expected confirmation warning, got %+v", resp.Warnings)
	}
	lib.AssertItemField(1, "artists", list("Eric"))

	res = runCommand(t, lib, "", "--json", "multivalue", "--yes", "artists+=Jamel")
	resp = decodeResponse(t, res.Stdout)
	if !resp.OK || resp.Meta == nil || resp.Meta.Count != 1 {
		t.Fatalf("unexpected response: %s", res.Stdout)
	}
	lib.AssertItemField(1, "artists", list("Eric", "Jamel"))
}

func TestMultivalueNonInteractiveDoesNotApply(t *testing.T) {
	setInteractive(t, false)
	lib := testutil.NewTestLibrary(t).
		WithItem(map[string]model.Value{"artists": list("Eric")}).
		Build()

	stdout := mustRun(t, lib, "multivalue", "artists+=Jamel")
	if !strings.Contains(stdout, "--yes") {
		t.Errorf("expected hint about --yes, got:\n%s", stdout)
	}
	lib.AssertItemField(1, "artists", list("Eric"))
}

func TestMultivalueConfirmPrompt(t *testing.T) {
	setInteractive(t, true)

	tests := []struct {
		name  string
		input string
		want  []model.Value
	}{
		{"yes", "y\n", []model.Value{list("A", "X"), list("B", "X")}},
		{"no", "n\n", []model.Value{list("A"), list("B")}},
		{"empty answer", "\n", []model.Value{list("A"), list("B")}},
		{"select second", "s\nn\ny\n", []model.Value{list("A"), list("B", "X")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lib := testutil.NewTestLibrary(t).
				WithItem(map[string]model.Value{"artists": list("A")}).
				WithItem(map[string]model.Value{"artists": list("B")}).
				Build()

			res := runCommand(t, lib, tt.input, "multivalue", "artists+=X")
			if res.Err != nil {
				t.Fatalf("unexpected error: %v", res.Err)
			}
			if !strings.Contains(res.Stdout, "Really modify?") {
				t.Errorf("expected prompt, got:\n%s", res.Stdout)
			}
			for i, want := range tt.want {
				lib.AssertItemField(int64(i+1), "artists", want)
			}
		})
	}
}

func albumLibrary(t *testing.T) *testutil.TestLibrary {
	t.Helper()
	return testutil.NewTestLibrary(t).
		WithStringFields(map[string]string{"genre": ","}).
		WithAlbum(
			map[string]model.Value{"album": str("Blue"), "albumartist": str("Joni"), "genre": str("Folk")},
			map[string]model.Value{"album": str("Blue"), "albumartist": str("Joni"), "genre": str("Folk"), "title": str("River"), "track": str("01")},
			map[string]model.Value{"album": str("Blue"), "albumartist": str("Joni"), "genre": str("Folk"), "title": str("Blue"), "track": str("02")},
		).
		Build()
}

func TestMultivalueAlbumInherits(t *testing.T) {
	lib := albumLibrary(t)

	mustRun(t, lib, "multivalue", "-a", "-y", "album:Blue", "genre+=Pop")
	lib.AssertAlbumField(1, "genre", str("Folk,Pop"))
	lib.AssertItemField(1, "genre", str("Folk,Pop"))
	lib.AssertItemField(2, "genre", str("Folk,Pop"))
}

func TestMultivalueAlbumNoInherit(t *testing.T) {
	lib := albumLibrary(t)

	mustRun(t, lib, "multivalue", "-a", "-y", "-I", "album:Blue", "genre-=Folk")
	lib.AssertAlbumField(1, "genre", str(""))
	lib.AssertItemField(1, "genre", str("Folk"))
}

func TestMultivalueWritesTags(t *testing.T) {
	lib := testutil.NewTestLibrary(t).
		WithItem(map[string]model.Value{"title": str("River"), "artists": list("Joni")}).
		WithAudioFiles().
		Build()

	res := runCommand(t, lib, "", "--json", "multivalue", "-y", "-w", "artists+=Jaco")
	resp := decodeResponse(t, res.Stdout)
	var data struct {
		Written int `json:"written"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatal(err)
	}
	if data.Written != 1 {
		t.Fatalf("written = %d, want 1; out=%s", data.Written, res.Stdout)
	}

	item := lib.Item(1)
	fields, err := tagio.NewWriter(nil).Read(item.Path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got := fields["artists"]; !got.Equal(list("Joni", "Jaco")) {
		t.Errorf("artists tag = %s", got.Display())
	}
	if item.Mtime == 0 {
		t.Error("expected mtime to be recorded after writing tags")
	}
}

func TestMultivalueWriteFailureIsWarning(t *testing.T) {
	// Files were never created, so writing tags fails.
	lib := testutil.NewTestLibrary(t).
		WithItem(map[string]model.Value{"artists": list("Joni")}).
		Build()

	res := runCommand(t, lib, "", "--json", "multivalue", "-y", "-w", "artists+=Jaco")
	resp := decodeResponse(t, res.Stdout)
	if !resp.OK {
		t.Fatalf("expected success with warnings, got %s", res.Stdout)
	}
	if len(resp.Warnings) != 1 || resp.Warnings[0].Code != WarnTagWriteFailed {
		t.Errorf("expected one tag write warning, got %+v", resp.Warnings)
	}
	lib.AssertItemField(1, "artists", list("Joni", "Jaco"))
}

func TestMultivalueMovesFiles(t *testing.T) {
	lib := testutil.NewTestLibrary(t).
		WithItem(map[string]model.Value{
			"albumartist": str("Joni"),
			"album":       str("Blue"),
			"track":       str("01"),
			"title":       str("River"),
			"artists":     list("Joni"),
		}).
		WithAudioFiles().
		Build()

	mustRun(t, lib, "multivalue", "-y", "-m", "artists+=Jaco")

	want := filepath.Join(lib.MusicDir, "Joni", "Blue", "01 River.mp3")
	item := lib.Item(1)
	if item.Path != want {
		t.Errorf("path = %s, want %s", item.Path, want)
	}
	lib.AssertFileExists(want)
}
