package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/aidanlsb/mvtag/internal/multivalue"
	"github.com/aidanlsb/mvtag/internal/tagmap"
	"github.com/aidanlsb/mvtag/internal/testutil"
)

func TestDescribeFields(t *testing.T) {
	decls, err := multivalue.NewDeclarations(map[string]string{"genre": ","})
	if err != nil {
		t.Fatal(err)
	}
	infos := describeFields(decls, tagmap.Default())

	byName := make(map[string]fieldInfo)
	for _, info := range infos {
		byName[info.Name] = info
	}

	genre, ok := byName["genre"]
	if !ok || genre.Delimiter != "," || genre.ID3 != "TCON" || genre.Vorbis != "GENRE" {
		t.Errorf("unexpected genre info: %+v", genre)
	}
	artists, ok := byName["artists"]
	if !ok || artists.Delimiter != "" || artists.Vorbis != "ARTISTS" {
		t.Errorf("unexpected artists info: %+v", artists)
	}
	if artists.Kind == genre.Kind {
		t.Errorf("list and string fields share kind %q", artists.Kind)
	}
}

func TestFieldsMarkdown(t *testing.T) {
	md := fieldsMarkdown([]fieldInfo{
		{Name: "genre", Kind: "string", Delimiter: ",", ID3: "TCON"},
		{Name: "odd", Kind: "list", Vorbis: "A|B"},
	})
	if !strings.Contains(md, "| genre | string | `,` | TCON | - | - |") {
		t.Errorf("missing genre row:\n%s", md)
	}
	if !strings.Contains(md, `A\|B`) {
		t.Errorf("pipe not escaped:\n%s", md)
	}
}

func TestFieldsCommandJSON(t *testing.T) {
	lib := testutil.NewTestLibrary(t).WithStringFields(map[string]string{"genre": ";"}).Build()

	res := runCommand(t, lib, "", "--json", "fields")
	resp := decodeResponse(t, res.Stdout)
	var data struct {
		Fields []fieldInfo `json:"fields"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatal(err)
	}

	found := false
	for _, f := range data.Fields {
		if f.Name == "genre" {
			found = f.Delimiter == ";"
		}
	}
	if !found {
		t.Errorf("genre with ';' delimiter not listed: %s", resp.Data)
	}
	if resp.Meta == nil || resp.Meta.Count != len(data.Fields) {
		t.Errorf("meta count mismatch: %+v", resp.Meta)
	}
}

func TestFieldsCommandText(t *testing.T) {
	lib := testutil.NewTestLibrary(t).WithStringFields(map[string]string{"genre": ";"}).Build()

	// Table cells wrap at terminal width, so only short names are checked.
	stdout := ansi.Strip(mustRun(t, lib, "fields"))
	for _, want := range []string{"Multi-value fields", "genre", "│"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}
}
