package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/aidanlsb/mvtag/internal/model"
	"github.com/aidanlsb/mvtag/internal/tagio"
	"github.com/aidanlsb/mvtag/internal/testutil"
)

// writeTagged creates an MP3 file in dir holding fields.
func writeTagged(t *testing.T, dir, name string, fields map[string]model.Value) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := tagio.NewWriter(nil).Write(path, fields); err != nil {
		t.Fatal(err)
	}
	return path
}

func importSources(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeTagged(t, dir, "a.mp3", map[string]model.Value{
		"title": str("River"), "artist": str("Joni Mitchell"), "album": str("Blue"),
		"artists": str("Joni Mitchell"), "track": str("04"),
	})
	writeTagged(t, dir, "sub/b.mp3", map[string]model.Value{
		"title": str("Blue"), "artist": str("Joni Mitchell"), "album": str("Blue"), "track": str("05"),
	})
	writeTagged(t, dir, "c.mp3", map[string]model.Value{
		"title": str("Loose Track"), "artist": str("Someone"),
	})
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

type importData struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Albums   int `json:"albums_created"`
}

func runImportJSON(t *testing.T, lib *testutil.TestLibrary, args ...string) (importData, jsonResponse) {
	t.Helper()
	res := runCommand(t, lib, "", append([]string{"--json", "import"}, args...)...)
	if res.Err != nil {
		t.Fatalf("import failed: %v\n%s", res.Err, res.Stdout)
	}
	resp := decodeResponse(t, res.Stdout)
	var data importData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatal(err)
	}
	return data, resp
}

func TestImportGroupsAlbums(t *testing.T) {
	lib := testutil.NewTestLibrary(t).Build()
	src := importSources(t)

	data, _ := runImportJSON(t, lib, src)
	if data.Imported != 3 || data.Albums != 1 || data.Skipped != 0 {
		t.Fatalf("unexpected result: %+v", data)
	}

	// Files are imported in path order: a.mp3, c.mp3, sub/b.mp3.
	river := lib.Item(1)
	if river.Path != filepath.Join(src, "a.mp3") || river.AlbumID != 1 {
		t.Errorf("unexpected item: %+v", river)
	}
	if river.Mtime == 0 {
		t.Error("expected mtime to be recorded")
	}
	lib.AssertItemField(1, "artists", list("Joni Mitchell"))
	lib.AssertItemField(1, "title", str("River"))

	if loose := lib.Item(2); loose.AlbumID != 0 {
		t.Errorf("item without album should be a singleton, got album %d", loose.AlbumID)
	}
	if blue := lib.Item(3); blue.AlbumID != 1 {
		t.Errorf("second album track got album %d", blue.AlbumID)
	}

	lib.AssertAlbumField(1, "album", str("Blue"))
	lib.AssertAlbumField(1, "albumartist", str("Joni Mitchell"))
}

func TestImportSkipsKnownFiles(t *testing.T) {
	lib := testutil.NewTestLibrary(t).Build()
	src := importSources(t)

	runImportJSON(t, lib, src)
	data, resp := runImportJSON(t, lib, src)
	if data.Imported != 0 || data.Skipped != 3 || data.Albums != 0 {
		t.Fatalf("unexpected result: %+v", data)
	}
	if len(resp.Warnings) != 3 || resp.Warnings[0].Code != WarnAlreadyImported {
		t.Errorf("expected already-imported warnings, got %+v", resp.Warnings)
	}
}

func TestImportUnsupportedFile(t *testing.T) {
	lib := testutil.NewTestLibrary(t).Build()
	src := importSources(t)

	data, resp := runImportJSON(t, lib, filepath.Join(src, "notes.txt"))
	if data.Imported != 0 {
		t.Fatalf("unexpected result: %+v", data)
	}
	if len(resp.Warnings) != 1 || resp.Warnings[0].Code != WarnUnsupportedFormat {
		t.Errorf("expected unsupported format warning, got %+v", resp.Warnings)
	}
}

func TestImportMissingPath(t *testing.T) {
	lib := testutil.NewTestLibrary(t).Build()

	res := runCommand(t, lib, "", "--json", "import", filepath.Join(lib.Dir, "nope"))
	if resp := decodeResponse(t, res.Stdout); resp.Error == nil || resp.Error.Code != ErrFileNotFound {
		t.Errorf("expected FILE_NOT_FOUND, got %s", res.Stdout)
	}
}

func TestImportCopy(t *testing.T) {
	lib := testutil.NewTestLibrary(t).Build()
	src := importSources(t)

	data, _ := runImportJSON(t, lib, "--copy", filepath.Join(src, "a.mp3"))
	if data.Imported != 1 {
		t.Fatalf("unexpected result: %+v", data)
	}

	want := filepath.Join(lib.MusicDir, "Joni Mitchell", "Blue", "04 River.mp3")
	if got := lib.Item(1).Path; got != want {
		t.Errorf("path = %s, want %s", got, want)
	}
	lib.AssertFileExists(want)
	lib.AssertFileExists(filepath.Join(src, "a.mp3"))
	lib.AssertItemField(1, "albumartist", str("Joni Mitchell"))
}
