// Package testutil provides reusable test utilities for mvtag integration tests.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aidanlsb/mvtag/internal/library"
	"github.com/aidanlsb/mvtag/internal/model"
)

// TestLibrary is a temporary config, library database and music directory.
type TestLibrary struct {
	Dir         string
	ConfigPath  string
	LibraryPath string
	MusicDir    string

	t          *testing.T
	config     []string
	items      []map[string]model.Value
	albums     []albumSpec
	audioFiles bool
}

type albumSpec struct {
	fields map[string]model.Value
	items  []map[string]model.Value
}

// NewTestLibrary creates a test library builder.
// Call Build() to create the files.
func NewTestLibrary(t *testing.T) *TestLibrary {
	t.Helper()
	return &TestLibrary{t: t}
}

// WithConfig appends TOML to the generated config. The generated config sets
// library, directory, write = false and move = false at the top level.
func (l *TestLibrary) WithConfig(toml string) *TestLibrary {
	l.config = append(l.config, toml)
	return l
}

// WithStringFields declares delimited string fields.
func (l *TestLibrary) WithStringFields(delimiters map[string]string) *TestLibrary {
	var b strings.Builder
	b.WriteString("[multivalue.string_fields]\n")
	for name, delim := range delimiters {
		fmt.Fprintf(&b, "%s = %q\n", name, delim)
	}
	return l.WithConfig(b.String())
}

// WithItem adds a singleton item. Its path is generated under MusicDir.
func (l *TestLibrary) WithItem(fields map[string]model.Value) *TestLibrary {
	l.items = append(l.items, fields)
	return l
}

// WithAlbum adds an album and its items.
func (l *TestLibrary) WithAlbum(fields map[string]model.Value, items ...map[string]model.Value) *TestLibrary {
	l.albums = append(l.albums, albumSpec{fields: fields, items: items})
	return l
}

// WithAudioFiles creates an empty .mp3 file for every item so tags can be
// written.
func (l *TestLibrary) WithAudioFiles() *TestLibrary {
	l.audioFiles = true
	return l
}

// Build writes the config and populates the library.
func (l *TestLibrary) Build() *TestLibrary {
	l.t.Helper()

	l.Dir = l.t.TempDir()
	l.ConfigPath = filepath.Join(l.Dir, "config.toml")
	l.LibraryPath = filepath.Join(l.Dir, "library.db")
	l.MusicDir = filepath.Join(l.Dir, "music")
	if err := os.MkdirAll(l.MusicDir, 0o755); err != nil {
		l.t.Fatalf("failed to create music dir: %v", err)
	}

	config := fmt.Sprintf("library = '%s'\ndirectory = '%s'\nwrite = false\nmove = false\n\n%s",
		l.LibraryPath, l.MusicDir, strings.Join(l.config, "\n"))
	if err := os.WriteFile(l.ConfigPath, []byte(config), 0o644); err != nil {
		l.t.Fatalf("failed to write config: %v", err)
	}

	lib, err := library.Open(l.LibraryPath)
	if err != nil {
		l.t.Fatalf("failed to open library: %v", err)
	}
	defer lib.Close()

	n := 0
	addItem := func(fields map[string]model.Value, albumID int64) {
		n++
		item := &model.Item{
			Path:    filepath.Join(l.MusicDir, fmt.Sprintf("track%02d.mp3", n)),
			AlbumID: albumID,
			Fields:  model.CloneFields(fields),
		}
		if l.audioFiles {
			if err := os.WriteFile(item.Path, nil, 0o644); err != nil {
				l.t.Fatalf("failed to create %s: %v", item.Path, err)
			}
		}
		if err := lib.AddItem(item); err != nil {
			l.t.Fatalf("failed to add item: %v", err)
		}
	}

	for _, a := range l.albums {
		album := &model.Album{Fields: model.CloneFields(a.fields)}
		if err := lib.AddAlbum(album); err != nil {
			l.t.Fatalf("failed to add album: %v", err)
		}
		for _, fields := range a.items {
			addItem(fields, album.ID)
		}
	}
	for _, fields := range l.items {
		addItem(fields, 0)
	}
	return l
}

// Open opens the library database; it is closed when the test ends.
func (l *TestLibrary) Open() *library.Library {
	l.t.Helper()
	lib, err := library.Open(l.LibraryPath)
	if err != nil {
		l.t.Fatalf("failed to open library: %v", err)
	}
	l.t.Cleanup(func() { lib.Close() })
	return lib
}

// Item loads an item by ID.
func (l *TestLibrary) Item(id int64) *model.Item {
	l.t.Helper()
	item, err := l.Open().Item(id)
	if err != nil {
		l.t.Fatalf("failed to load item %d: %v", id, err)
	}
	return item
}

// Album loads an album by ID.
func (l *TestLibrary) Album(id int64) *model.Album {
	l.t.Helper()
	album, err := l.Open().Album(id)
	if err != nil {
		l.t.Fatalf("failed to load album %d: %v", id, err)
	}
	return album
}
