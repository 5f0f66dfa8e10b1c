package testutil

import (
	"os"

	"github.com/aidanlsb/mvtag/internal/model"
)

// AssertItemField fails the test unless item id has field set to want.
func (l *TestLibrary) AssertItemField(id int64, field string, want model.Value) {
	l.t.Helper()
	got, ok := l.Item(id).Get(field)
	if !ok {
		l.t.Errorf("item %d: field %q missing, want %s", id, field, want.Display())
		return
	}
	if !got.Equal(want) {
		l.t.Errorf("item %d: field %q = %s (list=%v), want %s (list=%v)",
			id, field, got.Display(), got.IsList(), want.Display(), want.IsList())
	}
}

// AssertItemFieldMissing fails the test if item id has field.
func (l *TestLibrary) AssertItemFieldMissing(id int64, field string) {
	l.t.Helper()
	if got, ok := l.Item(id).Get(field); ok {
		l.t.Errorf("item %d: expected field %q to be missing, got %s", id, field, got.Display())
	}
}

// AssertAlbumField fails the test unless album id has field set to want.
func (l *TestLibrary) AssertAlbumField(id int64, field string, want model.Value) {
	l.t.Helper()
	got, ok := l.Album(id).Get(field)
	if !ok || !got.Equal(want) {
		l.t.Errorf("album %d: field %q = %s (present=%v), want %s", id, field, got.Display(), ok, want.Display())
	}
}

// AssertFileExists fails the test if path does not exist.
func (l *TestLibrary) AssertFileExists(path string) {
	l.t.Helper()
	if _, err := os.Stat(path); err != nil {
		l.t.Errorf("expected file to exist: %s", path)
	}
}
