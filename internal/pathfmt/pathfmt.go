// Package pathfmt computes library destination paths from a path template
// and moves files there.
package pathfmt

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/aidanlsb/mvtag/internal/atomicfile"
	"github.com/aidanlsb/mvtag/internal/model"
	"github.com/aidanlsb/mvtag/internal/slugs"
	"github.com/aidanlsb/mvtag/internal/template"
)

// ErrDestinationExists is returned by Move when another file occupies dst.
var ErrDestinationExists = errors.New("destination already exists")

// placeholder replaces characters that cannot appear in a path component.
const placeholder = "_"

// Format is a compiled path template.
type Format struct {
	tmpl    *template.Template
	slugify bool
}

// Compile compiles a path template such as "$albumartist/$album/$track $title".
func Compile(source string, slugify bool) (*Format, error) {
	tmpl, err := template.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("invalid path format: %w", err)
	}
	return &Format{tmpl: tmpl, slugify: slugify}, nil
}

// Destination returns the path of rec under libraryDir, with ext (such as
// ".flac") appended.
func (f *Format) Destination(libraryDir string, rec template.Getter, ext string) string {
	rendered := f.tmpl.Evaluate(sanitizingGetter{rec})

	var parts []string
	for _, part := range strings.Split(rendered, "/") {
		part = sanitizeComponent(part)
		if f.slugify {
			part = slugs.Component(part)
		}
		if part == "" {
			part = placeholder
		}
		parts = append(parts, part)
	}

	rel := filepath.Join(parts...) + strings.ToLower(ext)
	return filepath.Join(libraryDir, rel)
}

// Destination compiles format and returns the destination of rec. See
// Format.Destination.
func Destination(libraryDir, format string, rec template.Getter, ext string, slugify bool) (string, error) {
	f, err := Compile(format, slugify)
	if err != nil {
		return "", err
	}
	return f.Destination(libraryDir, rec, ext), nil
}

// sanitizingGetter strips path separators from field values so that only
// the template's own slashes create directories. An empty albumartist reads
// as the artist.
type sanitizingGetter struct {
	g template.Getter
}

func (s sanitizingGetter) Get(field string) (model.Value, bool) {
	if s.g == nil {
		return model.Value{}, false
	}
	v, ok := s.g.Get(field)
	if field == "albumartist" && (!ok || v.IsEmpty()) {
		v, ok = s.g.Get("artist")
	}
	if !ok {
		return v, false
	}
	if v.IsList() {
		items := v.Strings()
		for i, item := range items {
			items[i] = replaceSeparators(item)
		}
		return model.List(items), true
	}
	s2, _ := v.AsString()
	return model.String(replaceSeparators(s2)), true
}

func replaceSeparators(s string) string {
	return strings.NewReplacer("/", placeholder, "\\", placeholder).Replace(s)
}

func sanitizeComponent(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r == ':' || r == '\\':
			return '_'
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(s)
	return strings.TrimLeft(s, ".")
}

// Move moves src to dst, creating parent directories. Renames across
// devices fall back to copy and remove. Moving a file onto itself is a
// no-op; an existing dst is never overwritten.
func Move(src, dst string) error {
	if filepath.Clean(src) == filepath.Clean(dst) {
		return nil
	}
	if _, err := os.Stat(dst); err == nil {
		return fmt.Errorf("%s: %w", dst, ErrDestinationExists)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	if err := atomicfile.CopyFile(src, dst); err != nil {
		return fmt.Errorf("failed to move %s: %w", src, err)
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("copied %s but failed to remove it: %w", src, err)
	}
	return nil
}
