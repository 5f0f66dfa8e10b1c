// Package tagio reads and writes mapped library fields to audio file tags.
package tagio

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aidanlsb/mvtag/internal/model"
	"github.com/aidanlsb/mvtag/internal/tagmap"
)

// ErrUnsupportedFormat is returned for files whose tags cannot be handled.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// FormatOf returns the tag format used by path's extension.
func FormatOf(path string) (tagmap.Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return tagmap.FormatID3, nil
	case ".flac":
		return tagmap.FormatVorbis, nil
	}
	return "", fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
}

// Supported reports whether tags of path can be read and written.
func Supported(path string) bool {
	_, err := FormatOf(path)
	return err == nil
}

// Writer moves field values between the library and file tags.
type Writer struct {
	mapping *tagmap.Mapping
}

// NewWriter returns a Writer using mapping. A nil mapping means
// tagmap.Default().
func NewWriter(mapping *tagmap.Mapping) *Writer {
	if mapping == nil {
		mapping = tagmap.Default()
	}
	return &Writer{mapping: mapping}
}

// Mapping returns the writer's field mapping.
func (w *Writer) Mapping() *tagmap.Mapping {
	return w.mapping
}

// Write stores every mapped field of fields in the file at path. Mapped
// fields that are missing or empty are removed from the file; tags that do
// not belong to a mapped field are kept.
func (w *Writer) Write(path string, fields map[string]model.Value) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}

	entries := w.entries(format, fields)
	switch format {
	case tagmap.FormatID3:
		err = writeID3(path, entries)
	case tagmap.FormatVorbis:
		err = writeVorbis(path, entries)
	}
	if err != nil {
		return fmt.Errorf("failed to write tags to %s: %w", path, err)
	}
	return nil
}

// Read returns the mapped fields stored in the file at path. Tags holding
// several values are returned as lists.
func (w *Writer) Read(path string) (map[string]model.Value, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	var fields map[string]model.Value
	switch format {
	case tagmap.FormatID3:
		fields, err = readID3(path, w.mapping)
	case tagmap.FormatVorbis:
		fields, err = readVorbis(path, w.mapping)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read tags from %s: %w", path, err)
	}
	return fields, nil
}

// entry is one tag key and the values to store under it; no values means
// the key is removed.
type entry struct {
	key    string
	values []string
}

func (w *Writer) entries(format tagmap.Format, fields map[string]model.Value) []entry {
	var out []entry
	for _, name := range w.mapping.Names() {
		key := w.mapping.Fields[name].Key(format)
		if key == "" {
			continue
		}
		var values []string
		if v, ok := fields[name]; ok {
			values = nonEmpty(v.Strings())
		}
		out = append(out, entry{key: key, values: values})
	}
	return out
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// valueOf builds a field value from the strings stored under one tag.
func valueOf(values []string) model.Value {
	if len(values) == 1 {
		return model.String(values[0])
	}
	return model.List(values)
}
