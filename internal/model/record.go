// Package model defines the records held in an mvtag library.
package model

import (
	"errors"
	"sort"
	"strconv"
)

// Fixed attributes present on every record. They are readable through Get
// but are managed by the library, not by field operations.
const (
	AttrID      = "id"
	AttrPath    = "path"
	AttrAlbumID = "album_id"
)

// Record is the common surface of items and albums.
type Record interface {
	// Get returns a field or fixed attribute value.
	Get(field string) (Value, bool)
	// Set stores a field value.
	Set(field string, value Value)
	// Delete removes a field.
	Delete(field string)
	// Kind returns "item" or "album".
	Kind() string
	// RecordID returns the database ID.
	RecordID() int64
}

// Item is one audio file in the library.
type Item struct {
	ID      int64
	Path    string
	AlbumID int64
	Fields  map[string]Value

	// Mtime is the file modification time (Unix seconds) when the item's
	// tags were last read or written. Zero if unknown.
	Mtime int64
}

// Album groups items that share album-level fields.
type Album struct {
	ID     int64
	Fields map[string]Value
}

// IsFixedAttr reports whether name is a fixed record attribute.
func IsFixedAttr(name string) bool {
	switch name {
	case AttrID, AttrPath, AttrAlbumID:
		return true
	}
	return false
}

func (i *Item) Get(field string) (Value, bool) {
	switch field {
	case AttrID:
		return String(strconv.FormatInt(i.ID, 10)), true
	case AttrPath:
		return String(i.Path), true
	case AttrAlbumID:
		if i.AlbumID == 0 {
			return String(""), false
		}
		return String(strconv.FormatInt(i.AlbumID, 10)), true
	}
	v, ok := i.Fields[field]
	return v, ok
}

func (i *Item) Set(field string, value Value) {
	if i.Fields == nil {
		i.Fields = make(map[string]Value)
	}
	i.Fields[field] = value
}

func (i *Item) Delete(field string) { delete(i.Fields, field) }

func (i *Item) Kind() string { return "item" }

func (i *Item) RecordID() int64 { return i.ID }

func (a *Album) Get(field string) (Value, bool) {
	switch field {
	case AttrID:
		return String(strconv.FormatInt(a.ID, 10)), true
	case AttrPath, AttrAlbumID:
		return String(""), false
	}
	v, ok := a.Fields[field]
	return v, ok
}

func (a *Album) Set(field string, value Value) {
	if a.Fields == nil {
		a.Fields = make(map[string]Value)
	}
	a.Fields[field] = value
}

func (a *Album) Delete(field string) { delete(a.Fields, field) }

func (a *Album) Kind() string { return "album" }

func (a *Album) RecordID() int64 { return a.ID }

// FieldNames returns the sorted names of the stored fields.
func FieldNames(fields map[string]Value) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CloneFields returns a shallow copy of a field map.
func CloneFields(fields map[string]Value) map[string]Value {
	out := make(map[string]Value, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}

// ErrReadOnlyField is returned when a field operation targets a fixed attribute.
var ErrReadOnlyField = errors.New("field is read-only")
