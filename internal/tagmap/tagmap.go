// Package tagmap maps library field names to the tag keys each file format
// stores them under.
package tagmap

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format identifies a tag container.
type Format string

const (
	FormatID3    Format = "id3"
	FormatVorbis Format = "vorbis"
	FormatMP4    Format = "mp4"
)

// ID3 keys with this prefix are stored as TXXX user text frames.
const ID3UserTextPrefix = "TXXX:"

// FieldMapping holds a field's tag key per format. An empty key means the
// field is not stored in that format.
type FieldMapping struct {
	ID3    string `yaml:"id3,omitempty"`
	Vorbis string `yaml:"vorbis,omitempty"`
	MP4    string `yaml:"mp4,omitempty"`
}

// Key returns the tag key for format.
func (m FieldMapping) Key(format Format) string {
	switch format {
	case FormatID3:
		return m.ID3
	case FormatVorbis:
		return m.Vorbis
	case FormatMP4:
		return m.MP4
	}
	return ""
}

// Mapping maps field names to their tag keys.
type Mapping struct {
	Fields map[string]FieldMapping `yaml:"fields"`
}

func itunes(name string) string { return "----:com.apple.iTunes:" + name }

// Default returns the built-in mapping for the library's standard fields.
// grouping uses TIT1 for ID3, which is the historic (and wrong) frame; see
// WithGroupingWorkFix.
func Default() *Mapping {
	return &Mapping{Fields: map[string]FieldMapping{
		"title":               {ID3: "TIT2", Vorbis: "TITLE", MP4: "©nam"},
		"artist":              {ID3: "TPE1", Vorbis: "ARTIST", MP4: "©ART"},
		"artists":             {ID3: "TXXX:ARTISTS", Vorbis: "ARTISTS", MP4: itunes("ARTISTS")},
		"artist_sort":         {ID3: "TSOP", Vorbis: "ARTISTSORT", MP4: "soar"},
		"artists_sort":        {ID3: "TXXX:ARTISTSSORT", Vorbis: "ARTISTSSORT", MP4: itunes("ARTISTSSORT")},
		"artists_credit":      {ID3: "TXXX:ARTISTSCREDIT", Vorbis: "ARTISTSCREDIT", MP4: itunes("ARTISTSCREDIT")},
		"album":               {ID3: "TALB", Vorbis: "ALBUM", MP4: "©alb"},
		"albumartist":         {ID3: "TPE2", Vorbis: "ALBUMARTIST", MP4: "aART"},
		"albumartists":        {ID3: "TXXX:ALBUMARTISTS", Vorbis: "ALBUMARTISTS", MP4: itunes("ALBUMARTISTS")},
		"albumartist_sort":    {ID3: "TSO2", Vorbis: "ALBUMARTISTSORT", MP4: "soaa"},
		"albumartists_sort":   {ID3: "TXXX:ALBUMARTISTSSORT", Vorbis: "ALBUMARTISTSSORT", MP4: itunes("ALBUMARTISTSSORT")},
		"albumartists_credit": {ID3: "TXXX:ALBUMARTISTSCREDIT", Vorbis: "ALBUMARTISTSCREDIT", MP4: itunes("ALBUMARTISTSCREDIT")},
		"albumtype":           {ID3: "TXXX:MusicBrainz Album Type", Vorbis: "RELEASETYPE", MP4: itunes("MusicBrainz Album Type")},
		"genre":               {ID3: "TCON", Vorbis: "GENRE", MP4: "©gen"},
		"composer":            {ID3: "TCOM", Vorbis: "COMPOSER", MP4: "©wrt"},
		"grouping":            {ID3: "TIT1", Vorbis: "GROUPING", MP4: "©grp"},
		"year":                {ID3: "TDRC", Vorbis: "DATE", MP4: "©day"},
		"track":               {ID3: "TRCK", Vorbis: "TRACKNUMBER", MP4: "trkn"},
		"disc":                {ID3: "TPOS", Vorbis: "DISCNUMBER", MP4: "disk"},
		"label":               {ID3: "TPUB", Vorbis: "LABEL", MP4: itunes("LABEL")},
		"mood":                {ID3: "TMOO", Vorbis: "MOOD", MP4: itunes("MOOD")},
		"bpm":                 {ID3: "TBPM", Vorbis: "BPM", MP4: "tmpo"},
		"comments":            {ID3: "COMM", Vorbis: "COMMENT", MP4: "©cmt"},
		"mb_artistids":        {ID3: "TXXX:MusicBrainz Artist Id", Vorbis: "MUSICBRAINZ_ARTISTID", MP4: itunes("MusicBrainz Artist Id")},
		"mb_albumartistids":   {ID3: "TXXX:MusicBrainz Album Artist Id", Vorbis: "MUSICBRAINZ_ALBUMARTISTID", MP4: itunes("MusicBrainz Album Artist Id")},
	}}
}

// Clone returns a deep copy of m.
func (m *Mapping) Clone() *Mapping {
	out := &Mapping{Fields: make(map[string]FieldMapping, len(m.Fields))}
	for name, fm := range m.Fields {
		out.Fields[name] = fm
	}
	return out
}

// WithGroupingWorkFix returns a copy of m where grouping is stored in the
// dedicated grouping frames and a work field takes over TIT1.
func (m *Mapping) WithGroupingWorkFix() *Mapping {
	out := m.Clone()
	out.Fields["grouping"] = FieldMapping{ID3: "GRP1", Vorbis: "GROUPING", MP4: "©grp"}
	out.Fields["work"] = FieldMapping{ID3: "TIT1", Vorbis: "WORK", MP4: "©wrk"}
	return out
}

// Lookup returns the mapping for field.
func (m *Mapping) Lookup(field string) (FieldMapping, bool) {
	fm, ok := m.Fields[field]
	return fm, ok
}

// Names returns the mapped field names, sorted.
func (m *Mapping) Names() []string {
	names := make([]string, 0, len(m.Fields))
	for name := range m.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FieldForKey returns the field stored under key in format. Vorbis keys
// compare case-insensitively.
func (m *Mapping) FieldForKey(format Format, key string) (string, bool) {
	for _, name := range m.Names() {
		k := m.Fields[name].Key(format)
		if k == "" {
			continue
		}
		if k == key || (format == FormatVorbis && strings.EqualFold(k, key)) {
			return name, true
		}
	}
	return "", false
}

// LoadFile reads YAML overrides from path and merges them over Default().
// Non-empty keys in the file replace the default keys of that field.
func LoadFile(path string) (*Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fields file %s: %w", path, err)
	}

	var overrides Mapping
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse fields file %s: %w", path, err)
	}

	m := Default()
	m.Merge(&overrides)
	return m, nil
}

// Merge applies the non-empty keys of other over m.
func (m *Mapping) Merge(other *Mapping) {
	if other == nil {
		return
	}
	if m.Fields == nil {
		m.Fields = make(map[string]FieldMapping)
	}
	for name, o := range other.Fields {
		fm := m.Fields[name]
		if o.ID3 != "" {
			fm.ID3 = o.ID3
		}
		if o.Vorbis != "" {
			fm.Vorbis = o.Vorbis
		}
		if o.MP4 != "" {
			fm.MP4 = o.MP4
		}
		m.Fields[name] = fm
	}
}
