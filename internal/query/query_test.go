package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidanlsb/mvtag/internal/model"
)

func testItem() *model.Item {
	return &model.Item{
		ID:   4,
		Path: "/music/Eric Dolphy/Out to Lunch/01 Hat and Beard.flac",
		Fields: map[string]model.Value{
			"title":   model.String("Hat and Beard"),
			"artist":  model.String("Eric Dolphy"),
			"artists": model.List([]string{"Eric Dolphy", "Freddie Hubbard"}),
			"album":   model.String("Out to Lunch"),
			"genre":   model.String("Jazz,Avant-Garde"),
			"year":    model.String("1964"),
			"status":  model.String("active"),
		},
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name  string
		terms []string
		want  bool
	}{
		{"empty query", nil, true},
		{"bare term in title", []string{"beard"}, true},
		{"bare term in path", []string{"flac"}, true},
		{"bare term no match", []string{"coltrane"}, false},
		{"bare term ignores non-default fields", []string{"active"}, false},
		{"field substring", []string{"status:act"}, true},
		{"field substring case-insensitive", []string{"artist:ERIC"}, true},
		{"field substring no match", []string{"status:inactive"}, false},
		{"list any element", []string{"artists:hubbard"}, true},
		{"exact", []string{"title:=Hat and Beard"}, true},
		{"exact is case-sensitive", []string{"title:=hat and beard"}, false},
		{"exact on list element", []string{"artists:=Freddie Hubbard"}, true},
		{"regex", []string{"title::^Hat"}, true},
		{"regex no match", []string{"title::^Beard"}, false},
		{"regex on default fields", []string{"::Lunch$"}, true},
		{"range inside", []string{"year:1960..1970"}, true},
		{"range outside", []string{"year:1970..1980"}, false},
		{"range open end", []string{"year:1964.."}, true},
		{"range open start", []string{"year:..1963"}, false},
		{"range on id", []string{"id:1..5"}, true},
		{"path glob", []string{"path:/music/*/Out to Lunch/*.flac"}, true},
		{"path glob does not cross separators", []string{"path:/music/*.flac"}, false},
		{"path glob double star", []string{"path:/music/**.flac"}, true},
		{"path substring", []string{"path:dolphy"}, true},
		{"and", []string{"artist:eric", "year:1964"}, true},
		{"and fails", []string{"artist:eric", "year:1965"}, false},
		{"or", []string{"year:1965", ",", "artist:eric"}, true},
		{"or both fail", []string{"year:1965", ",", "artist:monk"}, false},
		{"negate caret", []string{"^genre:rock"}, true},
		{"negate dash", []string{"-genre:jazz"}, false},
		{"negate bare", []string{"^coltrane"}, true},
		{"lone dash is literal", []string{"-"}, true},
		{"missing field empty pattern", []string{"mood:"}, true},
		{"missing field exact empty", []string{"mood:="}, true},
		{"missing field value", []string{"mood:calm"}, false},
		{"unknown prefix with colon stays bare", []string{"a b:c"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Parse(tt.terms)
			require.NoError(t, err)
			assert.Equal(t, tt.want, q.Match(testItem()), "Match(%v)", tt.terms)
		})
	}
}

func TestMatchAlbum(t *testing.T) {
	album := &model.Album{ID: 2, Fields: map[string]model.Value{
		"album":        model.String("Blue"),
		"albumartists": model.List([]string{"Joni Mitchell"}),
	}}

	q, err := Parse([]string{"albumartists:joni", "album:=Blue"})
	require.NoError(t, err)
	assert.True(t, q.Match(album))

	q, err = Parse([]string{"path:blue"})
	require.NoError(t, err)
	assert.False(t, q.Match(album), "albums have no path")
}

func TestParseErrors(t *testing.T) {
	tests := []string{
		"title::(unclosed",
		"year:2000..1990",
		"path:/music/[",
	}
	for _, term := range tests {
		t.Run(term, func(t *testing.T) {
			_, err := Parse([]string{term})
			require.Error(t, err)
			assert.Contains(t, err.Error(), term)
		})
	}
}

func TestParseTerm(t *testing.T) {
	term, err := ParseTerm("^Genre:Rock")
	require.NoError(t, err)
	assert.Equal(t, "genre", term.Field)
	assert.True(t, term.Negate)
	assert.Equal(t, "^Genre:Rock", term.Raw)

	term, err = ParseTerm("title:...")
	require.NoError(t, err)
	assert.IsType(t, substringPredicate{}, term.pred)
}

func TestQueryHelpers(t *testing.T) {
	q, err := Parse([]string{",", "a", ",", ","})
	require.NoError(t, err)
	assert.False(t, q.IsEmpty())
	assert.Len(t, q.Terms(), 1)
	assert.Equal(t, ", a , ,", q.String())

	empty, err := Parse([]string{","})
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())
	assert.True(t, empty.Match(testItem()), "separator-only query matches everything")
}
