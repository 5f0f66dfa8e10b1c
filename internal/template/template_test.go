package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidanlsb/mvtag/internal/model"
)

func testItem() *model.Item {
	return &model.Item{
		ID:   7,
		Path: "/music/eric/classic/01.flac",
		Fields: map[string]model.Value{
			"title":   model.String("Blue Hour"),
			"artist":  model.String("Eric"),
			"artists": model.List([]string{"Eric", "Jamel"}),
			"track":   model.String("1"),
			"genre":   model.String(""),
		},
	}
}

func TestEvaluate(t *testing.T) {
	item := testItem()

	tests := []struct {
		name     string
		src      string
		expected string
	}{
		{"literal", "Rock", "Rock"},
		{"empty", "", ""},
		{"field", "$artist", "Eric"},
		{"braced field", "${artist}s", "Erics"},
		{"list field", "$artists", "Eric; Jamel"},
		{"missing field", "[$missing]", "[]"},
		{"fixed attr", "$id", "7"},
		{"dollar escape", "$$5", "$5"},
		{"lone dollar", "cost $", "cost $"},
		{"mixed", "$artist - $title", "Eric - Blue Hour"},
		{"upper", "%upper{$title}", "BLUE HOUR"},
		{"lower", "%lower{$artist}", "eric"},
		{"title", "%title{blue hour}", "Blue Hour"},
		{"left", "%left{$title,4}", "Blue"},
		{"right", "%right{$title,4}", "Hour"},
		{"left bad count", "%left{$title,x}", "Blue Hour"},
		{"if true", "%if{$track,yes,no}", "yes"},
		{"if false", "%if{$genre,yes,no}", "no"},
		{"if zero", "%if{0,yes,no}", "no"},
		{"if without else", "%if{$genre,yes}", ""},
		{"ifdef set", "%ifdef{artist,has}", "has"},
		{"ifdef empty", "%ifdef{genre,has,none}", "none"},
		{"nested", "%upper{%left{$artist,1}}", "E"},
		{"escaped comma", `%upper{a\,b}`, "A,B"},
		{"percent literal", "100%", "100%"},
		{"percent no call", "%upper", "%upper"},
		{"top-level braces are literal", "a}b,c", "a}b,c"},
		{"unicode", "Beyoncé $artist", "Beyoncé Eric"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := Compile(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, tmpl.Evaluate(item))
		})
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []string{
		"%nope{x}",
		"%upper{unclosed",
		"%upper{a,b}",
		"%if{a}",
		"${unclosed",
		"${}",
	}

	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			_, err := Compile(src)
			var syntaxErr *SyntaxError
			require.ErrorAs(t, err, &syntaxErr)
		})
	}
}

func TestIsLiteral(t *testing.T) {
	assert.True(t, MustCompile("Rock").IsLiteral(), "plain text")
	assert.True(t, MustCompile("").IsLiteral(), "empty template")
	assert.False(t, MustCompile("$genre").IsLiteral(), "field reference")
	assert.False(t, MustCompile("%lower{X}").IsLiteral(), "function call")
}

func TestEvaluateNilGetter(t *testing.T) {
	tmpl := MustCompile("[$artist]%ifdef{artist,x,y}")
	assert.Equal(t, "[]y", tmpl.Evaluate(nil))
}
