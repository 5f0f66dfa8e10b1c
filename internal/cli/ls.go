package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/mvtag/internal/model"
	"github.com/aidanlsb/mvtag/internal/query"
	"github.com/aidanlsb/mvtag/internal/ui"
)

var (
	lsAlbum  bool
	lsFormat string
)

var lsCmd = &cobra.Command{
	Use:     "ls [query...]",
	Aliases: []string{"list"},
	Short:   "List items or albums matching a query",
	Long: `List library items (or albums with -a) matched by the query.

Query terms: "word" matches title, artist, album and others; "field:value"
matches a substring of one field; "field:=value" is exact; "field::re" is a
regular expression; "year:1990..1999" is a numeric range; "path:/music/*"
is a glob. Prefix a term with - or ^ to negate it, and separate
alternatives with a lone ",".`,
	Example: `  mvtag ls artist:Dolphy
  mvtag ls -a genre:Jazz -f '$albumartist / $album ($year)'`,
	RunE: runLs,
}

// recordJSON is the JSON form of a library record.
type recordJSON struct {
	ID      int64                  `json:"id"`
	Kind    string                 `json:"kind"`
	Path    string                 `json:"path,omitempty"`
	AlbumID int64                  `json:"album_id,omitempty"`
	Label   string                 `json:"label"`
	Items   *int                   `json:"items,omitempty"`
	Fields  map[string]model.Value `json:"fields"`
}

func runLs(cmd *cobra.Command, args []string) error {
	q, err := query.Parse(args)
	if err != nil {
		return handleError(ErrQueryInvalid, err, "")
	}
	label, err := labelTemplate(lsFormat, lsAlbum)
	if err != nil {
		return handleError(ErrInvalidInput, err, "")
	}

	lib, err := openLibrary(getConfig())
	if err != nil {
		return handleCodedError(err)
	}
	defer lib.Close()

	var records []recordJSON
	if lsAlbum {
		albums, err := lib.Albums(q)
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		ids := make([]int64, len(albums))
		for i, a := range albums {
			ids[i] = a.ID
		}
		counts, err := lib.AlbumItemCounts(ids)
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		for _, a := range albums {
			n := counts[a.ID]
			records = append(records, recordJSON{ID: a.ID, Kind: a.Kind(), Label: label.Evaluate(a), Items: &n, Fields: a.Fields})
		}
	} else {
		items, err := lib.Items(q)
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		for _, i := range items {
			records = append(records, recordJSON{ID: i.ID, Kind: i.Kind(), Path: i.Path, AlbumID: i.AlbumID, Label: label.Evaluate(i), Fields: i.Fields})
		}
	}

	if isJSONOutput() {
		if records == nil {
			records = []recordJSON{}
		}
		outputSuccess(map[string]interface{}{"records": records}, &Meta{Count: len(records)})
		return nil
	}

	// An explicit format prints exactly what was asked for.
	if lsFormat != "" {
		for _, r := range records {
			fmt.Fprintln(out, r.Label)
		}
		return nil
	}

	display := ui.DisplayFor(out)
	columns := 2
	if lsAlbum {
		columns = 3
	}
	table := ui.NewTable(columns)
	table.SetMaxWidth(display.TermWidth)
	for _, r := range records {
		row := []string{strconv.FormatInt(r.ID, 10), r.Label}
		if r.Items != nil {
			row = append(row, ui.Count(*r.Items, "item", "items"))
		}
		table.AddRow(row...)
	}
	fmt.Fprint(out, table.String())
	return nil
}

func init() {
	lsCmd.Flags().BoolVarP(&lsAlbum, "album", "a", false, "List albums instead of items")
	lsCmd.Flags().StringVarP(&lsFormat, "format", "f", "", "Template used to print each record")
	rootCmd.AddCommand(lsCmd)
}
