package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/mvtag/internal/multivalue"
	"github.com/aidanlsb/mvtag/internal/tagmap"
	"github.com/aidanlsb/mvtag/internal/ui"
)

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "Show the multi-valued fields and their tag mapping",
	Args:  cobra.NoArgs,
	RunE:  runFields,
}

type fieldInfo struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Delimiter string `json:"delimiter,omitempty"`
	ID3       string `json:"id3,omitempty"`
	Vorbis    string `json:"vorbis,omitempty"`
	MP4       string `json:"mp4,omitempty"`
}

func runFields(cmd *cobra.Command, args []string) error {
	c := getConfig()
	decls, err := c.Declarations()
	if err != nil {
		return handleError(ErrConfigInvalid, err, "")
	}
	tags, err := newTagWriter(c)
	if err != nil {
		return handleCodedError(err)
	}

	infos := describeFields(decls, tags.Mapping())

	if isJSONOutput() {
		outputSuccess(map[string]interface{}{"fields": infos}, &Meta{Count: len(infos)})
		return nil
	}

	display := ui.DisplayFor(out)
	rendered, err := ui.RenderMarkdown(fieldsMarkdown(infos), display.AvailableWidth(ui.MarkdownRenderMargin))
	if err != nil {
		return handleError(ErrInternal, err, "")
	}
	fmt.Fprint(out, rendered)
	return nil
}

func describeFields(decls multivalue.Declarations, mapping *tagmap.Mapping) []fieldInfo {
	infos := make([]fieldInfo, 0, len(decls))
	for _, name := range decls.Names() {
		f, _ := decls.Lookup(name)
		info := fieldInfo{Name: name, Kind: f.Kind.String(), Delimiter: f.Delimiter}
		if fm, ok := mapping.Lookup(name); ok {
			info.ID3 = fm.ID3
			info.Vorbis = fm.Vorbis
			info.MP4 = fm.MP4
		}
		infos = append(infos, info)
	}
	return infos
}

func fieldsMarkdown(infos []fieldInfo) string {
	var b strings.Builder
	b.WriteString("# Multi-value fields\n\n")
	b.WriteString("Use `field+=value` to add and `field-=value` to remove a value.\n\n")
	b.WriteString("| Field | Kind | Delimiter | ID3 | Vorbis | MP4 |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, f := range infos {
		delim := ""
		if f.Delimiter != "" {
			delim = "`" + f.Delimiter + "`"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
			f.Name, f.Kind, delim, cell(f.ID3), cell(f.Vorbis), cell(f.MP4))
	}
	return b.String()
}

func cell(s string) string {
	if s == "" {
		return "-"
	}
	return strings.ReplaceAll(s, "|", "\\|")
}

func init() {
	rootCmd.AddCommand(fieldsCmd)
}
