package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/mvtag/internal/logging"
	"github.com/aidanlsb/mvtag/internal/model"
	"github.com/aidanlsb/mvtag/internal/pathfmt"
	"github.com/aidanlsb/mvtag/internal/ui"
)

var (
	modifyAlbum     bool
	modifyFormat    string
	modifyYes       bool
	modifyNoInherit bool
	modifySync      syncFlags
)

var multivalueCmd = &cobra.Command{
	Use:     "multivalue [query] <field+=value|field-=value|field=value|field!>...",
	Aliases: []string{"multi"},
	Short:   "Add or remove values of multi-valued fields",
	Long: `Change fields of the items (or albums with -a) matched by the query.

  field+=value   add value to a multi-valued field if not present
  field-=value   remove value from a multi-valued field
  field=value    replace the field
  field!         delete the field

List fields (artists, albumartists, mb_artistids, ...) hold real lists.
String fields declared under [multivalue.string_fields] hold values joined
by their configured delimiter. Values may use $field references and
%functions{...}.`,
	Example: `  mvtag multivalue artist:Dolphy genre+=Jazz
  mvtag multi -a album:Blue artists-=Guest artists+="Joni Mitchell"
  mvtag multi title:Intro comments!`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMultivalue,
}

func runMultivalue(cmd *cobra.Command, args []string) error {
	c := getConfig()
	logger := logging.FromContext(cmd.Context())

	decls, err := c.Declarations()
	if err != nil {
		return handleError(ErrConfigInvalid, err, "")
	}

	req, err := newModifyRequest(args, decls, modifyFormat, modifyAlbum)
	if err != nil {
		return handleCodedError(err)
	}
	logger.Debug("parsed arguments", "query", req.query.String(), "fields", req.plan.Fields())

	write, move := modifySync.resolve(c)
	tags, err := newTagWriter(c)
	if err != nil {
		return handleCodedError(err)
	}
	paths, err := pathfmt.Compile(c.Paths.Default, c.Paths.Slugify)
	if err != nil {
		return handleError(ErrConfigInvalid, err, "")
	}

	lib, err := openLibrary(c)
	if err != nil {
		return handleCodedError(err)
	}
	defer lib.Close()

	m := &modifier{
		lib:       lib,
		tags:      tags,
		paths:     paths,
		directory: c.Directory,
		logger:    logger,
		write:     write,
		move:      move,
		inherit:   !modifyNoInherit,
	}

	display := ui.DisplayFor(out)
	prompt := newPrompter(cmd.InOrStdin(), out)
	verb := modifyVerb(write, move)

	confirm := func(matched int, proposals []*proposal) []*proposal {
		if isJSONOutput() {
			if modifyYes {
				return proposals
			}
			return nil
		}

		noun := "item"
		if modifyAlbum {
			noun = "album"
		}
		fmt.Fprintf(out, "Modifying %s.\n", ui.Count(matched, noun, noun+"s"))
		if len(proposals) == 0 {
			fmt.Fprintln(out, "No changes to make.")
			return nil
		}
		for _, p := range proposals {
			fmt.Fprint(out, ui.RenderChanges(p.Label, p.Changes, display.TermWidth))
		}

		if modifyYes {
			return proposals
		}
		if !shouldPromptForConfirm() {
			fmt.Fprintln(out, ui.Hint("\nRun with --yes to apply changes."))
			return nil
		}
		return confirmProposals(prompt, verb, proposals, display.TermWidth)
	}

	res, err := m.run(req, confirm)
	if err != nil {
		return handleCodedError(err)
	}

	if isJSONOutput() {
		outputModifyJSON(res)
		return nil
	}

	for _, w := range res.Warnings {
		fmt.Fprintln(out, ui.Warning(w.Message))
	}
	if len(res.Applied) > 0 {
		fmt.Fprintln(out, ui.Successf("Modified %s", ui.Count(len(res.Applied), "record", "records")))
	}
	return nil
}

func modifyVerb(write, move bool) string {
	switch {
	case write && move:
		return "modify, write tags and move"
	case write:
		return "modify and write tags"
	case move:
		return "modify and move"
	}
	return "modify"
}

// changeJSON is the JSON form of one field change.
type changeJSON struct {
	Field   string       `json:"field"`
	Old     *model.Value `json:"old,omitempty"`
	New     *model.Value `json:"new,omitempty"`
	Deleted bool         `json:"deleted,omitempty"`
}

type proposalJSON struct {
	ID      int64        `json:"id"`
	Kind    string       `json:"kind"`
	Label   string       `json:"label"`
	Changes []changeJSON `json:"changes"`
}

func proposalsJSON(proposals []*proposal) []proposalJSON {
	list := make([]proposalJSON, 0, len(proposals))
	for _, p := range proposals {
		pj := proposalJSON{ID: p.Record.RecordID(), Kind: p.Record.Kind(), Label: p.Label}
		for _, c := range p.Changes {
			cj := changeJSON{Field: c.Field, Deleted: c.Deleted}
			if c.HadOld {
				old := c.Old
				cj.Old = &old
			}
			if !c.Deleted {
				next := c.New
				cj.New = &next
			}
			pj.Changes = append(pj.Changes, cj)
		}
		list = append(list, pj)
	}
	return list
}

func outputModifyJSON(res *modifyResult) {
	preview := len(res.Proposals) > 0 && len(res.Applied) == 0
	warnings := res.Warnings
	if preview {
		warnings = append(warnings, Warning{
			Code:    WarnConfirmationRequired,
			Message: "changes were not applied; run with --yes to apply them",
		})
	}

	data := map[string]interface{}{
		"preview": preview,
		"matched": res.Matched,
		"changes": proposalsJSON(res.Proposals),
		"applied": len(res.Applied),
		"written": res.Written,
		"moved":   res.Moved,
	}
	outputSuccessWithWarnings(data, warnings, &Meta{Count: len(res.Applied)})
}

func init() {
	multivalueCmd.Flags().BoolVarP(&modifyAlbum, "album", "a", false, "Modify albums instead of items")
	multivalueCmd.Flags().StringVarP(&modifyFormat, "format", "f", "", "Template used to print each changed record")
	multivalueCmd.Flags().BoolVarP(&modifyYes, "yes", "y", false, "Apply changes without asking")
	multivalueCmd.Flags().BoolVarP(&modifyNoInherit, "noinherit", "I", false, "Don't copy album field changes to the album's items")
	modifySync.register(multivalueCmd.Flags())
	modifySync.markExclusive(multivalueCmd)
	rootCmd.AddCommand(multivalueCmd)
}
