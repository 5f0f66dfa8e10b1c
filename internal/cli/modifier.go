package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aidanlsb/mvtag/internal/config"
	"github.com/aidanlsb/mvtag/internal/library"
	"github.com/aidanlsb/mvtag/internal/model"
	"github.com/aidanlsb/mvtag/internal/multivalue"
	"github.com/aidanlsb/mvtag/internal/pathfmt"
	"github.com/aidanlsb/mvtag/internal/query"
	"github.com/aidanlsb/mvtag/internal/tagio"
	"github.com/aidanlsb/mvtag/internal/tagmap"
	"github.com/aidanlsb/mvtag/internal/template"
)

// Default record labels for previews and listings.
const (
	defaultItemFormat  = "$artist - $album - $title"
	defaultAlbumFormat = "$albumartist - $album"
)

// modifyRequest is a parsed multivalue invocation. Building one checks
// every argument, so errors surface before the library is opened.
type modifyRequest struct {
	query *query.Query
	plan  *multivalue.Plan
	label *template.Template
	album bool
}

func newModifyRequest(tokens []string, decls multivalue.Declarations, format string, album bool) (*modifyRequest, error) {
	queryTerms, ops, err := multivalue.Classify(tokens, decls)
	if err != nil {
		return nil, err
	}
	if len(ops) == 0 {
		return nil, invalidInput("no modifications specified")
	}

	plan, err := multivalue.NewPlan(ops, decls)
	if err != nil {
		return nil, err
	}

	q, err := query.Parse(queryTerms)
	if err != nil {
		return nil, withCode(ErrQueryInvalid, err, "")
	}

	label, err := labelTemplate(format, album)
	if err != nil {
		return nil, err
	}

	return &modifyRequest{query: q, plan: plan, label: label, album: album}, nil
}

func labelTemplate(format string, album bool) (*template.Template, error) {
	if format == "" {
		format = defaultItemFormat
		if album {
			format = defaultAlbumFormat
		}
	}
	tmpl, err := template.Compile(format)
	if err != nil {
		return nil, fmt.Errorf("invalid format: %w", err)
	}
	return tmpl, nil
}

// proposal holds the changes planned for one record.
type proposal struct {
	Record  model.Record
	Label   string
	Changes []multivalue.Change
}

// confirmFunc is shown the matched record count and the proposals and
// returns the subset to apply. It is called even when nothing would change.
type confirmFunc func(matched int, proposals []*proposal) []*proposal

// modifyResult summarizes a multivalue run.
type modifyResult struct {
	Matched   int
	Proposals []*proposal
	Applied   []*proposal
	Written   int
	Moved     int
	Warnings  []Warning
}

func (r *modifyResult) warn(code, path string, err error) {
	r.Warnings = append(r.Warnings, Warning{Code: code, Message: err.Error(), Path: path})
}

// modifier applies requests to a library and the files it tracks.
type modifier struct {
	lib       *library.Library
	tags      *tagio.Writer
	paths     *pathfmt.Format
	directory string
	logger    *slog.Logger

	write   bool
	move    bool
	inherit bool
}

func (m *modifier) run(req *modifyRequest, confirm confirmFunc) (*modifyResult, error) {
	records, err := m.records(req)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, &NoMatchError{Album: req.album}
	}

	res := &modifyResult{Matched: len(records)}
	for _, rec := range records {
		changes := req.plan.Propose(rec)
		if len(changes) == 0 {
			continue
		}
		res.Proposals = append(res.Proposals, &proposal{
			Record:  rec,
			Label:   req.label.Evaluate(rec),
			Changes: changes,
		})
	}
	m.logger.Debug("proposed changes", "matched", res.Matched, "changed", len(res.Proposals))

	accepted := confirm(res.Matched, res.Proposals)
	if len(accepted) == 0 {
		return res, nil
	}

	if m.move && m.directory == "" {
		res.warn(WarnMoveSkipped, "", errors.New("files not moved: no 'directory' configured"))
		m.move = false
	}

	var files []*model.Item
	err = m.lib.Transaction(func(tx *library.Tx) error {
		for _, p := range accepted {
			synced, err := m.apply(tx, p)
			if err != nil {
				return err
			}
			files = append(files, synced...)
		}
		return nil
	})
	if err != nil {
		return nil, withCode(ErrDatabaseError, fmt.Errorf("failed to store changes: %w", err), "")
	}
	res.Applied = accepted

	// Files are only touched once the new values are committed.
	if err := m.syncFiles(files, res); err != nil {
		return res, withCode(ErrDatabaseError, fmt.Errorf("failed to store file locations: %w", err), "")
	}
	return res, nil
}

func (m *modifier) records(req *modifyRequest) ([]model.Record, error) {
	var out []model.Record
	if req.album {
		albums, err := m.lib.Albums(req.query)
		if err != nil {
			return nil, withCode(ErrDatabaseError, err, "")
		}
		for _, a := range albums {
			out = append(out, a)
		}
		return out, nil
	}

	items, err := m.lib.Items(req.query)
	if err != nil {
		return nil, withCode(ErrDatabaseError, err, "")
	}
	for _, i := range items {
		out = append(out, i)
	}
	return out, nil
}

// apply stores one record's changes and returns the items whose files
// need syncing.
func (m *modifier) apply(tx *library.Tx, p *proposal) ([]*model.Item, error) {
	multivalue.Apply(p.Record, p.Changes)

	var files []*model.Item
	switch rec := p.Record.(type) {
	case *model.Item:
		if err := tx.StoreItem(rec); err != nil {
			return nil, err
		}
		files = []*model.Item{rec}
	case *model.Album:
		if _, err := tx.StoreAlbum(rec, multivalue.ChangedFields(p.Changes), m.inherit); err != nil {
			return nil, err
		}
		if m.write || m.move {
			items, err := tx.AlbumItems(rec.ID)
			if err != nil {
				return nil, err
			}
			files = items
		}
	}
	m.logger.Debug("stored record", "kind", p.Record.Kind(), "id", p.Record.RecordID(), "fields", multivalue.ChangedFields(p.Changes))

	if !m.write && !m.move {
		return nil, nil
	}
	return files, nil
}

// syncFiles writes tags and moves files, then records the new paths and
// mtimes.
func (m *modifier) syncFiles(files []*model.Item, res *modifyResult) error {
	var changed []*model.Item
	for _, item := range files {
		path, mtime := item.Path, item.Mtime
		m.sync(item, res)
		if item.Path != path || item.Mtime != mtime {
			changed = append(changed, item)
		}
	}
	if len(changed) == 0 {
		return nil
	}
	return m.lib.Transaction(func(tx *library.Tx) error {
		for _, item := range changed {
			if err := tx.StoreItem(item); err != nil {
				return err
			}
		}
		return nil
	})
}

// sync writes item's tags and moves its file. Failures become warnings.
func (m *modifier) sync(item *model.Item, res *modifyResult) {
	if m.write {
		err := m.tags.Write(item.Path, item.Fields)
		switch {
		case errors.Is(err, tagio.ErrUnsupportedFormat):
			res.warn(WarnUnsupportedFormat, item.Path, err)
		case err != nil:
			m.logger.Warn("tag write failed", "path", item.Path, "error", err)
			res.warn(WarnTagWriteFailed, item.Path, err)
		default:
			res.Written++
			if info, err := os.Stat(item.Path); err == nil {
				item.Mtime = info.ModTime().Unix()
			}
		}
	}

	if m.move {
		dst := m.paths.Destination(m.directory, item, filepath.Ext(item.Path))
		if dst == item.Path {
			return
		}
		if err := pathfmt.Move(item.Path, dst); err != nil {
			m.logger.Warn("move failed", "path", item.Path, "dest", dst, "error", err)
			res.warn(WarnMoveFailed, item.Path, err)
			return
		}
		m.logger.Info("moved file", "from", item.Path, "to", dst)
		item.Path = dst
		res.Moved++
	}
}

// newTagWriter builds the tag writer from the configured mapping.
func newTagWriter(c *config.Config) (*tagio.Writer, error) {
	mapping := tagmap.Default()
	if c.FieldsFile != "" {
		loaded, err := tagmap.LoadFile(c.FieldsFile)
		if err != nil {
			return nil, withCode(ErrConfigInvalid, err, "")
		}
		mapping = loaded
	}
	if c.Multivalue.FixMediaFields {
		mapping = mapping.WithGroupingWorkFix()
	}
	return tagio.NewWriter(mapping), nil
}

// openLibrary opens the configured library database.
func openLibrary(c *config.Config) (*library.Library, error) {
	lib, err := library.Open(c.Library)
	if err != nil {
		return nil, withCode(ErrDatabaseError, err, "Run 'mvtag init' to create the library")
	}
	return lib, nil
}
