package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/mvtag/internal/atomicfile"
	"github.com/aidanlsb/mvtag/internal/library"
	"github.com/aidanlsb/mvtag/internal/logging"
	"github.com/aidanlsb/mvtag/internal/model"
	"github.com/aidanlsb/mvtag/internal/multivalue"
	"github.com/aidanlsb/mvtag/internal/pathfmt"
	"github.com/aidanlsb/mvtag/internal/tagio"
	"github.com/aidanlsb/mvtag/internal/ui"
)

var importCopy bool

var importCmd = &cobra.Command{
	Use:   "import <path>...",
	Short: "Add MP3 and FLAC files to the library",
	Long: `Read the tags of MP3 and FLAC files and add them to the library.

Directories are scanned recursively. Items are grouped into albums by
albumartist (or artist) and album. Files already in the library are
skipped. With --copy, files are copied under the configured directory
using the path format and the copies are imported.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

type importResult struct {
	Imported int       `json:"imported"`
	Skipped  int       `json:"skipped"`
	Albums   int       `json:"albums_created"`
	Warnings []Warning `json:"-"`
}

func (r *importResult) warn(code, path string, err error) {
	r.Warnings = append(r.Warnings, Warning{Code: code, Message: err.Error(), Path: path})
}

type importer struct {
	tags      *tagio.Writer
	paths     *pathfmt.Format
	directory string
	copy      bool
	logger    *slog.Logger
}

func runImport(cmd *cobra.Command, args []string) error {
	c := getConfig()
	res := &importResult{}

	files, err := collectFiles(args, res)
	if err != nil {
		return handleCodedError(err)
	}

	tags, err := newTagWriter(c)
	if err != nil {
		return handleCodedError(err)
	}
	paths, err := pathfmt.Compile(c.Paths.Default, c.Paths.Slugify)
	if err != nil {
		return handleError(ErrConfigInvalid, err, "")
	}
	if importCopy && c.Directory == "" {
		return handleError(ErrConfigInvalid, errors.New("import --copy needs 'directory' in config"), "")
	}

	lib, err := openLibrary(c)
	if err != nil {
		return handleCodedError(err)
	}
	defer lib.Close()

	im := &importer{
		tags:      tags,
		paths:     paths,
		directory: c.Directory,
		copy:      importCopy,
		logger:    logging.FromContext(cmd.Context()),
	}

	progress := ui.NewProgress(cmd.ErrOrStderr(), "Importing", len(files))
	err = lib.Transaction(func(tx *library.Tx) error {
		for _, path := range files {
			if err := im.importFile(tx, path, res); err != nil {
				return err
			}
			progress.Increment()
		}
		return nil
	})
	progress.Done()
	if err != nil {
		return handleError(ErrDatabaseError, fmt.Errorf("import failed: %w", err), "")
	}

	if isJSONOutput() {
		outputSuccessWithWarnings(res, res.Warnings, &Meta{Count: res.Imported})
		return nil
	}
	for _, w := range res.Warnings {
		fmt.Fprintln(out, ui.Warning(w.Message))
	}
	fmt.Fprintln(out, ui.Successf("Imported %s (%d skipped, %d new albums)",
		ui.Count(res.Imported, "item", "items"), res.Skipped, res.Albums))
	return nil
}

// collectFiles expands args into the supported audio files they name,
// sorted. Unsupported files named directly produce a warning; those found
// while scanning directories are ignored.
func collectFiles(args []string, res *importResult) ([]string, error) {
	var files []string
	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, withCode(ErrFileNotFound, fmt.Errorf("cannot import %s: %w", arg, err), "")
		}

		if !info.IsDir() {
			if !tagio.Supported(abs) {
				res.warn(WarnUnsupportedFormat, abs, fmt.Errorf("%s: %w", abs, tagio.ErrUnsupportedFormat))
				continue
			}
			files = append(files, abs)
			continue
		}

		err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && tagio.Supported(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, withCode(ErrFileNotFound, fmt.Errorf("failed to scan %s: %w", arg, err), "")
		}
	}
	sort.Strings(files)
	return files, nil
}

func (im *importer) importFile(tx *library.Tx, src string, res *importResult) error {
	fields, err := im.tags.Read(src)
	if err != nil {
		res.warn(WarnTagReadFailed, src, err)
		return nil
	}
	normalizeListFields(fields)
	fillAlbumArtist(fields)

	item := &model.Item{Path: src, Fields: fields}
	if im.copy {
		item.Path = im.paths.Destination(im.directory, item, filepath.Ext(src))
	}

	if _, err := tx.ItemByPath(item.Path); err == nil {
		res.warn(WarnAlreadyImported, item.Path, fmt.Errorf("%s is already in the library", item.Path))
		res.Skipped++
		return nil
	} else if !errors.Is(err, library.ErrNotFound) {
		return err
	}

	if im.copy {
		if err := copyInto(src, item.Path); err != nil {
			res.warn(WarnMoveFailed, src, err)
			res.Skipped++
			return nil
		}
	}
	if info, err := os.Stat(item.Path); err == nil {
		item.Mtime = info.ModTime().Unix()
	}

	albumID, err := im.albumFor(tx, fields, res)
	if err != nil {
		return err
	}
	item.AlbumID = albumID

	if err := tx.AddItem(item); err != nil {
		return err
	}
	im.logger.Debug("imported item", "id", item.ID, "path", item.Path, "album_id", albumID)
	res.Imported++
	return nil
}

func copyInto(src, dst string) error {
	if _, err := os.Stat(dst); err == nil {
		return fmt.Errorf("%s: %w", dst, pathfmt.ErrDestinationExists)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return atomicfile.CopyFile(src, dst)
}

// albumFor returns the ID of the album fields belong to, creating it from
// the item's album-level fields when needed. Items without an album field
// are singletons (ID 0).
func (im *importer) albumFor(tx *library.Tx, fields map[string]model.Value, res *importResult) (int64, error) {
	album := fieldText(fields, "album")
	if album == "" {
		return 0, nil
	}
	albumartist := fieldText(fields, "albumartist")
	if albumartist == "" {
		albumartist = fieldText(fields, "artist")
	}

	existing, err := tx.FindAlbum(albumartist, album)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, library.ErrNotFound) {
		return 0, err
	}

	created := &model.Album{Fields: make(map[string]model.Value)}
	for _, name := range library.InheritedFields {
		if v, ok := fields[name]; ok {
			created.Set(name, v)
		}
	}
	created.Set("albumartist", model.String(albumartist))
	if err := tx.AddAlbum(created); err != nil {
		return 0, err
	}
	res.Albums++
	return created.ID, nil
}

// fillAlbumArtist gives album tracks tagged only with an artist that artist
// as their albumartist.
func fillAlbumArtist(fields map[string]model.Value) {
	if fieldText(fields, "album") == "" || fieldText(fields, "albumartist") != "" {
		return
	}
	if artist := fieldText(fields, "artist"); artist != "" {
		fields["albumartist"] = model.String(artist)
	}
}

// normalizeListFields stores built-in list fields as lists even when the
// file held a single value.
func normalizeListFields(fields map[string]model.Value) {
	for name, v := range fields {
		if multivalue.IsBuiltinListField(name) && !v.IsList() {
			fields[name] = model.List(v.Strings())
		}
	}
}

func fieldText(fields map[string]model.Value, name string) string {
	v, ok := fields[name]
	if !ok {
		return ""
	}
	return v.Text(model.ListSeparator)
}

func init() {
	importCmd.Flags().BoolVar(&importCopy, "copy", false, "Copy files into the library directory before importing")
	rootCmd.AddCommand(importCmd)
}
