package library

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aidanlsb/mvtag/internal/model"
)

const (
	itemColumns  = "id, path, album_id, fields, mtime"
	albumColumns = "id, fields"
)

func encodeFields(fields map[string]model.Value) (string, error) {
	if fields == nil {
		return "{}", nil
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("failed to encode fields: %w", err)
	}
	return string(data), nil
}

func decodeFields(raw string) (map[string]model.Value, error) {
	fields := make(map[string]model.Value)
	if raw == "" {
		return fields, nil
	}
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("failed to decode fields: %w", err)
	}
	return fields, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*model.Item, error) {
	var (
		item    model.Item
		albumID sql.NullInt64
		raw     string
	)
	if err := row.Scan(&item.ID, &item.Path, &albumID, &raw, &item.Mtime); err != nil {
		return nil, err
	}
	if albumID.Valid {
		item.AlbumID = albumID.Int64
	}
	fields, err := decodeFields(raw)
	if err != nil {
		return nil, fmt.Errorf("item %d: %w", item.ID, err)
	}
	item.Fields = fields
	return &item, nil
}

func scanAlbum(row rowScanner) (*model.Album, error) {
	var (
		album model.Album
		raw   string
	)
	if err := row.Scan(&album.ID, &raw); err != nil {
		return nil, err
	}
	fields, err := decodeFields(raw)
	if err != nil {
		return nil, fmt.Errorf("album %d: %w", album.ID, err)
	}
	album.Fields = fields
	return &album, nil
}

func nullableID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}

func getItem(q querier, id int64) (*model.Item, error) {
	item, err := scanItem(q.QueryRow("SELECT "+itemColumns+" FROM items WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("item %d: %w", id, ErrNotFound)
	}
	return item, err
}

func getItemByPath(q querier, path string) (*model.Item, error) {
	item, err := scanItem(q.QueryRow("SELECT "+itemColumns+" FROM items WHERE path = ?", path))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("item %s: %w", path, ErrNotFound)
	}
	return item, err
}

func getAlbum(q querier, id int64) (*model.Album, error) {
	album, err := scanAlbum(q.QueryRow("SELECT "+albumColumns+" FROM albums WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("album %d: %w", id, ErrNotFound)
	}
	return album, err
}

func listItems(q querier, where string, args ...any) ([]*model.Item, error) {
	query := "SELECT " + itemColumns + " FROM items"
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY id"

	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanItem)
}

func listAlbums(q querier, where string, args ...any) ([]*model.Album, error) {
	query := "SELECT " + albumColumns + " FROM albums"
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY id"

	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanAlbum)
}

func insertItem(q querier, item *model.Item) error {
	raw, err := encodeFields(item.Fields)
	if err != nil {
		return err
	}
	res, err := q.Exec(
		"INSERT INTO items (path, album_id, fields, mtime, added_at) VALUES (?, ?, ?, ?, ?)",
		item.Path, nullableID(item.AlbumID), raw, item.Mtime, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to add item %s: %w", item.Path, err)
	}
	item.ID, err = res.LastInsertId()
	return err
}

func insertAlbum(q querier, album *model.Album) error {
	raw, err := encodeFields(album.Fields)
	if err != nil {
		return err
	}
	res, err := q.Exec("INSERT INTO albums (fields, added_at) VALUES (?, ?)", raw, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to add album: %w", err)
	}
	album.ID, err = res.LastInsertId()
	return err
}

func updateItem(q querier, item *model.Item) error {
	raw, err := encodeFields(item.Fields)
	if err != nil {
		return err
	}
	res, err := q.Exec(
		"UPDATE items SET path = ?, album_id = ?, fields = ?, mtime = ? WHERE id = ?",
		item.Path, nullableID(item.AlbumID), raw, item.Mtime, item.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to store item %d: %w", item.ID, err)
	}
	return requireRow(res, "item", item.ID)
}

func updateAlbum(q querier, album *model.Album) error {
	raw, err := encodeFields(album.Fields)
	if err != nil {
		return err
	}
	res, err := q.Exec("UPDATE albums SET fields = ? WHERE id = ?", raw, album.ID)
	if err != nil {
		return fmt.Errorf("failed to store album %d: %w", album.ID, err)
	}
	return requireRow(res, "album", album.ID)
}

func requireRow(res sql.Result, kind string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
	}
	return nil
}

// AddItem inserts item and sets its ID.
func (l *Library) AddItem(item *model.Item) error {
	return insertItem(l.db, item)
}

// AddAlbum inserts album and sets its ID.
func (l *Library) AddAlbum(album *model.Album) error {
	return insertAlbum(l.db, album)
}

// Item returns the item with the given ID.
func (l *Library) Item(id int64) (*model.Item, error) {
	return getItem(l.db, id)
}

// ItemByPath returns the item stored at path.
func (l *Library) ItemByPath(path string) (*model.Item, error) {
	return getItemByPath(l.db, path)
}

// Album returns the album with the given ID.
func (l *Library) Album(id int64) (*model.Album, error) {
	return getAlbum(l.db, id)
}

// AlbumItems returns the items belonging to an album.
func (l *Library) AlbumItems(albumID int64) ([]*model.Item, error) {
	return listItems(l.db, "album_id = ?", albumID)
}

// FindAlbum returns the album whose albumartist and album fields equal the
// given values.
func (l *Library) FindAlbum(albumartist, album string) (*model.Album, error) {
	return findAlbum(l.db, albumartist, album)
}

func findAlbum(q querier, albumartist, album string) (*model.Album, error) {
	albums, err := listAlbums(q,
		"COALESCE(json_extract(fields, '$.albumartist'), '') = ? AND COALESCE(json_extract(fields, '$.album'), '') = ?",
		albumartist, album)
	if err != nil {
		return nil, err
	}
	if len(albums) == 0 {
		return nil, fmt.Errorf("album %q by %q: %w", album, albumartist, ErrNotFound)
	}
	return albums[0], nil
}

// Items returns the items matched by m, ordered by ID.
func (l *Library) Items(m Matcher) ([]*model.Item, error) {
	all, err := listItems(l.db, "")
	if err != nil {
		return nil, err
	}
	return filter(all, m), nil
}

// Albums returns the albums matched by m, ordered by ID.
func (l *Library) Albums(m Matcher) ([]*model.Album, error) {
	all, err := listAlbums(l.db, "")
	if err != nil {
		return nil, err
	}
	return filter(all, m), nil
}

// AlbumItemCounts returns the number of items in each of the given albums.
func (l *Library) AlbumItemCounts(albumIDs []int64) (map[int64]int, error) {
	out := make(map[int64]int, len(albumIDs))
	if len(albumIDs) == 0 {
		return out, nil
	}

	placeholders, args := idPlaceholders(albumIDs)
	rows, err := l.db.Query(
		"SELECT album_id, COUNT(*) FROM items WHERE album_id IN ("+placeholders+") GROUP BY album_id",
		args...)
	if err != nil {
		return nil, err
	}
	type count struct {
		id int64
		n  int
	}
	counts, err := collect(rows, func(row rowScanner) (count, error) {
		var c count
		err := row.Scan(&c.id, &c.n)
		return c, err
	})
	if err != nil {
		return nil, err
	}
	for _, c := range counts {
		out[c.id] = c.n
	}
	return out, nil
}

// collect scans every row with scan and closes rows.
func collect[T any](rows *sql.Rows, scan func(rowScanner) (T, error)) ([]T, error) {
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// idPlaceholders returns "?, ?, ..." for ids and the matching query args.
func idPlaceholders(ids []int64) (string, []any) {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", "), args
}

func filter[T model.Record](records []T, m Matcher) []T {
	if m == nil {
		return records
	}
	var out []T
	for _, r := range records {
		if m.Match(r) {
			out = append(out, r)
		}
	}
	return out
}
