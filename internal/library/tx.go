package library

import (
	"database/sql"
	"fmt"

	"github.com/aidanlsb/mvtag/internal/model"
)

// InheritedFields are album-level fields copied into an album's items when
// the album is stored with inheritance.
var InheritedFields = []string{
	"album",
	"albumartist",
	"albumartists",
	"albumartists_sort",
	"albumartists_credit",
	"albumtype",
	"genre",
	"label",
	"mb_albumartistids",
	"year",
}

// IsInheritedField reports whether an album field propagates to items.
func IsInheritedField(name string) bool {
	for _, f := range InheritedFields {
		if f == name {
			return true
		}
	}
	return false
}

// Tx is a library transaction.
type Tx struct {
	tx *sql.Tx
}

// Transaction runs fn in a transaction. It commits if fn returns nil and
// rolls back otherwise.
func (l *Library) Transaction(fn func(tx *Tx) error) error {
	sqlTx, err := l.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&Tx{tx: sqlTx}); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// AddItem inserts item and sets its ID.
func (t *Tx) AddItem(item *model.Item) error {
	return insertItem(t.tx, item)
}

// AddAlbum inserts album and sets its ID.
func (t *Tx) AddAlbum(album *model.Album) error {
	return insertAlbum(t.tx, album)
}

// Item returns the item with the given ID as seen by the transaction.
func (t *Tx) Item(id int64) (*model.Item, error) {
	return getItem(t.tx, id)
}

// ItemByPath returns the item stored at path as seen by the transaction.
func (t *Tx) ItemByPath(path string) (*model.Item, error) {
	return getItemByPath(t.tx, path)
}

// AlbumItems returns the items of an album as seen by the transaction.
func (t *Tx) AlbumItems(albumID int64) ([]*model.Item, error) {
	return listItems(t.tx, "album_id = ?", albumID)
}

// FindAlbum is Library.FindAlbum inside the transaction.
func (t *Tx) FindAlbum(albumartist, album string) (*model.Album, error) {
	return findAlbum(t.tx, albumartist, album)
}

// StoreItem writes an item's path, album and fields.
func (t *Tx) StoreItem(item *model.Item) error {
	return updateItem(t.tx, item)
}

// StoreAlbum writes an album's fields. With inherit, every changed field
// that is an inherited album field is copied into the album's items (or
// removed from them when the album no longer has it). The items that were
// updated are returned.
func (t *Tx) StoreAlbum(album *model.Album, changedFields []string, inherit bool) ([]*model.Item, error) {
	if err := updateAlbum(t.tx, album); err != nil {
		return nil, err
	}
	if !inherit {
		return nil, nil
	}

	var propagate []string
	for _, name := range changedFields {
		if IsInheritedField(name) {
			propagate = append(propagate, name)
		}
	}
	if len(propagate) == 0 {
		return nil, nil
	}

	items, err := listItems(t.tx, "album_id = ?", album.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load items of album %d: %w", album.ID, err)
	}

	var touched []*model.Item
	for _, item := range items {
		changed := false
		for _, name := range propagate {
			value, ok := album.Fields[name]
			current, had := item.Fields[name]
			switch {
			case ok && (!had || !current.Equal(value)):
				item.Set(name, value)
				changed = true
			case !ok && had:
				item.Delete(name)
				changed = true
			}
		}
		if !changed {
			continue
		}
		if err := updateItem(t.tx, item); err != nil {
			return nil, err
		}
		touched = append(touched, item)
	}
	return touched, nil
}
