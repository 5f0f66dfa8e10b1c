// Package library stores items and albums in a SQLite database.
package library

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/aidanlsb/mvtag/internal/model"
)

// Library is the SQLite database handle.
type Library struct {
	db *sql.DB
}

var (
	// ErrNotFound indicates the requested item or album does not exist.
	ErrNotFound = errors.New("not found in library")
	// ErrReadOnlyField is returned when a fixed attribute is written as a field.
	ErrReadOnlyField = model.ErrReadOnlyField
)

// Matcher selects records. A nil Matcher matches everything.
type Matcher interface {
	Match(rec model.Record) bool
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// DB returns the underlying sql.DB for advanced queries.
func (l *Library) DB() *sql.DB {
	return l.db
}

// Open opens or creates the library database at path.
func Open(path string) (*Library, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create library directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open library: %w", err)
	}

	l := &Library{db: db}
	if err := l.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

// OpenInMemory opens an in-memory library (for testing).
func OpenInMemory() (*Library, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	// Each connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	l := &Library{db: db}
	if err := l.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

// Close closes the database.
func (l *Library) Close() error {
	return l.db.Close()
}

// CurrentDBVersion is the current database schema version.
const CurrentDBVersion = 1

func (l *Library) initialize() error {
	schema := `
		PRAGMA journal_mode = WAL;
		PRAGMA synchronous = NORMAL;
		PRAGMA foreign_keys = ON;

		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS albums (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			fields TEXT NOT NULL DEFAULT '{}',
			added_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS items (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			path TEXT NOT NULL UNIQUE,
			album_id INTEGER REFERENCES albums(id) ON DELETE SET NULL,
			fields TEXT NOT NULL DEFAULT '{}',
			mtime INTEGER NOT NULL DEFAULT 0,   -- file mtime when tags were last synced
			added_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_items_album ON items(album_id);
	`

	if _, err := l.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize library schema: %w", err)
	}

	_, err := l.db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES ('version', ?)`,
		fmt.Sprintf("%d", CurrentDBVersion))
	if err != nil {
		return fmt.Errorf("failed to set library version: %w", err)
	}
	return nil
}

// Stats holds library counts.
type Stats struct {
	Items  int
	Albums int
}

// Stats returns item and album counts.
func (l *Library) Stats() (*Stats, error) {
	var s Stats
	if err := l.db.QueryRow("SELECT COUNT(*) FROM items").Scan(&s.Items); err != nil {
		return nil, err
	}
	if err := l.db.QueryRow("SELECT COUNT(*) FROM albums").Scan(&s.Albums); err != nil {
		return nil, err
	}
	return &s, nil
}
