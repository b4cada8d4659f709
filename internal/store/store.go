// Package store keeps a copy of the album catalog in a SQLite database so
// it can be loaded without the original delimited file.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"

	_ "github.com/mattn/go-sqlite3"
)

const createAlbumTable = `
CREATE TABLE IF NOT EXISTS Album (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  position TEXT,
  release_name TEXT,
  artist_name TEXT,
  release_date TEXT,
  release_type TEXT,
  primary_genres TEXT,
  secondary_genres TEXT,
  descriptors TEXT,
  avg_rating TEXT,
  rating_count TEXT
);

CREATE INDEX IF NOT EXISTS AlbumArtist ON Album (artist_name);
`

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(createAlbumTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Exists reports whether the database at dbPath already holds an Album
// table. It does not create the file.
func Exists(dbPath string) (bool, error) {
	if _, err := os.Stat(dbPath); errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?mode=ro")
	if err != nil {
		return false, fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	row := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'Album'")
	var name string
	err = row.Scan(&name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking db existence: %w", err)
	}
	return true, nil
}
