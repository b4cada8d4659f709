package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go"
	"github.com/mattn/go-sqlite3"

	"github.com/ademuri/album-roulette/internal/catalog"
)

// ImportAlbums replaces the stored catalog with albums, keeping their
// order. The import runs in one transaction; a transaction that finds the
// database busy or locked is retried.
func (s *Store) ImportAlbums(albums []catalog.Album) error {
	return retry.Do(
		func() error {
			return s.importAlbums(albums)
		},
		retry.Attempts(5),
		retry.Delay(100*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.RetryIf(isBusy),
	)
}

func (s *Store) importAlbums(albums []catalog.Album) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM Album"); err != nil {
		return fmt.Errorf("clearing albums: %w", err)
	}

	stmt, err := tx.Prepare(`
	INSERT INTO Album (position, release_name, artist_name, release_date, release_type,
	  primary_genres, secondary_genres, descriptors, avg_rating, rating_count)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, a := range albums {
		if err := insertAlbum(stmt, a); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func insertAlbum(stmt *sql.Stmt, a catalog.Album) error {
	record := a.Record()
	args := make([]any, len(record))
	for i, cell := range record {
		args[i] = cell
	}
	if _, err := stmt.Exec(args...); err != nil {
		return fmt.Errorf("inserting %q: %w", a.ReleaseName, err)
	}
	return nil
}

func isBusy(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}
	return false
}
