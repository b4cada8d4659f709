package store

import (
	"fmt"

	"github.com/ademuri/album-roulette/internal/catalog"
)

// LoadAlbums returns the stored catalog in import order. Cells are parsed
// with the same rules as the delimited file.
func (s *Store) LoadAlbums() (catalog.Result, error) {
	rows, err := s.db.Query(`
	SELECT id, position, release_name, artist_name, release_date, release_type,
	  primary_genres, secondary_genres, descriptors, avg_rating, rating_count
	FROM Album
	ORDER BY id ASC
	`)
	if err != nil {
		return catalog.Result{}, fmt.Errorf("querying albums: %w", err)
	}
	defer rows.Close()

	var result catalog.Result
	for rows.Next() {
		var id int
		cells := make([]string, len(catalog.Columns))
		dest := []any{&id}
		for i := range cells {
			dest = append(dest, &cells[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return result, fmt.Errorf("scanning album: %w", err)
		}

		byColumn := make(map[string]string, len(cells))
		for i, column := range catalog.Columns {
			byColumn[column] = cells[i]
		}
		album, rowErrs := catalog.ParseRecord(byColumn, id)
		result.Albums = append(result.Albums, album)
		result.Errors = append(result.Errors, rowErrs...)
	}
	return result, rows.Err()
}

// CountAlbums returns the number of stored albums.
func (s *Store) CountAlbums() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM Album").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting albums: %w", err)
	}
	return n, nil
}
