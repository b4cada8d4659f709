// Package catalog loads the album dataset: a delimited text file with one
// album per row, parsed into read-only Album records.
package catalog

import (
	"math"
	"strings"
)

// Column names of the dataset header.
const (
	ColPosition        = "position"
	ColReleaseName     = "release_name"
	ColArtistName      = "artist_name"
	ColReleaseDate     = "release_date"
	ColReleaseType     = "release_type"
	ColPrimaryGenres   = "primary_genres"
	ColSecondaryGenres = "secondary_genres"
	ColDescriptors     = "descriptors"
	ColAvgRating       = "avg_rating"
	ColRatingCount     = "rating_count"
)

// Columns lists the dataset columns in their canonical order.
var Columns = []string{
	ColPosition,
	ColReleaseName,
	ColArtistName,
	ColReleaseDate,
	ColReleaseType,
	ColPrimaryGenres,
	ColSecondaryGenres,
	ColDescriptors,
	ColAvgRating,
	ColRatingCount,
}

// NotApplicable is the secondary_genres token meaning "no secondary genres".
const NotApplicable = "NA"

// Album is one catalog row.
type Album struct {
	Position        int
	ReleaseName     string
	ArtistName      string
	ReleaseDate     ReleaseDate
	ReleaseType     string
	PrimaryGenres   []string
	SecondaryGenres []string
	Descriptors     []string
	// AvgRating is NaN when the source cell was malformed.
	AvgRating   float64
	RatingCount int

	// Invalid names the numeric columns whose cells could not be parsed.
	Invalid []string
}

// Year returns the calendar year of the release date. The second result is
// false when the release date could not be parsed.
func (a Album) Year() (int, bool) {
	if !a.ReleaseDate.Valid() {
		return 0, false
	}
	return a.ReleaseDate.Date.Year(), true
}

// Genres returns the primary tags followed by the secondary tags. A tag
// listed in both is returned twice.
func (a Album) Genres() []string {
	out := make([]string, 0, len(a.PrimaryGenres)+len(a.SecondaryGenres))
	out = append(out, a.PrimaryGenres...)
	return append(out, a.SecondaryGenres...)
}

// HasGenre reports whether tag is one of the album's primary or secondary tags.
func (a Album) HasGenre(tag string) bool {
	for _, g := range a.PrimaryGenres {
		if g == tag {
			return true
		}
	}
	for _, g := range a.SecondaryGenres {
		if g == tag {
			return true
		}
	}
	return false
}

// HasRating reports whether AvgRating holds a parsed value.
func (a Album) HasRating() bool {
	return !math.IsNaN(a.AvgRating)
}

// IsValid reports whether the named numeric column parsed cleanly.
func (a Album) IsValid(column string) bool {
	for _, c := range a.Invalid {
		if c == column {
			return false
		}
	}
	return true
}

// SplitTags splits a comma delimited cell, trimming each piece and dropping
// empty ones.
func SplitTags(cell string) []string {
	if cell == "" {
		return nil
	}
	parts := strings.Split(cell, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

// Catalog is an ordered, read-only album sequence.
type Catalog struct {
	albums []Album
}

// New wraps albums in a Catalog. The slice must not be modified afterwards.
func New(albums []Album) *Catalog {
	return &Catalog{albums: albums}
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.albums)
}

func (c *Catalog) At(i int) Album {
	return c.albums[i]
}

// Albums returns a copy of the catalog contents in load order.
func (c *Catalog) Albums() []Album {
	if c == nil {
		return nil
	}
	out := make([]Album, len(c.albums))
	copy(out, c.albums)
	return out
}

// Each calls fn for every album in load order without copying the catalog.
func (c *Catalog) Each(fn func(Album)) {
	if c == nil {
		return
	}
	for _, a := range c.albums {
		fn(a)
	}
}
