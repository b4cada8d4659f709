// Package facet derives the filter dimensions offered for a catalog: the
// release years present and the genre tags ranked by how often they occur.
package facet

import (
	"sort"

	"github.com/ademuri/album-roulette/internal/catalog"
)

// GenreCount is a genre tag and the number of times it appears across the
// catalog's primary and secondary genre lists.
type GenreCount struct {
	Tag   string `yaml:"tag" json:"tag"`
	Count int    `yaml:"count" json:"count"`
}

// Index holds the facets of a catalog. It is recomputed from the catalog
// rather than updated in place.
type Index struct {
	// Years is ascending with no duplicates.
	Years []int `yaml:"years" json:"years"`
	// Genres is sorted by descending Count. Equal counts keep the order in
	// which the tags were first seen.
	Genres []GenreCount `yaml:"genres" json:"genres"`
}

// Build scans the albums once and returns their facets. Albums without a
// parseable release date contribute no year.
func Build(albums []catalog.Album) Index {
	seenYears := make(map[int]struct{})
	var years []int

	counts := make(map[string]int)
	var order []string

	for _, a := range albums {
		if year, ok := a.Year(); ok {
			if _, seen := seenYears[year]; !seen {
				seenYears[year] = struct{}{}
				years = append(years, year)
			}
		}
		for _, tag := range a.Genres() {
			if tag == "" {
				continue
			}
			if _, seen := counts[tag]; !seen {
				order = append(order, tag)
			}
			counts[tag]++
		}
	}

	sort.Ints(years)

	genres := make([]GenreCount, len(order))
	for i, tag := range order {
		genres[i] = GenreCount{Tag: tag, Count: counts[tag]}
	}
	sort.SliceStable(genres, func(i, j int) bool {
		return genres[i].Count > genres[j].Count
	})

	return Index{Years: years, Genres: genres}
}

// BuildCatalog is Build over a Catalog.
func BuildCatalog(c *catalog.Catalog) Index {
	return Build(c.Albums())
}

// DefaultYear is the latest year in the index.
func (ix Index) DefaultYear() (int, bool) {
	if len(ix.Years) == 0 {
		return 0, false
	}
	return ix.Years[len(ix.Years)-1], true
}

// DefaultGenre is the most frequent genre tag.
func (ix Index) DefaultGenre() (string, bool) {
	if len(ix.Genres) == 0 {
		return "", false
	}
	return ix.Genres[0].Tag, true
}

// GenreTags returns the tags in display order.
func (ix Index) GenreTags() []string {
	tags := make([]string, len(ix.Genres))
	for i, g := range ix.Genres {
		tags[i] = g.Tag
	}
	return tags
}

// Span returns the first and last year covered by the catalog.
func (ix Index) Span() (first, last int, ok bool) {
	if len(ix.Years) == 0 {
		return 0, 0, false
	}
	return ix.Years[0], ix.Years[len(ix.Years)-1], true
}

// HasYear reports whether year is one of the index years.
func (ix Index) HasYear(year int) bool {
	i := sort.SearchInts(ix.Years, year)
	return i < len(ix.Years) && ix.Years[i] == year
}

// Count returns the count recorded for tag, or 0.
func (ix Index) Count(tag string) int {
	for _, g := range ix.Genres {
		if g.Tag == tag {
			return g.Count
		}
	}
	return 0
}

// TopGenres returns at most n genres; n <= 0 returns all of them.
func (ix Index) TopGenres(n int) []GenreCount {
	if n <= 0 || n >= len(ix.Genres) {
		return ix.Genres
	}
	return ix.Genres[:n]
}
