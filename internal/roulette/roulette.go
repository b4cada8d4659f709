// Package roulette narrows a catalog to the albums matching a facet value
// and draws one of them at random.
package roulette

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ademuri/album-roulette/internal/catalog"
)

// ErrEmptyPool is returned when no album matches the requested facet.
var ErrEmptyPool = errors.New("no albums match")

type Mode string

const (
	ModeYear  Mode = "year"
	ModeGenre Mode = "genre"
)

// ParseMode accepts "year" or "genre", case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeYear:
		return ModeYear, nil
	case ModeGenre:
		return ModeGenre, nil
	}
	return "", fmt.Errorf("unknown mode %q: expected %q or %q", s, ModeYear, ModeGenre)
}

// Facet is a filter: a mode and the value selected for it.
type Facet struct {
	Mode  Mode
	Value string
}

// YearFacet filters by release year.
func YearFacet(year int) Facet {
	return Facet{Mode: ModeYear, Value: strconv.Itoa(year)}
}

// GenreFacet filters by genre tag.
func GenreFacet(tag string) Facet {
	return Facet{Mode: ModeGenre, Value: tag}
}

func (f Facet) String() string {
	return string(f.Mode) + "=" + f.Value
}

// Matches reports whether a belongs to the facet's pool. A year facet whose
// value is not a number matches nothing.
func (f Facet) Matches(a catalog.Album) bool {
	switch f.Mode {
	case ModeYear:
		want, err := strconv.Atoi(strings.TrimSpace(f.Value))
		if err != nil {
			return false
		}
		year, ok := a.Year()
		return ok && year == want
	case ModeGenre:
		return f.Value != "" && a.HasGenre(f.Value)
	}
	return false
}

// Pool returns the albums matching f, in catalog order.
func Pool(albums []catalog.Album, f Facet) []catalog.Album {
	var pool []catalog.Album
	for _, a := range albums {
		if f.Matches(a) {
			pool = append(pool, a)
		}
	}
	return pool
}

// Picker draws uniformly from a pool. It is safe for concurrent use.
type Picker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewPicker returns a Picker with a fixed seed, for reproducible draws.
func NewPicker(seed uint64) *Picker {
	return &Picker{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// DefaultPicker returns a Picker seeded from the clock.
func DefaultPicker() *Picker {
	return NewPicker(uint64(time.Now().UnixNano()))
}

// Intn returns a uniform index in [0, n).
func (p *Picker) Intn(n int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.IntN(n)
}

// Choose returns a uniformly drawn element of pool. The second result is
// false when pool is empty.
func (p *Picker) Choose(pool []catalog.Album) (catalog.Album, bool) {
	if len(pool) == 0 {
		return catalog.Album{}, false
	}
	return pool[p.Intn(len(pool))], true
}

// PickRandom filters albums by f and draws one. Draws are independent, so
// repeated calls may return the same album.
func (p *Picker) PickRandom(albums []catalog.Album, f Facet) (catalog.Album, bool) {
	return p.Choose(Pool(albums, f))
}

// PickFromCatalog is PickRandom over a Catalog, returning ErrEmptyPool
// when nothing matches.
func (p *Picker) PickFromCatalog(c *catalog.Catalog, f Facet) (catalog.Album, error) {
	var pool []catalog.Album
	c.Each(func(a catalog.Album) {
		if f.Matches(a) {
			pool = append(pool, a)
		}
	})
	album, ok := p.Choose(pool)
	if !ok {
		return catalog.Album{}, fmt.Errorf("%s: %w", f, ErrEmptyPool)
	}
	return album, nil
}
