// Package session holds the roulette state behind the interactive surfaces:
// the facet the user has selected and the single current pick.
//
// The current pick lives in one slot that is only ever replaced as a whole.
// Each roll gets a new generation number; a cover lookup started for a roll
// is applied only if the slot still holds that generation when it finishes,
// so a slow lookup never overwrites a newer pick.
package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/ademuri/album-roulette/internal/artwork"
	"github.com/ademuri/album-roulette/internal/catalog"
	"github.com/ademuri/album-roulette/internal/facet"
	"github.com/ademuri/album-roulette/internal/logging"
	"github.com/ademuri/album-roulette/internal/metrics"
	"github.com/ademuri/album-roulette/internal/roulette"
)

// CoverState describes the artwork of a Selection.
type CoverState string

const (
	CoverPending CoverState = "pending"
	CoverFound   CoverState = "found"
	CoverNone    CoverState = "none"
)

// Selection is an immutable snapshot of the current pick.
type Selection struct {
	Generation uint64
	Album      catalog.Album
	Facet      roulette.Facet
	Cover      CoverState
	CoverURL   string

	// cleared marks a slot emptied by a filter change.
	cleared bool
}

// withCover returns a copy of s with the cover resolved.
func (s Selection) withCover(url string) *Selection {
	next := s
	if url == "" {
		next.Cover = CoverNone
		next.CoverURL = ""
	} else {
		next.Cover = CoverFound
		next.CoverURL = url
	}
	return &next
}

// Filter is the facet currently selected by the user.
type Filter struct {
	Mode  roulette.Mode
	Year  int
	Genre string
}

// Facet returns the roulette facet for the active mode.
func (f Filter) Facet() roulette.Facet {
	if f.Mode == roulette.ModeGenre {
		return roulette.GenreFacet(f.Genre)
	}
	return roulette.YearFacet(f.Year)
}

// Session is safe for concurrent use.
type Session struct {
	catalog *catalog.Catalog
	index   facet.Index
	picker  *roulette.Picker
	covers  artwork.Provider
	log     zerolog.Logger

	filter     atomic.Pointer[Filter]
	current    atomic.Pointer[Selection]
	generation atomic.Uint64
	lookups    sync.WaitGroup
}

// New returns a session over c in year mode, with the latest year and the
// most frequent genre preselected. covers may be nil to skip artwork.
func New(c *catalog.Catalog, picker *roulette.Picker, covers artwork.Provider) *Session {
	if picker == nil {
		picker = roulette.DefaultPicker()
	}
	s := &Session{
		catalog: c,
		index:   facet.BuildCatalog(c),
		picker:  picker,
		covers:  covers,
		log:     logging.WithComponent("session"),
	}
	f := &Filter{Mode: roulette.ModeYear}
	f.Year, _ = s.index.DefaultYear()
	f.Genre, _ = s.index.DefaultGenre()
	s.filter.Store(f)
	return s
}

// Index returns the catalog facets.
func (s *Session) Index() facet.Index {
	return s.index
}

// Catalog returns the catalog the session draws from.
func (s *Session) Catalog() *catalog.Catalog {
	return s.catalog
}

// Filter returns the selected facet.
func (s *Session) Filter() Filter {
	return *s.filter.Load()
}

// Current returns the current pick, or nil when nothing has been rolled
// since the filter last changed.
func (s *Session) Current() *Selection {
	cur := s.current.Load()
	if cur == nil || cur.cleared {
		return nil
	}
	return cur
}

// updateFilter applies fn to a copy of the filter and stores it, retrying
// when another update landed in between. It then clears the current pick.
func (s *Session) updateFilter(fn func(*Filter)) {
	for {
		old := s.filter.Load()
		next := *old
		fn(&next)
		if s.filter.CompareAndSwap(old, &next) {
			break
		}
	}
	s.publish(&Selection{Generation: s.generation.Add(1), cleared: true})
}

// SetMode switches the facet mode and clears the current pick.
func (s *Session) SetMode(mode roulette.Mode) {
	s.updateFilter(func(f *Filter) { f.Mode = mode })
}

// Select sets the year and/or genre used by the two modes and clears the
// current pick. Both values are checked before either is applied.
func (s *Session) Select(year *int, genre *string) error {
	if year != nil && !s.index.HasYear(*year) {
		return fmt.Errorf("no albums from %d", *year)
	}
	if genre != nil && s.index.Count(*genre) == 0 {
		return fmt.Errorf("unknown genre %q", *genre)
	}
	if year == nil && genre == nil {
		return nil
	}
	s.updateFilter(func(f *Filter) {
		if year != nil {
			f.Year = *year
		}
		if genre != nil {
			f.Genre = *genre
		}
	})
	return nil
}

// SelectYear sets the year used in year mode.
func (s *Session) SelectYear(year int) error {
	return s.Select(&year, nil)
}

// SelectGenre sets the tag used in genre mode.
func (s *Session) SelectGenre(tag string) error {
	return s.Select(nil, &tag)
}

// Roll draws an album for the selected facet and makes it the current
// pick. When the pool is empty it returns roulette.ErrEmptyPool and the
// current pick is left as it was. The cover lookup runs in the background;
// use Current or Wait to observe it.
func (s *Session) Roll(ctx context.Context) (*Selection, error) {
	// The generation is taken before the filter is read: a filter change
	// that this roll does not see gets a later generation and wins.
	generation := s.generation.Add(1)
	f := s.Filter().Facet()
	album, err := s.picker.PickFromCatalog(s.catalog, f)
	if err != nil {
		metrics.Rolls.WithLabelValues(string(f.Mode), metrics.OutcomeEmpty).Inc()
		return nil, err
	}
	metrics.Rolls.WithLabelValues(string(f.Mode), metrics.OutcomePicked).Inc()

	sel := &Selection{
		Generation: generation,
		Album:      album,
		Facet:      f,
		Cover:      CoverPending,
	}
	if s.covers == nil {
		sel.Cover = CoverNone
	}
	if !s.publish(sel) {
		s.log.Debug().Uint64("generation", generation).Msg("dropping superseded roll")
		return sel, nil
	}

	if s.covers != nil {
		s.lookups.Add(1)
		go func() {
			defer s.lookups.Done()
			url := artwork.Resolve(context.WithoutCancel(ctx), s.covers, album.ReleaseName, album.ArtistName)
			s.applyCover(sel, url)
		}()
	}
	return sel, nil
}

// publish stores sel unless the slot already holds a newer generation, from
// a concurrent roll or a filter change.
func (s *Session) publish(sel *Selection) bool {
	for {
		cur := s.current.Load()
		if cur != nil && cur.Generation > sel.Generation {
			return false
		}
		if s.current.CompareAndSwap(cur, sel) {
			return true
		}
	}
}

// applyCover publishes the cover for sel unless a newer roll or a mode
// switch replaced it in the meantime.
func (s *Session) applyCover(sel *Selection, url string) bool {
	for {
		cur := s.current.Load()
		if cur == nil || cur.Generation != sel.Generation {
			metrics.ArtworkLookups.WithLabelValues("session", metrics.OutcomeStale).Inc()
			s.log.Debug().Uint64("generation", sel.Generation).Msg("dropping stale cover")
			return false
		}
		if s.current.CompareAndSwap(cur, cur.withCover(url)) {
			return true
		}
	}
}

// Wait blocks until every started cover lookup has finished.
func (s *Session) Wait() {
	s.lookups.Wait()
}
