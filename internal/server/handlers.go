package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ademuri/album-roulette/internal/artwork"
	"github.com/ademuri/album-roulette/internal/facet"
	"github.com/ademuri/album-roulette/internal/metrics"
	"github.com/ademuri/album-roulette/internal/roulette"
)

func (app *Application) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "albums": app.Catalog.Len()})
}

// CatalogFileHandler serves the catalog file the process was started with.
func (app *Application) CatalogFileHandler(w http.ResponseWriter, r *http.Request) {
	if app.CatalogFile == "" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	http.ServeFile(w, r, app.CatalogFile)
}

type facetsResponse struct {
	Albums       int                `json:"albums"`
	Years        []int              `json:"years"`
	Genres       []facet.GenreCount `json:"genres"`
	DefaultYear  *int               `json:"default_year"`
	DefaultGenre *string            `json:"default_genre"`
}

// Facets returns the years and ranked genres. ?limit=N trims the genres.
func (app *Application) Facets(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	resp := facetsResponse{
		Albums: app.Catalog.Len(),
		Years:  app.Index.Years,
		Genres: app.Index.TopGenres(limit),
	}
	if resp.Years == nil {
		resp.Years = []int{}
	}
	if resp.Genres == nil {
		resp.Genres = []facet.GenreCount{}
	}
	if year, ok := app.Index.DefaultYear(); ok {
		resp.DefaultYear = &year
	}
	if genre, ok := app.Index.DefaultGenre(); ok {
		resp.DefaultGenre = &genre
	}
	writeJSON(w, http.StatusOK, resp)
}

// facetFromQuery reads mode and value, falling back to the defaults of the
// index when value is absent.
func (app *Application) facetFromQuery(r *http.Request) (roulette.Facet, error) {
	q := r.URL.Query()
	modeParam := q.Get("mode")
	if modeParam == "" {
		modeParam = string(roulette.ModeYear)
	}
	mode, err := roulette.ParseMode(modeParam)
	if err != nil {
		return roulette.Facet{}, err
	}
	value := strings.TrimSpace(q.Get("value"))
	if value == "" {
		switch mode {
		case roulette.ModeYear:
			if year, ok := app.Index.DefaultYear(); ok {
				value = strconv.Itoa(year)
			}
		case roulette.ModeGenre:
			value, _ = app.Index.DefaultGenre()
		}
	}
	return roulette.Facet{Mode: mode, Value: value}, nil
}

// Roll draws one album for the requested facet without touching the
// session. An empty pool answers 204. ?cover=1 resolves the cover first.
func (app *Application) Roll(w http.ResponseWriter, r *http.Request) {
	f, err := app.facetFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	album, err := app.Picker.PickFromCatalog(app.Catalog, f)
	if errors.Is(err, roulette.ErrEmptyPool) {
		metrics.Rolls.WithLabelValues(string(f.Mode), metrics.OutcomeEmpty).Inc()
		w.WriteHeader(http.StatusNoContent)
		return
	}
	metrics.Rolls.WithLabelValues(string(f.Mode), metrics.OutcomePicked).Inc()

	out := newAlbumJSON(album)
	if cover, _ := strconv.ParseBool(r.URL.Query().Get("cover")); cover {
		out.CoverURL = artwork.Resolve(r.Context(), app.Covers, album.ReleaseName, album.ArtistName)
	}
	writeJSON(w, http.StatusOK, out)
}

// Cover looks up artwork for ?title=&artist=. Failures answer an empty url.
func (app *Application) Cover(w http.ResponseWriter, r *http.Request) {
	title := strings.TrimSpace(r.URL.Query().Get("title"))
	artist := strings.TrimSpace(r.URL.Query().Get("artist"))
	if title == "" && artist == "" {
		writeError(w, http.StatusBadRequest, "title or artist is required")
		return
	}
	url := artwork.Resolve(r.Context(), app.Covers, title, artist)
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

type sessionResponse struct {
	Mode    string         `json:"mode"`
	Year    int            `json:"year"`
	Genre   string         `json:"genre"`
	Current *selectionJSON `json:"current"`
}

func (app *Application) writeSession(w http.ResponseWriter, status int) {
	f := app.Session.Filter()
	writeJSON(w, status, sessionResponse{
		Mode:    string(f.Mode),
		Year:    f.Year,
		Genre:   f.Genre,
		Current: newSelectionJSON(app.Session.Current()),
	})
}

func (app *Application) SessionState(w http.ResponseWriter, r *http.Request) {
	app.writeSession(w, http.StatusOK)
}

// SessionMode switches between year and genre mode: {"mode":"genre"}.
func (app *Application) SessionMode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mode string `json:"mode"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	mode, err := roulette.ParseMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	app.Session.SetMode(mode)
	app.writeSession(w, http.StatusOK)
}

// SessionSelect picks the facet value: {"year":1994} or {"genre":"Jazz"}.
// Nothing changes unless every given value is known.
func (app *Application) SessionSelect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Year  *int    `json:"year"`
		Genre *string `json:"genre"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Year == nil && req.Genre == nil {
		writeError(w, http.StatusBadRequest, "year or genre is required")
		return
	}
	if err := app.Session.Select(req.Year, req.Genre); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	app.writeSession(w, http.StatusOK)
}

// SessionRoll rolls the session. An empty pool answers 204 and leaves the
// current pick unchanged.
func (app *Application) SessionRoll(w http.ResponseWriter, r *http.Request) {
	if _, err := app.Session.Roll(r.Context()); err != nil {
		if errors.Is(err, roulette.ErrEmptyPool) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	app.writeSession(w, http.StatusOK)
}
