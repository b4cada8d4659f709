package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/ademuri/album-roulette/internal/catalog"
	"github.com/ademuri/album-roulette/internal/session"
)

// albumJSON is the wire form of an album. A missing rating is null.
type albumJSON struct {
	Position        int      `json:"position"`
	ReleaseName     string   `json:"release_name"`
	ArtistName      string   `json:"artist_name"`
	ReleaseDate     string   `json:"release_date"`
	ReleaseDateLong string   `json:"release_date_long,omitempty"`
	Year            *int     `json:"year"`
	ReleaseType     string   `json:"release_type"`
	PrimaryGenres   []string `json:"primary_genres"`
	SecondaryGenres []string `json:"secondary_genres"`
	Descriptors     []string `json:"descriptors"`
	AvgRating       *float64 `json:"avg_rating"`
	RatingCount     int      `json:"rating_count"`
	CoverURL        string   `json:"cover_url,omitempty"`
}

func newAlbumJSON(a catalog.Album) albumJSON {
	out := albumJSON{
		Position:        a.Position,
		ReleaseName:     a.ReleaseName,
		ArtistName:      a.ArtistName,
		ReleaseDate:     a.ReleaseDate.String(),
		ReleaseDateLong: a.ReleaseDate.Long(),
		ReleaseType:     a.ReleaseType,
		PrimaryGenres:   nonNil(a.PrimaryGenres),
		SecondaryGenres: nonNil(a.SecondaryGenres),
		Descriptors:     nonNil(a.Descriptors),
		RatingCount:     a.RatingCount,
	}
	if year, ok := a.Year(); ok {
		out.Year = &year
	}
	if a.HasRating() {
		rating := a.AvgRating
		out.AvgRating = &rating
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

type selectionJSON struct {
	Generation uint64    `json:"generation"`
	Mode       string    `json:"mode"`
	Value      string    `json:"value"`
	Cover      string    `json:"cover"`
	Album      albumJSON `json:"album"`
}

func newSelectionJSON(sel *session.Selection) *selectionJSON {
	if sel == nil {
		return nil
	}
	album := newAlbumJSON(sel.Album)
	album.CoverURL = sel.CoverURL
	return &selectionJSON{
		Generation: sel.Generation,
		Mode:       string(sel.Facet.Mode),
		Value:      sel.Facet.Value,
		Cover:      string(sel.Cover),
		Album:      album,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeJSON reads the request body into v. The body is limited to 64KB
// and unknown fields are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if r.Body == nil {
		return errors.New("empty body")
	}
	defer r.Body.Close()
	body := http.MaxBytesReader(w, r.Body, 64<<10)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if err == io.EOF {
			return errors.New("empty body")
		}
		return err
	}
	if dec.More() {
		return errors.New("extra data in request body")
	}
	return nil
}
