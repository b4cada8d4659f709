// Package server exposes the roulette over HTTP: facets, stateless picks,
// cover lookups and the interactive session, plus the catalog file itself
// and Prometheus metrics.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ademuri/album-roulette/internal/artwork"
	"github.com/ademuri/album-roulette/internal/catalog"
	"github.com/ademuri/album-roulette/internal/facet"
	"github.com/ademuri/album-roulette/internal/logging"
	"github.com/ademuri/album-roulette/internal/roulette"
	"github.com/ademuri/album-roulette/internal/session"
)

// CatalogPath is where the catalog file is served.
const CatalogPath = "/music.csv"

// Application bundles the dependencies of the HTTP handlers.
type Application struct {
	Catalog *catalog.Catalog
	Index   facet.Index
	Picker  *roulette.Picker
	Covers  artwork.Provider
	Session *session.Session
	// CatalogFile is served at CatalogPath when set.
	CatalogFile string

	log zerolog.Logger
}

// New builds an Application over c. covers may be nil.
func New(c *catalog.Catalog, picker *roulette.Picker, covers artwork.Provider, catalogFile string) *Application {
	if picker == nil {
		picker = roulette.DefaultPicker()
	}
	sess := session.New(c, picker, covers)
	return &Application{
		Catalog:     c,
		Index:       sess.Index(),
		Picker:      picker,
		Covers:      covers,
		Session:     sess,
		CatalogFile: catalogFile,
		log:         logging.WithComponent("server"),
	}
}

// Routes returns the HTTP handler for the application.
func (app *Application) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(app.requestLogger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", app.Health)
	r.Get(CatalogPath, app.CatalogFileHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/facets", app.Facets)
		r.Get("/roll", app.Roll)
		r.Get("/cover", app.Cover)

		r.Route("/session", func(r chi.Router) {
			r.Get("/", app.SessionState)
			r.Post("/mode", app.SessionMode)
			r.Post("/select", app.SessionSelect)
			r.Post("/roll", app.SessionRoll)
		})
	})
	return r
}

func (app *Application) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		app.log.Debug().
			Str("request_id", chimiddleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// NewHTTPServer wraps the routes in an http.Server listening on addr.
func (app *Application) NewHTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           app.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
}
