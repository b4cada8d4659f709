// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	OutcomePicked = "picked"
	OutcomeEmpty  = "empty"

	OutcomeFound = "found"
	OutcomeNone  = "none"
	OutcomeError = "error"
	OutcomeStale = "stale"
)

var (
	// CatalogAlbums is the number of albums in the loaded catalog.
	CatalogAlbums = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "roulette_catalog_albums",
		Help: "Number of albums in the loaded catalog.",
	})

	// CatalogRowErrors counts malformed cells seen while loading.
	CatalogRowErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roulette_catalog_row_errors_total",
		Help: "Malformed catalog cells, by column.",
	}, []string{"column"})

	// CatalogLoadFailures counts loads that fell back to an empty catalog.
	CatalogLoadFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roulette_catalog_load_failures_total",
		Help: "Catalog loads that failed and produced an empty catalog.",
	})

	// Rolls counts random picks by facet mode and outcome.
	Rolls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roulette_rolls_total",
		Help: "Random picks, by facet mode and outcome.",
	}, []string{"mode", "outcome"})

	// ArtworkLookups counts cover lookups by provider and outcome.
	ArtworkLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roulette_artwork_lookups_total",
		Help: "Cover art lookups, by provider and outcome.",
	}, []string{"provider", "outcome"})

	// ArtworkLookupDuration observes cover lookup latency.
	ArtworkLookupDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "roulette_artwork_lookup_duration_seconds",
		Help:    "Cover art lookup latency.",
		Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"provider"})
)
