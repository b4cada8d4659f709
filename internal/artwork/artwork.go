// Package artwork looks up cover art for an album. Lookups are best effort:
// callers use Resolve, which turns every failure into "no artwork".
package artwork

import (
	"context"
	"errors"
	"time"

	"github.com/ademuri/album-roulette/internal/logging"
	"github.com/ademuri/album-roulette/internal/metrics"
)

// ErrNotFound is returned by a Provider that has no image for the album.
var ErrNotFound = errors.New("no artwork found")

// Provider finds a cover image URL for an album title and artist.
type Provider interface {
	Lookup(ctx context.Context, title, artist string) (string, error)
	Name() string
}

// Chain tries each provider in order and returns the first image found.
type Chain []Provider

var _ Provider = Chain(nil)

func (c Chain) Name() string { return "chain" }

func (c Chain) Lookup(ctx context.Context, title, artist string) (string, error) {
	var firstErr error
	for _, p := range c {
		url, err := p.Lookup(ctx, title, artist)
		if err == nil && url != "" {
			return url, nil
		}
		if err != nil && !errors.Is(err, ErrNotFound) && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return "", firstErr
	}
	return "", ErrNotFound
}

// Resolve returns the cover URL for the album, or "" when there is none or
// the lookup failed for any reason. Failures are only logged at debug level.
func Resolve(ctx context.Context, p Provider, title, artist string) string {
	if p == nil {
		return ""
	}
	log := logging.WithComponent("artwork")
	start := time.Now()
	url, err := p.Lookup(ctx, title, artist)
	metrics.ArtworkLookupDuration.WithLabelValues(p.Name()).Observe(time.Since(start).Seconds())

	switch {
	case err == nil && url != "":
		metrics.ArtworkLookups.WithLabelValues(p.Name(), metrics.OutcomeFound).Inc()
		return url
	case err == nil || errors.Is(err, ErrNotFound):
		metrics.ArtworkLookups.WithLabelValues(p.Name(), metrics.OutcomeNone).Inc()
	default:
		metrics.ArtworkLookups.WithLabelValues(p.Name(), metrics.OutcomeError).Inc()
		log.Debug().Err(err).Str("title", title).Str("artist", artist).Msg("cover lookup failed")
	}
	return ""
}
