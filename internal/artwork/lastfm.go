package artwork

import (
	"context"
	"fmt"
	"time"

	"github.com/ademuri/lastfm-go/lastfm"
	"golang.org/x/time/rate"
)

// lastfmImage is one size of an album.getInfo image list.
type lastfmImage struct {
	Size string
	URL  string
}

// imageSizes ranks last.fm image sizes from largest to smallest.
var imageSizes = []string{"mega", "extralarge", "large", "medium", "small", ""}

// LastFM looks up album covers with last.fm's album.getInfo.
type LastFM struct {
	getInfo func(title, artist string) ([]lastfmImage, error)
	limiter *rate.Limiter
}

var _ Provider = (*LastFM)(nil)

// NewLastFM returns a provider backed by the last.fm API. Requests are
// paced to one per interval.
func NewLastFM(apiKey, secret string, interval time.Duration) *LastFM {
	client := lastfm.New(apiKey, secret)
	client.SetUserAgent("album-roulette/1.0")
	l := &LastFM{
		getInfo: func(title, artist string) ([]lastfmImage, error) {
			info, err := client.Album.GetInfo(lastfm.P{
				"artist":      artist,
				"album":       title,
				"autocorrect": 1,
			})
			if err != nil {
				return nil, err
			}
			images := make([]lastfmImage, 0, len(info.Images))
			for _, img := range info.Images {
				images = append(images, lastfmImage{Size: img.Size, URL: img.Url})
			}
			return images, nil
		},
	}
	if interval > 0 {
		l.limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
	return l
}

func (l *LastFM) Name() string { return "lastfm" }

// Lookup returns the largest image last.fm has for the album.
func (l *LastFM) Lookup(ctx context.Context, title, artist string) (string, error) {
	if l.limiter != nil {
		if err := l.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("waiting for last.fm limiter: %w", err)
		}
	}
	images, err := l.getInfo(title, artist)
	if err != nil {
		return "", fmt.Errorf("last.fm album.getInfo: %w", err)
	}
	return largestImage(images)
}

func largestImage(images []lastfmImage) (string, error) {
	for _, size := range imageSizes {
		for _, img := range images {
			if img.Size == size && img.URL != "" {
				return img.URL, nil
			}
		}
	}
	return "", ErrNotFound
}
