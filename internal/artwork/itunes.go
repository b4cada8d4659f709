package artwork

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"
)

// DefaultITunesURL is the public iTunes Search API endpoint.
const DefaultITunesURL = "https://itunes.apple.com/search"

// ITunes looks up album covers through the iTunes Search API. The zero value
// is ready for use.
type ITunes struct {
	// BaseURL defaults to DefaultITunesURL.
	BaseURL string
	// HTTP defaults to a client with a 10 second timeout.
	HTTP *http.Client
	// Limiter paces outgoing requests. Nil means unpaced.
	Limiter *rate.Limiter
}

var _ Provider = (*ITunes)(nil)

var defaultHTTPClient = &http.Client{Timeout: 10 * time.Second}

// NewITunes returns a client that sends at most one request every
// interval. The public API allows roughly 20 requests a minute.
func NewITunes(baseURL string, interval time.Duration) *ITunes {
	c := &ITunes{BaseURL: baseURL}
	if interval > 0 {
		c.Limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
	return c
}

func (c *ITunes) Name() string { return "itunes" }

// Lookup searches for "<title> <artist>" and returns the first result's
// artwork, upscaled from the 100x100 thumbnail to 500x500.
func (c *ITunes) Lookup(ctx context.Context, title, artist string) (string, error) {
	client := c.HTTP
	if client == nil {
		client = defaultHTTPClient
	}
	base := c.BaseURL
	if base == "" {
		base = DefaultITunesURL
	}
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("waiting for itunes limiter: %w", err)
		}
	}

	params := url.Values{
		"term":   {strings.TrimSpace(title + " " + artist)},
		"entity": {"album"},
		"limit":  {"1"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("building itunes request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("itunes search error: %s", resp.Status)
	}

	var body struct {
		ResultCount int `json:"resultCount"`
		Results     []struct {
			CollectionName string `json:"collectionName"`
			ArtistName     string `json:"artistName"`
			ArtworkURL100  string `json:"artworkUrl100"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decoding itunes response: %w", err)
	}
	if len(body.Results) == 0 || body.Results[0].ArtworkURL100 == "" {
		return "", ErrNotFound
	}
	return UpscaleITunes(body.Results[0].ArtworkURL100), nil
}

// UpscaleITunes swaps the 100x100 size token of an iTunes artwork URL for
// 500x500.
func UpscaleITunes(artworkURL string) string {
	return strings.Replace(artworkURL, "100x100", "500x500", 1)
}
