// Package geocode resolves free-text location descriptions to coordinates
// via the Google Maps Geocoding API, with an optional result cache.
package geocode

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Client resolves a free-text location description.
type Client interface {
	// Geocode resolves query to a Result. An unmatchable query returns
	// Matched=false, not an error; errors are transport or API failures.
	Geocode(ctx context.Context, query string) (*Result, error)
}

// Result holds the geocoding output for a query.
type Result struct {
	Latitude          float64 `json:"latitude"`
	Longitude         float64 `json:"longitude"`
	NormalizedAddress string  `json:"normalized_address"`
	Quality           string  `json:"quality"` // "rooftop", "range", "centroid", "approximate"
	Matched           bool    `json:"matched"`
}

// Cache stores geocode results keyed by normalized query hash. Get
// returns (nil, nil) on a miss. Negative results (Matched=false) are
// cached too so repeated bad queries skip the API.
type Cache interface {
	GetGeocode(ctx context.Context, key string) (*Result, error)
	SetGeocode(ctx context.Context, key string, result *Result) error
}

// Option configures the geocoder.
type Option func(*geocoder)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(g *geocoder) {
		g.httpClient = hc
	}
}

// WithBaseURL overrides the Geocoding API endpoint (tests).
func WithBaseURL(u string) Option {
	return func(g *geocoder) {
		g.baseURL = u
	}
}

// WithRateLimit sets the requests-per-second limit for API calls.
func WithRateLimit(rps float64) Option {
	return func(g *geocoder) {
		g.limiter = rate.NewLimiter(rate.Limit(rps), int(rps))
	}
}

// WithCache attaches a result cache.
func WithCache(c Cache) Option {
	return func(g *geocoder) {
		g.cache = c
	}
}

type geocoder struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	limiter    *rate.Limiter
	cache      Cache
}

// NewClient creates a geocoding Client using the given Google API key.
func NewClient(apiKey string, opts ...Option) Client {
	g := &geocoder{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiKey:     apiKey,
		baseURL:    googleGeocodeURL,
		limiter:    rate.NewLimiter(10, 10),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Geocode resolves a single query, consulting the cache first.
func (g *geocoder) Geocode(ctx context.Context, query string) (*Result, error) {
	key := cacheKey(query)

	if g.cache != nil {
		cached, err := g.cache.GetGeocode(ctx, key)
		if err == nil && cached != nil {
			return cached, nil
		}
	}

	result, err := g.geocodeGoogle(ctx, query)
	if err != nil {
		return nil, err
	}

	if g.cache != nil {
		_ = g.cache.SetGeocode(ctx, key, result)
	}
	return result, nil
}
