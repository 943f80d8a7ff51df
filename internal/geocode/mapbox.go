// Package geocode resolves free-text place names to coordinates.
package geocode

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/pkordes/yelp-camp/internal/domain"
)

// DefaultBaseURL is the public Mapbox API host.
const DefaultBaseURL = "https://api.mapbox.com"

// Mapbox is a forward-geocoding client for the Mapbox Places API.
type Mapbox struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

// Option configures a Mapbox client.
type Option func(*Mapbox)

// WithBaseURL points the client at a different API host (tests, proxies).
func WithBaseURL(u string) Option {
	return func(m *Mapbox) { m.baseURL = u }
}

// WithHTTPClient replaces the default client, which has a 10s timeout.
func WithHTTPClient(c *http.Client) Option {
	return func(m *Mapbox) { m.httpClient = c }
}

// NewMapbox returns a client authenticated with the given access token.
func NewMapbox(token string, opts ...Option) *Mapbox {
	m := &Mapbox{
		token:      token,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Forward returns the point of the best match for query.
// A query with no matches returns domain.ErrUnknownLocation.
func (m *Mapbox) Forward(ctx context.Context, query string) (orb.Point, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.buildURL(query), nil)
	if err != nil {
		return orb.Point{}, fmt.Errorf("geocode.Mapbox.Forward: build request: %w", err)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return orb.Point{}, fmt.Errorf("geocode.Mapbox.Forward: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return orb.Point{}, fmt.Errorf("geocode.Mapbox.Forward: unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return orb.Point{}, fmt.Errorf("geocode.Mapbox.Forward: read body: %w", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(body)
	if err != nil {
		return orb.Point{}, fmt.Errorf("geocode.Mapbox.Forward: decode: %w", err)
	}

	if len(fc.Features) == 0 {
		return orb.Point{}, fmt.Errorf("geocode.Mapbox.Forward: %q: %w", query, domain.ErrUnknownLocation)
	}

	point, ok := fc.Features[0].Geometry.(orb.Point)
	if !ok {
		return orb.Point{}, fmt.Errorf("geocode.Mapbox.Forward: first feature is a %s, not a Point",
			fc.Features[0].Geometry.GeoJSONType())
	}
	return point, nil
}

func (m *Mapbox) buildURL(query string) string {
	params := url.Values{}
	params.Set("access_token", m.token)
	params.Set("limit", "1")
	return fmt.Sprintf("%s/geocoding/v5/mapbox.places/%s.json?%s",
		m.baseURL, url.PathEscape(query), params.Encode())
}
