package geocode_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/yelp-camp/internal/domain"
	"github.com/pkordes/yelp-camp/internal/geocode"
)

const yosemiteResponse = `{
  "type": "FeatureCollection",
  "query": ["yosemite"],
  "features": [{
    "id": "poi.1",
    "type": "Feature",
    "place_name": "Yosemite National Park, California, United States",
    "center": [-119.5383, 37.8651],
    "geometry": {"type": "Point", "coordinates": [-119.5383, 37.8651]},
    "properties": {}
  }]
}`

func TestMapbox_Forward(t *testing.T) {
	var gotPath, gotToken, gotLimit string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.URL.Query().Get("access_token")
		gotLimit = r.URL.Query().Get("limit")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(yosemiteResponse))
	}))
	defer srv.Close()

	m := geocode.NewMapbox("pk.test", geocode.WithBaseURL(srv.URL))
	got, err := m.Forward(context.Background(), "Yosemite")

	require.NoError(t, err)
	assert.Equal(t, orb.Point{-119.5383, 37.8651}, got)
	assert.Equal(t, "/geocoding/v5/mapbox.places/Yosemite.json", gotPath)
	assert.Equal(t, "pk.test", gotToken)
	assert.Equal(t, "1", gotLimit)
}

func TestMapbox_Forward_EscapesQuery(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(yosemiteResponse))
	}))
	defer srv.Close()

	m := geocode.NewMapbox("pk.test", geocode.WithBaseURL(srv.URL))
	_, err := m.Forward(context.Background(), "Moab, UT")

	require.NoError(t, err)
	assert.Equal(t, "/geocoding/v5/mapbox.places/Moab, UT.json", gotPath)
}

func TestMapbox_Forward_NoFeatures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"type":"FeatureCollection","features":[]}`))
	}))
	defer srv.Close()

	m := geocode.NewMapbox("pk.test", geocode.WithBaseURL(srv.URL))
	_, err := m.Forward(context.Background(), "Atlantis")

	assert.ErrorIs(t, err, domain.ErrUnknownLocation)
}

func TestMapbox_Forward_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	m := geocode.NewMapbox("bad", geocode.WithBaseURL(srv.URL))
	_, err := m.Forward(context.Background(), "Yosemite")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.NotErrorIs(t, err, domain.ErrUnknownLocation)
}

func TestMapbox_Forward_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	m := geocode.NewMapbox("pk.test", geocode.WithBaseURL(srv.URL))
	_, err := m.Forward(context.Background(), "Yosemite")

	assert.Error(t, err)
}
