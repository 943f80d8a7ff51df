package service

import (
	"context"
	"fmt"

	"github.com/paulmach/orb/geojson"

	"github.com/pkordes/yelp-camp/internal/repo"
)

// MapFeedService assembles the GeoJSON feed behind the cluster map.
type MapFeedService struct {
	camps repo.CampgroundRepo
}

// NewMapFeedService constructs a MapFeedService backed by the provided repo.
func NewMapFeedService(camps repo.CampgroundRepo) *MapFeedService {
	return &MapFeedService{camps: camps}
}

// Feed returns one Point feature per campground, in list order.
// Each feature carries the campground's id, title, location, and detail URL.
func (s *MapFeedService) Feed(ctx context.Context) (*geojson.FeatureCollection, error) {
	camps, err := s.camps.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.MapFeedService.Feed: %w", err)
	}

	fc := geojson.NewFeatureCollection()
	for _, c := range camps {
		f := geojson.NewFeature(c.Geometry)
		f.ID = c.ID.String()
		f.Properties["id"] = c.ID.String()
		f.Properties["title"] = c.Title
		f.Properties["location"] = c.Location
		f.Properties["url"] = "/campgrounds/" + c.ID.String()
		fc.Append(f)
	}
	return fc, nil
}
