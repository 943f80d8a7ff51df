package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/yelp-camp/internal/domain"
	"github.com/pkordes/yelp-camp/internal/service"
)

func TestMapFeedService_Feed(t *testing.T) {
	a := domain.Campground{ID: uuid.New(), Title: "A", Location: "Yosemite", Geometry: yosemite}
	b := domain.Campground{ID: uuid.New(), Title: "B", Location: "Moab", Geometry: orb.Point{-109.5498, 38.5733}}
	svc := service.NewMapFeedService(&mockCampgroundRepo{
		list: func(context.Context) ([]domain.Campground, error) { return []domain.Campground{a, b}, nil },
	})

	fc, err := svc.Feed(context.Background())

	require.NoError(t, err)
	require.Len(t, fc.Features, 2)
	assert.Equal(t, yosemite, fc.Features[0].Geometry)
	assert.Equal(t, "A", fc.Features[0].Properties["title"])
	assert.Equal(t, "Yosemite", fc.Features[0].Properties["location"])
	assert.Equal(t, "/campgrounds/"+a.ID.String(), fc.Features[0].Properties["url"])
	assert.Equal(t, b.ID.String(), fc.Features[1].Properties["id"])
}

func TestMapFeedService_Feed_Empty(t *testing.T) {
	svc := service.NewMapFeedService(&mockCampgroundRepo{
		list: func(context.Context) ([]domain.Campground, error) { return []domain.Campground{}, nil },
	})

	fc, err := svc.Feed(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, fc.Features)
	assert.Empty(t, fc.Features)
}

func TestMapFeedService_Feed_Error(t *testing.T) {
	svc := service.NewMapFeedService(&mockCampgroundRepo{
		list: func(context.Context) ([]domain.Campground, error) { return nil, errors.New("db down") },
	})

	_, err := svc.Feed(context.Background())

	assert.ErrorContains(t, err, "db down")
}
