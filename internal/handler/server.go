// Package handler implements the HTTP handlers for the YelpCamp site.
// All handlers are methods on Server. Methods are split into topic files
// (health.go, campground.go, views.go) but share the same Server struct so
// they can reach its dependencies.
package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/paulmach/orb/geojson"

	"github.com/pkordes/yelp-camp/internal/domain"
	"github.com/pkordes/yelp-camp/internal/flash"
)

// CampgroundServicer defines the business operations the campground handlers
// depend on. Defining the interface here, in the consumer package, lets
// handler tests inject a mock without touching storage or remote services.
type CampgroundServicer interface {
	List(ctx context.Context) ([]domain.Campground, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Campground, error)
	GetDetail(ctx context.Context, id uuid.UUID) (domain.Campground, error)
	Create(ctx context.Context, in domain.CampgroundInput, uploads []domain.Upload, author domain.User) (domain.Campground, error)
	Update(ctx context.Context, id uuid.UUID, in domain.CampgroundInput, uploads []domain.Upload, deleteFilenames []string, actor domain.User) (domain.Campground, error)
	Delete(ctx context.Context, id uuid.UUID, actor domain.User) error
}

// MapFeeder builds the GeoJSON document behind the cluster map.
type MapFeeder interface {
	Feed(ctx context.Context) (*geojson.FeatureCollection, error)
}

// Flasher queues and drains one-shot notifications for a browser session.
type Flasher interface {
	Add(w http.ResponseWriter, r *http.Request, kind flash.Kind, msg string) error
	Pop(w http.ResponseWriter, r *http.Request) flash.Messages
}

// Options tunes a Server. The zero value is usable.
type Options struct {
	// MapboxToken is handed to the browser map widgets. Maps are omitted
	// when it is empty.
	MapboxToken string

	// MaxMemory is how many bytes of a multipart form are held in memory
	// before spilling file parts to disk. Defaults to 8 MiB.
	MaxMemory int64

	// ThumbnailQuery is merged into image URLs on the edit form, e.g.
	// "w=200" for a resizing proxy in front of the bucket. Images are
	// linked unchanged when it is empty.
	ThumbnailQuery string
}

// Server holds the dependencies shared by every handler.
type Server struct {
	camps   CampgroundServicer
	feed    MapFeeder
	flashes Flasher
	views   *views
	opts    Options
}

// NewServer constructs the Server with all its dependencies.
func NewServer(camps CampgroundServicer, feed MapFeeder, flashes Flasher, opts Options) *Server {
	if opts.MaxMemory <= 0 {
		opts.MaxMemory = 8 << 20
	}
	return &Server{
		camps:   camps,
		feed:    feed,
		flashes: flashes,
		views:   mustParseViews(opts.ThumbnailQuery),
		opts:    opts,
	}
}
