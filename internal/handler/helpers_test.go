package handler_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/yelp-camp/internal/domain"
	"github.com/pkordes/yelp-camp/internal/flash"
	"github.com/pkordes/yelp-camp/internal/handler"
	"github.com/pkordes/yelp-camp/internal/middleware"
)

// mockCampgroundServicer is a test double for handler.CampgroundServicer.
// Set only the method fields your test needs.
type mockCampgroundServicer struct {
	list      func(ctx context.Context) ([]domain.Campground, error)
	get       func(ctx context.Context, id uuid.UUID) (domain.Campground, error)
	getDetail func(ctx context.Context, id uuid.UUID) (domain.Campground, error)
	create    func(ctx context.Context, in domain.CampgroundInput, uploads []domain.Upload, author domain.User) (domain.Campground, error)
	update    func(ctx context.Context, id uuid.UUID, in domain.CampgroundInput, uploads []domain.Upload, deleteFilenames []string, actor domain.User) (domain.Campground, error)
	delete    func(ctx context.Context, id uuid.UUID, actor domain.User) error
}

func (m *mockCampgroundServicer) List(ctx context.Context) ([]domain.Campground, error) {
	return m.list(ctx)
}
func (m *mockCampgroundServicer) Get(ctx context.Context, id uuid.UUID) (domain.Campground, error) {
	return m.get(ctx, id)
}
func (m *mockCampgroundServicer) GetDetail(ctx context.Context, id uuid.UUID) (domain.Campground, error) {
	return m.getDetail(ctx, id)
}
func (m *mockCampgroundServicer) Create(ctx context.Context, in domain.CampgroundInput, uploads []domain.Upload, author domain.User) (domain.Campground, error) {
	return m.create(ctx, in, uploads, author)
}
func (m *mockCampgroundServicer) Update(ctx context.Context, id uuid.UUID, in domain.CampgroundInput, uploads []domain.Upload, deleteFilenames []string, actor domain.User) (domain.Campground, error) {
	return m.update(ctx, id, in, uploads, deleteFilenames, actor)
}
func (m *mockCampgroundServicer) Delete(ctx context.Context, id uuid.UUID, actor domain.User) error {
	return m.delete(ctx, id, actor)
}

// compile-time check: mockCampgroundServicer must satisfy handler.CampgroundServicer.
var _ handler.CampgroundServicer = (*mockCampgroundServicer)(nil)

// mockMapFeeder returns a fixed collection or error.
type mockMapFeeder struct {
	fc  *geojson.FeatureCollection
	err error
}

func (m *mockMapFeeder) Feed(context.Context) (*geojson.FeatureCollection, error) {
	return m.fc, m.err
}

var _ handler.MapFeeder = (*mockMapFeeder)(nil)

// flashed is one message queued through recordingFlasher.
type flashed struct {
	Kind flash.Kind
	Msg  string
}

// recordingFlasher remembers queued messages instead of writing cookies.
type recordingFlasher struct {
	added []flashed
}

func (f *recordingFlasher) Add(_ http.ResponseWriter, _ *http.Request, kind flash.Kind, msg string) error {
	f.added = append(f.added, flashed{Kind: kind, Msg: msg})
	return nil
}

func (f *recordingFlasher) Pop(http.ResponseWriter, *http.Request) flash.Messages {
	return flash.Messages{}
}

func (f *recordingFlasher) errors() []string {
	var out []string
	for _, m := range f.added {
		if m.Kind == flash.Error {
			out = append(out, m.Msg)
		}
	}
	return out
}

var _ handler.Flasher = (*recordingFlasher)(nil)

// ---- helpers ---------------------------------------------------------------

var (
	ranger   = domain.User{ID: uuid.MustParse("7b0b3a52-8c1e-4e59-9d43-3f8f1b1f2a11"), Username: "ranger"}
	intruder = domain.User{ID: uuid.MustParse("0c6f2d1e-5a47-4b7f-8e2d-9a3c4b5d6e7f"), Username: "intruder"}
)

// newTestRouter wires a Server with the given mocks into a chi router with
// the same request-shaping middleware main.go installs. A non-nil user is
// treated as signed in on every request.
func newTestRouter(svc handler.CampgroundServicer, user *domain.User) (http.Handler, *recordingFlasher) {
	return newTestRouterWithFeed(svc, &mockMapFeeder{fc: geojson.NewFeatureCollection()}, user)
}

func newTestRouterWithFeed(svc handler.CampgroundServicer, feed handler.MapFeeder, user *domain.User) (http.Handler, *recordingFlasher) {
	return newTestRouterWithOptions(svc, feed, user, handler.Options{})
}

func newTestRouterWithOptions(svc handler.CampgroundServicer, feed handler.MapFeeder, user *domain.User, opts handler.Options) (http.Handler, *recordingFlasher) {
	flashes := &recordingFlasher{}
	srv := handler.NewServer(svc, feed, flashes, opts)

	r := chi.NewRouter()
	r.Use(middleware.MethodOverride)
	if user != nil {
		u := *user
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(middleware.WithUser(req.Context(), u)))
			})
		})
	}
	srv.Routes(r)
	return r, flashes
}

// formFile is one file part of a multipart form.
type formFile struct {
	name    string
	content string
}

// multipartBody builds a campground form body. Every file is sent under the
// "image" field.
func multipartBody(t *testing.T, fields map[string][]string, files []formFile) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, vals := range fields {
		for _, v := range vals {
			require.NoError(t, mw.WriteField(name, v))
		}
	}
	for _, f := range files {
		part, err := mw.CreateFormFile("image", f.name)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func validFields() map[string][]string {
	return map[string][]string{
		"campground[title]":       {"Tumbling Creek"},
		"campground[location]":    {"Yosemite"},
		"campground[description]": {"Quiet sites by the river"},
		"campground[price]":       {"18.50"},
	}
}
