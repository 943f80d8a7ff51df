package service_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/pkordes/yelp-camp/internal/domain"
	"github.com/pkordes/yelp-camp/internal/repo"
	"github.com/pkordes/yelp-camp/internal/service"
)

// mockCampgroundRepo is a hand-written test double for repo.CampgroundRepo.
// Each method is a function field; set only the ones your test needs.
type mockCampgroundRepo struct {
	create       func(ctx context.Context, c domain.Campground) (domain.Campground, error)
	getByID      func(ctx context.Context, id uuid.UUID) (domain.Campground, error)
	getDetail    func(ctx context.Context, id uuid.UUID) (domain.Campground, error)
	list         func(ctx context.Context) ([]domain.Campground, error)
	update       func(ctx context.Context, id uuid.UUID, in domain.CampgroundInput) (domain.Campground, error)
	appendImages func(ctx context.Context, id uuid.UUID, images []domain.Image) error
	removeImages func(ctx context.Context, id uuid.UUID, filenames []string) error
	delete       func(ctx context.Context, id uuid.UUID) (domain.Campground, error)
}

func (m *mockCampgroundRepo) Create(ctx context.Context, c domain.Campground) (domain.Campground, error) {
	return m.create(ctx, c)
}
func (m *mockCampgroundRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Campground, error) {
	return m.getByID(ctx, id)
}
func (m *mockCampgroundRepo) GetDetail(ctx context.Context, id uuid.UUID) (domain.Campground, error) {
	return m.getDetail(ctx, id)
}
func (m *mockCampgroundRepo) List(ctx context.Context) ([]domain.Campground, error) {
	return m.list(ctx)
}
func (m *mockCampgroundRepo) Update(ctx context.Context, id uuid.UUID, in domain.CampgroundInput) (domain.Campground, error) {
	return m.update(ctx, id, in)
}
func (m *mockCampgroundRepo) AppendImages(ctx context.Context, id uuid.UUID, images []domain.Image) error {
	return m.appendImages(ctx, id, images)
}
func (m *mockCampgroundRepo) RemoveImages(ctx context.Context, id uuid.UUID, filenames []string) error {
	return m.removeImages(ctx, id, filenames)
}
func (m *mockCampgroundRepo) Delete(ctx context.Context, id uuid.UUID) (domain.Campground, error) {
	return m.delete(ctx, id)
}

// compile-time check: mockCampgroundRepo must satisfy repo.CampgroundRepo.
var _ repo.CampgroundRepo = (*mockCampgroundRepo)(nil)

// mockUserRepo records every upserted user.
type mockUserRepo struct {
	upserted []domain.User
	err      error
}

func (m *mockUserRepo) Upsert(_ context.Context, u domain.User) error {
	m.upserted = append(m.upserted, u)
	return m.err
}

var _ repo.UserRepo = (*mockUserRepo)(nil)

// mockGeocoder returns a fixed answer and remembers the queries it saw.
type mockGeocoder struct {
	point   orb.Point
	err     error
	queries []string
}

func (m *mockGeocoder) Forward(_ context.Context, query string) (orb.Point, error) {
	m.queries = append(m.queries, query)
	return m.point, m.err
}

var _ service.Geocoder = (*mockGeocoder)(nil)

// mockImageStore names each upload after its original filename and records
// every call it receives.
type mockImageStore struct {
	uploaded  []string
	deleted   []string
	uploadErr error
	deleteErr error
}

func (m *mockImageStore) Upload(_ context.Context, u domain.Upload) (domain.Image, error) {
	if m.uploadErr != nil {
		return domain.Image{}, m.uploadErr
	}
	m.uploaded = append(m.uploaded, u.Filename)
	key := "YelpCamp/" + u.Filename
	return domain.Image{URL: "https://cdn.example.com/" + key, Filename: key}, nil
}

func (m *mockImageStore) Delete(_ context.Context, filename string) error {
	m.deleted = append(m.deleted, filename)
	return m.deleteErr
}

var _ service.ImageStore = (*mockImageStore)(nil)
