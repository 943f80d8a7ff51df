// Package service contains the business logic for the campground site.
// Services validate inputs, enforce business rules, and orchestrate the
// repositories, the geocoder, and the image store. No storage details live here.
package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/rs/zerolog"

	"github.com/pkordes/yelp-camp/internal/domain"
	"github.com/pkordes/yelp-camp/internal/repo"
)

// Geocoder resolves a free-text location to a point.
type Geocoder interface {
	Forward(ctx context.Context, query string) (orb.Point, error)
}

// ImageStore persists uploaded image bytes.
type ImageStore interface {
	Upload(ctx context.Context, u domain.Upload) (domain.Image, error)
	Delete(ctx context.Context, filename string) error
}

// CampgroundService implements the campground use cases.
type CampgroundService struct {
	camps  repo.CampgroundRepo
	users  repo.UserRepo
	geo    Geocoder
	images ImageStore
}

// NewCampgroundService constructs a CampgroundService from its collaborators.
func NewCampgroundService(camps repo.CampgroundRepo, users repo.UserRepo, geo Geocoder, images ImageStore) *CampgroundService {
	return &CampgroundService{camps: camps, users: users, geo: geo, images: images}
}

// List returns every campground with its images.
func (s *CampgroundService) List(ctx context.Context) ([]domain.Campground, error) {
	camps, err := s.camps.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.CampgroundService.List: %w", err)
	}
	return camps, nil
}

// Get returns a campground with its images but without author or reviews.
func (s *CampgroundService) Get(ctx context.Context, id uuid.UUID) (domain.Campground, error) {
	c, err := s.camps.GetByID(ctx, id)
	if err != nil {
		return domain.Campground{}, fmt.Errorf("service.CampgroundService.Get: %w", err)
	}
	return c, nil
}

// GetDetail returns a campground with its author and reviews expanded.
func (s *CampgroundService) GetDetail(ctx context.Context, id uuid.UUID) (domain.Campground, error) {
	c, err := s.camps.GetDetail(ctx, id)
	if err != nil {
		return domain.Campground{}, fmt.Errorf("service.CampgroundService.GetDetail: %w", err)
	}
	return c, nil
}

// Create geocodes the location, uploads every image in order, and persists
// the campground authored by author. Nothing already written is undone when
// a later step fails.
func (s *CampgroundService) Create(ctx context.Context, in domain.CampgroundInput, uploads []domain.Upload, author domain.User) (domain.Campground, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return domain.Campground{}, fmt.Errorf("service.CampgroundService.Create: %w", err)
	}
	if len(uploads) == 0 {
		return domain.Campground{}, fmt.Errorf("service.CampgroundService.Create: %w: at least one image is required", domain.ErrValidation)
	}
	if author.ID == uuid.Nil {
		return domain.Campground{}, fmt.Errorf("service.CampgroundService.Create: %w: author is required", domain.ErrValidation)
	}

	point, err := s.geo.Forward(ctx, in.Location)
	if err != nil {
		return domain.Campground{}, fmt.Errorf("service.CampgroundService.Create: geocode: %w", err)
	}

	images, err := s.uploadAll(ctx, uploads)
	if err != nil {
		return domain.Campground{}, fmt.Errorf("service.CampgroundService.Create: %w", err)
	}

	if err := s.users.Upsert(ctx, author); err != nil {
		return domain.Campground{}, fmt.Errorf("service.CampgroundService.Create: record author: %w", err)
	}

	created, err := s.camps.Create(ctx, domain.Campground{
		Title:       in.Title,
		Location:    in.Location,
		Description: in.Description,
		Price:       in.Price,
		Geometry:    point,
		Images:      images,
		AuthorID:    author.ID,
	})
	if err != nil {
		return domain.Campground{}, fmt.Errorf("service.CampgroundService.Create: %w", err)
	}
	return created, nil
}

// Update overwrites the editable fields, appends newly uploaded images, and
// removes the images named in deleteFilenames from the store and the record.
// Only the author may update a campground; anyone else gets ErrForbidden.
// The location is not re-geocoded: geometry keeps its creation value.
func (s *CampgroundService) Update(ctx context.Context, id uuid.UUID, in domain.CampgroundInput, uploads []domain.Upload, deleteFilenames []string, actor domain.User) (domain.Campground, error) {
	if _, err := s.authorize(ctx, id, actor); err != nil {
		return domain.Campground{}, fmt.Errorf("service.CampgroundService.Update: %w", err)
	}

	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return domain.Campground{}, fmt.Errorf("service.CampgroundService.Update: %w", err)
	}

	updated, err := s.camps.Update(ctx, id, in)
	if err != nil {
		return domain.Campground{}, fmt.Errorf("service.CampgroundService.Update: %w", err)
	}

	if len(uploads) > 0 {
		added, err := s.uploadAll(ctx, uploads)
		if err != nil {
			return domain.Campground{}, fmt.Errorf("service.CampgroundService.Update: %w", err)
		}
		if err := s.camps.AppendImages(ctx, id, added); err != nil {
			return domain.Campground{}, fmt.Errorf("service.CampgroundService.Update: %w", err)
		}
		updated.Images = append(updated.Images, added...)
	}

	doomed := ownedFilenames(updated.Filenames(), deleteFilenames)
	if len(doomed) == 0 {
		return updated, nil
	}

	for _, filename := range doomed {
		if err := s.images.Delete(ctx, filename); err != nil {
			return domain.Campground{}, fmt.Errorf("service.CampgroundService.Update: %w", err)
		}
	}
	if err := s.camps.RemoveImages(ctx, id, doomed); err != nil {
		return domain.Campground{}, fmt.Errorf("service.CampgroundService.Update: %w", err)
	}

	updated.Images = withoutFilenames(updated.Images, doomed)
	return updated, nil
}

// Delete removes the campground and its reviews, then deletes its images
// from the store. Deleting an id that does not exist succeeds. Only the
// author may delete a campground; anyone else gets ErrForbidden. Store
// failures are logged and do not fail the call.
func (s *CampgroundService) Delete(ctx context.Context, id uuid.UUID, actor domain.User) error {
	_, err := s.authorize(ctx, id, actor)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("service.CampgroundService.Delete: %w", err)
	}

	removed, err := s.camps.Delete(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("service.CampgroundService.Delete: %w", err)
	}

	for _, img := range removed.Images {
		if err := s.images.Delete(ctx, img.Filename); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).
				Str("campground_id", id.String()).
				Str("filename", img.Filename).
				Msg("image cleanup failed")
		}
	}
	return nil
}

// authorize loads the campground and checks that actor is its author.
func (s *CampgroundService) authorize(ctx context.Context, id uuid.UUID, actor domain.User) (domain.Campground, error) {
	c, err := s.camps.GetByID(ctx, id)
	if err != nil {
		return domain.Campground{}, err
	}
	if !c.IsAuthoredBy(actor) {
		return domain.Campground{}, fmt.Errorf("%w: %s is not the author", domain.ErrForbidden, actor.Username)
	}
	return c, nil
}

func (s *CampgroundService) uploadAll(ctx context.Context, uploads []domain.Upload) ([]domain.Image, error) {
	images := make([]domain.Image, 0, len(uploads))
	for _, u := range uploads {
		img, err := s.images.Upload(ctx, u)
		if err != nil {
			return nil, fmt.Errorf("upload %q: %w", u.Filename, err)
		}
		images = append(images, img)
	}
	return images, nil
}

// ownedFilenames returns the distinct entries of requested that appear in
// owned, in request order.
func ownedFilenames(owned, requested []string) []string {
	var out []string
	for _, f := range requested {
		if slices.Contains(owned, f) && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

func withoutFilenames(images []domain.Image, filenames []string) []domain.Image {
	drop := make(map[string]bool, len(filenames))
	for _, f := range filenames {
		drop[f] = true
	}

	kept := make([]domain.Image, 0, len(images))
	for _, img := range images {
		if !drop[img.Filename] {
			kept = append(kept, img)
		}
	}
	return kept
}
