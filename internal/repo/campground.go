// Package repo contains all database access logic for the YelpCamp server.
// Each resource has an interface plus a Postgres implementation; campgrounds
// also have a MongoDB implementation selected by configuration.
// No business logic lives here, only queries and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/paulmach/orb"

	"github.com/pkordes/yelp-camp/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test.
// Begin on a pgx.Tx opens a savepoint, so multi-statement writes stay nested
// inside the test transaction.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// CampgroundRepo defines the persistence operations for Campgrounds.
// The service layer depends on this interface, not on a concrete store.
type CampgroundRepo interface {
	// Create inserts a new campground with its images and returns the persisted
	// record with the store-assigned id and timestamps.
	Create(ctx context.Context, c domain.Campground) (domain.Campground, error)

	// GetByID retrieves a campground and its images.
	// Returns domain.ErrNotFound if no campground with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Campground, error)

	// GetDetail is GetByID plus the author and every review with its author.
	// Reviews is an empty, non-nil slice when the campground has none.
	GetDetail(ctx context.Context, id uuid.UUID) (domain.Campground, error)

	// List returns all campgrounds with their images, oldest first.
	List(ctx context.Context) ([]domain.Campground, error)

	// Update overwrites title, location, description and price.
	// Geometry, author and images are left untouched.
	// Returns domain.ErrNotFound if no campground with that ID exists.
	Update(ctx context.Context, id uuid.UUID, in domain.CampgroundInput) (domain.Campground, error)

	// AppendImages adds images after the existing ones, preserving order.
	// Returns domain.ErrNotFound if no campground with that ID exists.
	AppendImages(ctx context.Context, id uuid.UUID, images []domain.Image) error

	// RemoveImages removes every image whose filename is in filenames.
	// Unknown filenames are ignored.
	RemoveImages(ctx context.Context, id uuid.UUID, filenames []string) error

	// Delete removes a campground and its reviews, returning the removed record
	// with its images. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) (domain.Campground, error)
}

// pgCampgroundRepo is the Postgres implementation of CampgroundRepo.
type pgCampgroundRepo struct {
	db db
}

// NewCampgroundRepo constructs a CampgroundRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewCampgroundRepo(db db) CampgroundRepo {
	return &pgCampgroundRepo{db: db}
}

const campgroundColumns = `id, title, location, description, price, longitude, latitude, author_id, created_at, updated_at`

// pgForeignKeyViolation is the SQLSTATE raised when an insert references a
// missing parent row.
const pgForeignKeyViolation = "23503"

// Create inserts the campground row and its images in one transaction.
func (r *pgCampgroundRepo) Create(ctx context.Context, c domain.Campground) (domain.Campground, error) {
	const q = `
		INSERT INTO campgrounds (title, location, description, price, longitude, latitude, author_id)
		VALUES (@title, @location, @description, @price, @longitude, @latitude, @author_id)
		RETURNING ` + campgroundColumns

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.Campground{}, fmt.Errorf("repo.CampgroundRepo.Create: begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after Commit

	args := pgx.NamedArgs{
		"title":       c.Title,
		"location":    c.Location,
		"description": c.Description,
		"price":       c.Price,
		"longitude":   c.Geometry.Lon(),
		"latitude":    c.Geometry.Lat(),
		"author_id":   c.AuthorID,
	}
	created, err := scanCampground(tx.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Campground{}, fmt.Errorf("repo.CampgroundRepo.Create: %w", err)
	}

	if err := insertImages(ctx, tx, created.ID, c.Images); err != nil {
		return domain.Campground{}, fmt.Errorf("repo.CampgroundRepo.Create: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Campground{}, fmt.Errorf("repo.CampgroundRepo.Create: commit: %w", err)
	}

	created.Images = append([]domain.Image{}, c.Images...)
	return created, nil
}

// GetByID retrieves a campground by primary key, with images.
func (r *pgCampgroundRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Campground, error) {
	c, err := r.getByID(ctx, id)
	if err != nil {
		return domain.Campground{}, fmt.Errorf("repo.CampgroundRepo.GetByID: %w", err)
	}
	return c, nil
}

func (r *pgCampgroundRepo) getByID(ctx context.Context, id uuid.UUID) (domain.Campground, error) {
	const q = `SELECT ` + campgroundColumns + ` FROM campgrounds WHERE id = @id`

	c, err := scanCampground(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Campground{}, err
	}
	images, err := listImages(ctx, r.db, []uuid.UUID{c.ID})
	if err != nil {
		return domain.Campground{}, err
	}
	c.Images = images[c.ID]
	if c.Images == nil {
		c.Images = []domain.Image{}
	}
	return c, nil
}

// GetDetail retrieves a campground with its author and reviews expanded.
func (r *pgCampgroundRepo) GetDetail(ctx context.Context, id uuid.UUID) (domain.Campground, error) {
	const authorQ = `SELECT id, username FROM users WHERE id = @id`
	const reviewsQ = `
		SELECT r.id, r.body, r.rating, r.created_at, u.id, u.username
		FROM reviews r
		JOIN users u ON u.id = r.author_id
		WHERE r.campground_id = @campground_id
		ORDER BY r.created_at`

	c, err := r.getByID(ctx, id)
	if err != nil {
		return domain.Campground{}, fmt.Errorf("repo.CampgroundRepo.GetDetail: %w", err)
	}

	var author domain.User
	err = r.db.QueryRow(ctx, authorQ, pgx.NamedArgs{"id": c.AuthorID}).Scan(&author.ID, &author.Username)
	switch {
	case err == nil:
		c.Author = &author
	case errors.Is(err, pgx.ErrNoRows):
		// The author row is missing; render the campground without one.
	default:
		return domain.Campground{}, fmt.Errorf("repo.CampgroundRepo.GetDetail: author: %w", err)
	}

	rows, err := r.db.Query(ctx, reviewsQ, pgx.NamedArgs{"campground_id": c.ID})
	if err != nil {
		return domain.Campground{}, fmt.Errorf("repo.CampgroundRepo.GetDetail: reviews: %w", err)
	}
	defer rows.Close()

	c.Reviews = []domain.Review{}
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(&rv.ID, &rv.Body, &rv.Rating, &rv.CreatedAt, &rv.Author.ID, &rv.Author.Username); err != nil {
			return domain.Campground{}, fmt.Errorf("repo.CampgroundRepo.GetDetail: scan review: %w", err)
		}
		c.Reviews = append(c.Reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return domain.Campground{}, fmt.Errorf("repo.CampgroundRepo.GetDetail: reviews rows: %w", err)
	}

	return c, nil
}

// List returns every campground ordered by creation time, with images.
func (r *pgCampgroundRepo) List(ctx context.Context) ([]domain.Campground, error) {
	const q = `SELECT ` + campgroundColumns + ` FROM campgrounds ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.CampgroundRepo.List: %w", err)
	}
	defer rows.Close()

	camps := []domain.Campground{}
	ids := []uuid.UUID{}
	for rows.Next() {
		c, err := scanCampground(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.CampgroundRepo.List: scan: %w", err)
		}
		camps = append(camps, c)
		ids = append(ids, c.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.CampgroundRepo.List: rows: %w", err)
	}

	images, err := listImages(ctx, r.db, ids)
	if err != nil {
		return nil, fmt.Errorf("repo.CampgroundRepo.List: %w", err)
	}
	for i := range camps {
		camps[i].Images = images[camps[i].ID]
		if camps[i].Images == nil {
			camps[i].Images = []domain.Image{}
		}
	}
	return camps, nil
}

// Update overwrites the scalar fields of a campground and returns the result.
func (r *pgCampgroundRepo) Update(ctx context.Context, id uuid.UUID, in domain.CampgroundInput) (domain.Campground, error) {
	const q = `
		UPDATE campgrounds
		SET title       = @title,
		    location    = @location,
		    description = @description,
		    price       = @price,
		    updated_at  = now()
		WHERE id = @id
		RETURNING ` + campgroundColumns

	args := pgx.NamedArgs{
		"id":          id,
		"title":       in.Title,
		"location":    in.Location,
		"description": in.Description,
		"price":       in.Price,
	}

	c, err := scanCampground(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Campground{}, fmt.Errorf("repo.CampgroundRepo.Update: %w", err)
	}
	images, err := listImages(ctx, r.db, []uuid.UUID{c.ID})
	if err != nil {
		return domain.Campground{}, fmt.Errorf("repo.CampgroundRepo.Update: %w", err)
	}
	c.Images = images[c.ID]
	if c.Images == nil {
		c.Images = []domain.Image{}
	}
	return c, nil
}

// AppendImages inserts images after the campground's existing ones.
func (r *pgCampgroundRepo) AppendImages(ctx context.Context, id uuid.UUID, images []domain.Image) error {
	if len(images) == 0 {
		return nil
	}
	if err := insertImages(ctx, r.db, id, images); err != nil {
		return fmt.Errorf("repo.CampgroundRepo.AppendImages: %w", err)
	}
	return nil
}

// RemoveImages deletes the campground's images whose filename is listed.
func (r *pgCampgroundRepo) RemoveImages(ctx context.Context, id uuid.UUID, filenames []string) error {
	const q = `
		DELETE FROM campground_images
		WHERE campground_id = @id
		  AND filename = ANY(@filenames)`

	if len(filenames) == 0 {
		return nil
	}
	if _, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "filenames": filenames}); err != nil {
		return fmt.Errorf("repo.CampgroundRepo.RemoveImages: %w", err)
	}
	return nil
}

// Delete removes a campground. Images and reviews go with it through
// ON DELETE CASCADE; the images are read first so callers can clean up
// the object store.
func (r *pgCampgroundRepo) Delete(ctx context.Context, id uuid.UUID) (domain.Campground, error) {
	const q = `DELETE FROM campgrounds WHERE id = @id RETURNING ` + campgroundColumns

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.Campground{}, fmt.Errorf("repo.CampgroundRepo.Delete: begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after Commit

	images, err := listImages(ctx, tx, []uuid.UUID{id})
	if err != nil {
		return domain.Campground{}, fmt.Errorf("repo.CampgroundRepo.Delete: %w", err)
	}

	c, err := scanCampground(tx.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Campground{}, fmt.Errorf("repo.CampgroundRepo.Delete: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Campground{}, fmt.Errorf("repo.CampgroundRepo.Delete: commit: %w", err)
	}

	c.Images = images[id]
	if c.Images == nil {
		c.Images = []domain.Image{}
	}
	return c, nil
}

// querier is the subset of db used by helpers that run either on the pool or
// inside a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// insertImages appends images to a campground in slice order.
// A missing campground surfaces as domain.ErrNotFound.
func insertImages(ctx context.Context, q querier, id uuid.UUID, images []domain.Image) error {
	const stmt = `
		INSERT INTO campground_images (campground_id, url, filename)
		SELECT @id, u.url, u.filename
		FROM unnest(@urls::text[], @filenames::text[]) WITH ORDINALITY AS u(url, filename, ord)
		ORDER BY u.ord`

	if len(images) == 0 {
		return nil
	}
	urls := make([]string, len(images))
	filenames := make([]string, len(images))
	for i, img := range images {
		urls[i] = img.URL
		filenames[i] = img.Filename
	}

	_, err := q.Exec(ctx, stmt, pgx.NamedArgs{"id": id, "urls": urls, "filenames": filenames})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert images: %w", err)
	}
	return nil
}

// listImages returns the images of each campground in ids, keyed by campground.
func listImages(ctx context.Context, q querier, ids []uuid.UUID) (map[uuid.UUID][]domain.Image, error) {
	const stmt = `
		SELECT campground_id, url, filename
		FROM campground_images
		WHERE campground_id = ANY(@ids)
		ORDER BY position`

	out := make(map[uuid.UUID][]domain.Image, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := q.Query(ctx, stmt, pgx.NamedArgs{"ids": ids})
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			campID uuid.UUID
			img    domain.Image
		)
		if err := rows.Scan(&campID, &img.URL, &img.Filename); err != nil {
			return nil, fmt.Errorf("list images: scan: %w", err)
		}
		out[campID] = append(out[campID], img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list images: rows: %w", err)
	}
	return out, nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scanCampground to be
// reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanCampground maps a row selected with campgroundColumns into a domain.Campground.
func scanCampground(s scanner) (domain.Campground, error) {
	var (
		c        domain.Campground
		lon, lat float64
	)

	err := s.Scan(&c.ID, &c.Title, &c.Location, &c.Description, &c.Price,
		&lon, &lat, &c.AuthorID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Campground{}, domain.ErrNotFound
		}
		return domain.Campground{}, err
	}

	c.Geometry = orb.Point{lon, lat}
	return c, nil
}
