package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pkordes/yelp-camp/internal/domain"
)

// UserRepo records authenticated identities so authors can be displayed.
type UserRepo interface {
	// Upsert stores the user, refreshing the username if the id is known.
	Upsert(ctx context.Context, u domain.User) error
}

// pgUserRepo is the Postgres implementation of UserRepo.
type pgUserRepo struct {
	db db
}

// NewUserRepo constructs a UserRepo backed by the provided db connection.
func NewUserRepo(db db) UserRepo {
	return &pgUserRepo{db: db}
}

// Upsert inserts the user or updates the username of an existing row.
func (r *pgUserRepo) Upsert(ctx context.Context, u domain.User) error {
	const q = `
		INSERT INTO users (id, username)
		VALUES (@id, @username)
		ON CONFLICT (id) DO UPDATE SET username = EXCLUDED.username`

	if _, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": u.ID, "username": u.Username}); err != nil {
		return fmt.Errorf("repo.UserRepo.Upsert: %w", err)
	}
	return nil
}
