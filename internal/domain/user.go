package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is an authenticated identity. Accounts themselves are managed by the
// identity provider; the application only records id and username so authors
// can be shown next to their campgrounds and reviews.
type User struct {
	ID       uuid.UUID
	Username string
}

// Review is a rating left on a campground. Reviews are created elsewhere and
// are read here only to render the campground detail page.
type Review struct {
	ID        uuid.UUID
	Body      string
	Rating    int
	Author    User
	CreatedAt time.Time
}
