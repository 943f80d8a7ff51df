// Package domain contains the core data types for the YelpCamp application.
// It is imported by every other internal package (repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// Campground is a user-submitted listing. It is the only aggregate the
// application writes; reviews and users are owned elsewhere and only read.
//
// AuthorID and Geometry are assigned once, when the campground is created,
// and are never changed by an edit.
type Campground struct {
	ID          uuid.UUID
	Title       string
	Location    string
	Description string
	Price       float64

	// Geometry is the geocoded point for Location, longitude first.
	Geometry orb.Point

	// Images are kept in upload order. Filename is unique per campground.
	Images []Image

	AuthorID uuid.UUID

	// Author and Reviews are only populated by detail lookups.
	Author  *User
	Reviews []Review

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Image is a stored picture of a campground.
// Filename is the object store key and is what deletions refer to.
type Image struct {
	URL      string
	Filename string
}

// Filenames returns the filename of every image of the campground, in order.
func (c Campground) Filenames() []string {
	out := make([]string, 0, len(c.Images))
	for _, img := range c.Images {
		out = append(out, img.Filename)
	}
	return out
}

// IsAuthoredBy reports whether u created the campground. The zero User
// authors nothing.
func (c Campground) IsAuthoredBy(u User) bool {
	return u.ID != uuid.Nil && c.AuthorID == u.ID
}
