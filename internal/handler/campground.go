package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pkordes/yelp-camp/internal/domain"
	"github.com/pkordes/yelp-camp/internal/middleware"
)

// ListCampgrounds handles GET /campgrounds.
func (s *Server) ListCampgrounds(w http.ResponseWriter, r *http.Request) {
	camps, err := s.camps.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "index", page{Title: "All Campgrounds", Campgrounds: camps})
}

// NewCampgroundForm handles GET /campgrounds/new.
func (s *Server) NewCampgroundForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "new", page{Title: "New Campground"})
}

// CreateCampground handles POST /campgrounds.
func (s *Server) CreateCampground(w http.ResponseWriter, r *http.Request) {
	author, _ := middleware.UserFrom(r.Context())

	sub, err := s.parseSubmission(r)
	if err != nil {
		s.rejectSubmission(w, r, "/campgrounds/new", err)
		return
	}
	defer sub.Close()

	created, err := s.camps.Create(r.Context(), sub.input, sub.uploads, author)
	if err != nil {
		s.rejectSubmission(w, r, "/campgrounds/new", err)
		return
	}

	s.redirectWithFlash(w, r, "/campgrounds/"+created.ID.String(), successFlash, "New Campground Added")
}

// ShowCampground handles GET /campgrounds/{id}.
func (s *Server) ShowCampground(w http.ResponseWriter, r *http.Request) {
	id, ok := campgroundID(r)
	if !ok {
		s.notFound(w, r)
		return
	}

	camp, err := s.camps.GetDetail(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.notFound(w, r)
			return
		}
		s.fail(w, r, err)
		return
	}

	s.render(w, r, http.StatusOK, "show", page{Title: camp.Title, Campground: camp})
}

// EditCampgroundForm handles GET /campgrounds/{id}/edit.
func (s *Server) EditCampgroundForm(w http.ResponseWriter, r *http.Request) {
	id, ok := campgroundID(r)
	if !ok {
		s.notFound(w, r)
		return
	}

	camp, err := s.camps.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.notFound(w, r)
			return
		}
		s.fail(w, r, err)
		return
	}
	if user, _ := middleware.UserFrom(r.Context()); !camp.IsAuthoredBy(user) {
		s.forbidden(w, r, id)
		return
	}

	s.render(w, r, http.StatusOK, "edit", page{
		Title:      "Edit " + camp.Title,
		Campground: camp,
		Form:       formFromCampground(camp),
	})
}

// UpdateCampground handles PUT /campgrounds/{id}.
func (s *Server) UpdateCampground(w http.ResponseWriter, r *http.Request) {
	id, ok := campgroundID(r)
	if !ok {
		s.notFound(w, r)
		return
	}
	editURL := "/campgrounds/" + id.String() + "/edit"

	sub, err := s.parseSubmission(r)
	if err != nil {
		s.rejectSubmission(w, r, editURL, err)
		return
	}
	defer sub.Close()

	user, _ := middleware.UserFrom(r.Context())
	if _, err := s.camps.Update(r.Context(), id, sub.input, sub.uploads, sub.deleteImages, user); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.notFound(w, r)
			return
		}
		if errors.Is(err, domain.ErrForbidden) {
			s.forbidden(w, r, id)
			return
		}
		s.rejectSubmission(w, r, editURL, err)
		return
	}

	s.redirectWithFlash(w, r, "/campgrounds/"+id.String(), successFlash, "Campground Edited Successfully")
}

// DeleteCampground handles DELETE /campgrounds/{id}.
// The outcome does not depend on whether the campground existed.
func (s *Server) DeleteCampground(w http.ResponseWriter, r *http.Request) {
	if id, ok := campgroundID(r); ok {
		user, _ := middleware.UserFrom(r.Context())
		err := s.camps.Delete(r.Context(), id, user)
		if errors.Is(err, domain.ErrForbidden) {
			s.forbidden(w, r, id)
			return
		}
		if err != nil {
			s.fail(w, r, err)
			return
		}
	}
	s.redirectWithFlash(w, r, "/campgrounds", successFlash, "Campground Successfully Deleted")
}

// GetMapFeed handles GET /campgrounds/geo.
func (s *Server) GetMapFeed(w http.ResponseWriter, r *http.Request) {
	fc, err := s.feed.Feed(r.Context())
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("map feed failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	body, err := json.Marshal(fc)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("map feed encode failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// rejectSubmission sends fixable form errors back to the form with an error
// flash and renders the failure page for everything else.
func (s *Server) rejectSubmission(w http.ResponseWriter, r *http.Request, formURL string, err error) {
	switch {
	case errors.Is(err, errUploadTooLarge):
		s.redirectWithFlash(w, r, formURL, errorFlash, "Your images are too large to upload")
	case isUserError(err):
		s.redirectWithFlash(w, r, formURL, errorFlash, userMessage(err))
	default:
		s.fail(w, r, err)
	}
}

// campgroundID parses the {id} path parameter. Malformed ids cannot name a
// campground, so callers treat them as not found.
func campgroundID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
