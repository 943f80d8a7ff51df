package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pkordes/yelp-camp/internal/domain"
	"github.com/pkordes/yelp-camp/internal/flash"
)

const (
	successFlash = flash.Success
	errorFlash   = flash.Error
)

// redirectWithFlash queues msg and sends the browser to target.
func (s *Server) redirectWithFlash(w http.ResponseWriter, r *http.Request, target string, kind flash.Kind, msg string) {
	if err := s.flashes.Add(w, r, kind, msg); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("could not queue flash message")
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// notFound is the shared response for a campground that does not exist.
func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.redirectWithFlash(w, r, "/campgrounds", errorFlash, "Campground Not Found")
}

// forbidden turns a user away from a campground they did not create.
func (s *Server) forbidden(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	s.redirectWithFlash(w, r, "/campgrounds/"+id.String(), errorFlash, "You do not have permission to do that!")
}

// fail logs err and renders the generic failure page. No detail about the
// cause reaches the browser.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	zerolog.Ctx(r.Context()).Error().Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("request failed")
	s.render(w, r, http.StatusInternalServerError, "error", page{Title: "Something went wrong"})
}

// isUserError reports whether err is something the visitor can fix by
// resubmitting the form.
func isUserError(err error) bool {
	return errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrUnknownLocation)
}

// userMessage extracts the human-readable part from a wrapped sentinel error.
// e.g. "service.CampgroundService.Create: validation error: title is required" → "Title is required"
func userMessage(err error) string {
	if errors.Is(err, domain.ErrUnknownLocation) {
		return "We could not find that location on the map"
	}
	msg := err.Error()
	const marker = domain.ErrValidationText + ": "
	if i := strings.LastIndex(msg, marker); i >= 0 {
		msg = msg[i+len(marker):]
	}
	if msg == "" {
		return msg
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}
