package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/yelp-camp/internal/middleware"
)

// Routes registers every endpoint on r. Global middleware (request id,
// logging, method override, authentication) must already be installed on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/campgrounds", http.StatusFound)
	})
	r.Get("/healthz", s.GetHealth)

	r.Route("/campgrounds", func(r chi.Router) {
		r.Get("/", s.ListCampgrounds)
		r.Get("/geo", s.GetMapFeed)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser(s.requireSignIn))
			r.Get("/new", s.NewCampgroundForm)
			r.Post("/", s.CreateCampground)
			r.Get("/{id}/edit", s.EditCampgroundForm)
			r.Put("/{id}", s.UpdateCampground)
			r.Delete("/{id}", s.DeleteCampground)
		})

		r.Get("/{id}", s.ShowCampground)
	})
}

// requireSignIn turns anonymous visitors away from the write routes.
func (s *Server) requireSignIn(w http.ResponseWriter, r *http.Request) {
	s.redirectWithFlash(w, r, "/campgrounds", errorFlash, "You must be signed in first!")
}
