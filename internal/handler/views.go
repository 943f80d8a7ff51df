package handler

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/pkordes/yelp-camp/internal/domain"
	"github.com/pkordes/yelp-camp/internal/flash"
	"github.com/pkordes/yelp-camp/internal/middleware"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"index", "new", "show", "edit", "error"}

// views holds one parsed template set per page, each combined with the layout.
type views struct {
	pages map[string]*template.Template
}

var templateFuncs = template.FuncMap{
	"price": func(p float64) string {
		return "$" + strconv.FormatFloat(p, 'f', 2, 64)
	},
	"stars": func(n int) string {
		return fmt.Sprintf("Rated: %d stars", n)
	},
	"date": func(rv domain.Review) string {
		return rv.CreatedAt.Format("Jan 2, 2006")
	},
}

func mustParseViews(thumbnailQuery string) *views {
	funcs := template.FuncMap{
		"thumbnail": func(raw string) string { return thumbnailURL(raw, thumbnailQuery) },
	}
	v := &views{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t := template.Must(template.New("layout.html").Funcs(templateFuncs).Funcs(funcs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html"))
		v.pages[name] = t
	}
	return v
}

// thumbnailURL merges query into the query string of raw. raw is returned
// unchanged when query is empty or either part does not parse.
func thumbnailURL(raw, query string) string {
	if raw == "" || query == "" {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	extra, err := url.ParseQuery(query)
	if err != nil {
		return raw
	}
	q := u.Query()
	for k, vs := range extra {
		q[k] = vs
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// page is the data every template receives. Pages read only the fields
// they need.
type page struct {
	Title       string
	CurrentUser *domain.User
	Flash       flash.Messages
	MapboxToken string

	Campgrounds []domain.Campground
	Campground  domain.Campground
	Form        campgroundForm
}

// IsAuthor reports whether the signed-in user created the page's campground.
func (p page) IsAuthor() bool {
	return p.CurrentUser != nil && p.Campground.IsAuthoredBy(*p.CurrentUser)
}

// campgroundForm echoes the editable fields into the new and edit forms.
type campgroundForm struct {
	Title       string
	Location    string
	Description string
	Price       string
}

func formFromCampground(c domain.Campground) campgroundForm {
	return campgroundForm{
		Title:       c.Title,
		Location:    c.Location,
		Description: c.Description,
		Price:       strconv.FormatFloat(c.Price, 'f', -1, 64),
	}
}

// render executes the named page into a buffer and writes it with status.
// Pending flash messages and the signed-in user are filled in here.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, p page) {
	t, ok := s.views.pages[name]
	if !ok {
		zerolog.Ctx(r.Context()).Error().Str("page", name).Msg("unknown page")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if u, ok := middleware.UserFrom(r.Context()); ok {
		p.CurrentUser = &u
	}
	p.Flash = s.flashes.Pop(w, r)
	p.MapboxToken = s.opts.MapboxToken

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", p); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("page", name).Msg("render failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
