package handler

import (
	"errors"
	"fmt"
	"math"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/pkordes/yelp-camp/internal/domain"
)

// Form field names shared with the templates.
const (
	fieldTitle        = "campground[title]"
	fieldLocation     = "campground[location]"
	fieldDescription  = "campground[description]"
	fieldPrice        = "campground[price]"
	fieldImages       = "image"
	fieldDeleteImages = "deleteImages[]"
)

// errUploadTooLarge reports a body cut off by the max body size middleware.
var errUploadTooLarge = errors.New("upload too large")

// submission is a parsed new or edit form. Close releases the open upload
// files once the service is done with them.
type submission struct {
	input        domain.CampgroundInput
	uploads      []domain.Upload
	deleteImages []string
	files        []multipart.File
}

func (sub *submission) Close() {
	for _, f := range sub.files {
		_ = f.Close()
	}
}

// parseSubmission reads a campground form. Multipart and urlencoded bodies
// are both accepted; only multipart bodies can carry uploads.
// A malformed price is reported as a domain.ErrValidation.
func (s *Server) parseSubmission(r *http.Request) (*submission, error) {
	err := r.ParseMultipartForm(s.opts.MaxMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errUploadTooLarge
		}
		return nil, fmt.Errorf("parse form: %w", err)
	}

	sub := &submission{
		input: domain.CampgroundInput{
			Title:       r.PostForm.Get(fieldTitle),
			Location:    r.PostForm.Get(fieldLocation),
			Description: r.PostForm.Get(fieldDescription),
		},
		deleteImages: r.PostForm[fieldDeleteImages],
	}

	price := strings.TrimSpace(r.PostForm.Get(fieldPrice))
	if price == "" {
		return nil, fmt.Errorf("%w: price is required", domain.ErrValidation)
	}
	sub.input.Price, err = strconv.ParseFloat(price, 64)
	if err != nil || math.IsInf(sub.input.Price, 0) || math.IsNaN(sub.input.Price) {
		return nil, fmt.Errorf("%w: price must be a number", domain.ErrValidation)
	}

	if r.MultipartForm == nil {
		return sub, nil
	}
	for _, fh := range r.MultipartForm.File[fieldImages] {
		// Browsers submit an empty part when no file was chosen.
		if fh.Filename == "" && fh.Size == 0 {
			continue
		}
		f, err := fh.Open()
		if err != nil {
			sub.Close()
			return nil, fmt.Errorf("open upload %q: %w", fh.Filename, err)
		}
		sub.files = append(sub.files, f)
		sub.uploads = append(sub.uploads, domain.Upload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Content:     f,
		})
	}
	return sub, nil
}
