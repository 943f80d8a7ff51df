package domain

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// CampgroundInput carries the user-editable scalar fields of a campground,
// as submitted by the new and edit forms.
type CampgroundInput struct {
	Title       string  `validate:"required"`
	Location    string  `validate:"required"`
	Description string  `validate:"required"`
	Price       float64 `validate:"gte=0"`
}

// Normalize trims surrounding whitespace from the text fields.
func (in CampgroundInput) Normalize() CampgroundInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Location = strings.TrimSpace(in.Location)
	in.Description = strings.TrimSpace(in.Description)
	return in
}

// Validate checks the input and returns an error wrapping ErrValidation that
// names the first offending field.
func (in CampgroundInput) Validate() error {
	if math.IsNaN(in.Price) || math.IsInf(in.Price, 0) {
		return fmt.Errorf("%w: price must be a number", ErrValidation)
	}
	err := validate.Struct(in.Normalize())
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		field := strings.ToLower(fe.Field())
		if fe.Tag() == "gte" {
			return fmt.Errorf("%w: %s must not be negative", ErrValidation, field)
		}
		return fmt.Errorf("%w: %s is required", ErrValidation, field)
	}
	return fmt.Errorf("%w: %v", ErrValidation, err)
}

// Upload is one file submitted with a create or edit form.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}
