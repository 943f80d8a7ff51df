package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers map this to an error flash and a redirect to the campground list.
var ErrNotFound = errors.New("not found")

// ErrValidationText is the message of ErrValidation. Wrapped errors read
// "<context>: validation error: <detail>".
const ErrValidationText = "validation error"

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing title, negative price, no images).
var ErrValidation = errors.New(ErrValidationText)

// ErrUnknownLocation is returned when the geocoder has no match for a
// location string.
var ErrUnknownLocation = errors.New("location could not be geocoded")

// ErrForbidden is returned when the acting user is not allowed to change a
// campground. Only the author may edit or delete it.
var ErrForbidden = errors.New("forbidden")
