package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist or has been soft-deleted.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field, unknown tag id).
// Handlers should map this to HTTP 400 Bad Request.
var ErrValidation = errors.New("validation error")

// ErrConflict is returned when a write would violate a uniqueness rule or
// when the requested state already holds (e.g. every tag already attached).
// Handlers should map this to HTTP 409 Conflict.
var ErrConflict = errors.New("conflict")

// ErrTagNotAttached is returned when a tag removal names a tag the customer
// does not carry. It matches ErrNotFound, so callers that only care about
// 404 need no special case.
var ErrTagNotAttached = fmt.Errorf("tag not attached: %w", ErrNotFound)

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors is a validation failure with per-field detail.
// errors.Is(FieldErrors{...}, ErrValidation) reports true.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	parts := make([]string, len(fe))
	for i, f := range fe {
		parts[i] = f.Field + ": " + f.Message
	}
	return "validation error: " + strings.Join(parts, "; ")
}

// Unwrap lets errors.Is match ErrValidation.
func (fe FieldErrors) Unwrap() error {
	return ErrValidation
}
