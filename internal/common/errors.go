// Package common defines shared constants and sentinel errors used across
// client layers of gophmarket. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal = errors.New("internal error")

	// Validation errors: every candidate rejected by the size/type policy
	// matches ErrValidation.
	ErrValidation = errors.New("validation error")

	// Configuration errors (missing upload destination, disabled publishing).
	ErrNotConfigured = errors.New("not configured")
)
