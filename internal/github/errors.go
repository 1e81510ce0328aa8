package github

import "errors"

// Common GitHub API errors.
var (
	// ErrNotFound is returned when a resource does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is returned when authentication fails.
	ErrUnauthorized = errors.New("unauthorized: check your GitHub token")
	// ErrForbidden is returned when authorization fails.
	ErrForbidden = errors.New("forbidden: token may lack required scope (needs 'contents: write')")
	// ErrConflict is returned when a resource was changed concurrently.
	ErrConflict = errors.New("conflict: resource changed")
	// ErrValidation is returned for 422, e.g. a tag that already has a release.
	ErrValidation = errors.New("validation failed")
)
