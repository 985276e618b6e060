package repositories

import "errors"

// Sentinel errors shared by all repositories. Handlers map these onto the
// HTTP surface: ErrNotFound -> 404, ErrConflict -> 409.
var (
	ErrNotFound = errors.New("document not found")
	ErrConflict = errors.New("conflicting state")
)
