package service

import "errors"

// Errors returned by the service. Anything else is an internal failure,
// usually from the persistence layer, and is wrapped with %w.
var (
	// ErrNotFound means the caller has no baby, or the requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden means the baby account is suspended.
	ErrForbidden = errors.New("account is suspended")
	// ErrUnauthorized means the login credentials were rejected.
	ErrUnauthorized = errors.New("invalid username or password")
	// ErrInvalidInput means an admin form failed validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrConflict means a unique value such as a username is already taken.
	ErrConflict = errors.New("already exists")
)
