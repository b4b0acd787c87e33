package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness constraint was violated.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotConfigured indicates required platform credentials are missing
	// from the configuration; retrying without operator action is pointless.
	ErrNotConfigured = errors.New("platform not configured")
	// ErrNotConnected indicates no access token is on record for the
	// platform; the OAuth connect flow has to complete first.
	ErrNotConnected = errors.New("platform not connected")
)
