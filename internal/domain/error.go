package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound          = errors.New("entity not found")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrNotLoggedIn       = errors.New("no user is logged in")
	ErrNoActiveSession   = errors.New("no active chat session")
	ErrMalformedReport   = errors.New("malformed report payload")
	ErrChannelNoResponse = errors.New("model channel returned no content")
)
