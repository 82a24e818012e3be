package auth

import "errors"

var (
	// ErrUnauthorized represents missing or invalid service tokens.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidSubject is returned when a token is requested for an empty service name.
	ErrInvalidSubject = errors.New("service name is required")
	// ErrNotConfigured signals that no signing secret was provided.
	ErrNotConfigured = errors.New("service token secret not configured")
)
