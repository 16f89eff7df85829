package model

import "errors"

var (
	// ErrNotFound is returned when a row is absent or not owned by the caller.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is returned when no usable identity is present.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidInput is returned when a request misses required fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrStorage wraps blob store failures.
	ErrStorage = errors.New("storage error")
	// ErrSigningFailed wraps failures of the signing transaction.
	ErrSigningFailed = errors.New("signing failed")
	// ErrEmailTaken is returned on registration with an existing email.
	ErrEmailTaken = errors.New("email is taken")
	// ErrInvalidCredentials is returned when a credential login does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrTokenRevoked is returned for a session token revoked by logout.
	ErrTokenRevoked = errors.New("session token revoked")
)
