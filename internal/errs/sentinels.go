// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInsufficientBalance indicates joker consumption was blocked
	// because the balance is zero.
	ErrInsufficientBalance = errors.New("insufficient joker balance")

	// ErrWindowClosed indicates the day is outside the retroactive answer window.
	ErrWindowClosed = errors.New("answer window closed")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., username taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrUnauthorized indicates failed authentication/authorization.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrValidation indicates rejected caller input. Wrap with %w and
	// a detail suffix; the transport maps it to a 400.
	ErrValidation = errors.New("validation")
)
