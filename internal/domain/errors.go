package domain

import "errors"

var (
	// ErrUnauthenticated is returned by operations that require a signed-in
	// user when no user id is present.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrNotFound is returned when a structurally required record is missing.
	ErrNotFound = errors.New("not found")

	// ErrPrimaryWallet is returned when a primary wallet is deleted directly.
	ErrPrimaryWallet = errors.New("primary wallet cannot be deleted")
)
