package domain

import "errors"

// Token errors.
var (
	// ErrInvalidToken covers signature, parse and expiry failures during decode.
	ErrInvalidToken = errors.New("invalid auth token")
	// ErrMalformedToken means decode produced anything other than exactly one
	// identity binding.
	ErrMalformedToken = errors.New("malformed auth token")
	// ErrUserMismatch means the decoded identity does not correspond to a live,
	// matching identity record.
	ErrUserMismatch = errors.New("auth token user mismatch")
)

// Authorization errors.
var (
	// ErrAuthenticationRequired marks requests that reached an
	// identity-requiring endpoint without an established principal.
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrForbidden              = errors.New("tenant mismatch")
	ErrPermissionDenied       = errors.New("permission denied")
)

// External collaborator errors.
var (
	ErrIdentityNotFound          = errors.New("identity not found")
	ErrIdentitySourceUnavailable = errors.New("identity store unavailable")
	ErrConfigSourceUnavailable   = errors.New("configuration source unavailable")
	ErrConfigEntryNotFound       = errors.New("configuration entry not found")
)
