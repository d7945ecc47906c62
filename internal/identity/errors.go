package identity

import "errors"

// Input errors.
var (
	ErrMissingFields = errors.New("all fields are required")
	ErrInvalidRole   = errors.New("invalid role")
)

// Registration and lookup errors.
var (
	ErrEmailExists  = errors.New("user already registered")
	ErrUserNotFound = errors.New("user not found")
)

// Authentication errors.
var (
	ErrInvalidCredentials = errors.New("invalid password")
	ErrChallengeFailed    = errors.New("wrong email or answer")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
)

// Server faults. Callers log these; the rest are expected outcomes.
var (
	ErrHashing          = errors.New("error hashing password")
	ErrStoreUnavailable = errors.New("user store unavailable")
)
