package auth

import "errors"

var (
	// ErrMissingCredential is returned when no bearer token is present
	ErrMissingCredential = errors.New("missing credential")

	// ErrInvalidCredential is returned when the token fails verification or lacks id/role claims
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrServerMisconfigured is returned when no verification secret is configured
	ErrServerMisconfigured = errors.New("server misconfigured: verification secret not set")

	// ErrUnauthenticated is returned when an operation needs an identity and none is present
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden is returned when the identity's role is not allowed
	ErrForbidden = errors.New("forbidden")
)
