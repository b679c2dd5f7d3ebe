// Package common defines shared constants and sentinel errors used across
// the culturehub server, its transports and the admin CLI. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal   = errors.New("internal error")
	ErrorValidation = errors.New("validation error")
	ErrHashing      = errors.New("password hashing failed")

	// Credential errors. Unknown email and wrong password share one value.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Bearer token errors.
	ErrMissingToken     = errors.New("missing token")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrTokenExpired     = errors.New("token expired")
	ErrMalformedToken   = errors.New("malformed token")

	// ErrUnauthenticated is what a remote caller sees when the auth service
	// rejected its token without saying why.
	ErrUnauthenticated = errors.New("unauthenticated")

	// Authorization errors.
	ErrForbidden = errors.New("forbidden")

	// Password reset errors.
	ErrInvalidOrExpiredResetToken = errors.New("invalid or expired reset token")
)

// IsAuthError reports whether err means the caller could not be authenticated.
// Transports collapse all of these into one response so the cause is not revealed.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrMissingToken) ||
		errors.Is(err, ErrInvalidSignature) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrMalformedToken) ||
		errors.Is(err, ErrUnauthenticated)
}
