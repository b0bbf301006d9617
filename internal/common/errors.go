// Package common defines shared constants and sentinel errors used across
// the scribblenest server, its repositories and the admin tooling. Callers
// should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrForbidden  = errors.New("forbidden")
	ErrValidation = errors.New("validation error")

	// Identity errors.
	ErrDuplicateUser      = errors.New("user already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")

	// Session token errors (missing, malformed or badly signed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Upload errors.
	ErrNoFileProvided   = errors.New("no file uploaded")
	ErrUnsupportedMedia = errors.New("unsupported media type")
	ErrFileTooLarge     = errors.New("file too large")

	// ErrStoreUnavailable is returned when the document store could not be
	// reached after all connection attempts.
	ErrStoreUnavailable = errors.New("store unavailable")
)
