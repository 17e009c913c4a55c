// Package common defines shared constants and sentinel errors used across
// the postkeeper server. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal         = errors.New("internal error")
	ErrorUnauthorized     = errors.New("unauthenticated")
	ErrorValidation       = errors.New("validation error")
	ErrInvalidCredentials = errors.New("invalid email/password")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")

	// Upload validation errors. Reported to the client as-is.
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrEmptyPayload         = errors.New("empty payload")
	ErrPayloadTooLarge      = errors.New("payload too large")

	// ErrStorage wraps transaction and filesystem failures.
	ErrStorage = errors.New("storage error")
)
