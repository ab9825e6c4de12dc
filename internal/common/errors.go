// Package common defines shared constants and sentinel errors used across
// the authority, the gateway and the client. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorValidation   = errors.New("validation error")

	// Credential errors. The texts travel as gRPC status messages and are
	// matched on the gateway side, so they must stay stable.
	ErrNoCredential = errors.New("no credential")
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// ErrAuthorityUnavailable means the credential authority (or one of its
	// backing stores) could not answer. It is never a login problem.
	ErrAuthorityUnavailable = errors.New("authority unavailable")

	// Gateway errors.
	ErrProtocolViolation    = errors.New("protocol violation")
	ErrConnectionSuperseded = errors.New("connection superseded")
	ErrConnectionClosed     = errors.New("connection closed")
)
