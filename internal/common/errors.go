// Package common defines shared constants and sentinel errors used across
// client and server layers of notekeeper. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Crypto errors.
	ErrEntropySource  = errors.New("entropy source unavailable")
	ErrDerivation     = errors.New("key derivation misconfigured")
	ErrAuthentication = errors.New("authentication failed")

	// Codec errors.
	ErrFormat = errors.New("invalid payload format")

	// Sync-cycle errors.
	ErrServerUnreachable = errors.New("server unreachable")
	ErrTransport         = errors.New("transport rejected operation")
	ErrSyncInProgress    = errors.New("sync cycle already in progress")

	// Auth errors (invalid or malformed token).
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
