package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates authentication failed or missing
	ErrUnauthorized = errors.New("unauthorized")

	// ErrTokenExpired indicates the gate token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid indicates the gate token is malformed or invalid
	ErrTokenInvalid = errors.New("token invalid")

	// ErrInvalidCredentials indicates a wrong admin password
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrGateNotConfigured indicates the admin password is missing from the environment
	ErrGateNotConfigured = errors.New("admin access not configured")

	// ErrQuotaExceeded indicates a guest identity has used its daily query allowance
	ErrQuotaExceeded = errors.New("daily query quota exceeded")

	// ErrSessionUnbound indicates no assistant/thread pair is bound to a collection
	ErrSessionUnbound = errors.New("session not bound to a collection")

	// ErrCollectionNotFound indicates the selected collection does not exist
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrServiceUnavailable indicates the remote assistant service could not be reached
	ErrServiceUnavailable = errors.New("service unavailable")
)
