package services

import "errors"

// Failure taxonomy surfaced to the handlers. Every remote-call failure is
// converted at the service boundary; nothing propagates uncaught and nothing
// is retried automatically.
var (
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailInUse         = errors.New("email already in use")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrInvalidInput       = errors.New("invalid input")
	ErrRemoteUnavailable  = errors.New("remote service unavailable")
	ErrPermissionDenied   = errors.New("permission denied")
)
