package apperrors

import (
	"errors"
)

var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")

	// Returned on any login failure: unknown username and wrong password
	// must not be distinguishable by the caller
	ErrInvalidCredentials = errors.New("invalid username or password")

	ErrWeakPassword = errors.New("password does not meet strength policy")
	ErrHashing      = errors.New("password hashing failed")

	ErrTokenInvalid   = errors.New("token is invalid or expired")
	ErrTokenRevoked   = errors.New("token is revoked")
	ErrTokenNotFound  = errors.New("token not found")
	ErrDuplicateToken = errors.New("token id already exists")

	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	ErrInvalidRequest = errors.New("invalid request")

	ErrTodoNotFound = errors.New("todo not found")

	// Wraps infrastructure failures so they never read as auth failures
	ErrStoreUnavailable = errors.New("store unavailable")
)
