package auth

import "errors"

var (
	ErrNotFound      = errors.New("auth: not found")
	ErrAlreadyExists = errors.New("auth: already exists")
	ErrInvalidInput  = errors.New("auth: invalid input")

	// ErrInvalidCredentials covers both unknown identities and wrong
	// passwords so that callers cannot enumerate registered usernames.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")

	// ErrInvalidToken indicates the token failed validation.
	ErrInvalidToken = errors.New("invalid token")

	// ErrSigningKeyInvalid indicates a missing or too-short signing key.
	// Fatal at startup; the service must not accept logins with a bad key.
	ErrSigningKeyInvalid = errors.New("auth: signing key must be at least 32 bytes")
)
