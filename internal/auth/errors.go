package auth

import "errors"

var (
	// ErrUserNotFound and ErrInvalidCredentials are kept distinct for audit
	// logging; handlers must surface both as the same message so callers
	// cannot enumerate usernames.
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken covers malformed, expired and revoked tokens alike.
	ErrInvalidToken = errors.New("invalid or expired token")
)
