package identity

import "errors"

// Authentication errors.
var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrUserInactive = errors.New("user is deactivated")
)
