package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenExpired       = errors.New("token has expired")
	ErrTokenRevoked       = errors.New("token has been revoked")
	ErrMissingToken       = errors.New("authorization token is required")
	ErrInvalidAPIKey      = errors.New("invalid or missing API key")
)
