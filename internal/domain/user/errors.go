package user

import "errors"

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserEmailExists   = errors.New("email already registered")
	ErrUnauthenticated   = errors.New("authentication required")
	ErrRoleNotAllowed    = errors.New("your role is not allowed to perform this action")
	ErrNoEmployeeProfile = errors.New("no employee profile is linked to this account")
	ErrInvalidRole       = errors.New("invalid role")
	ErrUserInactive      = errors.New("user account is inactive")
)
