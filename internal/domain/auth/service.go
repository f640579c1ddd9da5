package auth

import (
	"context"
)

type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)
	Register(ctx context.Context, req RegisterRequest) (Profile, error)
	Me(ctx context.Context) (Profile, error)
	Logout(ctx context.Context, token string) error
}
