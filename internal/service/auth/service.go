package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/etms-hr/etms-backend-go/internal/domain/auth"
	"github.com/etms-hr/etms-backend-go/internal/domain/employee"
	"github.com/etms-hr/etms-backend-go/internal/domain/user"
	"github.com/etms-hr/etms-backend-go/internal/pkg/jwt"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceImpl struct {
	users       user.UserRepository
	employees   employee.EmployeeRepository
	revocations auth.RevocationRepository
	jwt         jwt.Service
	now         func() time.Time
}

func NewAuthService(userRepository user.UserRepository, employeeRepository employee.EmployeeRepository, revocationRepository auth.RevocationRepository, jwtService jwt.Service) auth.AuthService {
	return &AuthServiceImpl{
		users:       userRepository,
		employees:   employeeRepository,
		revocations: revocationRepository,
		jwt:         jwtService,
		now:         time.Now,
	}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, req auth.LoginRequest) (auth.TokenResponse, error) {
	u, err := a.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	if !u.IsActive {
		return auth.TokenResponse{}, user.ErrUserInactive
	}

	token, expiresAt, err := a.jwt.GenerateAccessToken(u)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to generate access token: %w", err)
	}

	if err := a.users.UpdateLastLogin(ctx, u.ID); err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to record login: %w", err)
	}

	return auth.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		User:        auth.NewProfile(u),
	}, nil
}

// Register implements auth.AuthService.
func (a *AuthServiceImpl) Register(ctx context.Context, req auth.RegisterRequest) (auth.Profile, error) {
	role := user.Role(req.Role)
	if !role.Valid() {
		return auth.Profile{}, user.ErrInvalidRole
	}

	exists, err := a.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return auth.Profile{}, err
	}
	if exists {
		return auth.Profile{}, user.ErrUserEmailExists
	}

	if req.EmployeeID != nil {
		if _, err := a.employees.GetByID(ctx, *req.EmployeeID); err != nil {
			return auth.Profile{}, err
		}
	}

	hashed, err := hashPassword(req.Password)
	if err != nil {
		return auth.Profile{}, fmt.Errorf("failed to hash password: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return auth.Profile{}, fmt.Errorf("failed to generate id: %w", err)
	}

	created, err := a.users.Create(ctx, user.User{
		ID:           id.String(),
		Email:        req.Email,
		PasswordHash: hashed,
		Role:         role,
		EmployeeID:   req.EmployeeID,
		IsActive:     true,
	})
	if err != nil {
		return auth.Profile{}, err
	}
	return auth.NewProfile(created), nil
}

// Me implements auth.AuthService.
func (a *AuthServiceImpl) Me(ctx context.Context) (auth.Profile, error) {
	id, err := user.IdentityFromContext(ctx)
	if err != nil {
		return auth.Profile{}, err
	}
	u, err := a.users.GetByID(ctx, id.UserID)
	if err != nil {
		return auth.Profile{}, err
	}
	return auth.NewProfile(u), nil
}

// Logout implements auth.AuthService. The token stays revoked until it
// would have expired.
func (a *AuthServiceImpl) Logout(ctx context.Context, token string) error {
	if token == "" {
		return auth.ErrMissingToken
	}
	parsed, err := a.jwt.JWTAuth().Decode(token)
	if err != nil {
		return auth.ErrInvalidToken
	}

	expiresAt := parsed.Expiration()
	if expiresAt.IsZero() {
		expiresAt = a.now().Add(24 * time.Hour)
	}
	if err := a.revocations.Revoke(ctx, jwt.HashToken(token), expiresAt); err != nil {
		return fmt.Errorf("failed to persist revocation: %w", err)
	}
	a.jwt.RevokeToken(token, expiresAt)
	return nil
}
