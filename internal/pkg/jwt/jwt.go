package jwt

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"sync"
	"time"

	"github.com/etms-hr/etms-backend-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const tokenTypeAccess = "access"

var ErrInvalidClaims = errors.New("token claims are invalid")

type Service interface {
	GenerateAccessToken(u user.User) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
	RevokeToken(token string, expiresAt time.Time)
	IsTokenRevoked(token string) bool
	RestoreRevoked(entries map[string]time.Time)
}

type JWTService struct {
	accessTokenExpiration time.Duration
	tokenAuth             *jwtauth.JWTAuth
	revokedTokens         map[string]time.Time
	mu                    sync.RWMutex
	now                   func() time.Time
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) (*JWTService, error) {
	exp, err := time.ParseDuration(accessTokenExpirationTime)
	if err != nil {
		return nil, err
	}
	return &JWTService{
		accessTokenExpiration: exp,
		tokenAuth:             jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		revokedTokens:         make(map[string]time.Time),
		now:                   time.Now,
	}, nil
}

func (j *JWTService) GenerateAccessToken(u user.User) (token string, expiresAt int64, err error) {
	now := j.now()
	expiresAt = now.Add(j.accessTokenExpiration).Unix()

	claims := map[string]interface{}{
		"user_id":     u.ID,
		"email":       u.Email,
		"employee_id": returnValueOrNil(u.EmployeeID),
		"role":        string(u.Role),
		"type":        tokenTypeAccess,
		"iat":         now.Unix(),
		"exp":         expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

// HashToken hashes the input string using SHA256 and encodes the result in base64.
// Revoked tokens are only ever stored by hash.
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return base64.StdEncoding.EncodeToString(hash[:])
}

// RevokeToken blocks token until it would have expired anyway.
func (j *JWTService) RevokeToken(token string, expiresAt time.Time) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.pruneLocked()
	j.revokedTokens[HashToken(token)] = expiresAt
}

// RestoreRevoked loads previously persisted revocations keyed by HashToken.
func (j *JWTService) RestoreRevoked(entries map[string]time.Time) {
	j.mu.Lock()
	defer j.mu.Unlock()

	for hash, exp := range entries {
		j.revokedTokens[hash] = exp
	}
	j.pruneLocked()
}

func (j *JWTService) IsTokenRevoked(token string) bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	_, revoked := j.revokedTokens[HashToken(token)]
	return revoked
}

func (j *JWTService) pruneLocked() {
	now := j.now()
	for hash, exp := range j.revokedTokens {
		if now.After(exp) {
			delete(j.revokedTokens, hash)
		}
	}
}

// IdentityFromClaims converts access-token claims into a request identity.
func IdentityFromClaims(claims map[string]interface{}) (user.Identity, error) {
	if t, _ := claims["type"].(string); t != tokenTypeAccess {
		return user.Identity{}, ErrInvalidClaims
	}
	userID, _ := claims["user_id"].(string)
	role, _ := claims["role"].(string)
	if userID == "" || !user.Role(role).Valid() {
		return user.Identity{}, ErrInvalidClaims
	}
	email, _ := claims["email"].(string)
	employeeID, _ := claims["employee_id"].(string)

	return user.Identity{
		UserID:     userID,
		Email:      email,
		Role:       user.Role(role),
		EmployeeID: employeeID,
	}, nil
}

func returnValueOrNil(value *string) interface{} {
	if value == nil {
		return nil
	}
	return *value
}
