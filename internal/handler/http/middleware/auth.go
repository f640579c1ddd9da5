package middleware

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"

	"github.com/etms-hr/etms-backend-go/internal/domain/auth"
	"github.com/etms-hr/etms-backend-go/internal/domain/user"
	"github.com/etms-hr/etms-backend-go/internal/handler/http/response"
	"github.com/etms-hr/etms-backend-go/internal/pkg/jwt"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// Verifier decodes the bearer token from the Authorization header. Cookies
// and query strings are not token sources.
func Verifier(tokens jwt.Service) func(http.Handler) http.Handler {
	return jwtauth.Verify(tokens.JWTAuth(), jwtauth.TokenFromHeader)
}

// AuthRequired turns the token found by Verifier into a
// user.Identity on the request context.
func AuthRequired(tokens jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())

			switch {
			case errors.Is(err, jwtauth.ErrNoTokenFound):
				response.HandleError(w, auth.ErrMissingToken)
				return
			case errors.Is(err, jwtauth.ErrExpired):
				response.HandleError(w, auth.ErrTokenExpired)
				return
			case err != nil, token == nil:
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			if tokens.IsTokenRevoked(jwtauth.TokenFromHeader(r)) {
				response.HandleError(w, auth.ErrTokenRevoked)
				return
			}

			id, err := jwt.IdentityFromClaims(claims)
			if err != nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			httplog.SetAttrs(r.Context(), slog.String("user_id", id.UserID), slog.String("role", string(id.Role)))
			next.ServeHTTP(w, r.WithContext(user.WithIdentity(r.Context(), id)))
		}
		return http.HandlerFunc(hfn)
	}
}

// RequireAPIKey checks X-API-Key when a key is configured. An empty key
// disables the check.
func RequireAPIKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if key == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get("X-API-Key")
			if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				response.HandleError(w, auth.ErrInvalidAPIKey)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
