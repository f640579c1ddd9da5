package middleware

import (
	"net/http"

	"github.com/etms-hr/etms-backend-go/internal/domain/user"
	"github.com/etms-hr/etms-backend-go/internal/handler/http/response"
)

// RequireRoles rejects callers whose role is not in allowed. It must run
// after AuthRequired.
func RequireRoles(allowed ...user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := user.IdentityFromContext(r.Context())
			if err != nil {
				response.HandleError(w, err)
				return
			}

			if !user.HasRole(id.Role, allowed) {
				response.HandleError(w, user.ErrRoleNotAllowed)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
