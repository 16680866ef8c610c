package auth

import (
	"net/http"
)

// Roles as issued by the platform auth service
const (
	RolePlayer   = "player"
	RoleOperator = "operator"
	RoleAdmin    = "admin"
)

// RoleMiddleware provides role-based authorization from token claims. The
// user store lives in the auth service, so roles are read from the
// validated token rather than a local table.
type RoleMiddleware struct{}

func NewRoleMiddleware() *RoleMiddleware {
	return &RoleMiddleware{}
}

// RequireRole returns a middleware that requires one of the given roles
func (rm *RoleMiddleware) RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetRoleFromContext(r.Context())
			if !ok {
				writeErrorResponse(w, http.StatusUnauthorized, "User not authenticated")
				return
			}

			for _, required := range roles {
				if role == required {
					next.ServeHTTP(w, r)
					return
				}
			}

			writeErrorResponse(w, http.StatusForbidden, "Insufficient privileges")
		})
	}
}

// RequireOperator is a convenience wrapper for operator-or-admin endpoints
func (rm *RoleMiddleware) RequireOperator(next http.Handler) http.Handler {
	return rm.RequireRole(RoleOperator, RoleAdmin)(next)
}
