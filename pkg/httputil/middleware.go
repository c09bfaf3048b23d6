package httputil

import (
	"context"
	"net/http"
	"strings"

	"github.com/pickerpack/fulfillment/pkg/auth"
)

type contextKey string

const (
	UserIDKey     contextKey = "user_id"
	EmployeeIDKey contextKey = "employee_id"
	RoleKey       contextKey = "role"
	WarehouseKey  contextKey = "warehouse"
)

// AuthMiddleware validates the bearer token and loads its claims into
// the request context.
func AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			RespondError(w, http.StatusUnauthorized, "Authorization header required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			RespondError(w, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		claims, err := auth.ValidateToken(parts[1])
		if err != nil {
			RespondError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, EmployeeIDKey, claims.EmployeeID)
		ctx = context.WithValue(ctx, RoleKey, claims.Role)
		ctx = context.WithValue(ctx, WarehouseKey, claims.Warehouse)

		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// RequireRoles authenticates the request and admits only the listed
// roles. Every protected route goes through here rather than checking
// roles inline.
func RequireRoles(next http.HandlerFunc, roles ...string) http.HandlerFunc {
	return AuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
		role, ok := r.Context().Value(RoleKey).(string)
		if !ok {
			RespondError(w, http.StatusForbidden, "Role not found in context")
			return
		}
		for _, allowed := range roles {
			if role == allowed {
				next.ServeHTTP(w, r)
				return
			}
		}
		RespondError(w, http.StatusForbidden, "Insufficient role")
	})
}

// UserID extracts the authenticated user's id from the context.
func UserID(r *http.Request) (uint, bool) {
	id, ok := r.Context().Value(UserIDKey).(uint)
	return id, ok
}

// Warehouse extracts the authenticated user's warehouse from the
// context.
func Warehouse(r *http.Request) string {
	wh, _ := r.Context().Value(WarehouseKey).(string)
	return wh
}
