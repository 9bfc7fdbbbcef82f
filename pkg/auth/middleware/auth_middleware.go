package middleware

import (
	"context"
	"net/http"
	"strings"

	"area-access-service/pkg/auth/jwtutil"
	"area-access-service/pkg/response"
)

// SuperAdminRole is the role whose holders may touch the override editor
// endpoints at all.
const SuperAdminRole = "super_admin"

type AuthMiddleware struct {
	verifier *jwtutil.Verifier
}

func NewAuthMiddleware(verifier *jwtutil.Verifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// Middleware validates the bearer token and stores identity values on the
// request context.
func (am *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			response.Error(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := am.verifier.ParseAndValidate(token)
		if err != nil {
			response.Error(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), ContextUserID, claims.UserID)
		ctx = context.WithValue(ctx, ContextToken, token)
		ctx = context.WithValue(ctx, ContextRole, claims.Role)
		ctx = context.WithValue(ctx, ContextUserType, claims.UserType)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireSuperAdmin guards the override admin surface. Non-super-admins get a
// plain 404: for them the editor does not exist, it is not merely disabled.
func (am *AuthMiddleware) RequireSuperAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, ok := GetRole(r.Context())
		if !ok || role != SuperAdminRole {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
