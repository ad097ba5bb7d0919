package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/ghostofweb/portfolio-api/internal/models"
	pkghttp "github.com/ghostofweb/portfolio-api/pkg/http"
)

// contextKey is a custom type for context keys
type contextKey string

// UserContextKey is the key for storing the resolved user in context
const UserContextKey contextKey = "user"

// UserResolver looks up the token subject at verification time. A valid
// signature is not enough: the identity must still exist.
type UserResolver interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// RequireAuth validates bearer tokens, resolves the subject against the user
// store and injects the user into the request context. Failure short-circuits
// with a 401 envelope before the downstream handler runs.
func RequireAuth(tm *TokenManager, users UserResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				pkghttp.WriteUnauthorized(w, "Unauthorized request: No token provided")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				pkghttp.WriteUnauthorized(w, "Unauthorized request: No token provided")
				return
			}

			claims, err := tm.Validate(parts[1])
			if err != nil {
				pkghttp.WriteUnauthorized(w, "Invalid Access Token")
				return
			}

			user, err := users.GetByID(r.Context(), claims.UserID)
			if err != nil {
				pkghttp.WriteUnauthorized(w, "Invalid Access Token: User not found")
				return
			}

			// The hash never travels past this point
			resolved := *user
			resolved.PasswordHash = ""

			ctx := context.WithValue(r.Context(), UserContextKey, &resolved)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireMaster gates member management routes. Must run after RequireAuth.
func RequireMaster() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUserFromContext(r)
			if user == nil {
				pkghttp.WriteUnauthorized(w, "Unauthorized request: No token provided")
				return
			}

			if !user.IsMaster {
				pkghttp.WriteForbidden(w, "Only the master admin may manage team members")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetUserFromContext extracts the resolved user from request context
func GetUserFromContext(r *http.Request) *models.User {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}
