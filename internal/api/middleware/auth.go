package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/brightlane/qaharbor/internal/auth"
)

// AuthMiddleware validates the Authorization: Bearer access token and
// injects the authenticated user id into the request context.
func AuthMiddleware(provider auth.TokenProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "invalid authorization format", http.StatusUnauthorized)
				return
			}

			claims, err := auth.RequireAccess(provider, parts[1])
			if err != nil {
				slog.Warn("invalid token", "error", err, "ip", r.RemoteAddr)
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			SetSentryUser(claims.UserID.String(), r.RemoteAddr)
			ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
