package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5"

	"github.com/brightlane/qaharbor/internal/auth"
	"github.com/brightlane/qaharbor/internal/storage"
)

// APIKeyMiddleware validates the X-API-Key header against the api_keys
// table and injects the owning user id into the request context. Used on
// ingress routes, which CI agents hit without ever obtaining a JWT.
func APIKeyMiddleware(repo *storage.APIKeyRepository, hasher *auth.CredentialHasher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("X-API-Key")
			if header == "" {
				http.Error(w, "X-API-Key header required", http.StatusUnauthorized)
				return
			}

			payload, err := auth.DecodeAPIKey(header)
			if err != nil {
				slog.Warn("malformed api key", "error", err, "ip", r.RemoteAddr)
				http.Error(w, "invalid api key", http.StatusUnauthorized)
				return
			}

			// The key's user is not yet known, so the lookup is scoped only
			// by id here; ownership of every subsequent row is still enforced
			// by that key's stored user_id.
			key, err := repo.GetByIDUnscoped(r.Context(), payload.APIKeyID)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					http.Error(w, "invalid api key", http.StatusUnauthorized)
					return
				}
				slog.Error("api key lookup failed", "error", err)
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}

			if !hasher.Verify(payload.APIKeySecret, key.SecretSalt, key.SecretHash) {
				slog.Warn("api key secret mismatch", "key_id", payload.APIKeyID, "ip", r.RemoteAddr)
				http.Error(w, "invalid api key", http.StatusUnauthorized)
				return
			}

			SetSentryUser(key.UserID.String(), r.RemoteAddr)
			ctx := context.WithValue(r.Context(), UserIDKey, key.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
