package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightlane/qaharbor/internal/api/middleware"
	"github.com/brightlane/qaharbor/internal/auth"
)

func TestAuthMiddleware_ValidAccessToken(t *testing.T) {
	provider := auth.NewJWTProvider([]byte("secret"), time.Hour, time.Hour)
	userID := uuid.New()
	pair, err := provider.IssuePair(userID)
	require.NoError(t, err)

	var seen uuid.UUID
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, err = middleware.GetUserID(r.Context())
		require.NoError(t, err)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	rr := httptest.NewRecorder()

	middleware.AuthMiddleware(provider)(next).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, userID, seen)
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	provider := auth.NewJWTProvider([]byte("secret"), time.Hour, time.Hour)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { t.Fatal("next should not be called") })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()

	middleware.AuthMiddleware(provider)(next).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	provider := auth.NewJWTProvider([]byte("secret"), time.Hour, time.Hour)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { t.Fatal("next should not be called") })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Token abc")
	rr := httptest.NewRecorder()

	middleware.AuthMiddleware(provider)(next).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuthMiddleware_RefreshTokenRejected(t *testing.T) {
	provider := auth.NewJWTProvider([]byte("secret"), time.Hour, time.Hour)
	pair, err := provider.IssuePair(uuid.New())
	require.NoError(t, err)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { t.Fatal("next should not be called") })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+pair.RefreshToken)
	rr := httptest.NewRecorder()

	middleware.AuthMiddleware(provider)(next).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
