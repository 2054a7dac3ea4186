package auth_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightlane/qaharbor/internal/auth"
)

func TestJWTProvider_IssuePairAndVerify(t *testing.T) {
	provider := auth.NewJWTProvider([]byte("test-secret"), time.Hour, 7*24*time.Hour)
	userID := uuid.New()

	pair, err := provider.IssuePair(userID)
	require.NoError(t, err)

	accessClaims, err := auth.RequireAccess(provider, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userID, accessClaims.UserID)
	assert.False(t, accessClaims.IsRefresh())

	refreshClaims, err := auth.RequireRefresh(provider, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, userID, refreshClaims.UserID)
	assert.True(t, refreshClaims.IsRefresh())
}

func TestJWTProvider_RefreshTokenRejectedForResourceAccess(t *testing.T) {
	provider := auth.NewJWTProvider([]byte("test-secret"), time.Hour, 7*24*time.Hour)
	pair, err := provider.IssuePair(uuid.New())
	require.NoError(t, err)

	_, err = auth.RequireAccess(provider, pair.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrTokenWrongKind)
}

func TestJWTProvider_AccessTokenRejectedAsRefresh(t *testing.T) {
	provider := auth.NewJWTProvider([]byte("test-secret"), time.Hour, 7*24*time.Hour)
	pair, err := provider.IssuePair(uuid.New())
	require.NoError(t, err)

	_, err = auth.RequireRefresh(provider, pair.AccessToken)
	assert.ErrorIs(t, err, auth.ErrTokenWrongKind)
}

func TestJWTProvider_InvalidToken(t *testing.T) {
	provider := auth.NewJWTProvider([]byte("test-secret"), time.Hour, 7*24*time.Hour)

	_, err := provider.Verify("not-a-jwt")
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)
}

func TestJWTProvider_WrongSecretRejected(t *testing.T) {
	provider := auth.NewJWTProvider([]byte("secret-a"), time.Hour, 7*24*time.Hour)
	other := auth.NewJWTProvider([]byte("secret-b"), time.Hour, 7*24*time.Hour)

	pair, err := provider.IssuePair(uuid.New())
	require.NoError(t, err)

	_, err = other.Verify(pair.AccessToken)
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)
}
