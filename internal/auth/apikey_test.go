package auth_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightlane/qaharbor/internal/auth"
)

func TestEncodeDecodeAPIKey_RoundTrips(t *testing.T) {
	id := uuid.New()
	encoded := auth.EncodeAPIKey(id, "s3cr3t")

	payload, err := auth.DecodeAPIKey(encoded)
	require.NoError(t, err)
	assert.Equal(t, id, payload.APIKeyID)
	assert.Equal(t, "s3cr3t", payload.APIKeySecret)
}

func TestDecodeAPIKey_InvalidBase64(t *testing.T) {
	_, err := auth.DecodeAPIKey("not base64 !!")
	assert.Error(t, err)
}

func TestDecodeAPIKey_InvalidJSON(t *testing.T) {
	_, err := auth.DecodeAPIKey("bm90IGpzb24=") // base64("not json")
	assert.Error(t, err)
}

func TestDecodeAPIKey_MissingFields(t *testing.T) {
	_, err := auth.DecodeAPIKey("e30=") // base64("{}")
	assert.Error(t, err)
}
