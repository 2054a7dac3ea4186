package auth

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// APIKeyPayload is the decoded form of an X-API-Key header value:
// base64(utf8(JSON{apiKeyId, apiKeySecret})).
type APIKeyPayload struct {
	APIKeyID     uuid.UUID `json:"apiKeyId"`
	APIKeySecret string    `json:"apiKeySecret"`
}

// EncodeAPIKey builds the wire form of an API key returned exactly once at
// creation time.
func EncodeAPIKey(id uuid.UUID, secret string) string {
	raw, _ := json.Marshal(struct {
		APIKeyID     string `json:"apiKeyId"`
		APIKeySecret string `json:"apiKeySecret"`
	}{APIKeyID: id.String(), APIKeySecret: secret})
	return base64.StdEncoding.EncodeToString(raw)
}

// DecodeAPIKey parses the X-API-Key header value back into its id/secret
// parts.
func DecodeAPIKey(header string) (APIKeyPayload, error) {
	raw, err := base64.StdEncoding.DecodeString(header)
	if err != nil {
		return APIKeyPayload{}, fmt.Errorf("invalid api key encoding: %w", err)
	}

	var payload APIKeyPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return APIKeyPayload{}, fmt.Errorf("invalid api key payload: %w", err)
	}
	if payload.APIKeyID == uuid.Nil || payload.APIKeySecret == "" {
		return APIKeyPayload{}, fmt.Errorf("incomplete api key payload")
	}
	return payload, nil
}
