package middleware

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// contextKey is a custom type for context keys to avoid collisions with
// keys set by other packages.
type contextKey string

const UserIDKey contextKey = "user_id"

// GetUserID safely extracts the authenticated user id from context.
func GetUserID(ctx context.Context) (uuid.UUID, error) {
	val := ctx.Value(UserIDKey)
	if val == nil {
		return uuid.Nil, fmt.Errorf("user_id not found in context")
	}
	id, ok := val.(uuid.UUID)
	if !ok {
		return uuid.Nil, fmt.Errorf("user_id has wrong type: %T", val)
	}
	return id, nil
}

// MustGetUserID extracts the user id and panics if not found. Use only
// downstream of AuthMiddleware or APIKeyMiddleware, where it is guaranteed
// to be set.
func MustGetUserID(ctx context.Context) uuid.UUID {
	id, err := GetUserID(ctx)
	if err != nil {
		panic(fmt.Sprintf("critical: %v", err))
	}
	return id
}
