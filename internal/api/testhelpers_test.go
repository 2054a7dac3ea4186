package api

import (
	"context"

	"github.com/google/uuid"

	"github.com/brightlane/qaharbor/internal/api/middleware"
)

func authedContext() context.Context {
	return context.WithValue(context.Background(), middleware.UserIDKey, uuid.New())
}
