package middleware

import (
	"github.com/getsentry/sentry-go"
)

// SetSentryUser adds the authenticated user's identity to the Sentry scope.
func SetSentryUser(userID string, ip string) {
	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetUser(sentry.User{ID: userID, IPAddress: ip})
	})
}
