package api

import (
	"log/slog"
	"net/http"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	customMiddleware "github.com/brightlane/qaharbor/internal/api/middleware"
	"github.com/brightlane/qaharbor/internal/auth"
	"github.com/brightlane/qaharbor/internal/executor"
	"github.com/brightlane/qaharbor/internal/query"
	"github.com/brightlane/qaharbor/internal/storage"
)

type Server struct {
	Router *chi.Mux
	Pool   *pgxpool.Pool
	Logger *slog.Logger
}

// Dependencies bundles every repository, service, and limiter the router
// wires into handlers. It is assembled once in cmd/api/main.go.
type Dependencies struct {
	Pool *pgxpool.Pool

	Users     *storage.UserRepository
	APIKeys   *storage.APIKeyRepository
	Sessions  *storage.SessionRepository
	Labels    *storage.LabelRepository
	Testcases *storage.TestcaseRepository

	Hasher *auth.CredentialHasher
	Tokens auth.TokenProvider
	Exec   *executor.Executor
	Parser *query.QueryParser

	RateLimiter  *customMiddleware.IPRateLimiter
	RedisLimiter *customMiddleware.RedisRateLimiter

	Logger *slog.Logger
}

func NewServer(deps Dependencies) *Server {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)

	sentryHandler := sentryhttp.New(sentryhttp.Options{Repanic: true})
	r.Use(sentryHandler.Handle)

	r.Use(customMiddleware.RequestLogger)
	r.Use(customMiddleware.PanicRecovery)
	r.Use(customMiddleware.Metrics)

	if deps.RedisLimiter != nil {
		r.Use(deps.RedisLimiter.Middleware)
	} else if deps.RateLimiter != nil {
		r.Use(deps.RateLimiter.Middleware)
	}

	server := &Server{Router: r, Pool: deps.Pool, Logger: deps.Logger}

	authHandler := NewAuthHandler(deps.Users, deps.Tokens, deps.Hasher, deps.Logger)
	apiKeyHandler := NewAPIKeyHandler(deps.APIKeys, deps.Hasher)
	sessionHandler := NewSessionHandler(deps.Sessions)
	labelHandler := NewLabelHandler(deps.Labels, deps.Sessions)
	ingressHandler := NewIngressHandler(deps.Sessions, deps.Labels, deps.Testcases)
	testcaseHandler := NewTestcaseHandler(deps.Exec, deps.Parser)
	groupHandler := NewGroupHandler(deps.Exec, deps.Parser)

	requireAuth := customMiddleware.AuthMiddleware(deps.Tokens)
	requireAPIKey := customMiddleware.APIKeyMiddleware(deps.APIKeys, deps.Hasher)

	r.Get("/ready", func(w http.ResponseWriter, req *http.Request) { ReadyHandler()(w, req) })
	r.Get("/health", server.HealthHandler())
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(requireAPIKey)
			r.Post("/ingress/sessions", ingressHandler.CreateSession)
			r.Post("/ingress/testcases", ingressHandler.CreateTestcases)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Post("/auth/change-password", authHandler.ChangePassword)

			r.Route("/api-keys", func(r chi.Router) {
				r.Post("/", apiKeyHandler.Create)
				r.Get("/", apiKeyHandler.List)
				r.Get("/{id}", apiKeyHandler.Get)
				r.Delete("/{id}", apiKeyHandler.Delete)
			})

			r.Route("/sessions", func(r chi.Router) {
				r.Get("/", sessionHandler.List)
				r.Get("/{id}", sessionHandler.Get)
			})

			r.Get("/labels", labelHandler.List)

			r.Route("/testcases", func(r chi.Router) {
				r.Get("/", testcaseHandler.List)
				r.Get("/{id}", testcaseHandler.Get)
			})

			r.Route("/groups", func(r chi.Router) {
				r.Get("/", groupHandler.List)
				r.Get("/validate-query", groupHandler.ValidateQuery)
			})
		})
	})

	return server
}
