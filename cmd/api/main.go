package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/brightlane/qaharbor/internal/api"
	customMiddleware "github.com/brightlane/qaharbor/internal/api/middleware"
	"github.com/brightlane/qaharbor/internal/auth"
	"github.com/brightlane/qaharbor/internal/config"
	"github.com/brightlane/qaharbor/internal/executor"
	"github.com/brightlane/qaharbor/internal/query"
	"github.com/brightlane/qaharbor/internal/storage"
	"github.com/brightlane/qaharbor/pkg/logger"
)

func main() {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	log := logger.Setup(env)
	log.Info("application_startup", "env", env)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config_load_failed", "error", err)
		os.Exit(1)
	}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 1.0,
			Environment:      env,
		}); err != nil {
			log.Error("sentry_init_failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
			log.Info("sentry_initialized")
		}
	} else {
		log.Warn("sentry_dsn_missing", "details", "skipping_init")
	}

	pool, err := storage.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Error("database_connect_failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	log.Info("database_connected")

	users := storage.NewUserRepository(pool)
	apiKeys := storage.NewAPIKeyRepository(pool)
	sessions := storage.NewSessionRepository(pool)
	labels := storage.NewLabelRepository(pool)
	testcases := storage.NewTestcaseRepository(pool)

	hasher := auth.NewCredentialHasher(cfg.PBKDF2Iterations)
	tokens := auth.NewJWTProvider([]byte(cfg.JWTSecret), cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	exec := executor.New(pool)
	parser := query.NewQueryParser()

	deps := api.Dependencies{
		Pool:      pool,
		Users:     users,
		APIKeys:   apiKeys,
		Sessions:  sessions,
		Labels:    labels,
		Testcases: testcases,
		Hasher:    hasher,
		Tokens:    tokens,
		Exec:      exec,
		Parser:    parser,
		Logger:    log,
	}

	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Error("redis_ping_failed", "error", err)
			os.Exit(1)
		}
		deps.RedisLimiter = customMiddleware.NewRedisRateLimiter(redisClient, int64(cfg.RateLimitRPS*60), time.Minute)
		log.Info("rate_limiter_backend", "backend", "redis")
	} else {
		deps.RateLimiter = customMiddleware.NewIPRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
		log.Info("rate_limiter_backend", "backend", "in-process")
	}

	server := api.NewServer(deps)

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      server.Router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("server_listening", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		log.Error("server_startup_failed", "error", err)
		os.Exit(1)

	case sig := <-shutdown:
		log.Info("shutdown_signal_received", "signal", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful_shutdown_failed", "error", err)
			if err := srv.Close(); err != nil {
				log.Error("server_force_close_failed", "error", err)
			}
		}

		pool.Close()
		log.Info("database_pool_closed")
		log.Info("server_shutdown_complete")
	}
}
