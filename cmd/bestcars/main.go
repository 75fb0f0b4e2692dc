package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/bestcars/internal/adapter/driven/backend"
	redisadapter "github.com/ericfisherdev/bestcars/internal/adapter/driven/redis"
	"github.com/ericfisherdev/bestcars/internal/adapter/driven/sealing"
	sqliteadapter "github.com/ericfisherdev/bestcars/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/bestcars/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/bestcars/internal/adapter/driving/web"
	"github.com/ericfisherdev/bestcars/internal/application"
	"github.com/ericfisherdev/bestcars/internal/config"
	"github.com/ericfisherdev/bestcars/internal/domain/port/driven"
	"github.com/ericfisherdev/bestcars/internal/observability"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on invalid env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := cfg.NewLogger()
	slog.SetDefault(logger)
	logger.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"backend_url", cfg.BackendURL,
		"api_namespace", cfg.APINamespace,
		"session_backend", cfg.SessionBackend,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Metrics registry shared by the backend client, view state and HTTP middleware.
	metrics := observability.NewMetrics()

	// 4. Backend client.
	api, err := backend.NewClient(backend.Options{
		BaseURL:           cfg.BackendURL,
		Namespace:         cfg.APINamespace,
		Timeout:           cfg.BackendTimeout,
		RequestsPerSecond: cfg.BackendRPS,
		Logger:            logger,
		Metrics:           metrics,
	})
	if err != nil {
		return err
	}

	// 5. Session store.
	sealer, err := newSealer(cfg.SecretKey, logger)
	if err != nil {
		return err
	}
	store, closeStore, err := openSessionStore(ctx, cfg, sealer, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	// 6. Services and view state.
	dealerSvc := application.NewDealerService(api, logger)
	sessionSvc := application.NewSessionService(api, store, logger)
	reviewSvc := application.NewReviewService(api, logger)
	views := application.NewRegistry(metrics)

	janitor := application.NewJanitor(views, sessionSvc, cfg.ViewIdleTTL, cfg.SessionIdleTTL, cfg.SweepInterval, logger)
	go janitor.Start(ctx)

	// 7. HTTP handlers on one mux.
	mux := http.NewServeMux()
	apiHandler := httphandler.NewHandler(sessionSvc, webhandler.SessionCookieName, metrics.Handler(), logger)
	httphandler.RegisterAPIRoutes(mux, apiHandler)

	webHandler := webhandler.NewHandler(dealerSvc, sessionSvc, reviewSvc, views, cfg.SecureCookies, logger)
	webhandler.RegisterRoutes(mux, webHandler)

	// Apply middleware.
	handler := httphandler.ApplyMiddleware(mux, logger, metrics)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// 8. Wait for shutdown signal or a listener failure.
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	// 9. Graceful shutdown with 10s timeout for in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

// newSealer builds the cookie sealer. Without a configured key an ephemeral
// one is generated, so stored sessions do not survive a restart.
func newSealer(key []byte, logger *slog.Logger) (*sealing.Sealer, error) {
	if key == nil {
		logger.Warn("BESTCARS_SECRET_KEY not set, using an ephemeral key; sessions will not survive a restart")
		key = make([]byte, sealing.KeySize)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate session key: %w", err)
		}
	}
	return sealing.NewSealer(key)
}

// openSessionStore opens the configured session store and returns its closer.
func openSessionStore(
	ctx context.Context,
	cfg *config.Config,
	sealer *sealing.Sealer,
	logger *slog.Logger,
) (driven.SessionStore, func(), error) {
	switch cfg.SessionBackend {
	case config.SessionBackendRedis:
		client := redisadapter.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		store := redisadapter.NewSessionStore(client, sealer, cfg.SessionIdleTTL)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := store.Ping(pingCtx); err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		logger.Info("redis session store connected", "addr", cfg.RedisAddr, "db", cfg.RedisDB)

		return store, func() {
			if err := client.Close(); err != nil {
				logger.Error("error closing redis client", "error", err)
			}
		}, nil

	default:
		// Dual reader/writer pools with WAL mode.
		db, err := sqliteadapter.NewDB(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		version, err := db.MigrateSessions()
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		logger.Info("sqlite session store opened", "path", cfg.DBPath, "schema_version", version)

		return sqliteadapter.NewSessionRepo(db, sealer), func() {
			if err := db.Close(); err != nil {
				logger.Error("error closing database", "error", err)
			}
		}, nil
	}
}
