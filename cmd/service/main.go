// Package main is the entry point for the quote-sync service.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jsamuelsen/quote-sync/internal/adapters/clients"
	"github.com/jsamuelsen/quote-sync/internal/adapters/clients/acl"
	"github.com/jsamuelsen/quote-sync/internal/adapters/flags"
	"github.com/jsamuelsen/quote-sync/internal/adapters/http"
	"github.com/jsamuelsen/quote-sync/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quote-sync/internal/adapters/storage/memory"
	"github.com/jsamuelsen/quote-sync/internal/adapters/storage/sqlite"
	"github.com/jsamuelsen/quote-sync/internal/app"
	"github.com/jsamuelsen/quote-sync/internal/platform/config"
	"github.com/jsamuelsen/quote-sync/internal/platform/logging"
	"github.com/jsamuelsen/quote-sync/internal/platform/telemetry"
	"github.com/jsamuelsen/quote-sync/internal/ports"
)

// Build-time variables, injected via ldflags.
// Example: go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	// Version is the semantic version of the service.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "unknown"

	// BuildTime is the timestamp when the binary was built.
	BuildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// 1. Load .env (optional) and determine profile
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	// 2. Load and validate configuration (fail fast)
	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// 3. Initialize logging
	logger := logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	logging.SetDefault(logger)

	logger.Info("starting service",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
		slog.String("store", cfg.Store.Driver),
	)

	// 4. Initialize telemetry (noop if disabled)
	telProvider, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		if shutdownErr := telProvider.Shutdown(ctx); shutdownErr != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	// 5. Create health registry
	healthRegistry := ports.NewHealthRegistry()

	// 6. Open the persisted store and the session store
	store, closeStore, err := openStore(ctx, &cfg.Store)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := closeStore(); closeErr != nil {
			logger.Error("store close error", slog.Any("error", closeErr))
		}
	}()

	if err := healthRegistry.Register(store); err != nil {
		return fmt.Errorf("registering store health check: %w", err)
	}

	session := memory.New()

	// 7. Create HTTP client and the remote endpoint adapter (ACL pattern)
	httpClient, err := clients.New(&clients.Config{
		BaseURL:     cfg.Remote.URL,
		ServiceName: cfg.Remote.Name,
		UserAgent:   fmt.Sprintf("%s/%s", cfg.App.Name, Version),
		Timeout:     cfg.Client.Timeout,
		Retry:       cfg.Client.Retry,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("creating HTTP client: %w", err)
	}

	remote := acl.NewRemoteQuoteClient(acl.RemoteQuoteConfig{
		Client:         httpClient,
		Name:           cfg.Remote.Name,
		MaxRecords:     cfg.Remote.MaxRecords,
		TextLimit:      cfg.Remote.TextLimit,
		ServerCategory: cfg.Remote.ServerCategory,
		Logger:         logger,
	})

	// The remote being down degrades readiness but never fails it.
	if err := healthRegistry.Register(remote); err != nil {
		return fmt.Errorf("registering remote health check: %w", err)
	}

	// 8. Create the quote collection (application layer)
	quoteService := app.NewQuoteService(app.QuoteServiceConfig{
		Store:   store,
		Session: session,
		Keys: app.StoreKeys{
			Quotes:       cfg.Store.Keys.Quotes,
			LastCategory: cfg.Store.Keys.LastCategory,
			LastSyncAt:   cfg.Store.Keys.LastSyncAt,
			LastViewed:   cfg.Store.Keys.LastViewed,
		},
		Logger: logger,
	})

	if err := quoteService.Load(ctx); err != nil {
		return fmt.Errorf("loading quotes: %w", err)
	}

	// 9. Create the sync orchestrator and its observers
	featureFlags, err := flags.NewStatic(cfg.Features)
	if err != nil {
		return fmt.Errorf("loading feature flags: %w", err)
	}

	syncMetrics, err := telemetry.NewSyncMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("registering sync metrics: %w", err)
	}

	syncService := app.NewSyncService(app.SyncServiceConfig{
		Quotes:          quoteService,
		Remote:          remote,
		Store:           store,
		LastSyncKey:     cfg.Store.Keys.LastSyncAt,
		Flags:           featureFlags,
		Observers:       []ports.SyncObserver{app.NewLogObserver(logger), syncMetrics},
		PushConcurrency: cfg.Sync.PushConcurrency,
		Logger:          logger,
	})

	if err := syncService.Load(ctx); err != nil {
		return fmt.Errorf("loading sync state: %w", err)
	}

	autoSync := app.NewAutoSync(app.AutoSyncConfig{
		Runner:      syncService,
		Interval:    cfg.Sync.Interval,
		PassTimeout: cfg.Sync.PassTimeout,
		Logger:      logger,
	})

	if cfg.Sync.AutoStart {
		autoSync.Enable(ctx)
	}

	// 10. Create handlers
	buildInfo := handlers.NewBuildInfo(Version, Commit, BuildTime)

	// 11. Create HTTP server and setup router with all middleware and routes
	server := http.New(&cfg.Server, logger)

	http.SetupRouter(server.Engine(), http.RouterConfig{
		Logger:          logger,
		ServiceName:     cfg.App.Name,
		HealthHandler:   handlers.NewHealthHandler(healthRegistry, buildInfo),
		QuoteHandler:    handlers.NewQuoteHandler(quoteService),
		TransferHandler: handlers.NewTransferHandler(quoteService),
		SyncHandler:     handlers.NewSyncHandler(syncService, autoSync),
		Timeout:         cfg.Server.RequestTimeout,
		CORSOrigins:     cfg.Server.CORSOrigins,
	})

	// 12. Start server (non-blocking)
	serverErr := server.Start()

	// 13. Wait for shutdown signal
	return waitForShutdown(ctx, logger, server, autoSync, serverErr, cfg.Server.ShutdownTimeout)
}

// openStore returns the configured persisted store and its close function.
func openStore(ctx context.Context, cfg *config.StoreConfig) (interface {
	ports.KVStore
	ports.HealthChecker
}, func() error, error) {
	if cfg.Driver == "memory" {
		return memory.New(), func() error { return nil }, nil
	}

	kv, err := sqlite.Open(ctx, cfg.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening sqlite store: %w", err)
	}

	return kv, kv.Close, nil
}

// waitForShutdown blocks until a shutdown signal is received or server error occurs.
// It then stops the auto-sync timer and drains the HTTP server.
func waitForShutdown(
	ctx context.Context,
	logger *slog.Logger,
	server *http.Server,
	autoSync *app.AutoSync,
	serverErr <-chan error,
	shutdownTimeout time.Duration,
) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err, ok := <-serverErr:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}

		return errors.New("server stopped unexpectedly")

	case sig := <-quit:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	logger.Info("initiating graceful shutdown",
		slog.Duration("timeout", shutdownTimeout),
	)

	// A timer pass in flight finishes before the store is closed.
	if err := autoSync.Stop(shutdownCtx); err != nil {
		logger.Warn("auto-sync did not stop in time", slog.Any("error", err))
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("shutdown complete")

	return nil
}
