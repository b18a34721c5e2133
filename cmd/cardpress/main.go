// Package main is the entry point for the cardpress server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"cardpress/internal/batch"
	"cardpress/internal/cache"
	"cardpress/internal/compositor"
	"cardpress/internal/config"
	"cardpress/internal/database"
	"cardpress/internal/editor"
	"cardpress/internal/handlers"
	"cardpress/internal/middleware"
	"cardpress/internal/router"
	"cardpress/internal/storage"
	"cardpress/internal/store"
)

func main() {
	// Structured logger — outputs text with debug level; production
	// deployments filter at the collector.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(context.Background(), cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey (optional — previews just miss the cache without it).
	var valkeyClient *redis.Client
	var previews *cache.PreviewCache
	valkeyClient, err = cache.ConnectValkey(context.Background(), cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Warn("valkey not available — preview caching disabled", "error", err)
		valkeyClient = nil
	} else {
		defer valkeyClient.Close()
		previews = cache.NewPreviewCache(valkeyClient, cache.DefaultPreviewTTL)
	}

	// Initialize data stores.
	templateStore := store.NewTemplateStore(db)
	versionStore := store.NewTemplateVersionStore(db)
	studentStore := store.NewStudentStore(db)
	classStore := store.NewClassStore(db)
	cardStore := store.NewCardStore(db)

	// Connect to S3-compatible object storage (optional — the API works
	// without it, but rendering and uploads are disabled).
	storageClient, err := storage.New(
		cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
		cfg.S3BucketAssets, cfg.S3BucketCards, cfg.S3PublicURL,
	)
	if err != nil {
		slog.Error("failed to initialize S3 storage", "error", err)
		os.Exit(1)
	}
	if storageClient != nil {
		slog.Info("s3 storage connected",
			"endpoint", cfg.S3Endpoint,
			"assets_bucket", cfg.S3BucketAssets,
			"cards_bucket", cfg.S3BucketCards,
		)
	} else {
		slog.Warn("s3 storage not configured — rendering and uploads disabled")
	}

	// The compositor and batch pipeline only exist with storage attached.
	var comp *compositor.Compositor
	var pipeline *batch.Pipeline
	if storageClient != nil {
		comp = compositor.New(storageClient.Assets(), storageClient.Cards(), cardStore)
		pipeline = batch.New(studentStore, comp)
	}

	// In-memory editor sessions, one per template, swept when idle.
	sessions := editor.NewManager()
	defer sessions.Stop()

	api := handlers.NewAPI(
		templateStore, versionStore, studentStore, classStore, cardStore,
		comp, pipeline, sessions, storageClient, previews, valkeyClient,
	)

	// Rate limit mutating routes: 120 requests per minute per client.
	limiter := middleware.NewRateLimiter(120, time.Minute)
	defer limiter.Stop()

	r := router.New(api, limiter)

	// Create the HTTP server with sensible timeouts. WriteTimeout must
	// accommodate batch generation of a full class roster.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 300 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
