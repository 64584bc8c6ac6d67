package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"zenvault/internal/server/api"
	"zenvault/internal/server/config"
	"zenvault/internal/server/database"
	"zenvault/internal/server/service"
	"zenvault/internal/server/storage"
)

func main() {
	// Structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load config
	cfg := config.Load()
	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET must be set")
		os.Exit(1)
	}
	slog.Info("configuration loaded",
		"port", cfg.Port,
		"storage_path", cfg.StoragePath,
		"quota_ceiling", cfg.QuotaCeiling,
		"quota_count_trashed", cfg.QuotaCountTrashed,
		"trash_retention", cfg.TrashRetention,
	)

	// Connect to database
	ctx := context.Background()
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run migrations
	if err := db.RunMigrations(ctx); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database migrations complete")

	// Initialize blob storage
	blobs := storage.NewFileSystemStore(cfg.StoragePath)
	if err := blobs.EnsureDir(); err != nil {
		slog.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	slog.Info("blob storage initialized", "path", cfg.StoragePath)

	// Initialize repository and services
	repo := database.NewRepository(db)
	quota := service.NewQuota(repo, cfg.QuotaCeiling, cfg.QuotaCountTrashed)
	gate := service.NewAdmissionGate(repo, quota, blobs, cfg.MaxFileSize)
	lifecycle := service.NewLifecycle(repo, blobs)
	files := service.NewFiles(repo, blobs)

	// Start trash retention sweeper when a retention is configured
	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	var sweeper *storage.TrashSweeper
	if cfg.TrashRetention > 0 {
		sweeper = storage.NewTrashSweeper(repo, blobs, cfg.TrashRetention, cfg.SweepInterval)
		sweeper.Start(sweepCtx)
	}

	// Setup HTTP router
	handler := api.NewHandler(gate, files, lifecycle, quota, db)
	e := api.SetupRouter(handler, cfg)

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		slog.Info("starting server", "addr", addr, "base_url", cfg.BaseURL)
		if err := e.Start(addr); err != nil {
			slog.Info("server stopped", "reason", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutting down", "signal", sig)

	// Stop accepting new requests, finish in-flight with 30s timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	// Stop sweeper
	sweepCancel()
	if sweeper != nil {
		sweeper.Wait()
	}

	slog.Info("server exited cleanly")
}
