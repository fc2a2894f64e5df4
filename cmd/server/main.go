package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"courier-tracking/internal/cache"
	"courier-tracking/internal/carriers"
	"courier-tracking/internal/config"
	"courier-tracking/internal/database"
	"courier-tracking/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("database initialized", "path", cfg.DBPath)

	registry := carriers.NewRegistry(&carriers.CarrierConfig{
		UserAgent:    cfg.UserAgent,
		FetchTimeout: cfg.FetchTimeout,
		MaxRetries:   cfg.MaxRetries,
		Logger:       logger,
	})

	cacheManager := cache.NewManager(cfg.DisableCache, cfg.CacheTTL)
	defer cacheManager.Close()

	srv := &http.Server{
		Addr:    cfg.Address(),
		Handler: server.New(registry, cacheManager, db, logger),

		ReadTimeout:  15 * time.Second,
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("starting server", "address", cfg.Address(), "carriers", registry.Available())
	if err := server.HandleSignals(srv, 30*time.Second, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
