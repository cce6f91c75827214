package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/JonMunkholm/cusip/internal/config"
	"github.com/JonMunkholm/cusip/internal/core"
	"github.com/JonMunkholm/cusip/internal/core/tables"
	"github.com/JonMunkholm/cusip/internal/logging"
	"github.com/JonMunkholm/cusip/internal/secrets"
	"github.com/JonMunkholm/cusip/internal/source"
	"github.com/JonMunkholm/cusip/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"file_source", cfg.Source.Type,
		"db_max_conns", cfg.Database.MaxConns,
		"load_timeout", cfg.Load.Timeout,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)
	slog.Debug("effective configuration", "config", cfg.String())

	ctx := context.Background()

	dbURL, err := secrets.ResolveDatabaseURL(ctx, cfg.Database.URL, cfg.Database.SecretID, cfg.AWS.Region)
	if err != nil {
		slog.Error("failed to resolve database URL", "error", err)
		os.Exit(1)
	}

	store, err := core.Connect(ctx, dbURL, core.PoolOptions{
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
	})
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("connected to database", "name", store.Database())

	files, err := source.New(cfg.Source, cfg.AWS.Region)
	if err != nil {
		slog.Error("failed to create file source", "error", err)
		os.Exit(1)
	}

	registry, err := tables.Registry()
	if err != nil {
		slog.Error("invalid file layouts", "error", err)
		os.Exit(1)
	}
	slog.Info("file types registered", "kinds", registry.Kinds())

	loader := core.NewLoader(registry, store,
		core.WithMetrics(core.NewMetrics(prometheus.DefaultRegisterer)),
		core.WithLogger(slog.Default()),
	)
	gate := core.NewGate(cfg.Load.LockWait)

	server := web.NewServer(web.Deps{
		Loader: loader,
		Source: files,
		DB:     store,
		Gate:   gate,
	}, cfg)

	// Graceful shutdown
	idle := make(chan struct{})
	go func() {
		defer close(idle)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Stop accepting jobs first, then let running loads commit.
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}

		if active := gate.Status().Active; len(active) > 0 {
			slog.Info("waiting for loads to complete", "active", active)
			if err := gate.WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("loads did not complete in time", "error", err)
			} else {
				slog.Info("all loads completed")
			}
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
	<-idle
	slog.Info("server stopped")
}
