package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/JonMunkholm/PoleMap/internal/config"
	"github.com/JonMunkholm/PoleMap/internal/core"
	"github.com/JonMunkholm/PoleMap/internal/logging"
	"github.com/JonMunkholm/PoleMap/internal/overlay"
	"github.com/JonMunkholm/PoleMap/internal/web"
)

func main() {
	// Overload lets a local .env win over the shell environment.
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Debug("configuration", "config", cfg.String())
	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"audit_enabled", cfg.Database.Enabled(),
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
		"session_ttl", cfg.Session.TTL,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	ctx := context.Background()

	recorder, closeAudit, err := openAudit(ctx, cfg.Database)
	if err != nil {
		slog.Error("failed to open audit database", "error", err)
		os.Exit(1)
	}
	defer closeAudit()

	service, err := core.NewService(core.ServiceConfig{
		SessionTTL:         cfg.Session.TTL,
		MaxSessions:        cfg.Session.MaxSessions,
		MaxConcurrentLoads: cfg.Upload.MaxConcurrent,
		MaxLoadWait:        cfg.Upload.MaxWaitTime,
		Defaults: core.Settings{
			Icon: overlay.IconConfig{
				URL:    cfg.Render.IconURL,
				Width:  cfg.Render.IconWidth,
				Height: cfg.Render.IconHeight,
			},
			Label: overlay.LabelConfig{FontSizePt: cfg.Render.FontSizePt},
			Mode:  overlay.ViewNormal,
			Tiles: cfg.Render.Tiles,
		},
	}, recorder)
	if err != nil {
		slog.Error("failed to create service", "error", err)
		os.Exit(1)
	}

	server := web.NewServer(service, cfg)

	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go service.StartSessionSweeper(jobCtx, cfg.Session.SweepInterval)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if st := service.Limiter().Status(); st.Active > 0 {
			slog.Info("waiting for loads to complete", "active", st.Active)
			if err := service.Limiter().WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("loads did not complete in time", "error", err)
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(cfg.Server.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// openAudit connects the audit trail database. Without a URL the audit
// trail is disabled and a no-op recorder is returned.
func openAudit(ctx context.Context, cfg config.DatabaseConfig) (core.AuditRecorder, func(), error) {
	if !cfg.Enabled() {
		slog.Info("audit trail disabled (no DATABASE_URL)")
		return core.NopRecorder{}, func() {}, nil
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, nil, err
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	if u, err := url.Parse(cfg.URL); err == nil {
		slog.Info("connected to audit database", "name", strings.TrimPrefix(u.Path, "/"))
	}

	recorder := core.NewPgRecorder(pool)
	if err := recorder.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return recorder, pool.Close, nil
}
