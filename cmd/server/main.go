package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tendant/simple-publish/internal/seed"
	"github.com/tendant/simple-publish/pkg/publishing/api"
	"github.com/tendant/simple-publish/pkg/publishing/config"
)

func main() {
	// Load configuration from .env and the environment
	cfg, err := config.Load(config.WithDotEnv(), config.WithEnv())
	if err != nil {
		log.Fatalf("Failed to load server configuration: %v", err)
	}

	logger := cfg.Logger()
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.ServerConfig, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := cfg.BuildService(ctx, logger)
	if err != nil {
		return fmt.Errorf("build service: %w", err)
	}
	defer rt.Close()

	if cfg.Seed.Enabled {
		seeder := &seed.Seeder{
			Applications: rt.Applications,
			AdminUsers:   rt.AdminUsers,
			Passwords:    rt.Passwords,
			Logger:       logger,
		}
		if _, err := seeder.Run(ctx, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	routerConfig := api.Config{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		IsDevelopment:  !cfg.IsProduction(),
		Logger:         logger,
		Metrics:        api.NewMetrics(),
	}
	if rt.Files != nil {
		filesPath, err := cfg.FilesPath()
		if err != nil {
			return err
		}
		routerConfig.Files, routerConfig.FilesPath = rt.Files, filesPath
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           api.NewRouter(rt.Service, routerConfig),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("publishing server starting",
			"port", cfg.Port,
			"env", cfg.Environment,
			"database", databaseKind(cfg),
			"storage", cfg.Storage.Type,
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	logger.Info("server exiting")
	return nil
}

func databaseKind(cfg *config.ServerConfig) string {
	if cfg.UsesPostgres() {
		return "postgres"
	}
	return "memory"
}
