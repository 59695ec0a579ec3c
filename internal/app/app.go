// Package app wires configuration into a ready dashboard service.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"

	"github-dashboard/internal/config"
	"github-dashboard/internal/dashboard"
	"github-dashboard/internal/github"
	"github-dashboard/internal/selection"
)

// App holds the long-lived components and their cleanup.
type App struct {
	Service *dashboard.Service
	closers []func()
}

// Close releases everything Build opened.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// Build creates the persister, GitHub client and dashboard service for cfg.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{}

	persister, err := a.persister(ctx, cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	ghClient, err := github.NewClient(logger,
		github.WithBaseURL(cfg.GithubAPIURL),
		github.WithFanoutLimit(cfg.FanoutLimit),
		github.WithRateLimitSleepLimit(cfg.RateLimitSleepLimit),
	)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create GitHub client: %w", err)
	}

	a.Service = dashboard.NewService(ghClient, selection.NewManager(persister), cfg.StoreKey, cfg.Location, logger)
	return a, nil
}

func (a *App) persister(ctx context.Context, cfg *config.Config, logger *slog.Logger) (selection.Persister, error) {
	if cfg.StoreDriver != config.StoreDriverPostgres {
		logger.Info("Using file selection store", "path", cfg.StorePath)
		return selection.NewFilePersister(cfg.StorePath), nil
	}

	dbpool, err := pgxpool.New(ctx, cfg.DBURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	a.closers = append(a.closers, dbpool.Close)
	if err := dbpool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	logger.Info("Database connection established")

	if err := RunMigrations(cfg.MigrationsURL, cfg.DBURL); err != nil {
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}
	logger.Info("Database migrations applied successfully")

	return selection.NewPostgresPersister(dbpool), nil
}

// RunMigrations applies every pending migration found at sourceURL.
func RunMigrations(sourceURL, dbURL string) error {
	m, err := migrate.New(sourceURL, dbURL)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
