package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/reactome/doi-suggester/internal/config"
	"github.com/reactome/doi-suggester/internal/snapshot"
	"github.com/reactome/doi-suggester/internal/store"
)

// releases holds the two opened snapshots of a command run.
type releases struct {
	current  *store.Store
	previous *store.Store
	logger   *slog.Logger
}

// openReleases opens the current and previous release stores.
func openReleases(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*releases, error) {
	logger.Info("opening current release", "driver", cfg.Driver, "db", cfg.DBName)
	current, err := store.Open(ctx, cfg.CurrentStore())
	if err != nil {
		return nil, fmt.Errorf("current release: %w", err)
	}

	logger.Info("opening previous release", "driver", cfg.Driver, "db", cfg.PrevDBName)
	previous, err := store.Open(ctx, cfg.PreviousStore())
	if err != nil {
		current.Close()
		return nil, fmt.Errorf("previous release: %w", err)
	}
	return &releases{current: current, previous: previous, logger: logger}, nil
}

// cached wraps both stores in fresh read-through caches.
func (r *releases) cached() (current, previous *snapshot.Cached) {
	return snapshot.NewCached(r.current), snapshot.NewCached(r.previous)
}

func (r *releases) Close() {
	if err := r.current.Close(); err != nil {
		r.logger.Error("error closing current release", "error", err)
	}
	if err := r.previous.Close(); err != nil {
		r.logger.Error("error closing previous release", "error", err)
	}
}

// loadConfig reads the configuration and applies flag overrides.
func loadConfig(opts *RootOptions, workers, maxDepth int) (*config.Config, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load configuration", err)
	}
	if workers > 0 {
		cfg.Workers = workers
	}
	if maxDepth > 0 {
		cfg.MaxDepth = maxDepth
	}
	return cfg, nil
}
