package cmd

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/kozaktomas/faceid/internal/config"
	"github.com/kozaktomas/faceid/internal/database"
	"github.com/kozaktomas/faceid/internal/database/postgres"
	"github.com/kozaktomas/faceid/internal/database/sqlite"
	"github.com/kozaktomas/faceid/internal/recognition"
)

// openStore initializes the configured backend, registers it and returns the
// active template store together with a function releasing it.
func openStore(ctx context.Context, cfg *config.Config) (database.TemplateWriter, func(), error) {
	var closeFn func()

	if cfg.UsesPostgres() {
		if err := postgres.Initialize(&cfg.Database); err != nil {
			return nil, nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
		}
		closeFn = func() {
			if pool := postgres.GetGlobalPool(); pool != nil {
				pool.Close()
			}
		}
	} else {
		store, err := sqlite.Initialize(&cfg.SQLite)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize SQLite: %w", err)
		}
		closeFn = func() { store.Close() }
	}

	writer, err := database.GetTemplateWriter(ctx)
	if err != nil {
		closeFn()
		return nil, nil, err
	}

	log.WithField("backend", database.BackendName()).Debug("Template store ready")
	return writer, closeFn, nil
}

// openService loads configuration, opens the store and builds the recognition service.
func openService(ctx context.Context) (*config.Config, *recognition.Service, database.TemplateWriter, func(), error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	store, closeFn, err := openStore(ctx, cfg)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	pool := recognition.NewPool(cfg.Recognition.PoolSize())
	return cfg, recognition.NewService(store, pool, cfg.Match.Threshold), store, closeFn, nil
}
