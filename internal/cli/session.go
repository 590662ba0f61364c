package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/chazuruo/reelflix/internal/config"
	"github.com/chazuruo/reelflix/internal/history"
	"github.com/chazuruo/reelflix/internal/kv"
	"github.com/chazuruo/reelflix/internal/logging"
)

// session bundles what every history command needs: the loaded config,
// a logger, the open store and a manager over it.
type session struct {
	cfg     *config.Config
	log     zerolog.Logger
	store   kv.Store
	manager *history.Manager
}

// openSession loads config from configPath (or the default location),
// builds the logger and opens the configured store. The returned context
// carries the logger. Callers must Close the session.
func openSession(ctx context.Context, configPath string) (context.Context, *session, error) {
	cfg, err := config.LoadWithDefaults(configPath)
	if err != nil {
		return ctx, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if level := globalLogLevel(); level != "" {
		cfg.Log.Level = level
		if err := cfg.Validate(); err != nil {
			return ctx, nil, fmt.Errorf("invalid --log-level: %w", err)
		}
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return ctx, nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	log := logging.Module(logger, logging.ModuleCLI)
	// Packages tag the context logger with their own module.
	ctx = logger.WithContext(ctx)

	store, err := kv.Open(ctx, cfg.Storage)
	if err != nil {
		return ctx, nil, fmt.Errorf("failed to open %s store at %s: %w", cfg.Storage.Backend, cfg.Storage.Path, err)
	}
	manager := history.NewManager(store, history.ManagerOptions{
		Key:    cfg.Storage.Key,
		Logger: &logger,
	})

	return ctx, &session{
		cfg:     cfg,
		log:     log,
		store:   store,
		manager: manager,
	}, nil
}

// useTUI reports whether an interactive screen should be shown.
func (s *session) useTUI() bool {
	return s.cfg.TUI.Enabled && !IsNoTUI()
}

// Close releases the store.
func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to close history store")
	}
}
