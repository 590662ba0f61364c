// Package kv provides the key-value persistence the search history is kept in.
//
// Every backend stores opaque string values under string keys. A missing key
// is not an error: Get reports it through its ok result.
package kv

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/chazuruo/reelflix/internal/config"
	"github.com/chazuruo/reelflix/internal/logging"
)

// Store defines the interface for key-value persistence operations.
type Store interface {
	io.Closer

	// Get returns the value stored under key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set overwrites the value stored under key.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// Open creates the store selected by cfg.Backend.
func Open(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	var (
		store Store
		err   error
	)
	switch cfg.Backend {
	case config.BackendFile:
		store, err = NewFileStore(cfg.Path)
	case config.BackendLevelDB:
		store, err = NewLevelDB(cfg.Path)
	case config.BackendSQLite:
		store, err = NewSQLite(ctx, cfg.Path)
	case config.BackendMemory:
		store = NewMemory()
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s (supported: file, leveldb, sqlite, memory)", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	nop := zerolog.Nop()
	logging.FromContext(ctx, logging.ModuleStore, &nop).Debug().
		Str("backend", cfg.Backend).
		Str("path", cfg.Path).
		Msg("Opened store")
	return store, nil
}
