// Package config provides configuration management for reelflix.
//
// The configuration is stored in TOML format and supports validation
// and default values for all fields.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// DefaultStorageKey is the key the search history is persisted under.
const DefaultStorageKey = "@reelflix_search_history"

// Storage backend names.
const (
	BackendFile    = "file"
	BackendLevelDB = "leveldb"
	BackendSQLite  = "sqlite"
	BackendMemory  = "memory"
)

// Config is the top-level configuration struct for reelflix.
// It contains all configuration sections as embedded structs.
type Config struct {
	Storage StorageConfig `toml:"storage"`
	Log     LogConfig     `toml:"log"`
	TUI     TUIConfig     `toml:"tui"`
}

// StorageConfig contains key-value persistence settings.
type StorageConfig struct {
	// Backend selects the store implementation.
	// Valid values: "file", "leveldb", "sqlite", "memory".
	Backend string `toml:"backend"`

	// Path is the data directory (file, leveldb) or database file (sqlite).
	// Ignored by the memory backend.
	Path string `toml:"path"`

	// Key is the storage key holding the search history.
	Key string `toml:"key"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is a zerolog level name (trace, debug, info, warn, error, disabled).
	Level string `toml:"level"`

	// Format determines the log line format.
	// Valid values: "console", "json".
	Format string `toml:"format"`

	// File, when set, sends logs to a rotated file instead of stderr.
	File string `toml:"file"`

	// MaxSizeMB is the size at which the log file is rotated.
	MaxSizeMB int `toml:"max_size_mb"`

	// MaxBackups is the number of rotated log files to keep.
	MaxBackups int `toml:"max_backups"`
}

// TUIConfig contains terminal UI settings.
type TUIConfig struct {
	// Enabled controls whether to use the TUI (when false, falls back to CLI).
	Enabled bool `toml:"enabled"`

	// ShowHelp controls whether to show the key help line by default.
	ShowHelp bool `toml:"show_help"`
}

// DefaultConfig returns a Config with all default values set.
func DefaultConfig() *Config {
	dataDir := filepath.Join(".local", "share", "reelflix")
	if homeDir, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(homeDir, dataDir)
	}

	return &Config{
		Storage: StorageConfig{
			Backend: BackendFile,
			Path:    dataDir,
			Key:     DefaultStorageKey,
		},
		Log: LogConfig{
			Level:      "warn",
			Format:     "console",
			File:       "",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		TUI: TUIConfig{
			Enabled:  true,
			ShowHelp: true,
		},
	}
}

// Validate checks the configuration for valid values.
// Returns a nil error if the config is valid, or an error describing the problem.
func (c *Config) Validate() error {
	// Validate Storage section
	validBackends := map[string]bool{
		BackendFile:    true,
		BackendLevelDB: true,
		BackendSQLite:  true,
		BackendMemory:  true,
	}
	if !validBackends[c.Storage.Backend] {
		return fmt.Errorf("storage.backend must be one of: file, leveldb, sqlite, memory; got %q", c.Storage.Backend)
	}
	if c.Storage.Backend != BackendMemory && c.Storage.Path == "" {
		return fmt.Errorf("storage.path cannot be empty for the %s backend", c.Storage.Backend)
	}
	if c.Storage.Key == "" {
		return fmt.Errorf("storage.key cannot be empty")
	}

	// Validate Log section
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level is not a valid level: %q", c.Log.Level)
	}
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[c.Log.Format] {
		return fmt.Errorf("log.format must be one of: console, json; got %q", c.Log.Format)
	}
	if c.Log.MaxSizeMB < 0 {
		return fmt.Errorf("log.max_size_mb must be >= 0; got %d", c.Log.MaxSizeMB)
	}
	if c.Log.MaxBackups < 0 {
		return fmt.Errorf("log.max_backups must be >= 0; got %d", c.Log.MaxBackups)
	}

	return nil
}
