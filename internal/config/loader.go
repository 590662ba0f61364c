// Package config provides configuration management for reelflix.
//
// This file contains config loading functionality including:
// - XDG config path detection
// - TOML file parsing
// - Environment variable overrides
// - Validation
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	rferrors "github.com/chazuruo/reelflix/internal/errors"
)

// DetectConfigPath searches for a config file using XDG standard paths.
// Returns the first config file found, or empty string if none exists.
//
// Search order:
// 1. $XDG_CONFIG_HOME/reelflix/config.toml
// 2. ~/.config/reelflix/config.toml
func DetectConfigPath() string {
	var candidates []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		candidates = append(candidates, filepath.Join(xdg, "reelflix", "config.toml"))
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(homeDir, ".config", "reelflix", "config.toml"))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// DefaultConfigPath returns where a new config file should be written:
// $XDG_CONFIG_HOME/reelflix/config.toml when set, else ~/.config/reelflix/config.toml.
func DefaultConfigPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "reelflix", "config.toml"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to find home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "reelflix", "config.toml"), nil
}

// Load loads a config from the specified path.
// If the file doesn't exist, returns an error.
// After loading, applies environment variable overrides and validates.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &rferrors.ConfigError{Path: path, Err: rferrors.ErrNotFound}
		}
		return nil, &rferrors.ConfigError{Path: path, Err: fmt.Errorf("failed to read config file: %w", err)}
	}

	// Start with defaults
	cfg := DefaultConfig()

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, &rferrors.ConfigError{Path: path, Err: fmt.Errorf("failed to parse config file: %w", err)}
	}

	applyEnvOverrides(cfg)
	expandPath(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, &rferrors.ConfigError{Path: path, Err: fmt.Errorf("config validation failed: %w", err)}
	}

	return cfg, nil
}

// LoadWithDefaults loads the config at path when path is non-empty, otherwise
// the first config found at the XDG standard paths. If no config file is
// found, returns a validated config with all default values.
func LoadWithDefaults(path string) (*Config, error) {
	if path == "" {
		path = DetectConfigPath()
	}
	if path != "" {
		return Load(path)
	}

	cfg := DefaultConfig()
	applyEnvOverrides(cfg)
	expandPath(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, &rferrors.ConfigError{Err: fmt.Errorf("config validation failed: %w", err)}
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Environment variables follow the pattern: REELFLIX_<SECTION>_<FIELD>
//
// Examples:
// - REELFLIX_STORAGE_BACKEND overrides [storage].backend
// - REELFLIX_LOG_LEVEL overrides [log].level
//
// Boolean fields: use "true"/"false" strings
func applyEnvOverrides(c *Config) {
	applyString := func(key string, target *string) {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			*target = val
		}
	}

	applyBool := func(key string, target *bool) {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			switch strings.ToLower(val) {
			case "true", "1", "yes", "on":
				*target = true
			case "false", "0", "no", "off":
				*target = false
			}
		}
	}

	applyInt := func(key string, target *int) {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			var i int
			if _, err := fmt.Sscanf(val, "%d", &i); err == nil {
				*target = i
			}
		}
	}

	// Storage section
	applyString("REELFLIX_STORAGE_BACKEND", &c.Storage.Backend)
	applyString("REELFLIX_STORAGE_PATH", &c.Storage.Path)
	applyString("REELFLIX_STORAGE_KEY", &c.Storage.Key)

	// Log section
	applyString("REELFLIX_LOG_LEVEL", &c.Log.Level)
	applyString("REELFLIX_LOG_FORMAT", &c.Log.Format)
	applyString("REELFLIX_LOG_FILE", &c.Log.File)
	applyInt("REELFLIX_LOG_MAX_SIZE_MB", &c.Log.MaxSizeMB)
	applyInt("REELFLIX_LOG_MAX_BACKUPS", &c.Log.MaxBackups)

	// TUI section
	applyBool("REELFLIX_TUI_ENABLED", &c.TUI.Enabled)
	applyBool("REELFLIX_TUI_SHOW_HELP", &c.TUI.ShowHelp)
}

// expandPath expands ~ to the home directory in filesystem paths.
func expandPath(c *Config) {
	c.Storage.Path = expandTilde(c.Storage.Path)
	c.Log.File = expandTilde(c.Log.File)
}

func expandTilde(path string) string {
	if strings.HasPrefix(path, "~/") || path == "~" {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(homeDir, strings.TrimPrefix(path, "~/"))
		}
	}
	return path
}
