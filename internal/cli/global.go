// Package cli provides global state and utilities for CLI commands.
package cli

import (
	"sync"

	"github.com/spf13/cobra"
)

var (
	// NoTUI indicates that TUI/interactive mode should be disabled.
	// This is set by the global --no-tui flag.
	NoTUI bool

	// ConfigPath is the config file given with --config; empty means
	// the XDG default location.
	ConfigPath string

	// LogLevel overrides [log].level when set with --log-level.
	LogLevel string

	// globalMutex protects the flag globals for concurrent access.
	globalMutex sync.RWMutex
)

// AddGlobalFlags adds global flags to a command.
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolVar(&NoTUI, "no-tui", false,
		"disable TUI/interactive mode; use plain text or JSON output")
	cmd.PersistentFlags().StringVar(&ConfigPath, "config", "",
		"config file path (default: ~/.config/reelflix/config.toml)")
	cmd.PersistentFlags().StringVar(&LogLevel, "log-level", "",
		"override the configured log level (trace, debug, info, warn, error)")
}

// IsNoTUI returns true if TUI mode is disabled.
func IsNoTUI() bool {
	globalMutex.RLock()
	defer globalMutex.RUnlock()
	return NoTUI
}

func globalConfigPath() string {
	globalMutex.RLock()
	defer globalMutex.RUnlock()
	return ConfigPath
}

func globalLogLevel() string {
	globalMutex.RLock()
	defer globalMutex.RUnlock()
	return LogLevel
}
