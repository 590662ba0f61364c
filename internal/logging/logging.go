// Package logging builds the zerolog loggers used across reelflix.
package logging

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/chazuruo/reelflix/internal/config"
)

const (
	// KeyModule is the field naming the component that emitted a line.
	KeyModule = "mod"

	ModuleCLI     = "cli"
	ModuleHistory = "history"
	ModuleStore   = "store"
	ModuleTUI     = "tui"
)

// New builds a logger from cfg. Lines go to stderr unless cfg.File is set,
// in which case they go to a size-rotated file.
func New(cfg config.LogConfig) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), err
	}
	if level == zerolog.NoLevel {
		level = zerolog.WarnLevel
	}

	return zerolog.New(writer(cfg)).Level(level).With().Timestamp().Logger(), nil
}

func writer(cfg config.LogConfig) io.Writer {
	var out io.Writer = os.Stderr
	if cfg.File != "" {
		out = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
		}
	}

	if cfg.Format == "json" {
		return out
	}

	// Colors only make sense on a terminal.
	return zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    cfg.File != "",
		TimeFormat: time.Kitchen,
	}
}

// Module returns a child of logger tagged with the given module name.
func Module(logger zerolog.Logger, module string) zerolog.Logger {
	return logger.With().Str(KeyModule, module).Logger()
}

// FromContext returns the logger attached to ctx tagged with module, or
// fallback when ctx carries none. fallback is expected to carry its own tag.
func FromContext(ctx context.Context, module string, fallback *zerolog.Logger) *zerolog.Logger {
	if ctx != nil {
		if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
			tagged := Module(*l, module)
			return &tagged
		}
	}
	return fallback
}
