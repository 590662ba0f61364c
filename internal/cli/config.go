package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/chazuruo/reelflix/internal/config"
	rferrors "github.com/chazuruo/reelflix/internal/errors"
)

// ConfigInitOptions contains the options for the config init command.
type ConfigInitOptions struct {
	Path  string
	Force bool
	Out   io.Writer
}

// NewConfigCommand creates the config command.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the reelflix config file",
	}

	cmd.AddCommand(newConfigInitCommand())

	return cmd
}

func newConfigInitCommand() *cobra.Command {
	opts := &ConfigInitOptions{}

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a config file with default values",
		Long: `Write a config file populated with the default settings.

The file goes to the given path, the --config path, or the XDG config
location, in that order. An existing file is kept unless --force is set.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.Path = args[0]
			}
			opts.Out = cmd.OutOrStdout()
			return runConfigInit(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false, "overwrite an existing config file")

	return cmd
}

func runConfigInit(_ context.Context, opts *ConfigInitOptions) error {
	path, err := configInitPath(opts.Path)
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil && !opts.Force {
		return fmt.Errorf("config file %s already exists; pass --force to overwrite: %w", path, rferrors.ErrInvalid)
	}

	if err := config.Write(path, config.DefaultConfig()); err != nil {
		return &rferrors.ConfigError{Path: path, Err: err}
	}

	fmt.Fprintf(opts.Out, "Wrote default config to %s\n", path)
	return nil
}

func configInitPath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	if path = globalConfigPath(); path != "" {
		return path, nil
	}
	if path = config.DetectConfigPath(); path != "" {
		return path, nil
	}
	return config.DefaultConfigPath()
}
