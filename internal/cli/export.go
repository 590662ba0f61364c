package cli

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	rferrors "github.com/chazuruo/reelflix/internal/errors"
	"github.com/chazuruo/reelflix/internal/export"
)

// ExportOptions contains the options for the history export command.
type ExportOptions struct {
	ConfigPath     string
	Format         string
	Out            string
	CustomTemplate string
	Stdout         io.Writer
}

// NewExportCommand creates the history export command.
func NewExportCommand() *cobra.Command {
	opts := &ExportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export recent searches to various formats",
		Long: `Export the recent searches with their ages.

Supported formats:
- json (default): JSON document
- yaml: YAML document
- md: Markdown table

Markdown output can use a custom text/template. Relative template names
are also looked up in ~/.config/reelflix/templates/.

Examples:
  reelflix history export                       # JSON to stdout
  reelflix history export --format md           # Markdown table
  reelflix history export -f yaml -o recent.yaml
  reelflix history export -f md --template plain.tmpl`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.ConfigPath = globalConfigPath()
			opts.Stdout = cmd.OutOrStdout()
			return runExport(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", string(export.FormatJSON), "output format ("+formatList()+")")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "-", "output path (default: stdout)")
	cmd.Flags().StringVarP(&opts.CustomTemplate, "template", "t", "", "custom template file (md only)")

	return cmd
}

func runExport(ctx context.Context, opts *ExportOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	format := export.Format(opts.Format)
	if !slices.Contains(export.Formats, format) {
		return fmt.Errorf("invalid format: %s (must be %s): %w", opts.Format, formatList(), rferrors.ErrInvalid)
	}

	outPath := opts.Out
	if outPath == "-" {
		outPath = "" // Empty means stdout
	}

	exporter, err := export.NewExporter(export.Options{
		Format:         format,
		Out:            outPath,
		CustomTemplate: opts.CustomTemplate,
	})
	if err != nil {
		return fmt.Errorf("failed to create exporter: %w", err)
	}

	ctx, s, err := openSession(ctx, opts.ConfigPath)
	if err != nil {
		return err
	}
	defer s.Close()

	entries := s.manager.Load(ctx)
	output, err := exporter.Export(entries)
	if err != nil {
		return fmt.Errorf("failed to export search history: %w", err)
	}

	if outPath == "" {
		fmt.Fprint(opts.Stdout, output)
	} else {
		fmt.Fprintf(opts.Stdout, "Exported %d search(es) to: %s\n", len(entries), outPath)
	}

	return nil
}

func formatList() string {
	names := make([]string, len(export.Formats))
	for i, f := range export.Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
