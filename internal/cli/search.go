// Package cli provides Cobra command definitions for reelflix.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	rferrors "github.com/chazuruo/reelflix/internal/errors"
	"github.com/chazuruo/reelflix/internal/history"
)

// SearchOptions contains the options for the search command.
type SearchOptions struct {
	ConfigPath string
	Query      string
	JSON       bool
	Out        io.Writer
}

// NewSearchCommand creates the search command.
func NewSearchCommand() *cobra.Command {
	opts := &SearchOptions{}

	cmd := &cobra.Command{
		Use:   "search <query...>",
		Short: "Search and remember the query",
		Long: `Run a search and add the query to your recent searches.

The query is trimmed; blank queries are ignored. Searching for something
already in the list (ignoring case) moves it back to the top. Only the
10 most recent searches are kept.

Examples:
  reelflix search space opera
  reelflix search "Romantic Comedy" --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.ConfigPath = globalConfigPath()
			opts.Query = strings.Join(args, " ")
			opts.Out = cmd.OutOrStdout()
			return runSearch(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.JSON, "json", false, "print the updated history as JSON")

	return cmd
}

func runSearch(ctx context.Context, opts *SearchOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, s, err := openSession(ctx, opts.ConfigPath)
	if err != nil {
		return err
	}
	defer s.Close()

	query := strings.TrimSpace(opts.Query)
	if query == "" {
		return fmt.Errorf("search query cannot be blank: %w", rferrors.ErrInvalid)
	}

	entries, saveErr := s.manager.Record(ctx, query)

	if opts.JSON {
		if err := writeJSON(opts.Out, entries); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(opts.Out, "Searching for %q\n\n", query)
		printEntries(opts.Out, entries, time.Now())
	}

	if saveErr != nil {
		return fmt.Errorf("search history was not saved: %w", saveErr)
	}
	return nil
}

// writeJSON writes entries as indented JSON, never as null.
func writeJSON(w io.Writer, entries []history.Entry) error {
	if entries == nil {
		entries = []history.Entry{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(entries); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
