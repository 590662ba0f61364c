package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/rodaine/table"
	"github.com/spf13/cobra"

	rferrors "github.com/chazuruo/reelflix/internal/errors"
	"github.com/chazuruo/reelflix/internal/history"
	"github.com/chazuruo/reelflix/internal/tui"
)

// HistoryOptions contains the options for the history command.
type HistoryOptions struct {
	ConfigPath string
	JSON       bool
	Out        io.Writer
}

// NewHistoryCommand creates the history command and its subcommands.
func NewHistoryCommand() *cobra.Command {
	opts := &HistoryOptions{}

	cmd := &cobra.Command{
		Use:     "history",
		Aliases: []string{"recent"},
		Short:   "Show recent searches",
		Long: `Show your recent searches, most recent first.

Interactive mode (default):
- Filter, pick a search to run it again
- d deletes the highlighted search, C clears everything

Non-interactive mode (--no-tui, --json, or tui.enabled = false):
- A table of id, query and age
- Use --json for structured output`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.ConfigPath = globalConfigPath()
			opts.Out = cmd.OutOrStdout()
			return runHistory(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.JSON, "json", false, "output in JSON format")

	cmd.AddCommand(newHistoryRemoveCommand())
	cmd.AddCommand(newHistoryClearCommand())
	cmd.AddCommand(NewExportCommand())

	return cmd
}

func runHistory(ctx context.Context, opts *HistoryOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, s, err := openSession(ctx, opts.ConfigPath)
	if err != nil {
		return err
	}
	defer s.Close()

	entries := s.manager.Load(ctx)

	if opts.JSON {
		return writeJSON(opts.Out, entries)
	}
	if !s.useTUI() || len(entries) == 0 {
		printEntries(opts.Out, entries, time.Now())
		return nil
	}

	return runHistoryTUI(ctx, s, entries, opts.Out)
}

// runHistoryTUI shows the picker and re-runs the chosen search.
func runHistoryTUI(ctx context.Context, s *session, entries []history.Entry, out io.Writer) error {
	model := tui.NewRecentSearchesModel(ctx, entries, s.manager, time.Now)
	model.ShowHelp = s.cfg.TUI.ShowHelp

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("failed to run history TUI: %w", err)
	}

	result, ok := finalModel.(tui.RecentSearchesModel)
	if !ok {
		return fmt.Errorf("unexpected model type: %T", finalModel)
	}
	if result.Err != nil {
		fmt.Fprintf(out, "Warning: %v\n", result.Err)
	}
	if !result.DidConfirm() || result.SelectedEntry == nil {
		return nil
	}

	query := result.SelectedEntry.Query
	if _, err := s.manager.Select(ctx, result.SelectedEntry.ID); err != nil {
		return fmt.Errorf("failed to update search history: %w", err)
	}
	fmt.Fprintf(out, "Searching for %q\n", query)
	return nil
}

// printEntries prints entries as a table with relative ages.
func printEntries(w io.Writer, entries []history.Entry, now time.Time) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No recent searches.")
		return
	}

	headerStyle := lipgloss.NewStyle().Bold(true)
	tbl := table.New("#", "QUERY", "SEARCHED", "ID").
		WithWriter(w).
		WithHeaderFormatter(func(format string, vals ...interface{}) string {
			return headerStyle.Render(fmt.Sprintf(format, vals...))
		})

	for i, e := range entries {
		tbl.AddRow(i+1, e.Query, e.Age(now), e.ID)
	}
	tbl.Print()

	fmt.Fprintf(w, "\nTotal: %d search(es)\n", len(entries))
}

// HistoryRemoveOptions contains the options for the history rm command.
type HistoryRemoveOptions struct {
	ConfigPath string
	ID         string
	Out        io.Writer
}

func newHistoryRemoveCommand() *cobra.Command {
	opts := &HistoryRemoveOptions{}

	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove", "delete"},
		Short:   "Remove one recent search",
		Long: `Remove a single search from the history by its id.

Ids are shown by "reelflix history --no-tui".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.ConfigPath = globalConfigPath()
			opts.ID = args[0]
			opts.Out = cmd.OutOrStdout()
			return runHistoryRemove(cmd.Context(), opts)
		},
	}

	return cmd
}

func runHistoryRemove(ctx context.Context, opts *HistoryRemoveOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, s, err := openSession(ctx, opts.ConfigPath)
	if err != nil {
		return err
	}
	defer s.Close()

	entry, ok := s.manager.Lookup(ctx, opts.ID)
	if !ok {
		return fmt.Errorf("no recent search with id %s: %w", opts.ID, rferrors.ErrNotFound)
	}

	if _, err := s.manager.Remove(ctx, opts.ID); err != nil {
		return fmt.Errorf("failed to remove search: %w", err)
	}

	fmt.Fprintf(opts.Out, "Removed %q\n", entry.Query)
	return nil
}

// HistoryClearOptions contains the options for the history clear command.
type HistoryClearOptions struct {
	ConfigPath string
	Yes        bool
	Out        io.Writer
}

// confirmClear asks the user before everything is deleted.
var confirmClear = func(count int) (bool, error) {
	confirmed := false
	if err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Clear Search History").
				Description(fmt.Sprintf("Are you sure you want to clear all %d recent searches?", count)).
				Affirmative("Clear All").
				Negative("Cancel").
				Value(&confirmed),
		),
	).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, rferrors.ErrCanceled
		}
		return false, fmt.Errorf("form error: %w", err)
	}
	if !confirmed {
		return false, rferrors.ErrCanceled
	}
	return true, nil
}

func newHistoryClearCommand() *cobra.Command {
	opts := &HistoryClearOptions{}

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear all recent searches",
		Long: `Delete every recent search.

Asks for confirmation unless --yes is given. With --no-tui, --yes is required.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.ConfigPath = globalConfigPath()
			opts.Out = cmd.OutOrStdout()
			return runHistoryClear(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}

func runHistoryClear(ctx context.Context, opts *HistoryClearOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, s, err := openSession(ctx, opts.ConfigPath)
	if err != nil {
		return err
	}
	defer s.Close()

	entries := s.manager.Entries(ctx)
	if len(entries) == 0 {
		fmt.Fprintln(opts.Out, "No recent searches.")
		return nil
	}

	if !opts.Yes {
		if !s.useTUI() {
			return fmt.Errorf("refusing to clear %d searches without confirmation; pass --yes: %w", len(entries), rferrors.ErrInvalid)
		}
		confirmed, err := confirmClear(len(entries))
		if rferrors.IsCanceled(err) || (err == nil && !confirmed) {
			fmt.Fprintln(opts.Out, "Canceled.")
			return nil
		}
		if err != nil {
			return err
		}
	}

	if _, err := s.manager.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear search history: %w", err)
	}

	fmt.Fprintf(opts.Out, "Cleared %d recent search(es).\n", len(entries))
	return nil
}
