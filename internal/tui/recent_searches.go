// Package tui provides Bubble Tea models for terminal UI interactions.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/chazuruo/reelflix/internal/history"
	"github.com/chazuruo/reelflix/internal/logging"
)

// HistoryEditor is the part of history.Manager the picker edits through.
type HistoryEditor interface {
	Remove(ctx context.Context, id string) ([]history.Entry, error)
	Clear(ctx context.Context) ([]history.Entry, error)
}

// historyChangedMsg carries the list after a remove or clear.
type historyChangedMsg struct {
	entries []history.Entry
	err     error
}

// RecentSearchesModel is a Bubble Tea model for browsing recent searches.
type RecentSearchesModel struct {
	// Entries is the history, most recent first.
	Entries []history.Entry

	// Filtered holds the indices into Entries matching the filter.
	Filtered []int

	// cursor is the current cursor position in the filtered list.
	cursor int

	// FilterInput is the text input for filtering.
	FilterInput textinput.Model

	// Focused indicates which component is focused ("filter" or "list").
	Focused string

	// ConfirmingClear is set while the clear-all prompt is shown.
	ConfirmingClear bool

	// ShowHelp controls whether the key help line is rendered.
	ShowHelp bool

	// Quit indicates whether the user quit without selecting.
	Quit bool

	// Confirmed indicates whether the user picked an entry.
	Confirmed bool

	// SelectedEntry is the picked entry, set when Confirmed.
	SelectedEntry *history.Entry

	// Err is the last storage error, shown until the next change.
	Err error

	ctx    context.Context
	editor HistoryEditor
	now    func() time.Time

	// styles
	normalStyle   lipgloss.Style
	selectedStyle lipgloss.Style
	ageStyle      lipgloss.Style
	headerStyle   lipgloss.Style
	errorStyle    lipgloss.Style
}

// NewRecentSearchesModel creates a picker over entries. Deletions go
// through editor; now is used for the age column (nil means time.Now).
func NewRecentSearchesModel(ctx context.Context, entries []history.Entry, editor HistoryEditor, now func() time.Time) RecentSearchesModel {
	ti := textinput.New()
	ti.Placeholder = "Filter searches..."
	ti.Focus()

	if now == nil {
		now = time.Now
	}

	m := RecentSearchesModel{
		Entries:     entries,
		FilterInput: ti,
		Focused:     "filter",
		ShowHelp:    true,
		ctx:         ctx,
		editor:      editor,
		now:         now,
		normalStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),
		selectedStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Bold(true),
		ageStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		headerStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true),
		errorStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")),
	}
	m.applyFilter("")
	if len(entries) == 0 {
		m.focusList()
	}
	return m
}

// focusList moves focus from the filter input to the list.
func (m *RecentSearchesModel) focusList() {
	m.Focused = "list"
	m.FilterInput.Blur()
}

// Init implements tea.Model.
func (m RecentSearchesModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m RecentSearchesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case historyChangedMsg:
		m.Entries = msg.entries
		m.Err = msg.err
		if msg.err != nil {
			nop := zerolog.Nop()
			logging.FromContext(m.ctx, logging.ModuleTUI, &nop).Warn().Err(msg.err).Msg("Failed to update search history")
		}
		m.applyFilter(m.FilterInput.Value())
		if len(m.Entries) == 0 {
			// The empty screen has no filter box; keys go to the list.
			m.focusList()
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.Quit = true
			return m, tea.Quit
		}
		if m.ConfirmingClear {
			return m.updateConfirmClear(msg)
		}
		if m.Focused == "list" {
			return m.updateList(msg)
		}
		return m.updateFilter(msg)
	}

	return m, nil
}

func (m RecentSearchesModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "down", "tab":
		m.focusList()
		return m, nil

	case "esc":
		if m.FilterInput.Value() == "" {
			m.Quit = true
			return m, tea.Quit
		}
		m.FilterInput.SetValue("")
		m.applyFilter("")
		return m, nil
	}

	var cmd tea.Cmd
	oldFilter := m.FilterInput.Value()
	m.FilterInput, cmd = m.FilterInput.Update(msg)
	if newFilter := m.FilterInput.Value(); newFilter != oldFilter {
		m.applyFilter(newFilter)
	}
	return m, cmd
}

func (m RecentSearchesModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		m.Quit = true
		return m, tea.Quit

	case "enter":
		if e, ok := m.current(); ok {
			m.Confirmed = true
			m.SelectedEntry = &e
			return m, tea.Quit
		}

	case "/", "tab":
		if len(m.Entries) == 0 {
			return m, nil
		}
		m.Focused = "filter"
		m.FilterInput.Focus()
		return m, textinput.Blink

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.Filtered)-1 {
			m.cursor++
		}

	case "home", "g":
		m.cursor = 0

	case "end", "G":
		m.cursor = max(0, len(m.Filtered)-1)

	case "d", "delete", "x":
		if e, ok := m.current(); ok {
			return m, m.removeCmd(e.ID)
		}

	case "C":
		if len(m.Entries) > 0 {
			m.ConfirmingClear = true
		}

	case "?":
		m.ShowHelp = !m.ShowHelp
	}

	return m, nil
}

func (m RecentSearchesModel) updateConfirmClear(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.ConfirmingClear = false
	switch msg.String() {
	case "y", "Y":
		return m, m.clearCmd()
	}
	return m, nil
}

func (m RecentSearchesModel) removeCmd(id string) tea.Cmd {
	ctx, editor := m.ctx, m.editor
	return func() tea.Msg {
		entries, err := editor.Remove(ctx, id)
		return historyChangedMsg{entries: entries, err: err}
	}
}

func (m RecentSearchesModel) clearCmd() tea.Cmd {
	ctx, editor := m.ctx, m.editor
	return func() tea.Msg {
		entries, err := editor.Clear(ctx)
		return historyChangedMsg{entries: entries, err: err}
	}
}

// View implements tea.Model.
func (m RecentSearchesModel) View() string {
	var b strings.Builder

	b.WriteString("\n  ")
	b.WriteString(m.headerStyle.Render("Recent Searches"))
	b.WriteString("\n\n")

	if len(m.Entries) == 0 {
		b.WriteString("  No recent searches.\n")
		if m.Err != nil {
			b.WriteString("\n  " + m.errorStyle.Render("Error: "+m.Err.Error()) + "\n")
		}
		b.WriteString("\n  " + m.ageStyle.Render("[q] Quit") + "\n")
		return b.String()
	}

	b.WriteString("  Filter: ")
	b.WriteString(m.FilterInput.View())
	b.WriteString("\n\n")

	b.WriteString("  ")
	b.WriteString(m.ageStyle.Render(fmt.Sprintf("%d of %d searches", len(m.Filtered), len(m.Entries))))
	b.WriteString("\n\n")

	if len(m.Filtered) == 0 {
		b.WriteString("  (no matches)\n")
	}

	now := m.now()
	for i, idx := range m.Filtered {
		e := m.Entries[idx]

		prefix := "  "
		style := m.normalStyle
		if i == m.cursor && m.Focused == "list" {
			prefix = "> "
			style = m.selectedStyle
		}

		query := fmt.Sprintf("%-40s", truncate(e.Query, 40))
		b.WriteString("  " + prefix + style.Render(query) + " " + m.ageStyle.Render(e.Age(now)) + "\n")
	}

	if m.Err != nil {
		b.WriteString("\n  " + m.errorStyle.Render("Error: "+m.Err.Error()) + "\n")
	}

	if m.ConfirmingClear {
		b.WriteString("\n  " + m.selectedStyle.Render("Clear all recent searches? [y/N]") + "\n")
	} else if m.ShowHelp {
		b.WriteString("\n  " + m.helpText() + "\n")
	}

	return b.String()
}

// helpText returns the help text.
func (m RecentSearchesModel) helpText() string {
	var parts []string

	if m.Focused == "filter" {
		parts = append(parts, "[Enter] Focus list", "[Esc] Clear filter")
	} else {
		parts = append(parts,
			"[Enter] Search again",
			"[d] Delete",
			"[C] Clear all",
			"[/] Filter",
			"[q] Quit",
		)
	}

	return m.ageStyle.Render(strings.Join(parts, " • "))
}

// applyFilter narrows the list to entries containing query, ignoring case.
func (m *RecentSearchesModel) applyFilter(query string) {
	needle := history.Normalize(query)

	m.Filtered = make([]int, 0, len(m.Entries))
	for i, e := range m.Entries {
		if needle == "" || strings.Contains(history.Normalize(e.Query), needle) {
			m.Filtered = append(m.Filtered, i)
		}
	}

	if m.cursor >= len(m.Filtered) {
		m.cursor = max(0, len(m.Filtered)-1)
	}
}

func (m RecentSearchesModel) current() (history.Entry, bool) {
	if len(m.Filtered) == 0 {
		return history.Entry{}, false
	}
	return m.Entries[m.Filtered[m.cursor]], true
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// DidQuit returns true if the user quit without selecting.
func (m RecentSearchesModel) DidQuit() bool {
	return m.Quit
}

// DidConfirm returns true if the user picked an entry.
func (m RecentSearchesModel) DidConfirm() bool {
	return m.Confirmed
}
