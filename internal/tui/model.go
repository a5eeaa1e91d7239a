package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/NamanBalaji/modsync/internal/progress"
	"github.com/NamanBalaji/modsync/internal/tui/components"
	"github.com/NamanBalaji/modsync/internal/tui/styles"
)

const defaultWidth = 80

// Model shows the progress of a single synchronization run.
type Model struct {
	actions engineActions
	title   string

	snapshot progress.Snapshot
	spinner  spinner.Model
	help     help.Model
	keys     keyMap

	width      int
	cancelling bool
	done       bool
	err        error
}

type (
	snapshotMsg progress.Snapshot
	resultMsg   struct{ err error }
)

// NewModel creates a model for a run into the given destination.
func NewModel(actions engineActions, title string) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Line
	sp.Style = lipgloss.NewStyle().Foreground(styles.Pink)

	return &Model{
		actions:  actions,
		title:    title,
		snapshot: actions.Progress(),
		spinner:  sp,
		help:     help.New(),
		keys:     newKeyMap(),
		width:    defaultWidth,
	}
}

// Err returns the result of the run once the model is done.
func (m *Model) Err() error {
	return m.err
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles incoming messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case snapshotMsg:
		m.snapshot = progress.Snapshot(msg)

	case resultMsg:
		m.done = true
		m.err = msg.err
		m.snapshot = m.actions.Progress()

		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case tea.KeyMsg:
		// The program quits on resultMsg once the run has wound down.
		if key.Matches(msg, m.keys.Cancel) || key.Matches(msg, m.keys.Quit) {
			if !m.cancelling && !m.done {
				m.cancelling = true
				m.actions.Cancel()
			}
		}
	}

	return m, nil
}

// View renders the TUI.
func (m *Model) View() string {
	header := styles.HeaderStyle.Render("modsync") + " " + m.title

	body := components.SyncItem(m.snapshot, m.width)

	var footer string

	switch {
	case m.done && m.err != nil:
		footer = styles.ErrorStyle.Render(m.err.Error())
	case m.done:
		footer = styles.SuccessStyle.Render(fmt.Sprintf("%d files in sync", m.snapshot.FilesTotal))
	case m.cancelling:
		footer = fmt.Sprintf("%s Cancelling...", m.spinner.View())
	default:
		footer = m.spinner.View() + " " + styles.FooterStyle.Render(m.help.View(m.keys))
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", footer) + "\n"
}
