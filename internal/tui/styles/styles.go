package styles

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	Crust    = lipgloss.Color("#11111b")
	Base     = lipgloss.Color("#1e1e2e")
	Text     = lipgloss.Color("#cdd6f4")
	Subtext0 = lipgloss.Color("#a6adc8")
	Surface0 = lipgloss.Color("#313244")

	Pink     = lipgloss.Color("#f5c2e7")
	Mauve    = lipgloss.Color("#cba6f7")
	Red      = lipgloss.Color("#f38ba8")
	Peach    = lipgloss.Color("#fab387")
	Yellow   = lipgloss.Color("#f9e2af")
	Green    = lipgloss.Color("#a6e3a1")
	Teal     = lipgloss.Color("#94e2d5")
	Sapphire = lipgloss.Color("#74c7ec")
	Blue     = lipgloss.Color("#89b4fa")
	Lavender = lipgloss.Color("#b4befe")
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Crust).
			Background(Pink).
			Padding(0, 1)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Base).
			Background(Red).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Red).
			Padding(0, 1).
			Align(lipgloss.Center)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Base).
			Background(Green).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Green).
			Padding(0, 1).
			Align(lipgloss.Center)

	ListItemStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(Text)

	FooterStyle = lipgloss.NewStyle().
			Foreground(Subtext0).
			Padding(0, 1)

	ProgressBarEmptyStyle = lipgloss.NewStyle().Foreground(Surface0)

	StatusReady       = lipgloss.NewStyle().Foreground(Subtext0).Bold(true)
	StatusChecking    = lipgloss.NewStyle().Foreground(Yellow).Bold(true)
	StatusFetching    = lipgloss.NewStyle().Foreground(Teal).Bold(true)
	StatusVerifying   = lipgloss.NewStyle().Foreground(Lavender).Bold(true)
	StatusReconciling = lipgloss.NewStyle().Foreground(Sapphire).Bold(true)
	StatusCompleted   = lipgloss.NewStyle().Foreground(Green).Bold(true)
	StatusCancelled   = lipgloss.NewStyle().Foreground(Mauve).Bold(true)
	StatusFailed      = lipgloss.NewStyle().Foreground(Red).Bold(true)
)
