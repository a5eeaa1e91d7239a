package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/NamanBalaji/modsync/internal/repository"
	"github.com/NamanBalaji/modsync/internal/tui/styles"
)

// RenderRunList renders recorded runs, newest first, one line each.
func RenderRunList(runs []*repository.RunRecord, width int) string {
	if len(runs) == 0 {
		return renderEmptyView(width)
	}

	rows := make([]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, RunItem(r, width))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// RunItem renders a single recorded run.
func RunItem(r *repository.RunRecord, width int) string {
	line := fmt.Sprintf("%s  %s  %s  %d/%d files  %s",
		r.ID.String()[:8],
		StatusLabel(r.Final.Status),
		humanize.Time(r.StartedAt),
		r.Final.FilesCompleted,
		r.Final.FilesTotal,
		FormatDuration(r.Duration()),
	)

	item := lipgloss.JoinVertical(lipgloss.Left,
		line,
		lipgloss.NewStyle().Faint(true).Render(truncate(r.Destination, max(width-4, maxNameLen))),
	)

	if r.Error != "" {
		item = lipgloss.JoinVertical(lipgloss.Left, item, styles.StatusFailed.Render(r.Error))
	}

	return styles.ListItemStyle.Width(width).Render(item)
}

func renderEmptyView(width int) string {
	logo := []string{
		"┌┬┐┌─┐┌┬┐┌─┐┬ ┬┌┐┌┌─┐",
		"││││ │ ││└─┐└┬┘││││  ",
		"┴ ┴└─┘─┴┘└─┘ ┴ ┘└┘└─┘",
	}
	colors := []lipgloss.Color{styles.Blue, styles.Mauve, styles.Pink}

	lines := make([]string, 0, len(logo))
	for i, line := range logo {
		lines = append(lines, lipgloss.NewStyle().Foreground(colors[i]).Render(line))
	}

	instruction := lipgloss.NewStyle().Foreground(styles.Subtext0).Render("No runs recorded yet. Run 'modsync sync' to start one.")
	content := lipgloss.JoinVertical(lipgloss.Center, lipgloss.JoinVertical(lipgloss.Center, lines...), "", instruction)

	return lipgloss.PlaceHorizontal(width, lipgloss.Center, content)
}
