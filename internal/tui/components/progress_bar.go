package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/NamanBalaji/modsync/internal/status"
	"github.com/NamanBalaji/modsync/internal/tui/styles"
)

// ProgressBar returns a bar of the given width filled to percent (0 to 1),
// colored after the run status.
func ProgressBar(width int, percent float64, s status.Status) string {
	if width <= 0 {
		return ""
	}

	percent = max(0, min(percent, 1.0))

	filledWidth := int(float64(width) * percent)
	emptyWidth := width - filledWidth

	filledStr := strings.Repeat("█", filledWidth)
	emptyStr := strings.Repeat("░", emptyWidth)

	filledStyle := lipgloss.NewStyle().Foreground(barColor(s))

	return filledStyle.Render(filledStr) + styles.ProgressBarEmptyStyle.Render(emptyStr)
}

func barColor(s status.Status) lipgloss.Color {
	switch s {
	case status.Fetching:
		return styles.Teal
	case status.Verifying:
		return styles.Lavender
	case status.Reconciling:
		return styles.Sapphire
	case status.Completed:
		return styles.Green
	case status.Cancelled:
		return styles.Mauve
	case status.Failed:
		return styles.Red
	default: // Ready or CheckingManifest
		return styles.Yellow
	}
}
