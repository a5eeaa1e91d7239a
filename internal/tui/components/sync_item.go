package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/NamanBalaji/modsync/internal/progress"
	"github.com/NamanBalaji/modsync/internal/status"
	"github.com/NamanBalaji/modsync/internal/tui/styles"
)

const maxNameLen = 40

// StatusLabel returns the styled, human readable form of a run status.
func StatusLabel(s status.Status) string {
	switch s {
	case status.Ready:
		return styles.StatusReady.Render("○ ready")
	case status.CheckingManifest:
		return styles.StatusChecking.Render("◌ checking")
	case status.Fetching:
		return styles.StatusFetching.Render("● fetching")
	case status.Verifying:
		return styles.StatusVerifying.Render("◎ verifying")
	case status.Reconciling:
		return styles.StatusReconciling.Render("⟳ reconciling")
	case status.Completed:
		return styles.StatusCompleted.Render("✔ completed")
	case status.Cancelled:
		return styles.StatusCancelled.Render("⊘ cancelled")
	case status.Failed:
		return styles.StatusFailed.Render("✖ failed")
	default:
		return styles.StatusFailed.Render("unknown")
	}
}

// SyncItem renders the state of a run as three lines: the current file with
// its status, an overall bar, and the file and byte counters.
func SyncItem(s progress.Snapshot, width int) string {
	name := truncate(s.CurrentFilePath, maxNameLen)
	if name == "" {
		name = "-"
	}

	percent := fmt.Sprintf("%.1f%%", s.Percentage())

	statusLabel := StatusLabel(s.Status)

	percentStyle := lipgloss.NewStyle().Width(10).Align(lipgloss.Right)
	formattedPercent := percentStyle.Render(percent)

	remainingSpace := width - maxNameLen - lipgloss.Width(statusLabel) - lipgloss.Width(formattedPercent) - 3
	if remainingSpace < 2 {
		remainingSpace = 2
	}

	line1 := fmt.Sprintf("%-*s %s%s%s",
		maxNameLen,
		name,
		statusLabel,
		strings.Repeat(" ", remainingSpace),
		formattedPercent)

	barWidth := width - 2
	if barWidth < 10 {
		barWidth = 10
	}

	line2 := styles.ListItemStyle.Render(ProgressBar(barWidth, s.Percentage()/100, s.Status))

	info := fmt.Sprintf("%d / %d files  %d verified", s.FilesCompleted, s.FilesTotal, s.VerifiedCompleted)
	if s.Status == status.Fetching {
		info += "  " + FormatBytes(s.CurrentFileBytesReceived, s.CurrentFileBytesTotal)
	}

	line3 := styles.ListItemStyle.Faint(true).Render(info)

	return styles.ListItemStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, line1, line2, line3))
}

// FormatBytes renders received bytes against an expected total. A zero total
// means the length is unknown.
func FormatBytes(received, total int64) string {
	if total <= 0 {
		return humanize.Bytes(uint64(max(received, 0))) + " / ?"
	}

	return humanize.Bytes(uint64(max(received, 0))) + " / " + humanize.Bytes(uint64(total))
}

// FormatDuration returns a compact, user friendly duration string.
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)

	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		m := d / time.Minute
		s := (d % time.Minute) / time.Second
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		h := d / time.Hour
		m := (d % time.Hour) / time.Minute
		return fmt.Sprintf("%dh %dm", h, m)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}

	return "..." + string(r[len(r)-n+3:])
}
