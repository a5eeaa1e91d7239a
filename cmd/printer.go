package cmd

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rcrowley/go-metrics"

	"github.com/NamanBalaji/modsync/internal/engine"
	"github.com/NamanBalaji/modsync/internal/progress"
	"github.com/NamanBalaji/modsync/internal/status"
	"github.com/NamanBalaji/modsync/internal/tui/components"
)

const clearLine = "\r\033[K"

// linePrinter redraws a single status line for every snapshot it receives.
type linePrinter struct {
	mu   sync.Mutex
	w    io.Writer
	last progress.Snapshot
}

func newLinePrinter(w io.Writer) *linePrinter {
	return &linePrinter{w: w}
}

func (p *linePrinter) OnProgress(s progress.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.last = s
	fmt.Fprint(p.w, clearLine+formatLine(s))
}

// Finish ends the status line with the outcome of the run.
func (p *linePrinter) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.w, "%s%s  %d/%d files verified\n",
		clearLine,
		components.StatusLabel(p.last.Status),
		p.last.VerifiedCompleted,
		p.last.FilesTotal)
}

func formatLine(s progress.Snapshot) string {
	line := fmt.Sprintf("%s  [%d/%d]", components.StatusLabel(s.Status), s.FilesCompleted, s.FilesTotal)

	if s.CurrentFilePath != "" {
		line += " " + s.CurrentFilePath
	}

	if s.Status == status.Fetching {
		line += "  " + components.FormatBytes(s.CurrentFileBytesReceived, s.CurrentFileBytesTotal)
	}

	return line
}

func printStats(w io.Writer, r metrics.Registry) {
	fetched := metrics.GetOrRegisterCounter(engine.MetricFetchCount, r).Count()
	hits := metrics.GetOrRegisterCounter(engine.MetricCacheHits, r).Count()
	bytes := metrics.GetOrRegisterMeter(engine.MetricFetchBytes, r).Count()
	removed := metrics.GetOrRegisterCounter(engine.MetricReconcileRemoved, r).Count()
	timer := metrics.GetOrRegisterTimer(engine.MetricFetchDuration, r)

	fmt.Fprintf(w, "fetched:    %s files, %s\n", humanize.Comma(fetched), humanize.Bytes(uint64(bytes)))
	fmt.Fprintf(w, "up to date: %s files\n", humanize.Comma(hits))
	fmt.Fprintf(w, "pruned:     %s entries\n", humanize.Comma(removed))

	if timer.Count() > 0 {
		fmt.Fprintf(w, "mean fetch: %s\n", time.Duration(timer.Mean()).Round(time.Millisecond))
	}
}
