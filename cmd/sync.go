package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/NamanBalaji/modsync/internal/config"
	"github.com/NamanBalaji/modsync/internal/digest"
	"github.com/NamanBalaji/modsync/internal/engine"
	"github.com/NamanBalaji/modsync/internal/fetch"
	"github.com/NamanBalaji/modsync/internal/logger"
	"github.com/NamanBalaji/modsync/internal/manifest"
	"github.com/NamanBalaji/modsync/internal/progress"
	"github.com/NamanBalaji/modsync/internal/reconcile"
	"github.com/NamanBalaji/modsync/internal/repository"
	"github.com/NamanBalaji/modsync/internal/tui"
	httpPkg "github.com/NamanBalaji/modsync/pkg/http"
)

const progressInterval = 100 * time.Millisecond

var (
	errNoManifest    = errors.New("no manifest given: use --manifest or set manifestUrl in the config file")
	errNoDestination = errors.New("no destination given: use --destination or set destination in the config file")
)

var syncOpts struct {
	manifest    string
	destination string
	workers     int
	digest      string
	atomic      bool
	pruneDryRun bool
	removeBad   bool
	tui         bool
	stats       bool
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Download, verify and prune files to match a manifest",
	Long: `Sync makes the destination directory match the manifest: missing or
stale files are downloaded and verified, and files below the manifest's top
level directories that it no longer lists are removed.

Press Ctrl+C to cancel a running sync. Files already verified stay in place
and are skipped by the next run.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	f := syncCmd.Flags()
	f.StringVarP(&syncOpts.manifest, "manifest", "m", "", "manifest URL or local path (default from config)")
	f.StringVarP(&syncOpts.destination, "destination", "d", "", "destination directory (default from config)")
	f.IntVarP(&syncOpts.workers, "workers", "w", 0, "files processed at once (default from config)")
	f.StringVar(&syncOpts.digest, "digest", "", "digest algorithm: sha256 or md5 (default from config)")
	f.BoolVar(&syncOpts.atomic, "atomic", false, "write downloads to a temporary file and rename them on success")
	f.BoolVar(&syncOpts.removeBad, "remove-mismatched", false, "delete downloads that fail verification instead of keeping them")
	f.BoolVar(&syncOpts.pruneDryRun, "prune-dry-run", false, "log files that would be pruned without removing them")
	f.BoolVar(&syncOpts.tui, "tui", false, "show an interactive progress view")
	f.BoolVar(&syncOpts.stats, "stats", false, "print transfer statistics when the run ends")

	rootCmd.AddCommand(syncCmd)
}

// applySyncFlags returns a copy of base with every flag the user set applied.
func applySyncFlags(flags *pflag.FlagSet, base *config.Config) *config.Config {
	c := *base

	if flags.Changed("manifest") {
		c.ManifestURL = syncOpts.manifest
	}

	if flags.Changed("destination") {
		c.Destination = syncOpts.destination
	}

	if flags.Changed("workers") {
		c.Workers = syncOpts.workers
	}

	if flags.Changed("digest") {
		c.Digest = syncOpts.digest
	}

	if flags.Changed("atomic") {
		c.AtomicWrites = syncOpts.atomic
	}

	return &c
}

func runSync(cmd *cobra.Command, _ []string) error {
	opts := applySyncFlags(cmd.Flags(), cfg)

	if opts.ManifestURL == "" {
		return errNoManifest
	}

	if opts.Destination == "" {
		return errNoDestination
	}

	// Log lines would tear the TUI apart, so they go next to the history file.
	if syncOpts.tui && logFile == "" {
		path := filepath.Join(filepath.Dir(opts.HistoryFile), "modsync.log")
		if err := logger.InitLogging(debug, path); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
	}

	verifier, err := digest.New(opts.Digest)
	if err != nil {
		return err
	}

	repo, err := openHistory()
	if err != nil {
		return err
	}
	defer repo.Close()

	client := httpPkg.NewClient(
		httpPkg.WithUserAgent(opts.Http.UserAgent),
		httpPkg.WithResponseHeaderTimeout(opts.Http.Timeout),
	)

	out := cmd.OutOrStdout()

	engOpts := []engine.Option{
		engine.WithFetcher(fetch.New(client,
			fetch.WithMaxRetries(opts.Http.MaxRetries),
			fetch.WithRetryDelay(opts.Http.RetryDelay),
			fetch.WithAtomicWrites(opts.AtomicWrites),
		)),
		engine.WithVerifier(verifier),
		engine.WithReconciler(reconcile.New(reconcile.WithDryRun(syncOpts.pruneDryRun))),
		engine.WithWorkers(opts.Workers),
		engine.WithRecorder(engine.RecorderFunc(func(rec *repository.RunRecord) error {
			rec.ManifestURL = opts.ManifestURL
			return repo.Save(rec)
		})),
	}

	if syncOpts.removeBad {
		engOpts = append(engOpts, engine.WithMismatchPolicy(engine.RemoveMismatched))
	}

	var printer *linePrinter
	if !syncOpts.tui {
		printer = newLinePrinter(out)
		engOpts = append(engOpts, engine.WithObserver(progress.Throttle(printer, progressInterval)))
	}

	eng := engine.New(engOpts...)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			logger.Infof("Interrupted, cancelling sync")
			eng.Cancel()
			cancel()
		case <-ctx.Done():
		}
	}()

	files, err := manifest.Load(ctx, client, opts.ManifestURL)
	if err != nil {
		return fmt.Errorf("failed to load manifest %s: %w", opts.ManifestURL, err)
	}

	logger.Infof("Loaded %d manifest entries from %s", len(files), opts.ManifestURL)

	result := eng.Start(ctx, opts.Destination, files)

	if syncOpts.tui {
		err = tui.Run(eng, "→ "+opts.Destination, result)
	} else {
		err = <-result
		printer.Finish()
	}

	eng.Wait()

	if syncOpts.stats {
		printStats(out, eng.Metrics())
	}

	return err
}
