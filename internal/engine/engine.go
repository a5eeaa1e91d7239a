package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rcrowley/go-metrics"

	"github.com/NamanBalaji/modsync/internal/cancellation"
	"github.com/NamanBalaji/modsync/internal/digest"
	"github.com/NamanBalaji/modsync/internal/errors"
	"github.com/NamanBalaji/modsync/internal/fetch"
	"github.com/NamanBalaji/modsync/internal/logger"
	"github.com/NamanBalaji/modsync/internal/manifest"
	"github.com/NamanBalaji/modsync/internal/progress"
	"github.com/NamanBalaji/modsync/internal/reconcile"
	"github.com/NamanBalaji/modsync/internal/repository"
	"github.com/NamanBalaji/modsync/internal/status"
)

// Engine keeps a destination directory in sync with a manifest. One engine
// runs at most one synchronization at a time; progress and cancellation may
// be used from any goroutine.
type Engine struct {
	fetcher    Fetcher
	verifier   Verifier
	reconciler Reconciler
	recorder   Recorder
	workers    int
	mismatch   MismatchPolicy

	store   *progress.Store
	monitor *ProgressMonitor
	cancel  cancellation.Switch

	registry metrics.Registry
	metrics  *engineMetrics

	running atomic.Bool
	wg      sync.WaitGroup
}

// New creates an Engine. Without options it fetches over HTTP with the
// default client, verifies SHA-256 digests and processes entries one at a
// time.
func New(opts ...Option) *Engine {
	verifier, _ := digest.New(digest.SHA256)

	e := &Engine{
		fetcher:    fetch.New(nil),
		verifier:   verifier,
		reconciler: reconcile.New(),
		workers:    1,
		store:      progress.NewStore(),
		monitor:    NewProgressMonitor(),
		registry:   metrics.NewRegistry(),
	}

	e.store.Subscribe(e.monitor)
	e.store.Reset(status.Ready, 0)

	for _, opt := range opts {
		opt(e)
	}

	e.metrics = newEngineMetrics(e.registry)

	return e
}

// runTask runs a function in a goroutine tracked by the WaitGroup
func (e *Engine) runTask(task func()) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		task()
	}()
}

// Run synchronizes destination with files and blocks until the run ends.
func (e *Engine) Run(ctx context.Context, destination string, files []manifest.FileSpec) error {
	if err := e.begin(); err != nil {
		return err
	}

	return e.execute(ctx, destination, files)
}

// Start runs the synchronization on its own goroutine. The returned channel
// receives exactly one result.
func (e *Engine) Start(ctx context.Context, destination string, files []manifest.FileSpec) <-chan error {
	result := make(chan error, 1)

	if err := e.begin(); err != nil {
		result <- err
		close(result)
		return result
	}

	e.runTask(func() {
		defer close(result)
		result <- e.execute(ctx, destination, files)
	})

	return result
}

// Wait blocks until every run started with Start has returned.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// Cancel asks the active run to stop. It returns immediately and has no
// effect when the engine is idle.
func (e *Engine) Cancel() {
	if !e.running.Load() {
		return
	}

	logger.Infof("Cancellation requested")
	e.cancel.Cancel()
}

// Running reports whether a run is active.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// Progress returns a consistent copy of the current progress.
func (e *Engine) Progress() progress.Snapshot {
	return e.store.Snapshot()
}

// Monitor exposes the channel based progress fan-out.
func (e *Engine) Monitor() *ProgressMonitor {
	return e.monitor
}

// Metrics returns the registry holding the engine's counters and timers.
func (e *Engine) Metrics() metrics.Registry {
	return e.registry
}

// Reset returns an idle engine to the Ready state with cleared counters.
func (e *Engine) Reset() error {
	if e.running.Load() {
		return ErrRunInProgress
	}

	e.cancel.Reset()
	e.store.Reset(status.Ready, 0)

	return nil
}

func (e *Engine) begin() error {
	if !e.running.CompareAndSwap(false, true) {
		return ErrRunInProgress
	}

	e.cancel.Reset()

	return nil
}

func (e *Engine) execute(ctx context.Context, destination string, files []manifest.FileSpec) error {
	defer e.running.Store(false)

	runCtx, release := e.cancel.Bind(ctx)
	defer release()

	startedAt := time.Now()

	// Observers see the counters cleared before any work is reported.
	e.store.Reset(status.Ready, len(files))
	e.store.Update(func(s *progress.Snapshot) { s.Status = status.CheckingManifest })

	logger.Infof("Starting sync of %d files into %s", len(files), destination)

	err := e.sync(runCtx, destination, files)
	final := e.finish(err)

	if err != nil {
		logger.Errorf("Sync of %s ended %s: %v", destination, final.Status, err)
	} else {
		logger.Infof("Sync of %s completed: %d files verified", destination, final.VerifiedCompleted)
	}

	e.record(destination, startedAt, final, err)

	return err
}

// finish commits the terminal state for the outcome of a run.
func (e *Engine) finish(err error) progress.Snapshot {
	switch {
	case err == nil:
		return e.store.Update(func(s *progress.Snapshot) {
			s.Status = status.Completed
			s.FilesCompleted = s.FilesTotal
			s.VerifiedCompleted = s.FilesTotal
			s.CurrentFilePath = ""
			s.CurrentFileBytesReceived = 0
			s.CurrentFileBytesTotal = 0
		})
	case errors.IsCancelled(err):
		return e.store.Reset(status.Cancelled, 0)
	default:
		return e.store.Update(func(s *progress.Snapshot) {
			s.Status = status.Failed
		})
	}
}

func (e *Engine) record(destination string, startedAt time.Time, final progress.Snapshot, runErr error) {
	if e.recorder == nil {
		return
	}

	rec := &repository.RunRecord{
		ID:          uuid.New(),
		Destination: destination,
		StartedAt:   startedAt,
		FinishedAt:  time.Now(),
		Final:       final,
	}

	if runErr != nil {
		rec.Error = runErr.Error()
	}

	if err := e.recorder.Save(rec); err != nil {
		logger.Warnf("Failed to record run %s: %v", rec.ID, err)
	}
}
