package engine

import (
	"context"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/NamanBalaji/modsync/internal/digest"
	"github.com/NamanBalaji/modsync/internal/errors"
	"github.com/NamanBalaji/modsync/internal/filesystem"
	"github.com/NamanBalaji/modsync/internal/logger"
	"github.com/NamanBalaji/modsync/internal/manifest"
	"github.com/NamanBalaji/modsync/internal/progress"
	"github.com/NamanBalaji/modsync/internal/status"
)

func (e *Engine) sync(ctx context.Context, destination string, files []manifest.FileSpec) error {
	if len(files) == 0 {
		logger.Infof("Manifest is empty, nothing to do")
		return nil
	}

	var err error
	if e.workers > 1 {
		err = e.processParallel(ctx, destination, files)
	} else {
		err = e.processSequential(ctx, destination, files)
	}

	if err != nil {
		return err
	}

	if err := e.checkCancelled(ctx, destination); err != nil {
		return err
	}

	return e.prune(destination, files)
}

func (e *Engine) processSequential(ctx context.Context, destination string, files []manifest.FileSpec) error {
	for _, f := range files {
		if err := e.checkCancelled(ctx, f.Path); err != nil {
			return err
		}

		if err := e.processFile(ctx, destination, f); err != nil {
			return err
		}
	}

	return nil
}

// processParallel runs up to e.workers entries at once. The first failure
// cancels the remaining ones and is the error reported for the run.
func (e *Engine) processParallel(ctx context.Context, destination string, files []manifest.FileSpec) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for _, f := range files {
		if err := e.checkCancelled(gctx, f.Path); err != nil {
			// A sibling's failure cancels gctx; prefer its error.
			if waitErr := g.Wait(); waitErr != nil {
				return waitErr
			}

			return err
		}

		g.Go(func() error {
			if err := e.checkCancelled(gctx, f.Path); err != nil {
				return err
			}

			return e.processFile(gctx, destination, f)
		})
	}

	return g.Wait()
}

func (e *Engine) checkCancelled(ctx context.Context, resource string) error {
	if e.cancel.Cancelled() || ctx.Err() != nil {
		logger.Debugf("Stopping before %s: cancelled", resource)
		return errors.NewCancelledError(resource)
	}

	return nil
}

// processFile makes sure one manifest entry is present with the expected
// digest, downloading it when the local copy is missing or stale.
func (e *Engine) processFile(ctx context.Context, destination string, f manifest.FileSpec) error {
	e.store.Update(func(s *progress.Snapshot) {
		s.Status = status.CheckingManifest
		s.CurrentFilePath = f.Path
		s.CurrentFileBytesReceived = 0
		s.CurrentFileBytesTotal = 0
	})

	dest, err := filesystem.SafeJoin(destination, f.Path)
	if err != nil {
		return errors.NewIOError(err, f.Path)
	}

	if e.verifier.IsValid(dest, f.Hash) {
		logger.Debugf("%s is up to date", f.Path)
		e.metrics.cacheHits.Inc(1)
		e.completeFile()

		return nil
	}

	e.store.Update(func(s *progress.Snapshot) {
		s.Status = status.Fetching
	})

	logger.Infof("Fetching %s", f.Path)

	var received int64
	start := time.Now()

	err = e.fetcher.Fetch(ctx, f.URL, dest, func(n, total int64) error {
		received = n

		e.store.Update(func(s *progress.Snapshot) {
			s.CurrentFilePath = f.Path
			s.CurrentFileBytesReceived = n
			s.CurrentFileBytesTotal = total
		})

		if e.cancel.Cancelled() {
			return errors.NewCancelledError(f.Path)
		}

		return nil
	})
	if err != nil {
		return e.classifyError(ctx, err, f.Path)
	}

	e.metrics.observeFetch(start, received)

	e.store.Update(func(s *progress.Snapshot) {
		s.Status = status.Verifying
	})

	got, err := e.verifier.DigestOf(dest)
	if err != nil {
		return errors.NewIOError(err, f.Path)
	}

	if !digest.Equal(got, f.Hash) {
		logger.Warnf("Digest mismatch for %s: want %s, got %s", f.Path, f.Hash, got)

		if e.mismatch == RemoveMismatched {
			if err := os.Remove(dest); err != nil {
				logger.Warnf("Failed to remove mismatched %s: %v", dest, err)
			}
		}

		return errors.NewChecksumError(f.Path, f.Hash, got)
	}

	e.completeFile()

	return nil
}

func (e *Engine) completeFile() {
	e.store.Update(func(s *progress.Snapshot) {
		s.FilesCompleted++
		s.VerifiedCompleted++
		s.CurrentFileBytesReceived = 0
		s.CurrentFileBytesTotal = 0
	})
}

func (e *Engine) prune(destination string, files []manifest.FileSpec) error {
	e.store.Update(func(s *progress.Snapshot) {
		s.Status = status.Reconciling
		s.CurrentFilePath = ""
	})

	result, err := e.reconciler.Reconcile(destination, manifest.Paths(files))
	if err != nil {
		return errors.NewReconcileError(err, destination)
	}

	e.metrics.reconcileRemoved.Inc(int64(result.Removed()))

	if result.Removed() > 0 {
		logger.Infof("Removed %d files and %d directories from %s", len(result.RemovedFiles), len(result.RemovedDirs), destination)
	}

	return nil
}
