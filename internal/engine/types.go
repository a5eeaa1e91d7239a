package engine

import (
	"context"

	"github.com/NamanBalaji/modsync/internal/fetch"
	"github.com/NamanBalaji/modsync/internal/reconcile"
	"github.com/NamanBalaji/modsync/internal/repository"
)

// MismatchPolicy decides what happens to a downloaded file whose digest does
// not match the manifest.
type MismatchPolicy int

const (
	// KeepMismatched leaves the file for the next run's digest check.
	KeepMismatched MismatchPolicy = iota
	// RemoveMismatched deletes the file before the run fails.
	RemoveMismatched
)

// Fetcher downloads a single remote resource to a local path.
type Fetcher interface {
	Fetch(ctx context.Context, url, destPath string, onProgress fetch.ProgressFunc) error
}

// Verifier computes and checks content digests of local files.
type Verifier interface {
	DigestOf(path string) (string, error)
	IsValid(path, expected string) bool
}

// Reconciler prunes unexpected entries below the managed roots.
type Reconciler interface {
	Reconcile(destination string, expected []string) (reconcile.Result, error)
}

// Recorder persists the outcome of a run.
type Recorder interface {
	Save(record *repository.RunRecord) error
}

// RecorderFunc adapts a plain function to the Recorder interface.
type RecorderFunc func(record *repository.RunRecord) error

func (f RecorderFunc) Save(record *repository.RunRecord) error {
	return f(record)
}
