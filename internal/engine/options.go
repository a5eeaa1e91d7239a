package engine

import (
	"github.com/rcrowley/go-metrics"

	"github.com/NamanBalaji/modsync/internal/progress"
)

type Option func(*Engine)

func WithFetcher(f Fetcher) Option {
	return func(e *Engine) {
		if f != nil {
			e.fetcher = f
		}
	}
}

func WithVerifier(v Verifier) Option {
	return func(e *Engine) {
		if v != nil {
			e.verifier = v
		}
	}
}

func WithReconciler(r Reconciler) Option {
	return func(e *Engine) {
		if r != nil {
			e.reconciler = r
		}
	}
}

// WithWorkers processes up to n entries at once. n <= 1 keeps the default
// sequential processing in manifest order.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n < 1 {
			n = 1
		}

		e.workers = n
	}
}

// WithMismatchPolicy sets what happens to files that fail verification.
func WithMismatchPolicy(p MismatchPolicy) Option {
	return func(e *Engine) {
		e.mismatch = p
	}
}

// WithObserver registers o for every committed progress snapshot.
func WithObserver(o progress.Observer) Option {
	return func(e *Engine) {
		e.store.Subscribe(o)
	}
}

// WithRecorder persists a record of every finished run.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		e.recorder = r
	}
}

// WithMetricsRegistry registers the engine metrics in r instead of a private
// registry.
func WithMetricsRegistry(r metrics.Registry) Option {
	return func(e *Engine) {
		if r != nil {
			e.registry = r
		}
	}
}
