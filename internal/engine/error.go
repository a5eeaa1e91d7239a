package engine

import (
	"context"

	"github.com/NamanBalaji/modsync/internal/errors"
)

var (
	// ErrRunInProgress is returned when a run is requested while another is active
	ErrRunInProgress = errors.New("a synchronization run is already in progress")
)

// classifyError maps a failure while processing resource to a SyncError.
// Anything caused by the cancellation switch or the caller's context becomes
// a Cancelled error.
func (e *Engine) classifyError(ctx context.Context, err error, resource string) error {
	if err == nil {
		return nil
	}

	if errors.IsCancelled(err) || e.cancel.Cancelled() {
		return errors.NewCancelledError(resource)
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		if ctx.Err() != nil {
			return errors.NewCancelledError(resource)
		}
	}

	var syncErr *errors.SyncError
	if errors.As(err, &syncErr) {
		return err
	}

	return errors.NewIOError(err, resource)
}
