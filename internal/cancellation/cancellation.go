package cancellation

import (
	"context"
	"sync"
	"sync/atomic"
)

// Switch is a cooperative cancellation flag shared between a host and the
// engine. The host sets it, the engine polls it.
type Switch struct {
	cancelled atomic.Bool

	mu     sync.Mutex
	cancel context.CancelFunc
}

// Cancel requests cancellation. It is idempotent.
func (s *Switch) Cancel() {
	s.cancelled.Store(true)

	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Cancelled reports whether Cancel was called since the last Reset.
func (s *Switch) Cancelled() bool {
	return s.cancelled.Load()
}

// Reset clears the flag. Called at the start of every run.
func (s *Switch) Reset() {
	s.cancelled.Store(false)
}

// Bind derives a context from parent that is also cancelled by Cancel, so
// that a read blocked on the network is interrupted. The returned release
// function must be called when the run ends.
func (s *Switch) Bind(parent context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)

	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	if s.Cancelled() {
		cancel()
	}

	return ctx, func() {
		s.mu.Lock()
		s.cancel = nil
		s.mu.Unlock()

		cancel()
	}
}
