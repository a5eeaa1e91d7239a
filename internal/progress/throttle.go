package progress

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Throttle wraps next so byte-level updates reach it at most once per
// interval. Changes of status, current file or completed count are always
// forwarded, as is every terminal snapshot.
func Throttle(next Observer, interval time.Duration) Observer {
	return &throttled{
		next:    next,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

type throttled struct {
	next    Observer
	limiter *rate.Limiter

	mu   sync.Mutex
	last Snapshot
	seen bool
}

func (t *throttled) OnProgress(s Snapshot) {
	t.mu.Lock()
	changed := !t.seen ||
		s.Status != t.last.Status ||
		s.FilesCompleted != t.last.FilesCompleted ||
		s.CurrentFilePath != t.last.CurrentFilePath
	t.last = s
	t.seen = true
	t.mu.Unlock()

	if changed || s.Status.IsTerminal() {
		t.next.OnProgress(s)
		return
	}

	if t.limiter.Allow() {
		t.next.OnProgress(s)
	}
}
