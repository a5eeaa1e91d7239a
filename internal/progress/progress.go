package progress

import (
	"sync"

	"github.com/NamanBalaji/modsync/internal/status"
)

// Snapshot is a point-in-time copy of a synchronization run's state.
type Snapshot struct {
	Status                   status.Status `json:"status"`
	FilesTotal               int           `json:"filesTotal"`
	FilesCompleted           int           `json:"filesCompleted"`
	VerifiedCompleted        int           `json:"verifiedCompleted"`
	CurrentFilePath          string        `json:"currentFilePath"`
	CurrentFileBytesReceived int64         `json:"currentFileBytesReceived"`
	CurrentFileBytesTotal    int64         `json:"currentFileBytesTotal"`
}

// Percentage returns the share of manifest entries completed, 0 to 100.
func (s Snapshot) Percentage() float64 {
	if s.FilesTotal <= 0 {
		if s.Status == status.Completed {
			return 100
		}

		return 0
	}

	return float64(s.FilesCompleted) / float64(s.FilesTotal) * 100
}

// Observer is notified synchronously with every committed snapshot.
type Observer interface {
	OnProgress(Snapshot)
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(Snapshot)

func (f ObserverFunc) OnProgress(s Snapshot) {
	f(s)
}

// Store guards the Snapshot of one engine. Readers never observe a partially
// applied Update.
type Store struct {
	// writeMu serializes writers so observers see commits in order.
	writeMu sync.Mutex

	mu   sync.RWMutex
	snap Snapshot

	observersMu sync.RWMutex
	observers   []Observer
}

func NewStore(observers ...Observer) *Store {
	return &Store{observers: observers}
}

// Subscribe registers o for every subsequent commit.
func (s *Store) Subscribe(o Observer) {
	if o == nil {
		return
	}

	s.observersMu.Lock()
	defer s.observersMu.Unlock()

	s.observers = append(s.observers, o)
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snap
}

// Update applies fn under exclusive access and returns the committed copy.
func (s *Store) Update(fn func(*Snapshot)) Snapshot {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	fn(&s.snap)
	clamp(&s.snap)
	committed := s.snap
	s.mu.Unlock()

	s.observersMu.RLock()
	observers := s.observers
	s.observersMu.RUnlock()

	for _, o := range observers {
		o.OnProgress(committed)
	}

	return committed
}

// Reset replaces the snapshot with a fresh one for a run of total files.
func (s *Store) Reset(st status.Status, total int) Snapshot {
	return s.Update(func(snap *Snapshot) {
		*snap = Snapshot{Status: st, FilesTotal: total}
	})
}

func clamp(s *Snapshot) {
	if s.FilesTotal < 0 {
		s.FilesTotal = 0
	}

	if s.FilesCompleted > s.FilesTotal {
		s.FilesCompleted = s.FilesTotal
	}

	if s.VerifiedCompleted > s.FilesTotal {
		s.VerifiedCompleted = s.FilesTotal
	}

	if s.CurrentFileBytesTotal > 0 && s.CurrentFileBytesReceived > s.CurrentFileBytesTotal {
		s.CurrentFileBytesTotal = s.CurrentFileBytesReceived
	}
}
