package engine

import (
	"sync"

	"github.com/NamanBalaji/modsync/internal/progress"
)

// ProgressMonitor forwards committed snapshots to registered channels. A
// listener that is not ready to receive misses that snapshot; the next one
// carries the full state anyway.
type ProgressMonitor struct {
	listeners  map[string]chan<- progress.Snapshot
	listenerMu sync.RWMutex
}

// NewProgressMonitor creates a new progress monitor
func NewProgressMonitor() *ProgressMonitor {
	return &ProgressMonitor{
		listeners: make(map[string]chan<- progress.Snapshot),
	}
}

// OnProgress implements progress.Observer.
func (pm *ProgressMonitor) OnProgress(s progress.Snapshot) {
	pm.broadcastProgress(s)
}

// Stop closes and forgets every listener.
func (pm *ProgressMonitor) Stop() {
	pm.listenerMu.Lock()
	defer pm.listenerMu.Unlock()

	for _, ch := range pm.listeners {
		close(ch)
	}
	pm.listeners = make(map[string]chan<- progress.Snapshot)
}

// RegisterListener adds a new progress listener
func (pm *ProgressMonitor) RegisterListener(id string, listener chan<- progress.Snapshot) {
	pm.listenerMu.Lock()
	defer pm.listenerMu.Unlock()

	pm.listeners[id] = listener
}

// UnregisterListener removes a progress listener
func (pm *ProgressMonitor) UnregisterListener(id string) {
	pm.listenerMu.Lock()
	defer pm.listenerMu.Unlock()

	delete(pm.listeners, id)
}

// broadcastProgress forwards progress updates to all listeners
func (pm *ProgressMonitor) broadcastProgress(s progress.Snapshot) {
	pm.listenerMu.RLock()
	defer pm.listenerMu.RUnlock()

	for _, listener := range pm.listeners {
		select {
		case listener <- s:
		default:
		}
	}
}
