package repository

import (
	"time"

	"github.com/google/uuid"

	"github.com/NamanBalaji/modsync/internal/progress"
)

// RunRecord is the persisted outcome of one synchronization run.
type RunRecord struct {
	ID          uuid.UUID         `json:"id"`
	Destination string            `json:"destination"`
	ManifestURL string            `json:"manifestUrl,omitempty"`
	StartedAt   time.Time         `json:"startedAt"`
	FinishedAt  time.Time         `json:"finishedAt"`
	Final       progress.Snapshot `json:"final"`
	Error       string            `json:"error,omitempty"`
}

// Duration returns how long the run took.
func (r *RunRecord) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

type Repository interface {
	Save(record *RunRecord) error
	Find(id uuid.UUID) (*RunRecord, error)
	Last() (*RunRecord, error)
	FindAll() ([]*RunRecord, error)
	Delete(id uuid.UUID) error
}
