package progress_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NamanBalaji/modsync/internal/progress"
	"github.com/NamanBalaji/modsync/internal/status"
)

func TestStoreUpdateAndSnapshot(t *testing.T) {
	store := progress.NewStore()

	assert.Equal(t, progress.Snapshot{}, store.Snapshot())

	store.Reset(status.CheckingManifest, 3)
	committed := store.Update(func(s *progress.Snapshot) {
		s.CurrentFilePath = "/mods/a.txt"
		s.FilesCompleted++
		s.VerifiedCompleted++
	})

	snap := store.Snapshot()
	assert.Equal(t, committed, snap)
	assert.Equal(t, status.CheckingManifest, snap.Status)
	assert.Equal(t, 3, snap.FilesTotal)
	assert.Equal(t, 1, snap.FilesCompleted)
	assert.Equal(t, "/mods/a.txt", snap.CurrentFilePath)
}

func TestStoreClampsCounters(t *testing.T) {
	store := progress.NewStore()
	store.Reset(status.Fetching, 1)

	snap := store.Update(func(s *progress.Snapshot) {
		s.FilesCompleted = 5
		s.VerifiedCompleted = 7
		s.CurrentFileBytesTotal = 10
		s.CurrentFileBytesReceived = 12
	})

	assert.Equal(t, 1, snap.FilesCompleted)
	assert.Equal(t, 1, snap.VerifiedCompleted)
	assert.LessOrEqual(t, snap.CurrentFileBytesReceived, snap.CurrentFileBytesTotal)
}

func TestStoreNotifiesObserversInOrder(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []int
	)

	store := progress.NewStore(progress.ObserverFunc(func(s progress.Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, s.FilesCompleted)
	}))
	store.Reset(status.CheckingManifest, 100)

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Update(func(s *progress.Snapshot) { s.FilesCompleted++ })
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 51)
	for i := 1; i < len(seen); i++ {
		assert.Equal(t, seen[i-1]+1, seen[i], "observer saw commits out of order")
	}
}

func TestConcurrentReadersSeeConsistentSnapshots(t *testing.T) {
	store := progress.NewStore()
	store.Reset(status.Fetching, 1000)

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
				s := store.Snapshot()
				// FilesCompleted and VerifiedCompleted are always written together.
				assert.Equal(t, s.FilesCompleted, s.VerifiedCompleted)
			}
		}
	}()

	for range 1000 {
		store.Update(func(s *progress.Snapshot) {
			s.FilesCompleted++
			s.VerifiedCompleted++
		})
	}
	close(done)
	wg.Wait()
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0.0, progress.Snapshot{}.Percentage())
	assert.Equal(t, 100.0, progress.Snapshot{Status: status.Completed}.Percentage())
	assert.Equal(t, 50.0, progress.Snapshot{FilesTotal: 4, FilesCompleted: 2}.Percentage())
}

func TestThrottleForwardsStateChangesAndLimitsBytes(t *testing.T) {
	var got []progress.Snapshot
	obs := progress.Throttle(progress.ObserverFunc(func(s progress.Snapshot) {
		got = append(got, s)
	}), time.Hour)

	obs.OnProgress(progress.Snapshot{Status: status.Fetching, CurrentFilePath: "a"})
	for i := int64(1); i <= 10; i++ {
		obs.OnProgress(progress.Snapshot{Status: status.Fetching, CurrentFilePath: "a", CurrentFileBytesReceived: i})
	}
	obs.OnProgress(progress.Snapshot{Status: status.Verifying, CurrentFilePath: "a"})
	obs.OnProgress(progress.Snapshot{Status: status.Completed})

	// The limiter starts with a burst of one: the first byte update passes,
	// the rest fall inside the interval and are dropped.
	require.Len(t, got, 4)
	assert.Equal(t, status.Fetching, got[0].Status)
	assert.Equal(t, int64(1), got[1].CurrentFileBytesReceived)
	assert.Equal(t, status.Verifying, got[2].Status)
	assert.Equal(t, status.Completed, got[3].Status)
}
