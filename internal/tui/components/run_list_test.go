package components_test

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/NamanBalaji/modsync/internal/progress"
	"github.com/NamanBalaji/modsync/internal/repository"
	"github.com/NamanBalaji/modsync/internal/status"
	"github.com/NamanBalaji/modsync/internal/tui/components"
)

func TestRenderRunList(t *testing.T) {
	now := time.Now()

	runs := []*repository.RunRecord{
		{
			ID:          uuid.New(),
			Destination: "/games/mods",
			StartedAt:   now.Add(-2 * time.Minute),
			FinishedAt:  now.Add(-1 * time.Minute),
			Final:       progress.Snapshot{Status: status.Completed, FilesTotal: 3, FilesCompleted: 3},
		},
		{
			ID:          uuid.New(),
			Destination: "/games/other",
			StartedAt:   now.Add(-time.Hour),
			FinishedAt:  now.Add(-time.Hour + 5*time.Second),
			Final:       progress.Snapshot{Status: status.Failed, FilesTotal: 2, FilesCompleted: 1},
			Error:       "checksum mismatch",
		},
	}

	testCases := []struct {
		name             string
		runs             []*repository.RunRecord
		shouldContain    []string
		shouldNotContain []string
	}{
		{
			name:          "Empty list",
			runs:          nil,
			shouldContain: []string{"No runs recorded yet"},
		},
		{
			name:             "Completed run",
			runs:             runs[:1],
			shouldContain:    []string{runs[0].ID.String()[:8], "completed", "3/3 files", "1m 0s", "/games/mods"},
			shouldNotContain: []string{"No runs recorded yet"},
		},
		{
			name:          "Failed run shows its error",
			runs:          runs,
			shouldContain: []string{"failed", "1/2 files", "5s", "checksum mismatch", "/games/other"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			output := components.RenderRunList(tc.runs, 100)

			for _, want := range tc.shouldContain {
				if !strings.Contains(output, want) {
					t.Errorf("expected output to contain %q, got:\n%s", want, output)
				}
			}

			for _, unwanted := range tc.shouldNotContain {
				if strings.Contains(output, unwanted) {
					t.Errorf("expected output not to contain %q, got:\n%s", unwanted, output)
				}
			}
		})
	}
}
