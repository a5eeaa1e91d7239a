package repository_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/NamanBalaji/modsync/internal/progress"
	"github.com/NamanBalaji/modsync/internal/repository"
	"github.com/NamanBalaji/modsync/internal/status"
)

func newTestRepository(t *testing.T) *repository.BboltRepository {
	t.Helper()

	repo, err := repository.NewBboltRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	return repo
}

func TestNewBboltRepository_OpenError(t *testing.T) {
	dir := t.TempDir()
	_, err := repository.NewBboltRepository(dir)
	if err == nil {
		t.Errorf("Expected error when opening DB on directory path, got nil")
	}
}

func TestSaveNilRecord(t *testing.T) {
	repo := newTestRepository(t)

	if err := repo.Save(nil); !errors.Is(err, repository.ErrNilRecord) {
		t.Errorf("Expected ErrNilRecord, got %v", err)
	}
}

func TestSaveAssignsID(t *testing.T) {
	repo := newTestRepository(t)

	rec := &repository.RunRecord{Destination: "/dest"}
	if err := repo.Save(rec); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if rec.ID == uuid.Nil {
		t.Fatal("Expected Save to assign an ID")
	}

	got, err := repo.Find(rec.ID)
	if err != nil {
		t.Fatalf("Find error: %v", err)
	}
	if got.Destination != "/dest" {
		t.Errorf("Destination = %q, want /dest", got.Destination)
	}
}

func TestSaveFindRoundTripsSnapshot(t *testing.T) {
	repo := newTestRepository(t)

	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rec := &repository.RunRecord{
		ID:          uuid.New(),
		Destination: "/dest",
		ManifestURL: "https://example.com/files.xml",
		StartedAt:   start,
		FinishedAt:  start.Add(90 * time.Second),
		Final: progress.Snapshot{
			Status:            status.Failed,
			FilesTotal:        3,
			FilesCompleted:    1,
			VerifiedCompleted: 1,
			CurrentFilePath:   "/mods/b.pbo",
		},
		Error: "[CHECKSUM] /mods/b.pbo: checksum mismatch",
	}

	if err := repo.Save(rec); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	got, err := repo.Find(rec.ID)
	if err != nil {
		t.Fatalf("Find error: %v", err)
	}
	if got.Final != rec.Final {
		t.Errorf("Final = %+v, want %+v", got.Final, rec.Final)
	}
	if got.Error != rec.Error {
		t.Errorf("Error = %q, want %q", got.Error, rec.Error)
	}
	if got.Duration() != 90*time.Second {
		t.Errorf("Duration = %v, want 90s", got.Duration())
	}
}

func TestLast(t *testing.T) {
	repo := newTestRepository(t)

	if _, err := repo.Last(); !errors.Is(err, repository.ErrRunNotFound) {
		t.Fatalf("Expected ErrRunNotFound on empty history, got %v", err)
	}

	first := &repository.RunRecord{ID: uuid.New(), StartedAt: time.Now().Add(-time.Hour)}
	second := &repository.RunRecord{ID: uuid.New(), StartedAt: time.Now()}

	for _, rec := range []*repository.RunRecord{first, second} {
		if err := repo.Save(rec); err != nil {
			t.Fatalf("Save error: %v", err)
		}
	}

	last, err := repo.Last()
	if err != nil {
		t.Fatalf("Last error: %v", err)
	}
	if last.ID != second.ID {
		t.Errorf("Last() = %s, want %s", last.ID, second.ID)
	}

	if err := repo.Delete(second.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, err := repo.Last(); !errors.Is(err, repository.ErrRunNotFound) {
		t.Errorf("Expected ErrRunNotFound after deleting the last run, got %v", err)
	}
}

func TestSaveFindAllDelete(t *testing.T) {
	repo := newTestRepository(t)

	list, err := repo.FindAll()
	if err != nil {
		t.Fatalf("FindAll error: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("Expected empty list, got %d items", len(list))
	}

	older := &repository.RunRecord{ID: uuid.New(), StartedAt: time.Now().Add(-time.Minute)}
	newer := &repository.RunRecord{ID: uuid.New(), StartedAt: time.Now()}
	for _, rec := range []*repository.RunRecord{older, newer} {
		if err := repo.Save(rec); err != nil {
			t.Fatalf("Save error: %v", err)
		}
	}

	list, err = repo.FindAll()
	if err != nil {
		t.Fatalf("FindAll error: %v", err)
	}
	if len(list) != 2 || list[0].ID != newer.ID || list[1].ID != older.ID {
		t.Errorf("FindAll should return most recent first: %+v", list)
	}

	if err := repo.Delete(uuid.Nil); !errors.Is(err, repository.ErrEmptyID) {
		t.Errorf("Expected ErrEmptyID deleting Nil ID, got %v", err)
	}

	if err := repo.Delete(uuid.New()); !errors.Is(err, repository.ErrRunNotFound) {
		t.Errorf("Expected ErrRunNotFound deleting non-existent ID, got %v", err)
	}

	if err := repo.Delete(older.ID); err != nil {
		t.Errorf("Delete error for existing ID: %v", err)
	}

	if _, err := repo.Find(older.ID); !errors.Is(err, repository.ErrRunNotFound) {
		t.Errorf("Expected ErrRunNotFound after delete, got %v", err)
	}
}

func TestCloseBehavior(t *testing.T) {
	repo, err := repository.NewBboltRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}

	if err := repo.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	if err := repo.Save(&repository.RunRecord{ID: uuid.New()}); err == nil {
		t.Errorf("Expected error Save after Close, got nil")
	}
	if _, err := repo.FindAll(); err == nil {
		t.Errorf("Expected error FindAll after Close, got nil")
	}
	if err := repo.Delete(uuid.New()); err == nil {
		t.Errorf("Expected error Delete after Close, got nil")
	}
}
