package filesystem_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/NamanBalaji/modsync/internal/filesystem"
)

func TestCreateFile(t *testing.T) {
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "subdir", "nested", "testfile.txt")

	file, err := filesystem.CreateFile(filePath)
	if err != nil {
		t.Fatalf("CreateFile failed: %v", err)
	}

	content := []byte("hello world")
	if _, err := file.Write(content); err != nil {
		t.Fatalf("Writing to file failed: %v", err)
	}
	if err := file.Close(); err != nil {
		t.Fatalf("Closing file failed: %v", err)
	}

	exists, err := filesystem.FileExists(filePath)
	if err != nil {
		t.Fatalf("FileExists failed: %v", err)
	}
	if !exists {
		t.Fatalf("Expected file to exist after creation")
	}
}

func TestCreateFileTruncates(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "testfile.txt")
	if err := os.WriteFile(filePath, []byte("a much longer previous body"), 0o644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	file, err := filesystem.CreateFile(filePath)
	if err != nil {
		t.Fatalf("CreateFile failed: %v", err)
	}
	file.Write([]byte("short"))
	file.Close()

	b, _ := os.ReadFile(filePath)
	if string(b) != "short" {
		t.Errorf("Expected truncated content %q, got %q", "short", b)
	}
}

func TestCreateTemp(t *testing.T) {
	target := filepath.Join(t.TempDir(), "mods", "a.pbo")

	file, err := filesystem.CreateTemp(target)
	if err != nil {
		t.Fatalf("CreateTemp failed: %v", err)
	}
	defer file.Close()

	if filepath.Dir(file.Name()) != filepath.Dir(target) {
		t.Errorf("Expected temp file next to %s, got %s", target, file.Name())
	}
	if !strings.HasPrefix(filepath.Base(file.Name()), ".a.pbo.modsync-") {
		t.Errorf("Unexpected temp file name %s", file.Name())
	}
}

func TestFileExists(t *testing.T) {
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "nonexistent.txt")

	exists, err := filesystem.FileExists(filePath)
	if err != nil {
		t.Fatalf("FileExists failed: %v", err)
	}
	if exists {
		t.Errorf("Expected file to not exist")
	}

	exists, err = filesystem.FileExists(tempDir)
	if err != nil || !exists {
		t.Errorf("Expected directory to exist, got %v (err %v)", exists, err)
	}
}

func TestIsEmptyDir(t *testing.T) {
	dir := t.TempDir()

	empty, err := filesystem.IsEmptyDir(dir)
	if err != nil || !empty {
		t.Fatalf("Expected fresh temp dir to be empty, got %v (err %v)", empty, err)
	}

	if err := os.Mkdir(filepath.Join(dir, "child"), 0o755); err != nil {
		t.Fatal(err)
	}

	empty, err = filesystem.IsEmptyDir(dir)
	if err != nil || empty {
		t.Errorf("Expected dir with a child to be non-empty, got %v (err %v)", empty, err)
	}

	if _, err := filesystem.IsEmptyDir(filepath.Join(dir, "missing")); err == nil {
		t.Error("Expected error for a missing directory")
	}
}

func TestSafeJoin(t *testing.T) {
	root := filepath.FromSlash("/dest")

	tests := []struct {
		rel       string
		want      string
		expectErr bool
	}{
		{rel: "/mods/a.txt", want: filepath.FromSlash("/dest/mods/a.txt")},
		{rel: "mods/a.txt", want: filepath.FromSlash("/dest/mods/a.txt")},
		{rel: "//mods//sub/../b.txt", want: filepath.FromSlash("/dest/mods/b.txt")},
		{rel: "../etc/passwd", expectErr: true},
		{rel: "mods/../../x", expectErr: true},
		{rel: "/", expectErr: true},
		{rel: "", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			got, err := filesystem.SafeJoin(root, tt.rel)
			if tt.expectErr {
				if err == nil {
					t.Errorf("Expected error for %q, got %q", tt.rel, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("SafeJoin(%q) failed: %v", tt.rel, err)
			}
			if got != tt.want {
				t.Errorf("SafeJoin(%q) = %q, want %q", tt.rel, got, tt.want)
			}
		})
	}
}
