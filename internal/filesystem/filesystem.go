package filesystem

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var ErrPathEscapesRoot = errors.New("path escapes destination directory")

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// CreateFile creates or truncates path, creating missing parent directories.
func CreateFile(path string) (*os.File, error) {
	if err := EnsureDirectory(filepath.Dir(path)); err != nil {
		return nil, err
	}

	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePerm)
}

// CreateTemp creates a hidden temporary sibling of path for atomic writes.
func CreateTemp(path string) (*os.File, error) {
	dir := filepath.Dir(path)
	if err := EnsureDirectory(dir); err != nil {
		return nil, err
	}

	return os.CreateTemp(dir, "."+filepath.Base(path)+".modsync-*")
}

// EnsureDirectory ensures a directory exists
func EnsureDirectory(path string) error {
	return os.MkdirAll(path, dirPerm)
}

// FileExists checks if a file exists
func FileExists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}

	if os.IsNotExist(err) {
		return false, nil
	}

	return false, err
}

// IsEmptyDir reports whether the directory at path has no entries.
func IsEmptyDir(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	_, err = f.Readdirnames(1)
	if errors.Is(err, io.EOF) {
		return true, nil
	}

	return false, err
}

// SafeJoin joins rel below root after stripping leading separators. It
// rejects relative paths that would resolve outside root.
func SafeJoin(root, rel string) (string, error) {
	cleaned := Clean(rel)
	if cleaned == "" || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", ErrPathEscapesRoot
	}

	return filepath.Join(root, cleaned), nil
}

// Clean turns a manifest path into a relative OS path with leading
// separators removed. "." and the empty path both clean to "".
func Clean(rel string) string {
	rel = strings.TrimLeft(filepath.FromSlash(rel), `/\`)

	cleaned := filepath.Clean(rel)
	if cleaned == "." {
		return ""
	}

	return cleaned
}
