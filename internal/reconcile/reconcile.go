package reconcile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"

	"github.com/NamanBalaji/modsync/internal/filesystem"
	"github.com/NamanBalaji/modsync/internal/logger"
)

var ErrWalkFailed = errors.New("failed to enumerate managed directory")

// Result lists what a reconcile pass removed, deepest paths first.
type Result struct {
	RemovedFiles []string
	RemovedDirs  []string
}

// Removed returns the total number of removed entries.
func (r Result) Removed() int {
	return len(r.RemovedFiles) + len(r.RemovedDirs)
}

type Option func(*Reconciler)

// WithDryRun reports what would be removed without touching the disk.
func WithDryRun(dryRun bool) Option {
	return func(r *Reconciler) {
		r.dryRun = dryRun
	}
}

// Reconciler prunes files and directories under managed roots that are no
// longer listed in the manifest.
type Reconciler struct {
	dryRun bool
}

func New(opts ...Option) *Reconciler {
	r := &Reconciler{}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

type entry struct {
	path  string
	depth int
	isDir bool
}

// Reconcile removes every entry below the managed roots of destination that
// is not an expected file or an ancestor of one. Files and symlinks are
// removed outright, directories only once they are empty. Nothing outside
// the managed roots is visited and symlinks are never followed.
func (r *Reconciler) Reconcile(destination string, expected []string) (Result, error) {
	var result Result

	if len(expected) == 0 {
		return result, nil
	}

	plan, err := NewPlan(destination, expected)
	if err != nil {
		return result, err
	}

	entries, err := r.collect(plan)
	if err != nil {
		return result, err
	}

	removed := make(map[string]struct{})

	for _, e := range entries {
		if plan.Kept(e.path) {
			continue
		}

		if e.isDir {
			empty, err := r.isEmpty(e.path, removed)
			if err != nil {
				return result, fmt.Errorf("failed to inspect %s: %w", e.path, err)
			}

			if !empty {
				logger.Debugf("Keeping non-empty unmanaged directory %s", e.path)
				continue
			}

			if !r.dryRun {
				if err := os.Remove(e.path); err != nil {
					return result, fmt.Errorf("failed to remove directory %s: %w", e.path, err)
				}
			}

			logger.Infof("Removed empty directory %s", e.path)
			removed[e.path] = struct{}{}
			result.RemovedDirs = append(result.RemovedDirs, e.path)

			continue
		}

		if !r.dryRun {
			if err := os.Remove(e.path); err != nil && !os.IsNotExist(err) {
				return result, fmt.Errorf("failed to remove file %s: %w", e.path, err)
			}
		}

		logger.Infof("Removed file %s", e.path)
		removed[e.path] = struct{}{}
		result.RemovedFiles = append(result.RemovedFiles, e.path)
	}

	return result, nil
}

// collect enumerates every entry below the managed roots and orders them so
// children always come before their parents.
func (r *Reconciler) collect(plan *Plan) ([]entry, error) {
	var (
		mu      sync.Mutex
		entries []entry
	)

	conf := fastwalk.Config{
		Follow: false,
	}

	for _, root := range plan.ManagedRoots {
		info, err := os.Lstat(root)
		if err != nil {
			if os.IsNotExist(err) {
				logger.Debugf("Managed root %s does not exist, skipping", root)
				continue
			}

			return nil, fmt.Errorf("%w: %s: %w", ErrWalkFailed, root, err)
		}

		if !info.IsDir() {
			continue
		}

		err = fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}

			if path == root {
				return nil
			}

			rel, err := filepath.Rel(plan.Root, path)
			if err != nil {
				return err
			}

			e := entry{
				path:  path,
				depth: strings.Count(rel, string(filepath.Separator)),
				isDir: d.IsDir(),
			}

			mu.Lock()
			entries = append(entries, e)
			mu.Unlock()

			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrWalkFailed, root, err)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].depth != entries[j].depth {
			return entries[i].depth > entries[j].depth
		}

		return entries[i].path > entries[j].path
	})

	return entries, nil
}

// isEmpty reports whether dir has no entries left. In dry-run mode entries
// already scheduled for removal do not count.
func (r *Reconciler) isEmpty(dir string, removed map[string]struct{}) (bool, error) {
	if !r.dryRun {
		return filesystem.IsEmptyDir(dir)
	}

	f, err := os.Open(dir)
	if err != nil {
		return false, err
	}
	defer f.Close()

	names, err := f.Readdirnames(-1)
	if err != nil {
		return false, err
	}

	for _, name := range names {
		if _, ok := removed[filepath.Join(dir, name)]; !ok {
			return false, nil
		}
	}

	return true, nil
}
