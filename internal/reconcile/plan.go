package reconcile

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/NamanBalaji/modsync/internal/filesystem"
)

// Plan describes which part of a destination tree is managed and what must
// survive pruning.
type Plan struct {
	Root         string
	Expected     map[string]struct{} // cleaned relative paths
	ManagedRoots []string            // absolute, sorted
	Keep         map[string]struct{} // absolute paths
}

// NewPlan derives the managed roots and keep set for expected below root.
// Each expected path is stripped of leading separators and cleaned; paths
// that would leave root are rejected.
func NewPlan(root string, expected []string) (*Plan, error) {
	root = filepath.Clean(root)

	p := &Plan{
		Root:     root,
		Expected: make(map[string]struct{}, len(expected)),
		Keep:     make(map[string]struct{}, len(expected)*2),
	}

	roots := make(map[string]struct{})

	for _, rel := range expected {
		full, err := filesystem.SafeJoin(root, rel)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", err, rel)
		}

		cleaned := filesystem.Clean(rel)
		p.Expected[cleaned] = struct{}{}

		first, _, _ := strings.Cut(cleaned, string(filepath.Separator))
		roots[filepath.Join(root, first)] = struct{}{}

		for dir := full; dir != root; dir = filepath.Dir(dir) {
			p.Keep[dir] = struct{}{}
		}
	}

	p.ManagedRoots = make([]string, 0, len(roots))
	for r := range roots {
		p.ManagedRoots = append(p.ManagedRoots, r)
	}
	sort.Strings(p.ManagedRoots)

	return p, nil
}

// Kept reports whether the absolute path must survive pruning.
func (p *Plan) Kept(path string) bool {
	_, ok := p.Keep[filepath.Clean(path)]
	return ok
}

// Managed reports whether path lies inside one of the managed roots.
func (p *Plan) Managed(path string) bool {
	path = filepath.Clean(path)

	for _, r := range p.ManagedRoots {
		if path == r || strings.HasPrefix(path, r+string(filepath.Separator)) {
			return true
		}
	}

	return false
}
