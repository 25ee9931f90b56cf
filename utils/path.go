package utils

import (
	"path/filepath"
	"strings"
)

// RootGuard tells whether a path lies under one of the configured roots.
// Roots are resolved once; symlinks in checked paths are followed so a link
// pointing out of the tree is not considered inside it.
type RootGuard struct {
	roots []string
}

// NewRootGuard resolves roots to absolute, symlink free paths. Roots that
// cannot be made absolute are ignored.
func NewRootGuard(roots []string) *RootGuard {
	g := &RootGuard{roots: make([]string, 0, len(roots))}
	for _, root := range roots {
		if abs, ok := resolve(root); ok {
			g.roots = append(g.roots, abs)
		}
	}
	return g
}

// Contains reports whether path is one of the roots or below one.
func (g *RootGuard) Contains(path string) bool {
	abs, ok := resolve(path)
	if !ok {
		return false
	}
	for _, root := range g.roots {
		rel, err := filepath.Rel(root, abs)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// IsPathWithin returns true if the given path is within any of the roots.
func IsPathWithin(path string, roots []string) bool {
	return NewRootGuard(roots).Contains(path)
}

func resolve(path string) (string, bool) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		resolved = path
	}
	abs, err := filepath.Abs(resolved)
	if err != nil {
		return "", false
	}
	return abs, true
}
