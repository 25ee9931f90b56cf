package scanner

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

type walker interface {
	Walk(ctx context.Context, startPath string, fn fs.WalkDirFunc) error
}

// fastWalker walks depth first in lexical order. Hidden entries below the
// start path are not visited, the same set a shell "**" glob would expand
// to, which keeps .git and editor state out of license checks.
type fastWalker struct{}

func (w fastWalker) Walk(ctx context.Context, startPath string, fn fs.WalkDirFunc) error {
	info, err := os.Stat(startPath)
	if err != nil {
		return fn(startPath, nil, err)
	}
	root := fs.FileInfoToDirEntry(info)
	type item struct {
		path  string
		entry fs.DirEntry
	}
	stack := []item{{path: startPath, entry: root}}
	for len(stack) > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if err := fn(current.path, current.entry, nil); err != nil {
			if err == fs.SkipDir {
				continue
			}
			return err
		}
		if !current.entry.IsDir() {
			continue
		}

		entries, err := os.ReadDir(current.path)
		if err != nil {
			if ferr := fn(current.path, current.entry, err); ferr != nil && ferr != fs.SkipDir {
				return ferr
			}
			continue
		}
		// ReadDir sorts by name; push in reverse so the first name pops first.
		for i := len(entries) - 1; i >= 0; i-- {
			child := entries[i]
			if isHidden(child.Name()) {
				continue
			}
			stack = append(stack, item{
				path:  filepath.Join(current.path, child.Name()),
				entry: child,
			})
		}
	}
	return nil
}

func isHidden(name string) bool {
	return name != "." && name != ".." && strings.HasPrefix(name, ".")
}
