// Package rewrite applies line level edits to a file and atomically
// replaces it when anything changed.
package rewrite

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"spdxify/hasher"
)

// ErrChangedOnDisk is returned when a file no longer matches the content
// its plan was computed from.
var ErrChangedOnDisk = errors.New("file changed since it was scanned")

// Insertion is a block of lines written immediately before line Line.
// Line may be one past the last line to append at the end of the file.
type Insertion struct {
	Line  int
	Lines []string
}

// Plan describes every edit for one file. Line numbers refer to the
// original content.
type Plan struct {
	Path        string
	Fingerprint uint64
	Drop        Set
	Replace     map[int]string
	Insert      *Insertion
}

// Empty reports whether the plan carries no edit at all.
func (p *Plan) Empty() bool {
	return p == nil || (len(p.Drop) == 0 && len(p.Replace) == 0 && (p.Insert == nil || len(p.Insert.Lines) == 0))
}

// Change is one edited line, as shown in previews.
type Change struct {
	Line int
	Op   byte // '-' or '+'
	Text string
}

func (c Change) String() string {
	return fmt.Sprintf("%d: %c%s", c.Line, c.Op, c.Text)
}

// Options control how a plan is applied.
type Options struct {
	// DryRun computes the changes without touching the file.
	DryRun bool
	// Preview, when set, receives one line per change.
	Preview io.Writer
}

// SplitLines splits data after each newline, keeping the terminators.
func SplitLines(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	lines := strings.SplitAfter(string(data), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func terminator(line string) string {
	switch {
	case strings.HasSuffix(line, "\r\n"):
		return "\r\n"
	case strings.HasSuffix(line, "\n"):
		return "\n"
	}
	return ""
}

func newline(lines []string) string {
	if len(lines) > 0 && strings.HasSuffix(lines[0], "\r\n") {
		return "\r\n"
	}
	return "\n"
}

// Render applies p to data and returns the new content and the list of
// changes. An empty change list means the content is unchanged.
func Render(data []byte, p *Plan) ([]byte, []Change) {
	lines := SplitLines(data)
	nl := newline(lines)
	var (
		out     bytes.Buffer
		changes []Change
	)
	out.Grow(len(data) + 256)

	insert := func(at int) {
		if p.Insert == nil || p.Insert.Line != at {
			return
		}
		for _, l := range p.Insert.Lines {
			out.WriteString(l)
			out.WriteString(nl)
			changes = append(changes, Change{Line: at, Op: '+', Text: l})
		}
	}

	for i, line := range lines {
		n := i + 1
		insert(n)
		body := strings.TrimSuffix(line, terminator(line))
		if p.Drop.Contains(n) {
			changes = append(changes, Change{Line: n, Op: '-', Text: body})
			continue
		}
		if r, ok := p.Replace[n]; ok && r != body {
			changes = append(changes,
				Change{Line: n, Op: '-', Text: body},
				Change{Line: n, Op: '+', Text: r})
			out.WriteString(r)
			out.WriteString(terminator(line))
			continue
		}
		out.WriteString(line)
	}
	if p.Insert != nil && p.Insert.Line == len(lines)+1 {
		if len(lines) > 0 && terminator(lines[len(lines)-1]) == "" {
			out.WriteString(nl)
		}
		insert(len(lines) + 1)
	}
	return out.Bytes(), changes
}

// Apply executes p against the file on disk. It reports whether the file
// was, or in dry-run mode would be, modified.
func Apply(p *Plan, opts Options) (bool, error) {
	if p.Empty() {
		return false, nil
	}
	info, err := os.Stat(p.Path)
	if err != nil {
		return false, err
	}
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return false, err
	}
	if p.Fingerprint != 0 && hasher.Fingerprint(data) != p.Fingerprint {
		return false, ErrChangedOnDisk
	}

	out, changes := Render(data, p)
	if len(changes) == 0 {
		return false, nil
	}
	if opts.Preview != nil {
		for _, c := range changes {
			fmt.Fprintf(opts.Preview, "%s:%s\n", p.Path, c)
		}
	}
	if opts.DryRun {
		return true, nil
	}
	if err := replaceFile(p.Path, out, info.Mode().Perm()); err != nil {
		return false, err
	}
	return true, nil
}

// replaceFile writes data to a sibling temporary file and renames it over
// path, so readers see either the old or the new content.
func replaceFile(path string, data []byte, perm os.FileMode) (err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".spdxify-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Chmod(perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
