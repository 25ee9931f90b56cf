package scanner

import (
	"path/filepath"
	"strings"

	"spdxify/license"
)

// TagForm selects how the SPDX line is written in block comment files.
type TagForm string

const (
	// TagFormLine writes "// SPDX-License-Identifier: ..." in C-like files.
	TagFormLine TagForm = "line"
	// TagFormBlock writes " * SPDX-License-Identifier: ..." inside a /* */ block.
	TagFormBlock TagForm = "block"
)

// CommentStyle describes how comments look in one family of files.
type CommentStyle struct {
	Name string
	// Prefix starts an ordinary comment line, and is also used for the
	// blank separator line.
	Prefix string
	// marker is what remains of Prefix once surrounding spaces are trimmed.
	marker string
	// Open and Close wrap a standalone comment block. Both are empty for
	// line comment styles.
	Open  string
	Close string
	// lineTag prefixes the SPDX line in TagFormLine.
	lineTag string
}

var (
	BlockStyle = &CommentStyle{Name: "block", Prefix: " *", marker: "*", Open: "/*", Close: " */", lineTag: "//"}
	LineStyle  = &CommentStyle{Name: "line", Prefix: "#", marker: "#", lineTag: "#"}
)

var (
	blockExts = []string{".c", ".h", ".ld", ".S"}
	lineExts  = []string{".mk", "Makefile", ".py", ".sh"}
)

// StyleFor returns the comment style of path from its name, or nil when
// the name is not recognised.
func StyleFor(path string) *CommentStyle {
	name := filepath.Base(path)
	for _, ext := range blockExts {
		if strings.HasSuffix(name, ext) {
			return BlockStyle
		}
	}
	for _, ext := range lineExts {
		if strings.HasSuffix(name, ext) {
			return LineStyle
		}
	}
	return nil
}

// IsBlank reports whether line holds nothing but the comment marker and
// whitespace. Only the bare marker counts: "/*" and " */" are not blank,
// so a copyright block does not run on into the next comment.
func (s *CommentStyle) IsBlank(line string) bool {
	t := strings.TrimSpace(line)
	t = strings.TrimPrefix(t, s.marker)
	return strings.TrimSpace(t) == ""
}

func (s *CommentStyle) opensComment(line string) bool {
	if s == BlockStyle {
		return strings.Contains(line, "/*") || strings.HasPrefix(strings.TrimSpace(line), "//")
	}
	return strings.Contains(line, "#")
}

// TagLines renders the lines written for expr at the insertion point ip.
// A standalone tag in a block style file always gets its own /* */ block;
// form only picks the prefix of the tag line.
func (s *CommentStyle) TagLines(expr string, form TagForm, ip InsertionPoint) []string {
	prefix := s.lineTag
	if s == BlockStyle && form == TagFormBlock {
		prefix = s.Prefix
	}
	wrap := ip.Standalone && s.Open != ""
	tag := prefix + " " + license.SPDXTagText + " " + expr

	var lines []string
	if ip.Separator {
		lines = append(lines, s.Prefix)
	}
	if wrap {
		return append(lines, s.Open, tag, s.Close)
	}
	return append(lines, tag)
}
