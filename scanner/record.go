package scanner

import (
	"slices"

	"spdxify/license"
	"spdxify/rewrite"
	"spdxify/spdx"
)

// InsertionPoint is where a missing SPDX tag goes: immediately before
// line Line, which may be one past the last line.
type InsertionPoint struct {
	Line int `json:"line"`
	// Standalone means the tag does not extend an existing copyright block
	// and gets its own comment when the style needs one.
	Standalone bool `json:"standalone,omitempty"`
	// Separator asks for a blank comment line before the tag.
	Separator bool `json:"separator,omitempty"`
}

// ARRMention is an "All rights reserved" occurrence.
type ARRMention struct {
	Line int `json:"line"`
	// Pure is set when the line carries nothing else, so stripping the
	// mention removes the whole line.
	Pure bool `json:"pure,omitempty"`
}

// FileRecord is everything one scan learned about a file.
type FileRecord struct {
	Path     string                            `json:"path"`
	Style    *CommentStyle                     `json:"-"`
	Licenses license.Set                       `json:"-"`
	Spans    map[license.Kind]rewrite.Interval `json:"spans,omitempty"`
	SPDX     string                            `json:"spdx,omitempty"`
	SPDXLine int                               `json:"spdx_line,omitempty"`
	ARR      []ARRMention                      `json:"arr,omitempty"`

	MultipleCopyrightBlocks bool `json:"multiple_copyright_blocks,omitempty"`
	DualLicensed            bool `json:"dual_licensed,omitempty"`
	OwnCopyright            bool `json:"own_copyright,omitempty"`
	OtherCopyright          bool `json:"other_copyright,omitempty"`
	Shebang                 bool `json:"shebang,omitempty"`
	FirstComment            int  `json:"first_comment,omitempty"`
	LastCopyright           int  `json:"last_copyright,omitempty"`
	BlankInCopyrightBlock   bool `json:"blank_in_copyright_block,omitempty"`

	Insertion   InsertionPoint `json:"insertion"`
	Fingerprint uint64         `json:"-"`
	Warnings    []string       `json:"warnings,omitempty"`

	lines []string
}

func newRecord(path string, style *CommentStyle) *FileRecord {
	return &FileRecord{
		Path:     path,
		Style:    style,
		Licenses: license.Set{},
		Spans:    map[license.Kind]rewrite.Interval{},
	}
}

// Kinds returns the detected license kinds in lexical order.
func (r *FileRecord) Kinds() []license.Kind { return r.Licenses.Sorted() }

// IDs returns the identifiers of the existing SPDX expression.
func (r *FileRecord) IDs() []string { return spdx.IDs(r.SPDX) }

// Operator is the combinator joining several identifiers for this file.
func (r *FileRecord) Operator() spdx.Operator {
	if r.DualLicensed {
		return spdx.Or
	}
	return spdx.And
}

// Identifiers accepted in an existing tag in place of a kind.
var aliases = map[license.Kind][]string{
	license.GPL2OrLater: {"GPL-2.0+"},
}

// Tagged reports whether the existing expression covers k.
func (r *FileRecord) Tagged(k license.Kind) bool {
	if spdx.Contains(r.SPDX, string(k)) {
		return true
	}
	for _, a := range aliases[k] {
		if spdx.Contains(r.SPDX, a) {
			return true
		}
	}
	return false
}

// Missing returns the detected kinds the existing tag does not mention.
func (r *FileRecord) Missing() []license.Kind {
	var missing []license.Kind
	for _, k := range r.Kinds() {
		if !r.Tagged(k) {
			missing = append(missing, k)
		}
	}
	return missing
}

// Mistagged reports whether some detected license is not tagged.
func (r *FileRecord) Mistagged() bool { return len(r.Missing()) > 0 }

// Unlicensed reports whether the file has neither license text nor tag.
func (r *FileRecord) Unlicensed() bool { return len(r.Licenses) == 0 && r.SPDX == "" }

// HasFullText reports whether at least one full license text was found.
func (r *FileRecord) HasFullText() bool { return len(r.Spans) > 0 }

// PureCopyright reports whether every copyright holder is the configured
// organization.
func (r *FileRecord) PureCopyright() bool { return r.OwnCopyright && !r.OtherCopyright }

// HasARR reports whether the file mentions "All rights reserved".
func (r *FileRecord) HasARR() bool { return len(r.ARR) > 0 }

// ARRLines returns the line numbers of every ARR mention.
func (r *FileRecord) ARRLines() []int {
	lines := make([]int, 0, len(r.ARR))
	for _, m := range r.ARR {
		lines = append(lines, m.Line)
	}
	return lines
}

// Line returns line n without its terminator, or "" when out of range.
func (r *FileRecord) Line(n int) string {
	if n < 1 || n > len(r.lines) {
		return ""
	}
	return trimEOL(r.lines[n-1])
}

// LineCount returns the number of lines scanned.
func (r *FileRecord) LineCount() int { return len(r.lines) }

// SpanKinds returns the kinds with a recorded span, in lexical order.
func (r *FileRecord) SpanKinds() []license.Kind {
	kinds := make([]license.Kind, 0, len(r.Spans))
	for k := range r.Spans {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}
