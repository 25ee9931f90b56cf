package scanner

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"spdxify/hasher"
	"spdxify/license"
	"spdxify/rewrite"
	"spdxify/spdx"
)

// Options drive the per-file scan. The zero value is usable and treats
// "Linaro" as the own organization.
type Options struct {
	// Organizations whose copyright counts as the tool user's own.
	Organizations []string
	// KnownIDs lists the identifiers accepted in existing tags;
	// spdx.Known when empty.
	KnownIDs []string
	// StrictIDs turns an unknown identifier into a file error instead of
	// a warning.
	StrictIDs bool
	// Matcher is the phrase matcher; the shared one when nil.
	Matcher *license.Matcher
}

var defaultOrganizations = []string{"Linaro"}

func (o Options) organizations() []string {
	if len(o.Organizations) == 0 {
		return defaultOrganizations
	}
	return o.Organizations
}

func (o Options) knownIDs() []string {
	if len(o.KnownIDs) == 0 {
		return spdx.Known
	}
	return o.KnownIDs
}

func (o Options) scan(line string) license.Hits {
	if o.Matcher == nil {
		return license.Scan(line)
	}
	return o.Matcher.Scan(line)
}

func (o Options) isOwn(line string) bool {
	for _, org := range o.organizations() {
		if org != "" && strings.Contains(line, org) {
			return true
		}
	}
	return false
}

type copyrightState int

const (
	beforeCopyright copyrightState = iota
	inCopyright
	afterCopyright
)

// ScanBytes builds the record of the file at path from its content.
// A non-nil error is always a *FileError; the record is returned along
// with it whenever one was built.
func ScanBytes(path string, data []byte, opts Options) (*FileRecord, error) {
	style := StyleFor(path)
	if style == nil {
		return nil, fileError(path, 0, ErrUnknownStyle)
	}
	rec := newRecord(path, style)
	rec.lines = rewrite.SplitLines(data)
	rec.Fingerprint = hasher.Fingerprint(data)

	var (
		state        = beforeCopyright
		blankPending bool
		spanStart    int
		spanText     []string
	)
	for i, raw := range rec.lines {
		n := i + 1
		line := trimEOL(raw)
		h := opts.scan(line)

		if n == 1 && strings.HasPrefix(line, "#!") {
			rec.Shebang = true
		} else if rec.FirstComment == 0 && style.opensComment(line) {
			rec.FirstComment = n
		}

		if h.Has(license.Copyright) {
			if opts.isOwn(line) {
				rec.OwnCopyright = true
			} else {
				rec.OtherCopyright = true
			}
			switch state {
			case beforeCopyright:
				state = inCopyright
			case afterCopyright:
				rec.MultipleCopyrightBlocks = true
			}
		}

		if license.DualLicensing(line) {
			rec.DualLicensed = true
		}

		if state == inCopyright {
			switch {
			case h.Any(license.Copyright, license.AllRightsReserved):
				rec.LastCopyright = n
				if blankPending {
					rec.BlankInCopyrightBlock = true
				}
			case style.IsBlank(line):
				blankPending = true
			default:
				state = afterCopyright
			}
		}

		if license.OpensSpan(h) {
			if spanStart != 0 {
				return rec, fileError(path, n, fmt.Errorf("%w (started at line %d)", ErrNestedSpan, spanStart))
			}
			spanStart = n
			spanText = spanText[:0]
		}
		if spanStart != 0 {
			spanText = append(spanText, line)
		}
		if license.ClosesSpan(h) && spanStart != 0 {
			kind, err := license.Identify(spanText)
			if err != nil {
				return rec, fileError(path, spanStart, err)
			}
			if kind != "" {
				rec.Licenses.Add(kind)
				if _, ok := rec.Spans[kind]; !ok {
					rec.Spans[kind] = rewrite.Lines(spanStart, n)
				}
			}
			spanStart = 0
		}

		for _, k := range license.Cues(h) {
			rec.Licenses.Add(k)
		}

		if expr, ok := tagExpression(line, h); ok {
			if rec.SPDXLine != 0 {
				return rec, fileError(path, n, fmt.Errorf("%w (first at line %d)", ErrDuplicateTag, rec.SPDXLine))
			}
			rec.SPDXLine = n
			rec.SPDX = spdx.Clean(expr)
			if unknown := spdx.Unknown(rec.SPDX, opts.knownIDs()); len(unknown) > 0 {
				err := fileError(path, n, fmt.Errorf("%w: %s", ErrUnknownIdentifier, strings.Join(unknown, ", ")))
				if opts.StrictIDs {
					return rec, err
				}
				rec.Warnings = append(rec.Warnings, err.Error())
			}
		}

		if h.Has(license.AllRightsReserved) {
			rec.ARR = append(rec.ARR, ARRMention{Line: n, Pure: pureARR(line)})
		}
	}

	if spanStart != 0 {
		rec.Warnings = append(rec.Warnings, fileError(path, spanStart, ErrUnterminatedSpan).Error())
	}
	rec.Insertion = planInsertion(rec)
	return rec, nil
}

// planInsertion decides where a missing tag goes.
func planInsertion(r *FileRecord) InsertionPoint {
	switch {
	case r.Shebang:
		return InsertionPoint{Line: 2, Standalone: true}
	case len(r.Licenses) > 1 || r.MultipleCopyrightBlocks || r.LastCopyright == 0:
		line := r.FirstComment
		if line == 0 {
			line = 1
		}
		return InsertionPoint{Line: line, Standalone: true}
	}
	return InsertionPoint{Line: r.LastCopyright + 1, Separator: r.BlankInCopyrightBlock}
}

// tagExpression returns the text following the tag marker when the line
// is an actual tag: the marker must be followed by an identifier, possibly
// inside parentheses. Mentions of the marker in code, such as a regexp
// matching it, are not tags.
func tagExpression(line string, h license.Hits) (string, bool) {
	if !h.Has(license.SPDXTag) {
		return "", false
	}
	expr := line[strings.Index(line, license.SPDXTagText)+len(license.SPDXTagText):]
	first := strings.TrimLeft(expr, " \t(")
	if first == "" {
		return "", false
	}
	r, _ := utf8.DecodeRuneInString(first)
	if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !strings.ContainsRune("-._", r) {
		return "", false
	}
	return expr, true
}

func trimEOL(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}

// pureARR reports whether the ARR mention is all the line says.
func pureARR(line string) bool {
	rest := strings.Replace(line, license.ARRText, "", 1)
	return strings.Trim(rest, " \t*#/.,;") == ""
}

// stripARR removes the ARR mention and its full stop from line.
func stripARR(line string) string {
	i := strings.Index(line, license.ARRText)
	if i < 0 {
		return line
	}
	rest := strings.TrimPrefix(line[i+len(license.ARRText):], ".")
	return strings.TrimRight(line[:i], " \t") + rest
}
