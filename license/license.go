// Package license recognises license notices in source text.
//
// Full license texts are identified from the lines between a start and an
// end phrase (see [Identify]); a few licenses are also recognised from a
// single distinctive line (see [Cues]).
package license

import (
	"errors"
	"slices"
)

// Kind is an SPDX license identifier the scanner knows how to detect.
type Kind string

const (
	BSD2          Kind = "BSD-2-Clause"
	BSD3          Kind = "BSD-3-Clause"
	BSDSourceCode Kind = "BSD-Source-Code"
	Zlib          Kind = "Zlib"
	ISC           Kind = "ISC"
	Apache2       Kind = "Apache-2.0"
	MIT           Kind = "MIT"
	GPL2OrLater   Kind = "GPL-2.0-or-later"
)

// Kinds lists every detectable kind.
var Kinds = []Kind{BSD2, BSD3, BSDSourceCode, Zlib, ISC, Apache2, MIT, GPL2OrLater}

// ErrUnknownBSD is returned when a block has the BSD preamble but none of
// the known clause combinations.
var ErrUnknownBSD = errors.New("unknown BSD-like license")

// Identify classifies the lines captured between a start and an end phrase.
// It returns "" when the text is not a known license.
func Identify(text []string) (Kind, error) {
	var (
		bsdStart, sourceClause, binaryClause, endorseClause bool
		gplTerms, gplVersion                                bool
	)
	for _, line := range text {
		h := Scan(line)
		if h.Has(ZlibStart) {
			return Zlib, nil
		}
		if h.Has(ISCStart) {
			return ISC, nil
		}
		if h.Has(BSDStart) {
			bsdStart = true
		}
		if h.Has(BSDSourceClause) {
			sourceClause = true
		}
		if h.Has(BSDBinaryClause) {
			binaryClause = true
		}
		if h.Any(BSDAuthorClause, BSDNeitherClause, BSDEndorseClause) {
			endorseClause = true
		}
		if h.Has(GPLTerms) {
			gplTerms = true
		}
		if h.Has(GPLVersion2) {
			gplVersion = true
		}
	}

	if bsdStart {
		switch {
		case sourceClause && binaryClause && endorseClause:
			return BSD3, nil
		case sourceClause && binaryClause:
			return BSD2, nil
		case sourceClause && endorseClause:
			return BSDSourceCode, nil
		}
		return "", ErrUnknownBSD
	}
	if gplTerms && gplVersion {
		return GPL2OrLater, nil
	}
	return "", nil
}

// Set is a set of license kinds.
type Set map[Kind]struct{}

// Add inserts k.
func (s Set) Add(k Kind) { s[k] = struct{}{} }

// Has reports whether k is in the set.
func (s Set) Has(k Kind) bool {
	_, ok := s[k]
	return ok
}

// Sorted returns the kinds in lexical order.
func (s Set) Sorted() []Kind {
	kinds := make([]Kind, 0, len(s))
	for k := range s {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}
