package license

import (
	"regexp"
	"strings"

	"github.com/cloudflare/ahocorasick"
)

// Phrase identifies one of the fixed text fragments the scanner looks for.
type Phrase int

const (
	BSDForms Phrase = iota
	BSDEnd
	BSDSourceClause
	BSDBinaryClause
	BSDAuthorClause
	BSDNeitherClause
	BSDEndorseClause
	ZlibStart
	ZlibEnd
	ZlibRef
	ISCStart
	ISCEnd
	ISCCue
	ISCGovernedCue
	GPLStart
	GPLTerms
	GPLVersion2
	GPLEnd
	ApacheCue
	MITCue
	Copyright
	AllRightsReserved
	SPDXTag

	// BSDStart is not part of the automaton. Scan sets it when the
	// BSD preamble regexp matches a line that already hit BSDForms.
	BSDStart
)

// SPDXTagText is the tag marker as it appears in source files.
const SPDXTagText = "SPDX-License-Identifier:"

// ARRText is the "All rights reserved" mention.
const ARRText = "All rights reserved"

var phraseText = [...]string{
	BSDForms:          "in source and binary forms",
	BSDEnd:            "SUCH DAMAGE.",
	BSDSourceClause:   "Redistributions of source code must retain the above",
	BSDBinaryClause:   "Redistributions in binary form must reproduce the above",
	BSDAuthorClause:   "The name of the author may not be used to endorse",
	BSDNeitherClause:  "Neither the name of",
	BSDEndorseClause:  "be used to endorse or promote",
	ZlibStart:         "This software is provided 'as-is', without any express or implied",
	ZlibEnd:           "This notice may not be removed or altered from any source distribution",
	ZlibRef:           "see copyright notice in zlib.h",
	ISCStart:          "Permission to use, copy, modify, and distribute this software",
	ISCEnd:            "IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE",
	ISCCue:            "ISC License",
	ISCGovernedCue:    "governed by the ISC",
	GPLStart:          "is free software; you can redistribute it",
	GPLTerms:          "terms of the GNU General Public License",
	GPLVersion2:       "either version 2",
	GPLEnd:            "You should have received a copy",
	ApacheCue:         "Apache License, Version 2.0",
	MITCue:            "Permission is hereby granted, free of charge, to any person obtaining a copy",
	Copyright:         "Copyright",
	AllRightsReserved: ARRText,
	SPDXTag:           SPDXTagText,
}

var bsdStartRe = regexp.MustCompile(`Redistribution and use.*in source and binary forms`)

// Hits is the set of phrases found on a single line.
type Hits uint64

// Has reports whether p was found.
func (h Hits) Has(p Phrase) bool { return h&(1<<uint(p)) != 0 }

// Any reports whether any of ps was found.
func (h Hits) Any(ps ...Phrase) bool {
	for _, p := range ps {
		if h.Has(p) {
			return true
		}
	}
	return false
}

func (h *Hits) set(p Phrase) { *h |= 1 << uint(p) }

// Matcher finds all known phrases of a line in one pass.
// It is safe for concurrent use.
type Matcher struct {
	ac *ahocorasick.Matcher
}

// NewMatcher builds the phrase automaton.
func NewMatcher() *Matcher {
	dict := make([]string, BSDStart)
	for p := Phrase(0); p < BSDStart; p++ {
		dict[p] = phraseText[p]
	}
	return &Matcher{ac: ahocorasick.NewStringMatcher(dict)}
}

// Scan returns the phrases present on line.
func (m *Matcher) Scan(line string) Hits {
	var h Hits
	for _, idx := range m.ac.MatchThreadSafe([]byte(line)) {
		if idx < 0 || idx >= int(BSDStart) {
			continue
		}
		h.set(Phrase(idx))
	}
	if h.Has(BSDForms) && bsdStartRe.MatchString(line) {
		h.set(BSDStart)
	}
	return h
}

var defaultMatcher = NewMatcher()

// Scan runs the shared matcher over line.
func Scan(line string) Hits { return defaultMatcher.Scan(line) }

// OpensSpan reports whether a line starts a full license text block.
func OpensSpan(h Hits) bool {
	return h.Any(BSDStart, ZlibStart, ISCStart, GPLStart)
}

// ClosesSpan reports whether a line ends a full license text block.
func ClosesSpan(h Hits) bool {
	return h.Any(BSDEnd, ZlibEnd, ISCEnd, GPLEnd)
}

// Cues returns the kinds recognised from a single distinctive line,
// independently of any span.
func Cues(h Hits) []Kind {
	var kinds []Kind
	if h.Has(ApacheCue) {
		kinds = append(kinds, Apache2)
	}
	if h.Has(MITCue) {
		kinds = append(kinds, MIT)
	}
	if h.Has(ZlibRef) {
		kinds = append(kinds, Zlib)
	}
	if h.Any(ISCCue, ISCGovernedCue) {
		kinds = append(kinds, ISC)
	}
	return kinds
}

// DualLicensing reports whether line declares a choice between licenses.
func DualLicensing(line string) bool {
	lower := strings.ToLower(line)
	return strings.Contains(lower, "dual licen") || strings.Contains(lower, "dual-licen")
}
