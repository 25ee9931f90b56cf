// Package spdx handles SPDX-License-Identifier expressions: parsing the
// identifiers out of an existing tag and synthesizing a new one.
package spdx

import (
	"slices"
	"strings"
)

// Operator joins several identifiers in one expression.
type Operator string

const (
	And Operator = "AND"
	Or  Operator = "OR"
)

// Known lists the identifiers expected in the trees this tool runs on.
// It only serves to catch typos in existing tags.
var Known = []string{
	"Apache-2.0",
	"BSD-2-Clause",
	"BSD-3-Clause",
	"BSD-Source-Code",
	"GPL-2.0",
	"GPL-2.0+",
	"GPL-2.0-only",
	"GPL-2.0-or-later",
	"ISC",
	"MIT",
	"Zlib",
}

// Clean normalises the text following the tag marker: surrounding
// whitespace, a trailing comment closer and one pair of enclosing
// parentheses are removed.
func Clean(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimSpace(strings.TrimSuffix(s, "*/"))
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") && balanced(s[1:len(s)-1]) {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

func balanced(s string) bool {
	depth := 0
	for _, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

// IDs returns the license identifiers of expr in order of appearance.
// Operators and the exception following WITH are skipped.
func IDs(expr string) []string {
	fields := strings.FieldsFunc(expr, func(r rune) bool {
		return r == '(' || r == ')' || r == ' ' || r == '\t'
	})
	var ids []string
	skipNext := false
	for _, f := range fields {
		if skipNext {
			skipNext = false
			continue
		}
		switch strings.ToUpper(f) {
		case "AND", "OR":
			continue
		case "WITH":
			skipNext = true
			continue
		}
		ids = append(ids, f)
	}
	return ids
}

// Contains reports whether id is one of the identifiers of expr.
func Contains(expr, id string) bool {
	return slices.Contains(IDs(expr), id)
}

// HasOperator reports whether expr combines several identifiers.
func HasOperator(expr string) bool {
	return len(IDs(expr)) > 1
}

// Unknown returns the identifiers of expr missing from known.
func Unknown(expr string, known []string) []string {
	var unknown []string
	for _, id := range IDs(expr) {
		if !slices.Contains(known, id) {
			unknown = append(unknown, id)
		}
	}
	return unknown
}

// Synthesize builds one expression out of ids: a bare identifier when
// there is only one, otherwise the sorted identifiers joined by op and
// enclosed in parentheses.
func Synthesize(ids []string, op Operator) string {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	switch len(sorted) {
	case 0:
		return ""
	case 1:
		return sorted[0]
	}
	return "(" + strings.Join(sorted, " "+string(op)+" ") + ")"
}

// Merge extends an existing expression with the missing identifiers.
// A single existing identifier is folded into the sorted combination;
// a compound expression is kept as a group.
func Merge(existing string, missing []string, op Operator) string {
	existing = Clean(existing)
	if existing == "" {
		return Synthesize(missing, op)
	}
	if !HasOperator(existing) {
		return Synthesize(append([]string{existing}, missing...), op)
	}
	added := Synthesize(missing, op)
	if added == "" {
		return "(" + existing + ")"
	}
	return "((" + existing + ") " + string(op) + " " + added + ")"
}

// Ambiguous reports whether combining n identifiers with op deserves a
// manual check: OR over more than two licenses rarely means what it says.
func Ambiguous(n int, op Operator) bool {
	return op == Or && n > 2
}
