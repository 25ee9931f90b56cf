package utils

import (
	"path/filepath"
	"regexp"
	"strings"
)

// PatternMatcher selects paths by include and exclude patterns. Each
// pattern is tried as a glob and, when it compiles, as a regexp. A glob
// without a slash is matched against the file name; one with a slash
// against the trailing path elements, so "core/*.c" matches
// "optee_os/core/tee.c".
type PatternMatcher struct {
	includeGlobs []string
	includeRegex []*regexp.Regexp
	excludeGlobs []string
	excludeRegex []*regexp.Regexp
}

func NewPatternMatcher(includePatterns, excludePatterns []string) *PatternMatcher {
	return &PatternMatcher{
		includeGlobs: append([]string(nil), includePatterns...),
		includeRegex: compileRegex(includePatterns),
		excludeGlobs: append([]string(nil), excludePatterns...),
		excludeRegex: compileRegex(excludePatterns),
	}
}

// ShouldInclude reports whether path passes the include patterns, if any,
// and matches none of the exclude patterns.
func (m *PatternMatcher) ShouldInclude(path string) bool {
	if m == nil {
		return true
	}
	if (len(m.includeGlobs) > 0 || len(m.includeRegex) > 0) && !m.matches(path, m.includeGlobs, m.includeRegex) {
		return false
	}
	if (len(m.excludeGlobs) > 0 || len(m.excludeRegex) > 0) && m.matches(path, m.excludeGlobs, m.excludeRegex) {
		return false
	}
	return true
}

func (m *PatternMatcher) matches(path string, globs []string, regexes []*regexp.Regexp) bool {
	slashed := filepath.ToSlash(path)
	for _, pattern := range globs {
		if globMatch(pattern, slashed) {
			return true
		}
	}
	for _, re := range regexes {
		if re.MatchString(slashed) {
			return true
		}
	}
	return false
}

func globMatch(pattern, slashed string) bool {
	depth := strings.Count(pattern, "/") + 1
	elems := strings.Split(slashed, "/")
	if depth > len(elems) {
		return false
	}
	tail := strings.Join(elems[len(elems)-depth:], "/")
	matched, _ := filepath.Match(filepath.FromSlash(pattern), filepath.FromSlash(tail))
	return matched
}

func compileRegex(patterns []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		if re, err := regexp.Compile(pattern); err == nil {
			compiled = append(compiled, re)
		}
	}
	return compiled
}
