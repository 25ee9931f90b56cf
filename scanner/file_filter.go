package scanner

import (
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/djherbis/times"
	"github.com/h2non/filetype"

	"spdxify/config"
	"spdxify/utils"
)

// fileSelector decides from names and metadata which walked entries are
// source files worth reading.
type fileSelector struct {
	ignore  []string
	matcher *utils.PatternMatcher
	since   time.Time
	maxSize int64
}

func newFileSelector(cfg *config.Config) *fileSelector {
	return &fileSelector{
		ignore:  cfg.IgnoreSuffixes,
		matcher: utils.NewPatternMatcher(cfg.IncludePatterns, cfg.ExcludePatterns),
		since:   cfg.SinceTime(),
		maxSize: cfg.MaxFileSize,
	}
}

// skipReason explains why a file was not scanned; "" means scan it.
func (s *fileSelector) skipReason(path string, d fs.DirEntry) string {
	name := filepath.Base(path)
	for _, suffix := range s.ignore {
		if suffix != "" && strings.HasSuffix(name, suffix) {
			return "ignored suffix " + suffix
		}
	}
	if !d.Type().IsRegular() {
		return "not a regular file"
	}
	if !s.matcher.ShouldInclude(path) {
		return "excluded by pattern"
	}
	info, err := d.Info()
	if err != nil {
		return "stat failed: " + err.Error()
	}
	if s.maxSize > 0 && info.Size() > s.maxSize {
		return "larger than max-file-size"
	}
	if !s.since.IsZero() && lastChange(path, info.ModTime()).Before(s.since) {
		return "unchanged since " + s.since.Format(time.RFC3339)
	}
	return ""
}

// lastChange is the later of the modification and status change times.
func lastChange(path string, modTime time.Time) time.Time {
	ts, err := times.Stat(path)
	if err != nil {
		return modTime
	}
	latest := ts.ModTime()
	if ts.HasChangeTime() && ts.ChangeTime().After(latest) {
		latest = ts.ChangeTime()
	}
	return latest
}

const sniffLen = 8192

// isBinary reports whether sample looks like something other than source
// text: a known binary format, NUL bytes or mostly control characters.
func isBinary(sample []byte) bool {
	if len(sample) == 0 {
		return false
	}
	if len(sample) > sniffLen {
		sample = sample[:sniffLen]
	}
	if kind, err := filetype.Match(sample); err == nil && kind != filetype.Unknown {
		return true
	}
	return !looksLikeText(sample)
}

func looksLikeText(sample []byte) bool {
	var control int
	for _, b := range sample {
		if b == 0 {
			return false
		}
		if b < 0x09 || (b > 0x0D && b < 0x20) {
			control++
		}
	}
	return control <= len(sample)/10
}
