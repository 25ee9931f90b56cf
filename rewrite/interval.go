package rewrite

import "fmt"

// Interval is a closed range of 1-indexed line numbers.
// The zero value is empty.
type Interval struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Lines returns the interval [start, end].
func Lines(start, end int) Interval {
	if end < start {
		return Interval{}
	}
	return Interval{Start: start, End: end}
}

// Line returns the interval holding only n.
func Line(n int) Interval { return Lines(n, n) }

// IsZero reports whether iv holds no line.
func (iv Interval) IsZero() bool { return iv.Start <= 0 || iv.End < iv.Start }

// Contains reports whether line n is inside iv.
func (iv Interval) Contains(n int) bool {
	return !iv.IsZero() && iv.Start <= n && n <= iv.End
}

// Len returns the number of lines in iv.
func (iv Interval) Len() int {
	if iv.IsZero() {
		return 0
	}
	return iv.End - iv.Start + 1
}

// Overlaps reports whether iv and o share at least one line.
func (iv Interval) Overlaps(o Interval) bool {
	if iv.IsZero() || o.IsZero() {
		return false
	}
	return iv.Start <= o.End && o.Start <= iv.End
}

// Extend moves the start of iv n lines up, never past line 1.
func (iv Interval) Extend(n int) Interval {
	if iv.IsZero() {
		return iv
	}
	iv.Start = max(iv.Start-n, 1)
	return iv
}

func (iv Interval) String() string {
	return fmt.Sprintf("%d-%d", iv.Start, iv.End)
}

// Set is a union of intervals.
type Set []Interval

// Contains reports whether any interval of s contains n.
func (s Set) Contains(n int) bool {
	for _, iv := range s {
		if iv.Contains(n) {
			return true
		}
	}
	return false
}
