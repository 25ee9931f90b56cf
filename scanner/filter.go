package scanner

// Filter selects the files that are reported and rewritten.
// Set fields combine with AND; the zero value matches every file.
type Filter struct {
	Mistagged   bool
	Unlicensed  bool
	FullLicense bool
	OwnOnly     bool
	ARR         bool
}

func (f Filter) Match(r *FileRecord) bool {
	if f.OwnOnly && !r.PureCopyright() {
		return false
	}
	if f.Unlicensed && !r.Unlicensed() {
		return false
	}
	if f.Mistagged && !r.Mistagged() {
		return false
	}
	if f.ARR && !r.HasARR() {
		return false
	}
	if f.FullLicense && !r.HasFullText() {
		return false
	}
	return true
}
