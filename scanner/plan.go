package scanner

import (
	"strings"

	"spdxify/license"
	"spdxify/logger"
	"spdxify/rewrite"
	"spdxify/spdx"
)

// Actions are the rewrites requested for matching files.
type Actions struct {
	StripARR         bool
	StripLicenseText bool
	AddSPDX          bool
}

// Any reports whether at least one rewrite is requested.
func (a Actions) Any() bool { return a.StripARR || a.StripLicenseText || a.AddSPDX }

// BuildPlan turns the requested actions into line edits for rec.
func BuildPlan(rec *FileRecord, act Actions, form TagForm) *rewrite.Plan {
	p := &rewrite.Plan{
		Path:        rec.Path,
		Fingerprint: rec.Fingerprint,
		Replace:     map[int]string{},
	}

	if act.StripARR {
		for _, m := range rec.ARR {
			if m.Pure {
				p.Drop = append(p.Drop, rewrite.Line(m.Line))
			} else {
				p.Replace[m.Line] = stripARR(rec.Line(m.Line))
			}
		}
	}

	if act.StripLicenseText {
		for _, k := range rec.SpanKinds() {
			iv := rec.Spans[k]
			if iv.Start > 1 && rec.Style.IsBlank(rec.Line(iv.Start-1)) {
				iv = iv.Extend(1)
			}
			p.Drop = append(p.Drop, iv)
		}
	}

	if act.AddSPDX {
		addTag(p, rec, form)
	}
	return p
}

func addTag(p *rewrite.Plan, rec *FileRecord, form TagForm) {
	missing := rec.Missing()
	if len(missing) == 0 {
		return
	}
	ids := make([]string, len(missing))
	for i, k := range missing {
		ids[i] = string(k)
	}
	op := rec.Operator()
	if spdx.Ambiguous(len(ids)+len(rec.IDs()), op) {
		logger.WithFile(rec.Path).Warnf("combining %d licenses with %s, check the result", len(ids)+len(rec.IDs()), op)
	}

	if rec.SPDXLine != 0 {
		p.Replace[rec.SPDXLine] = retag(rec.Line(rec.SPDXLine), spdx.Merge(rec.SPDX, ids, op))
		return
	}
	p.Insert = &rewrite.Insertion{
		Line:  rec.Insertion.Line,
		Lines: rec.Style.TagLines(spdx.Synthesize(ids, op), form, rec.Insertion),
	}
}

// retag replaces the expression of an existing tag line, keeping what
// precedes the marker and a trailing comment closer.
func retag(line, expr string) string {
	i := strings.Index(line, license.SPDXTagText)
	if i < 0 {
		return line
	}
	out := line[:i+len(license.SPDXTagText)] + " " + expr
	if strings.HasSuffix(strings.TrimSpace(line), "*/") {
		out += " */"
	}
	return out
}
