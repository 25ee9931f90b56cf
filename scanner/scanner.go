package scanner

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
	"golang.org/x/time/rate"

	"spdxify/config"
	"spdxify/hasher"
	"spdxify/license"
	"spdxify/logger"
	"spdxify/output"
	"spdxify/rewrite"
	"spdxify/utils"
)

// Result is the outcome for one scanned file.
type Result struct {
	Path     string
	Record   *FileRecord
	Matched  bool
	Modified bool
	Err      error
}

// batch holds what every file of a run shares.
type batch struct {
	cfg      *config.Config
	opts     Options
	filter   Filter
	actions  Actions
	tagForm  TagForm
	selector *fileSelector
	guard    *utils.RootGuard
	limiter  *rate.Limiter
	preview  io.Writer
	metrics  *output.Metrics
	w        *output.Writer
}

func newBatch(cfg *config.Config, metrics *output.Metrics, w *output.Writer) *batch {
	b := &batch{
		cfg: cfg,
		opts: Options{
			Organizations: cfg.Organizations,
			KnownIDs:      cfg.KnownIDs,
			StrictIDs:     cfg.StrictIDs,
			Matcher:       license.NewMatcher(),
		},
		filter: Filter{
			Mistagged:   cfg.MistaggedOnly,
			Unlicensed:  cfg.UnlicensedOnly,
			FullLicense: cfg.FullLicenseOnly,
			OwnOnly:     cfg.OwnOnly,
			ARR:         cfg.ARROnly,
		},
		actions: Actions{
			StripARR:         cfg.StripARR,
			StripLicenseText: cfg.StripLicenseText,
			AddSPDX:          cfg.AddSPDX,
		},
		tagForm:  TagForm(cfg.TagForm),
		selector: newFileSelector(cfg),
		guard:    utils.NewRootGuard(cfg.Roots),
		metrics:  metrics,
		w:        w,
	}
	if cfg.MaxIOPerSecond > 0 {
		b.limiter = rate.NewLimiter(rate.Limit(cfg.MaxIOPerSecond), cfg.MaxIOPerSecond)
	}
	if cfg.DryRun {
		b.preview = os.Stderr
	}
	return b
}

// ScanFiles walks every root, scanning, reporting and rewriting files one
// at a time. Per-file failures are logged and counted, never returned; the
// error is non-nil only when the walk itself was interrupted.
func ScanFiles(ctx context.Context, cfg *config.Config, metrics *output.Metrics, w *output.Writer) error {
	if metrics == nil {
		metrics = &output.Metrics{}
	}
	b := newBatch(cfg, metrics, w)

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("Scanning files"),
		progressbar.OptionShowCount(),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetVisibility(progressVisible(cfg)),
		progressbar.OptionFullWidth(),
	)
	defer bar.Finish()

	var selectedWalker walker = fastWalker{}
	for _, root := range cfg.Roots {
		err := selectedWalker.Walk(ctx, root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				logger.Warnf("Failed to access %s: %v", path, err)
				return nil
			}
			if d == nil || d.IsDir() {
				return nil
			}
			metrics.FilesSeen++
			if reason := b.selector.skipReason(path, d); reason != "" {
				logger.WithFile(path).Debugf("skipped: %s", reason)
				metrics.FilesSkipped++
				return nil
			}
			if b.limiter != nil {
				if err := b.limiter.Wait(ctx); err != nil {
					return err
				}
			}
			res := b.processFile(path)
			if res.Err != nil {
				b.fail(res)
			}
			_ = bar.Add(1)
			return nil
		})
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			logger.Warnf("Error walking path %s: %v", root, err)
		}
	}
	return nil
}

// processFile runs one file through scan, filter, rewrite and report.
func (b *batch) processFile(path string) Result {
	res := Result{Path: path}
	if StyleFor(path) == nil {
		if b.cfg.SkipUnknown {
			logger.WithFile(path).Debug("skipped: unknown comment style")
			b.metrics.FilesSkipped++
			return res
		}
		res.Err = fileError(path, 0, ErrUnknownStyle)
		return res
	}

	sample, err := readFileSample(path, sniffLen)
	if err != nil {
		res.Err = fileError(path, 0, err)
		return res
	}
	if isBinary(sample) {
		logger.WithFile(path).Debug("skipped: binary content")
		b.metrics.FilesSkipped++
		return res
	}
	data, err := readFileContentWithMode(path, b.cfg.MaxFileSize, b.cfg.ContentReadMode, b.cfg.MmapMinSize, b.cfg.StreamChunkSize)
	if errors.Is(err, errTooLarge) {
		logger.WithFile(path).Debug("skipped: too large")
		b.metrics.FilesSkipped++
		return res
	}
	if err != nil {
		res.Err = fileError(path, 0, err)
		return res
	}

	b.metrics.FilesScanned++
	rec, err := ScanBytes(path, data, b.opts)
	res.Record = rec
	if err != nil {
		res.Err = err
		return res
	}
	for _, warning := range rec.Warnings {
		logger.Warn(warning)
		b.metrics.Warnings++
	}

	if !b.filter.Match(rec) {
		return res
	}
	res.Matched = true

	if b.actions.Any() {
		modified, err := b.rewrite(rec)
		if err != nil {
			res.Err = err
		}
		res.Modified = modified
	}
	b.w.WriteFile(entryFor(rec, res.Modified))
	return res
}

func (b *batch) rewrite(rec *FileRecord) (bool, error) {
	if !b.guard.Contains(rec.Path) {
		logger.Warnf("Skipping rewrite of file outside target paths: %s", rec.Path)
		return false, nil
	}
	plan := BuildPlan(rec, b.actions, b.tagForm)
	modified, err := rewrite.Apply(plan, rewrite.Options{DryRun: b.cfg.DryRun, Preview: b.preview})
	if err != nil {
		return false, fileError(rec.Path, 0, err)
	}
	if modified && !b.cfg.DryRun {
		b.metrics.FilesModified++
		logger.WithFile(rec.Path).Debug("rewritten")
	}
	return modified, nil
}

func (b *batch) fail(res Result) {
	logger.Error(res.Err.Error())
	f := output.Failure{Path: res.Path, Error: res.Err.Error()}
	var fe *FileError
	if errors.As(res.Err, &fe) {
		f.Line = fe.Line
		f.Error = fe.Err.Error()
	}
	b.w.WriteFailure(f)
}

func entryFor(rec *FileRecord, modified bool) output.FileEntry {
	e := output.FileEntry{
		Path:          rec.Path,
		Style:         rec.Style.Name,
		SPDX:          rec.SPDX,
		SPDXIDs:       rec.IDs(),
		ARRLines:      rec.ARRLines(),
		PureCopyright: rec.PureCopyright(),
		Mistagged:     rec.Mistagged(),
		Unlicensed:    rec.Unlicensed(),
		Modified:      modified,
		Fingerprint:   hasher.Format(rec.Fingerprint),
		Warnings:      rec.Warnings,
	}
	for _, k := range rec.Kinds() {
		l := output.LicenseEntry{ID: string(k)}
		if iv, ok := rec.Spans[k]; ok {
			l.Start, l.End = iv.Start, iv.End
		}
		e.Licenses = append(e.Licenses, l)
	}
	return e
}

func progressVisible(cfg *config.Config) bool {
	if !cfg.Progress || !term.IsTerminal(int(os.Stderr.Fd())) {
		return false
	}
	value := strings.ToLower(strings.TrimSpace(os.Getenv("SPDXIFY_DISABLE_PROGRESS")))
	return value != "1" && value != "true" && value != "yes" && value != "on"
}
