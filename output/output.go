package output

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"spdxify/config"
)

// SchemaVersion versions the NDJSON report layout.
const SchemaVersion = "1"

type Metrics struct {
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	FilesSeen     int    `json:"files_seen"`
	FilesScanned  int    `json:"files_scanned"`
	FilesMatched  int    `json:"files_matched"`
	FilesModified int    `json:"files_modified"`
	FilesFailed   int    `json:"files_failed"`
	FilesSkipped  int    `json:"files_skipped"`
	Warnings      int    `json:"warnings"`
}

// LicenseEntry is one detected license. Start and End locate its full
// text and are zero for licenses recognised from a single line.
type LicenseEntry struct {
	ID    string `json:"id"`
	Start int    `json:"start,omitempty"`
	End   int    `json:"end,omitempty"`
}

type FileEntry struct {
	Path          string         `json:"path"`
	Style         string         `json:"style"`
	Licenses      []LicenseEntry `json:"licenses,omitempty"`
	SPDX          string         `json:"spdx,omitempty"`
	SPDXIDs       []string       `json:"spdx_ids,omitempty"`
	ARRLines      []int          `json:"arr_lines,omitempty"`
	PureCopyright bool           `json:"pure_copyright,omitempty"`
	Mistagged     bool           `json:"mistagged,omitempty"`
	Unlicensed    bool           `json:"unlicensed,omitempty"`
	Modified      bool           `json:"modified,omitempty"`
	Fingerprint   string         `json:"fingerprint,omitempty"`
	Warnings      []string       `json:"warnings,omitempty"`
}

type Failure struct {
	Path  string `json:"path"`
	Line  int    `json:"line,omitempty"`
	Error string `json:"error"`
}

type record struct {
	RecordType    string `json:"record_type"`
	SchemaVersion string `json:"schema_version"`
	Payload       any    `json:"payload"`
}

// Writer prints the per-file lines and, when configured, the NDJSON
// report. It is safe for concurrent use.
type Writer struct {
	mu      sync.Mutex
	out     io.Writer
	show    bool
	file    *os.File
	buf     *bufio.Writer
	metrics *Metrics
}

func New(cfg *config.Config, out io.Writer, m *Metrics) (*Writer, error) {
	w := &Writer{out: out, metrics: m}
	if cfg == nil {
		return w, nil
	}
	w.show = cfg.Show
	if cfg.ReportFile != "" {
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return nil, fmt.Errorf("open report: %w", err)
		}
		w.file = f
		w.buf = bufio.NewWriterSize(f, 64*1024)
	}
	return w, nil
}

// FormatLine renders e the way it is printed on stdout.
func FormatLine(e FileEntry, show bool) string {
	var b strings.Builder
	b.WriteString(e.Path)
	if !show {
		return b.String()
	}
	if len(e.Licenses) == 0 {
		b.WriteString(" NONE")
	}
	for _, l := range e.Licenses {
		b.WriteString(" ")
		b.WriteString(l.ID)
		if l.Start > 0 {
			fmt.Fprintf(&b, " (%d-%d)", l.Start, l.End)
		}
	}
	if len(e.SPDXIDs) == 0 {
		b.WriteString(" [NONE]")
	} else {
		b.WriteString(" [" + strings.Join(e.SPDXIDs, " ") + "]")
	}
	return b.String()
}

func (w *Writer) WriteFile(e FileEntry) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.out != nil {
		fmt.Fprintln(w.out, FormatLine(e, w.show))
	}
	if w.metrics != nil {
		w.metrics.FilesMatched++
	}
	w.emitLocked("file", e)
}

func (w *Writer) WriteFailure(f Failure) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.metrics != nil {
		w.metrics.FilesFailed++
	}
	w.emitLocked("failure", f)
}

func (w *Writer) SetMetrics(m Metrics) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.metrics = &m
}

func (w *Writer) Metrics() Metrics {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.metrics == nil {
		return Metrics{}
	}
	return *w.metrics
}

// Close writes the summary record and closes the report file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	if w.metrics != nil {
		w.emitLocked("summary", w.metrics)
	}
	if err := w.buf.Flush(); err != nil {
		w.file.Close()
		return err
	}
	if err := w.file.Sync(); err != nil {
		w.file.Close()
		return err
	}
	err := w.file.Close()
	w.file = nil
	return err
}

func (w *Writer) emitLocked(recordType string, payload any) {
	if w.buf == nil {
		return
	}
	data, err := json.Marshal(record{RecordType: recordType, SchemaVersion: SchemaVersion, Payload: payload})
	if err != nil {
		return
	}
	_, _ = w.buf.Write(data)
	_ = w.buf.WriteByte('\n')
}
