package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

type Config struct {
	Roots            []string `json:"roots"`
	Show             bool     `json:"show"`
	MistaggedOnly    bool     `json:"mistagged_only"`
	UnlicensedOnly   bool     `json:"unlicensed_only"`
	FullLicenseOnly  bool     `json:"full_license_only"`
	OwnOnly          bool     `json:"own_only"`
	ARROnly          bool     `json:"arr_only"`
	StripARR         bool     `json:"strip_arr"`
	StripLicenseText bool     `json:"strip_license_text"`
	AddSPDX          bool     `json:"add_spdx"`
	DryRun           bool     `json:"dry_run"`
	Organizations    []string `json:"organizations"`
	KnownIDs         []string `json:"known_ids"`
	StrictIDs        bool     `json:"strict_ids"`
	TagForm          string   `json:"tag_form"`
	SkipUnknown      bool     `json:"skip_unknown"`
	IgnoreSuffixes   []string `json:"ignore_suffixes"`
	IncludePatterns  []string `json:"include_patterns"`
	ExcludePatterns  []string `json:"exclude_patterns"`
	Since            string   `json:"since"`
	MaxFileSize      int64    `json:"max_file_size"`
	MaxIOPerSecond   int      `json:"max_io_per_second"`
	ContentReadMode  string   `json:"content_read_mode"`
	MmapMinSize      int64    `json:"mmap_min_size"`
	StreamChunkSize  int      `json:"stream_chunk_size"`
	ReportFile       string   `json:"report_file"`
	Progress         bool     `json:"progress"`
	LogLevel         string   `json:"log_level"`
	ConfigFile       string   `json:"config_file"`
	ShowVersion      bool     `json:"-"`
}

// DefaultIgnoreSuffixes are name endings of files that are never scanned.
var DefaultIgnoreSuffixes = []string{
	".new", ".png", ".odg", ".checkpatch", ".txt", ".doc", ".html",
	".dot", ".svg", ".msc", ".xml", ".md", "LICENSE", ".license",
	".pem", ".orig", ".patch", ".xsl", ".a",
}

func defaults() *Config {
	return &Config{
		Organizations:   []string{"Linaro"},
		TagForm:         "line",
		IgnoreSuffixes:  append([]string(nil), DefaultIgnoreSuffixes...),
		IncludePatterns: []string{},
		ExcludePatterns: []string{},
		MaxFileSize:     10485760,
		MaxIOPerSecond:  0,
		ContentReadMode: "auto",
		MmapMinSize:     128 * 1024,
		StreamChunkSize: 256 * 1024,
		Progress:        true,
		LogLevel:        "info",
	}
}

// LoadConfig parses args (without the program name). Values come from the
// defaults, then the JSON file named by -config, then explicit flags.
func LoadConfig(args []string) (*Config, error) {
	cfg := defaults()
	fs := flag.NewFlagSet("spdxify", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	show := fs.Bool("show", cfg.Show, "Print detected licenses with their line ranges and the existing SPDX identifiers.")
	mistagged := fs.Bool("mistagged-only", cfg.MistaggedOnly, "Show only files with license text not reflected by an SPDX identifier.")
	unlicensed := fs.Bool("unlicensed-only", cfg.UnlicensedOnly, "Show only files with no license information at all.")
	fullLicense := fs.Bool("full-license-only", cfg.FullLicenseOnly, "Show only files with at least one full license text block.")
	ownOnly := fs.Bool("own-only", cfg.OwnOnly, "Show only files entirely covered by the configured organization's copyright.")
	linaroOnly := fs.Bool("linaro-only", cfg.OwnOnly, "Alias for -own-only.")
	arrOnly := fs.Bool("arr-only", cfg.ARROnly, "Show only files that contain the 'All rights reserved' mention.")
	stripARR := fs.Bool("strip-arr", cfg.StripARR, "Remove the 'All rights reserved' mention from matching files.")
	stripText := fs.Bool("strip-license-text", cfg.StripLicenseText, "Remove full license text blocks from matching files.")
	addSPDX := fs.Bool("add-spdx", cfg.AddSPDX, "Add missing SPDX identifiers to matching files.")
	dryRun := fs.Bool("dry-run", cfg.DryRun, "Print the changes instead of rewriting files.")
	orgs := fs.String("org", strings.Join(cfg.Organizations, ","), fmt.Sprintf("Comma-separated organization names treated as own copyright holders (default: %s).", strings.Join(cfg.Organizations, ",")))
	knownIDs := fs.String("known-ids", "", "Comma-separated SPDX identifiers accepted in existing tags (default: built-in list).")
	strictIDs := fs.Bool("strict-ids", cfg.StrictIDs, "Fail files whose SPDX tag carries an unknown identifier.")
	tagForm := fs.String("tag-form", cfg.TagForm, fmt.Sprintf("SPDX line form in C-like files: line or block (default: %s).", cfg.TagForm))
	skipUnknown := fs.Bool("skip-unknown", cfg.SkipUnknown, "Skip files with an unknown comment style instead of failing them.")
	ignore := fs.String("ignore", strings.Join(cfg.IgnoreSuffixes, ","), "Comma-separated file name suffixes that are never scanned.")
	includes := fs.String("include", "", "Comma-separated list of include patterns (default: none).")
	excludes := fs.String("exclude", "", "Comma-separated list of exclude patterns (default: none).")
	since := fs.String("since", cfg.Since, "Only scan files changed after this RFC3339 timestamp (default: none).")
	maxFileSize := fs.Int64("max-file-size", cfg.MaxFileSize, fmt.Sprintf("Maximum file size to process in bytes (default: %d).", cfg.MaxFileSize))
	maxIO := fs.Int("max-io-per-second", cfg.MaxIOPerSecond, "Maximum file opens per second (default: 0, unlimited).")
	readMode := fs.String("content-read-mode", cfg.ContentReadMode, "Content read mode: auto, stream, or mmap (default: auto).")
	mmapMinSize := fs.Int64("mmap-min-size", cfg.MmapMinSize, "Minimum file size in bytes for the mmap read path (default: 131072).")
	chunkSize := fs.Int("stream-chunk-size", cfg.StreamChunkSize, "Streaming chunk size in bytes (default: 262144).")
	report := fs.String("report", cfg.ReportFile, "Write an NDJSON report to this file (default: none).")
	progress := fs.Bool("progress", cfg.Progress, "Show a progress spinner when stderr is a terminal.")
	logLevel := fs.String("log-level", cfg.LogLevel, fmt.Sprintf("Log level: debug, info, warn, error, fatal, or panic (default: %s).", cfg.LogLevel))
	configFile := fs.String("config", "", "Path to JSON configuration file (default: none).")
	showVersion := fs.Bool("version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			displayHelp(fs)
		}
		return nil, err
	}
	if *showVersion {
		cfg.ShowVersion = true
		return cfg, nil
	}

	if *configFile != "" {
		cfg.ConfigFile = *configFile
		if err := cfg.loadFromFile(cfg.ConfigFile); err != nil {
			return nil, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "show":
			cfg.Show = *show
		case "mistagged-only":
			cfg.MistaggedOnly = *mistagged
		case "unlicensed-only":
			cfg.UnlicensedOnly = *unlicensed
		case "full-license-only":
			cfg.FullLicenseOnly = *fullLicense
		case "own-only":
			cfg.OwnOnly = *ownOnly
		case "linaro-only":
			cfg.OwnOnly = *linaroOnly
		case "arr-only":
			cfg.ARROnly = *arrOnly
		case "strip-arr":
			cfg.StripARR = *stripARR
		case "strip-license-text":
			cfg.StripLicenseText = *stripText
		case "add-spdx":
			cfg.AddSPDX = *addSPDX
		case "dry-run":
			cfg.DryRun = *dryRun
		case "org":
			cfg.Organizations = parseCommaSeparated(*orgs)
		case "known-ids":
			cfg.KnownIDs = parseCommaSeparated(*knownIDs)
		case "strict-ids":
			cfg.StrictIDs = *strictIDs
		case "tag-form":
			cfg.TagForm = strings.ToLower(strings.TrimSpace(*tagForm))
		case "skip-unknown":
			cfg.SkipUnknown = *skipUnknown
		case "ignore":
			cfg.IgnoreSuffixes = parseCommaSeparated(*ignore)
		case "include":
			cfg.IncludePatterns = parseCommaSeparated(*includes)
		case "exclude":
			cfg.ExcludePatterns = parseCommaSeparated(*excludes)
		case "since":
			cfg.Since = strings.TrimSpace(*since)
		case "max-file-size":
			cfg.MaxFileSize = *maxFileSize
		case "max-io-per-second":
			cfg.MaxIOPerSecond = *maxIO
		case "content-read-mode":
			cfg.ContentReadMode = strings.ToLower(strings.TrimSpace(*readMode))
		case "mmap-min-size":
			cfg.MmapMinSize = *mmapMinSize
		case "stream-chunk-size":
			cfg.StreamChunkSize = *chunkSize
		case "report":
			cfg.ReportFile = *report
		case "progress":
			cfg.Progress = *progress
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})

	if fs.NArg() > 0 {
		cfg.Roots = fs.Args()
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func displayHelp(fs *flag.FlagSet) {
	fmt.Println("spdxify - check and fix license headers in source files")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  spdxify [options] ROOT...")
	fmt.Println()
	fmt.Println("Options:")
	fs.SetOutput(os.Stdout)
	fs.PrintDefaults()
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  spdxify -mistagged-only core")
	fmt.Println("  spdxify -add-spdx core")
	fmt.Println("  spdxify -own-only -strip-arr core")
	fmt.Println("  spdxify -own-only -strip-license-text -dry-run core")
}

func (cfg *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read config file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("invalid config file format: %w", err)
	}
	return nil
}

func (cfg *Config) validate() error {
	if strings.TrimSpace(cfg.ContentReadMode) == "" {
		cfg.ContentReadMode = "auto"
	}
	if strings.TrimSpace(cfg.TagForm) == "" {
		cfg.TagForm = "line"
	}
	if cfg.StreamChunkSize <= 0 {
		cfg.StreamChunkSize = 256 * 1024
	}

	if len(cfg.Roots) == 0 {
		return fmt.Errorf("at least one root path must be given")
	}
	if cfg.MistaggedOnly && cfg.UnlicensedOnly {
		return fmt.Errorf("--mistagged-only and --unlicensed-only are mutually exclusive")
	}
	if cfg.OwnOnly && len(cfg.Organizations) == 0 {
		return fmt.Errorf("--own-only needs at least one organization")
	}
	if cfg.TagForm != "line" && cfg.TagForm != "block" {
		return fmt.Errorf("invalid tag-form value: %s", cfg.TagForm)
	}
	if cfg.ContentReadMode != "stream" && cfg.ContentReadMode != "mmap" && cfg.ContentReadMode != "auto" {
		return fmt.Errorf("invalid content-read-mode value: %s", cfg.ContentReadMode)
	}
	if cfg.MmapMinSize < 0 {
		return fmt.Errorf("mmap-min-size must be zero or positive")
	}
	if cfg.MaxFileSize < 0 {
		return fmt.Errorf("max-file-size must be zero or positive")
	}
	if cfg.MaxIOPerSecond < 0 {
		return fmt.Errorf("max-io-per-second must be zero or positive")
	}
	if cfg.LogLevel != "debug" && cfg.LogLevel != "info" && cfg.LogLevel != "warn" &&
		cfg.LogLevel != "error" && cfg.LogLevel != "fatal" && cfg.LogLevel != "panic" {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}
	if cfg.Since != "" {
		if _, err := time.Parse(time.RFC3339, cfg.Since); err != nil {
			return fmt.Errorf("invalid since timestamp: %w", err)
		}
	}
	return nil
}

// SinceTime returns the parsed -since value, or the zero time.
func (cfg *Config) SinceTime() time.Time {
	t, err := time.Parse(time.RFC3339, cfg.Since)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseCommaSeparated(input string) []string {
	if input == "" {
		return []string{}
	}
	items := strings.Split(input, ",")
	out := items[:0]
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
