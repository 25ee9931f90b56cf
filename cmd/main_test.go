package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"spdxify/logger"
)

func TestHandleSignalEventCancelsContext(t *testing.T) {
	logger.Init("error")

	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)

	done := make(chan struct{})
	go func() {
		handleSignalEvent(cancel, sigChan)
		close(done)
	}()

	sigChan <- syscall.SIGTERM

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("expected context to be canceled")
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("signal handler did not return")
	}
}

func TestHandleSignalEventClosedChannel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal)
	close(sigChan)

	handleSignalEvent(cancel, sigChan)
	if ctx.Err() != nil {
		t.Fatal("a closed channel must not cancel the run")
	}
}

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestRunExitCodes(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "a.c", "/*\n * Copyright (c) 2019, Linaro Limited\n */\nint a;\n")
	writeSource(t, root, "data.json", "{}\n")

	cases := []struct {
		name string
		args []string
		want int
	}{
		{"version", []string{"-version"}, 0},
		{"help", []string{"-h"}, 0},
		{"unknown flag", []string{"-no-such-flag"}, 2},
		{"no roots", []string{"-log-level", "error"}, 2},
		{"failed file", []string{"-log-level", "error", "-progress=false", root}, 1},
		{"skip unknown", []string{"-log-level", "error", "-progress=false", "-skip-unknown", root}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := run(tc.args); got != tc.want {
				t.Fatalf("run(%v) = %d, want %d", tc.args, got, tc.want)
			}
		})
	}
}

func TestRunAddsTagsAndWritesReport(t *testing.T) {
	root := t.TempDir()
	src := writeSource(t, root, "tool.sh", "#!/bin/sh\n# Copyright (c) 2018, Linaro Limited\n#\n# Licensed under the Apache License, Version 2.0 (the \"License\");\n")
	report := filepath.Join(t.TempDir(), "report.ndjson")

	args := []string{"-log-level", "error", "-progress=false", "-add-spdx", "-report", report, root}
	if code := run(args); code != 0 {
		t.Fatalf("run exit code = %d", code)
	}

	data, err := os.ReadFile(src)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "#!/bin/sh\n# SPDX-License-Identifier: Apache-2.0\n") {
		t.Fatalf("tag not added after the shebang:\n%s", data)
	}

	reportData, err := os.ReadFile(report)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(reportData)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected a file and a summary record, got:\n%s", reportData)
	}
	if !strings.Contains(lines[1], `"files_modified":1`) {
		t.Fatalf("summary does not count the rewrite: %s", lines[1])
	}
}
