package scanner

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/exp/mmap"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestReadFileContentWithModeParity(t *testing.T) {
	want := "/*\n * Copyright (c) 2017, Linaro Limited\n */\n"
	path := writeFile(t, t.TempDir(), "parity.c", want)

	for _, mode := range []string{"stream", "mmap", "auto"} {
		got, err := readFileContentWithMode(path, int64(len(want)+10), mode, 1, 256*1024)
		if err != nil {
			t.Fatalf("%s: %v", mode, err)
		}
		if string(got) != want {
			t.Fatalf("unexpected %s content: %q", mode, got)
		}
	}
}

func TestReadFileContentWithModeAutoFallback(t *testing.T) {
	path := writeFile(t, t.TempDir(), "fallback.c", "fallback content")

	originalOpen := openMmapReader
	openMmapReader = func(string) (*mmap.ReaderAt, error) {
		return nil, errors.New("forced mmap failure")
	}
	defer func() { openMmapReader = originalOpen }()

	content, err := readFileContentWithMode(path, 1024, "auto", 1, 256*1024)
	if err != nil {
		t.Fatalf("auto fallback: %v", err)
	}
	if string(content) != "fallback content" {
		t.Fatalf("expected stream fallback content, got %q", string(content))
	}
}

func TestReadFileContentTooLarge(t *testing.T) {
	path := writeFile(t, t.TempDir(), "big.c", "0123456789")
	for _, mode := range []string{"stream", "mmap", "auto"} {
		if _, err := readFileContentWithMode(path, 4, mode, 1, 2); !errors.Is(err, errTooLarge) {
			t.Fatalf("%s: expected errTooLarge, got %v", mode, err)
		}
	}
}

func TestReadFileContentEmpty(t *testing.T) {
	path := writeFile(t, t.TempDir(), "empty.h", "")
	for _, mode := range []string{"stream", "mmap"} {
		got, err := readFileContentWithMode(path, 1024, mode, 1, 16)
		if err != nil {
			t.Fatalf("%s: %v", mode, err)
		}
		if len(got) != 0 {
			t.Fatalf("%s: expected no content, got %q", mode, got)
		}
	}
}

func TestReadFileContentMmapNoDescriptorLeak(t *testing.T) {
	path := writeFile(t, t.TempDir(), "leak.c", "descriptor leak check")

	for i := 0; i < 16; i++ {
		if _, err := readFileContentWithMode(path, 1<<20, "mmap", 1, 256*1024); err != nil {
			t.Fatalf("mmap read failed: %v", err)
		}
	}

	if err := os.Remove(path); err != nil {
		t.Fatalf("remove failed (possible descriptor leak): %v", err)
	}
}

func TestReadFileSample(t *testing.T) {
	path := writeFile(t, t.TempDir(), "sample.sh", "echo hello\n")
	got, err := readFileSample(path, 4)
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	if string(got) != "echo" {
		t.Fatalf("unexpected sample %q", got)
	}
	got, err = readFileSample(path, 64)
	if err != nil || string(got) != "echo hello\n" {
		t.Fatalf("short file sample: %q, %v", got, err)
	}
}
