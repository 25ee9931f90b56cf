package scanner

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"spdxify/rewrite"
)

// rewriteFile scans path from disk and applies the requested actions.
func rewriteFile(t *testing.T, path string, act Actions, form TagForm) bool {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	rec, err := ScanBytes(path, data, Options{})
	if err != nil {
		t.Fatalf("ScanBytes(%s): %v", path, err)
	}
	modified, err := rewrite.Apply(BuildPlan(rec, act, form), rewrite.Options{})
	if err != nil {
		t.Fatalf("Apply(%s): %v", path, err)
	}
	return modified
}

func readString(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestAddSPDXIsIdempotent(t *testing.T) {
	files := []string{"bsd2.c", "bsd3.h", "source.S", "script.sh", "dual.c", "both.c", "separated.c", "blocks.c", "tagged.c", "kern.ld"}
	for _, form := range []TagForm{TagFormLine, TagFormBlock} {
		for _, name := range files {
			t.Run(string(form)+"/"+name, func(t *testing.T) {
				path := writeFile(t, t.TempDir(), name, string(fixture(t, name)))
				act := Actions{AddSPDX: true}

				if !rewriteFile(t, path, act, form) {
					t.Fatal("first run should add a tag")
				}
				once := readString(t, path)
				if rewriteFile(t, path, act, form) {
					t.Fatalf("second run modified the file:\n%s", readString(t, path))
				}
				if diff := cmp.Diff(once, readString(t, path)); diff != "" {
					t.Fatalf("content changed on second run (-first +second):\n%s", diff)
				}
				if n := strings.Count(once, "SPDX-License-Identifier:"); n != 1 {
					t.Fatalf("expected exactly one tag line, got %d:\n%s", n, once)
				}
			})
		}
	}
}

func TestAddSPDXPlacement(t *testing.T) {
	cases := []struct {
		file string
		form TagForm
		want rewrite.Insertion
	}{
		{"bsd2.c", TagFormLine, rewrite.Insertion{Line: 4, Lines: []string{"// SPDX-License-Identifier: BSD-2-Clause"}}},
		{"bsd2.c", TagFormBlock, rewrite.Insertion{Line: 4, Lines: []string{" * SPDX-License-Identifier: BSD-2-Clause"}}},
		{"script.sh", TagFormLine, rewrite.Insertion{Line: 2, Lines: []string{"# SPDX-License-Identifier: Apache-2.0"}}},
		{"separated.c", TagFormLine, rewrite.Insertion{Line: 5, Lines: []string{" *", "// SPDX-License-Identifier: Apache-2.0"}}},
		{"both.c", TagFormLine, rewrite.Insertion{Line: 1, Lines: []string{
			"/*",
			"// SPDX-License-Identifier: (BSD-2-Clause AND GPL-2.0-or-later)",
			" */",
		}}},
		{"dual.c", TagFormLine, rewrite.Insertion{Line: 1, Lines: []string{
			"/*",
			"// SPDX-License-Identifier: (BSD-2-Clause OR GPL-2.0-or-later)",
			" */",
		}}},
		{"both.c", TagFormBlock, rewrite.Insertion{Line: 1, Lines: []string{
			"/*",
			" * SPDX-License-Identifier: (BSD-2-Clause AND GPL-2.0-or-later)",
			" */",
		}}},
		{"blocks.c", TagFormLine, rewrite.Insertion{Line: 1, Lines: []string{"/*", "// SPDX-License-Identifier: Zlib", " */"}}},
		{"kern.ld", TagFormLine, rewrite.Insertion{Line: 1, Lines: []string{"/*", "// SPDX-License-Identifier: Apache-2.0", " */"}}},
		{"kern.ld", TagFormBlock, rewrite.Insertion{Line: 1, Lines: []string{"/*", " * SPDX-License-Identifier: Apache-2.0", " */"}}},
	}
	for _, tc := range cases {
		t.Run(string(tc.form)+"/"+tc.file, func(t *testing.T) {
			rec := scanFixture(t, tc.file, Options{})
			p := BuildPlan(rec, Actions{AddSPDX: true}, tc.form)
			if p.Insert == nil {
				t.Fatal("expected an insertion")
			}
			if diff := cmp.Diff(tc.want, *p.Insert); diff != "" {
				t.Fatalf("insertion mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAddSPDXLinkerScriptStaysCommented(t *testing.T) {
	path := writeFile(t, t.TempDir(), "kern.ld", string(fixture(t, "kern.ld")))
	if !rewriteFile(t, path, Actions{AddSPDX: true}, TagFormLine) {
		t.Fatal("expected a rewrite")
	}
	want := "/*\n" +
		"// SPDX-License-Identifier: Apache-2.0\n" +
		" */\n" +
		"/*\n" +
		" * Copyright (c) 2015, Linaro Limited\n"
	if got := readString(t, path); !strings.HasPrefix(got, want) {
		t.Fatalf("tag is not inside its own comment block:\n%s", got)
	}
}

func TestAddSPDXMergesExistingTag(t *testing.T) {
	rec := scanFixture(t, "tagged.c", Options{})
	p := BuildPlan(rec, Actions{AddSPDX: true}, TagFormLine)
	if p.Insert != nil {
		t.Fatalf("a tagged file must not get a second tag line: %+v", p.Insert)
	}
	want := map[int]string{1: "// SPDX-License-Identifier: (Apache-2.0 AND BSD-2-Clause)"}
	if diff := cmp.Diff(want, p.Replace); diff != "" {
		t.Fatalf("replace mismatch (-want +got):\n%s", diff)
	}
}

func TestAddSPDXNothingToDo(t *testing.T) {
	for _, name := range []string{"plain.c", "open.c", "typo.c"} {
		rec := scanFixture(t, name, Options{})
		if p := BuildPlan(rec, Actions{AddSPDX: true}, TagFormLine); !p.Empty() {
			t.Fatalf("%s: expected empty plan, got %+v", name, p)
		}
	}
}

func TestStripARR(t *testing.T) {
	cases := []struct {
		file string
		want func(string) string
	}{
		{"Makefile", func(s string) string {
			return strings.Replace(s, "# All rights reserved.\n", "", 1)
		}},
		{"bsd2.c", func(s string) string {
			return strings.Replace(s, " * All rights reserved.\n", "", 1)
		}},
		{"bsd3.h", func(s string) string {
			return strings.Replace(s, " N.V. All rights reserved.\n", " N.V.\n", 1)
		}},
	}
	for _, tc := range cases {
		t.Run(tc.file, func(t *testing.T) {
			orig := string(fixture(t, tc.file))
			path := writeFile(t, t.TempDir(), tc.file, orig)
			act := Actions{StripARR: true}

			if !rewriteFile(t, path, act, TagFormLine) {
				t.Fatal("expected a rewrite")
			}
			got := readString(t, path)
			if diff := cmp.Diff(tc.want(orig), got); diff != "" {
				t.Fatalf("content mismatch (-want +got):\n%s", diff)
			}
			if rewriteFile(t, path, act, TagFormLine) {
				t.Fatal("second run should find nothing to strip")
			}
		})
	}
}

func TestStripLicenseText(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bsd2.c", string(fixture(t, "bsd2.c")))
	if !rewriteFile(t, path, Actions{StripLicenseText: true}, TagFormLine) {
		t.Fatal("expected a rewrite")
	}
	want := "/*\n" +
		" * Copyright (c) 2017, Linaro Limited\n" +
		" * All rights reserved.\n" +
		" */\n" +
		"\n" +
		"#include <kernel/panic.h>\n"
	if diff := cmp.Diff(want, readString(t, path)); diff != "" {
		t.Fatalf("content mismatch (-want +got):\n%s", diff)
	}
}

func TestAllActionsTogether(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bsd2.c", string(fixture(t, "bsd2.c")))
	act := Actions{StripARR: true, StripLicenseText: true, AddSPDX: true}
	if !rewriteFile(t, path, act, TagFormBlock) {
		t.Fatal("expected a rewrite")
	}
	want := "/*\n" +
		" * Copyright (c) 2017, Linaro Limited\n" +
		" * SPDX-License-Identifier: BSD-2-Clause\n" +
		" */\n" +
		"\n" +
		"#include <kernel/panic.h>\n"
	if diff := cmp.Diff(want, readString(t, path)); diff != "" {
		t.Fatalf("content mismatch (-want +got):\n%s", diff)
	}
	if rewriteFile(t, path, act, TagFormBlock) {
		t.Fatal("second run should leave the file alone")
	}
}

func TestRewriteKeepsTempFilesOut(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "script.sh", string(fixture(t, "script.sh")))
	rewriteFile(t, path, Actions{AddSPDX: true}, TagFormLine)
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != filepath.Base(path) {
		t.Fatalf("unexpected directory content: %v", entries)
	}
}

func TestRetag(t *testing.T) {
	cases := []struct {
		line, expr, want string
	}{
		{"// SPDX-License-Identifier: BSD-2-Clause", "(Apache-2.0 AND BSD-2-Clause)", "// SPDX-License-Identifier: (Apache-2.0 AND BSD-2-Clause)"},
		{"/* SPDX-License-Identifier: MIT */", "(MIT AND Zlib)", "/* SPDX-License-Identifier: (MIT AND Zlib) */"},
		{"# SPDX-License-Identifier: ISC", "ISC", "# SPDX-License-Identifier: ISC"},
		{"no tag here", "MIT", "no tag here"},
	}
	for _, tc := range cases {
		if got := retag(tc.line, tc.expr); got != tc.want {
			t.Errorf("retag(%q, %q) = %q, want %q", tc.line, tc.expr, got, tc.want)
		}
	}
}
