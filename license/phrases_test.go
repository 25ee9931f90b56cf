package license

import (
	"reflect"
	"testing"
)

func TestScanPhrases(t *testing.T) {
	cases := map[string]struct {
		line string
		want []Phrase
		not  []Phrase
	}{
		"bsd preamble": {
			line: " * Redistribution and use in source and binary forms, with or without",
			want: []Phrase{BSDForms, BSDStart},
		},
		"forms without preamble": {
			line: " * documentation in source and binary forms is shipped separately",
			want: []Phrase{BSDForms},
			not:  []Phrase{BSDStart},
		},
		"copyright with arr": {
			line: " * Copyright (c) 2014, STMicroelectronics International N.V. All rights reserved.",
			want: []Phrase{Copyright, AllRightsReserved},
		},
		"spdx tag": {
			line: "# SPDX-License-Identifier: BSD-2-Clause",
			want: []Phrase{SPDXTag},
			not:  []Phrase{Copyright},
		},
		"lowercase copyright is not a holder": {
			line: " * 1. Redistributions of source code must retain the above copyright notice,",
			want: []Phrase{BSDSourceClause},
			not:  []Phrase{Copyright},
		},
		"bsd end": {
			line: " * POSSIBILITY OF SUCH DAMAGE.",
			want: []Phrase{BSDEnd},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			h := Scan(tc.line)
			for _, p := range tc.want {
				if !h.Has(p) {
					t.Errorf("Scan(%q) missing phrase %d", tc.line, p)
				}
			}
			for _, p := range tc.not {
				if h.Has(p) {
					t.Errorf("Scan(%q) unexpectedly has phrase %d", tc.line, p)
				}
			}
		})
	}
}

func TestSpanMarkers(t *testing.T) {
	if !OpensSpan(Scan(" * This program is free software; you can redistribute it and/or modify")) {
		t.Fatal("expected GPL start to open a span")
	}
	if OpensSpan(Scan(" * in source and binary forms")) {
		t.Fatal("bare BSD forms phrase must not open a span")
	}
	if !ClosesSpan(Scan(" * You should have received a copy of the GNU General Public License")) {
		t.Fatal("expected GPL end to close a span")
	}
	if !ClosesSpan(Scan(" * IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.")) {
		t.Fatal("expected ISC end to close a span")
	}
}

func TestCues(t *testing.T) {
	cases := map[string]struct {
		line string
		want []Kind
	}{
		"apache": {
			line: " * Licensed under the Apache License, Version 2.0 (the \"License\");",
			want: []Kind{Apache2},
		},
		"mit": {
			line: " * Permission is hereby granted, free of charge, to any person obtaining a copy",
			want: []Kind{MIT},
		},
		"zlib reference": {
			line: "/* see copyright notice in zlib.h */",
			want: []Kind{Zlib},
		},
		"isc governed": {
			line: "// Use of this source code is governed by the ISC",
			want: []Kind{ISC},
		},
		"nothing": {
			line: "int main(void)",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got := Cues(Scan(tc.line))
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Cues(%q) = %v, want %v", tc.line, got, tc.want)
			}
		})
	}
}

func TestDualLicensing(t *testing.T) {
	for _, line := range []string{
		" * This file is dual licensed under BSD-2-Clause and GPL-2.0",
		"# Dual-licensed: see below",
		" * DUAL LICENSE NOTICE",
	} {
		if !DualLicensing(line) {
			t.Errorf("DualLicensing(%q) = false", line)
		}
	}
	if DualLicensing(" * Licensed under the BSD license") {
		t.Error("unexpected dual licensing match")
	}
}
