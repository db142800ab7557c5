// Copyright (c) 2026 Spry Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license
// that can be found in the LICENSE file.

package cliutil

import "testing"

func TestParseByteRate(t *testing.T) {
	cases := []struct {
		in   string
		want uint64
	}{
		{"10B", 10},
		{"1KiB", 1024},
		{"1KB", 1024}, // normalized to the i-bearing binary form
		{"1MiB", 1 << 20},
		{"1.5MiB", uint64(1.5 * (1 << 20))},
		{"100KiBps", 100 * 1024},
		{"2GiB", 1 << 31},
		{"1TiB", 1 << 40},
	}
	for _, c := range cases {
		got, err := ParseByteRate(c.in)
		if err != nil {
			t.Errorf("ParseByteRate(%q) error: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseByteRate(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestParseByteRate_CaseInsensitive(t *testing.T) {
	got, err := ParseByteRate("10mib")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 10*(1<<20) {
		t.Errorf("got %d, want %d", got, 10*(1<<20))
	}
}

func TestParseByteRate_Invalid(t *testing.T) {
	for _, in := range []string{"", "abc", "10XB", "MiB10"} {
		if _, err := ParseByteRate(in); err == nil {
			t.Errorf("ParseByteRate(%q) expected error, got nil", in)
		}
	}
}

func TestFormatETA(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0s"},
		{-5, "0s"},
		{45, "45s"},
		{125, "2m5s"},
		{3725, "1h2m5s"},
	}
	for _, c := range cases {
		if got := FormatETA(c.in); got != c.want {
			t.Errorf("FormatETA(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}
