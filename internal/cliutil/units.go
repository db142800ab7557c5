// Copyright (c) 2026 Spry Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license
// that can be found in the LICENSE file.

// Package cliutil holds small parsing/formatting helpers shared by the
// spry command tree.
package cliutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// unitPattern implements spec.md §6's unit grammar:
// ^([0-9.]+)(B|Ki?B|Mi?B|Gi?B|Ti?B|Pi?B|Ei?B|Zi?B|Yi?B)(ps)?$, case
// insensitive, with an optional trailing "ps" (bytes-per-second form).
var unitPattern = regexp.MustCompile(`(?i)^([0-9.]+)(B|Ki?B|Mi?B|Gi?B|Ti?B|Pi?B|Ei?B|Zi?B|Yi?B)(ps)?$`)

var binaryMultiples = map[string]uint64{
	"B":   1,
	"KIB": 1 << 10,
	"MIB": 1 << 20,
	"GIB": 1 << 30,
	"TIB": 1 << 40,
	"PIB": 1 << 50,
	"EIB": 1 << 60,
}

// ParseByteRate parses a "--limit/-l"-style value such as "10MiB",
// "1.5 GiB" (any internal spaces must be stripped by the caller first),
// or "100KBps" into a bytes-per-second count. A bare unit missing its
// "i" (e.g. "MB") is normalized to the binary form, matching the spec's
// "unit normalised to the i-bearing form except for B" rule.
func ParseByteRate(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	m := unitPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("cliutil: %q does not match a size/rate expression", s)
	}

	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("cliutil: invalid numeric portion %q: %w", m[1], err)
	}

	unit := normalizeUnit(m[2])
	mult, ok := binaryMultiples[unit]
	if !ok {
		return 0, fmt.Errorf("cliutil: unrecognized unit %q", m[2])
	}

	return uint64(value * float64(mult)), nil
}

// normalizeUnit upper-cases the unit and inserts the binary "I" marker
// when absent (MB -> MIB), except for the bare "B" unit which has no
// binary/decimal distinction.
func normalizeUnit(unit string) string {
	upper := strings.ToUpper(unit)
	if upper == "B" {
		return upper
	}
	if strings.HasSuffix(upper, "IB") {
		return upper
	}
	// "MB" -> "MIB": insert I before the trailing B.
	return upper[:len(upper)-1] + "I" + upper[len(upper)-1:]
}

// FormatRate renders a bytes-per-second value for human display, e.g.
// "1.2 MB/s", built on github.com/dustin/go-humanize.
func FormatRate(bps float64) string {
	return humanize.Bytes(uint64(bps)) + "/s"
}

// FormatBytes renders a byte count for human display, e.g. "4.2 GB".
func FormatBytes(n uint64) string {
	return humanize.Bytes(n)
}

// FormatETA renders a remaining-seconds estimate as a coarse duration
// string ("1h2m3s"-style via humanize's relative time would read oddly
// for a pure countdown, so this renders directly).
func FormatETA(seconds float64) string {
	if seconds <= 0 {
		return "0s"
	}
	total := int64(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh%dm%ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm%ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
