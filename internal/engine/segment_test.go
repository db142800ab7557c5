// Copyright (c) 2026 Spry Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license
// that can be found in the LICENSE file.

package engine

import "testing"

func TestPlan_EmptyFile(t *testing.T) {
	got := Plan(0, 4)
	want := []Segment{{0, 0, 0}}
	if len(got) != 1 || got[0] != want[0] {
		t.Fatalf("Plan(0, 4) = %v, want %v", got, want)
	}
}

func TestPlan_RemainderDistribution(t *testing.T) {
	got := Plan(10, 3)
	want := []Segment{{0, 3, 4}, {4, 6, 3}, {7, 9, 3}}
	if len(got) != len(want) {
		t.Fatalf("Plan(10, 3) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("segment %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestPlan_PartsClampedToSize(t *testing.T) {
	got := Plan(2, 10)
	if len(got) != 2 {
		t.Fatalf("expected parts clamped to size=2, got %d segments: %v", len(got), got)
	}
}

func TestPlan_ZeroOrNegativeParts(t *testing.T) {
	got := Plan(10, 0)
	if len(got) != 1 {
		t.Fatalf("expected parts clamped to 1, got %d segments", len(got))
	}
}

func TestPlan_Coverage(t *testing.T) {
	for _, tc := range []struct {
		size  uint64
		parts uint32
	}{
		{1, 1}, {1, 4}, {7, 1}, {100, 7}, {1000003, 16}, {255, 255}, {4096, 4},
	} {
		segs := Plan(tc.size, tc.parts)

		var sum uint64
		if segs[0].Start != 0 {
			t.Errorf("size=%d parts=%d: first segment does not start at 0: %+v", tc.size, tc.parts, segs[0])
		}
		for i, s := range segs {
			if s.Size != s.End-s.Start+1 {
				t.Errorf("size=%d parts=%d: segment %d size invariant violated: %+v", tc.size, tc.parts, i, s)
			}
			sum += s.Size
			if i > 0 && segs[i-1].End+1 != s.Start {
				t.Errorf("size=%d parts=%d: segments %d,%d not contiguous: %+v %+v", tc.size, tc.parts, i-1, i, segs[i-1], s)
			}
		}
		if sum != tc.size {
			t.Errorf("size=%d parts=%d: sizes sum to %d, want %d", tc.size, tc.parts, sum, tc.size)
		}
		last := segs[len(segs)-1]
		if last.End != tc.size-1 {
			t.Errorf("size=%d parts=%d: last segment ends at %d, want %d", tc.size, tc.parts, last.End, tc.size-1)
		}

		// Sizes differ by at most 1.
		min, max := segs[0].Size, segs[0].Size
		for _, s := range segs {
			if s.Size < min {
				min = s.Size
			}
			if s.Size > max {
				max = s.Size
			}
		}
		if max-min > 1 {
			t.Errorf("size=%d parts=%d: segment sizes differ by more than 1: min=%d max=%d", tc.size, tc.parts, min, max)
		}
	}
}
