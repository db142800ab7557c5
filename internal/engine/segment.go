// Copyright (c) 2026 Spry Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license
// that can be found in the LICENSE file.

// Package engine implements the segmented transfer engine: Streamer,
// FileSync, and Session, plus the hierarchical ProgressTracker and
// SpeedLimiter they share.
package engine

import "fmt"

// Segment is a contiguous byte range [Start, End] of a target file, with
// End inclusive, owned by exactly one Streamer.
//
// Invariant: Size == End-Start+1 when Size > 0. The degenerate empty-file
// sentinel is Segment{0, 0, 0}.
type Segment struct {
	Start uint64
	End   uint64
	Size  uint64
}

// String renders the segment as "start-end (size bytes)" for logging.
func (s Segment) String() string {
	return fmt.Sprintf("%d-%d (%d bytes)", s.Start, s.End, s.Size)
}

// Done reports whether the segment's remaining size has been fully
// consumed. A Streamer decrements Size as it banks bytes; Size reaching
// zero (for an originally non-empty segment) signals completion.
func (s Segment) Done() bool {
	return s.Size == 0
}

// Plan splits size bytes into parts contiguous segments. It is pure: same
// inputs always produce the same output, and it never mutates its
// arguments.
//
// If size == 0, Plan returns the single sentinel segment {0, 0, 0},
// signifying an unknown or empty target. Otherwise parts is clamped to
// [1, size], and the size is distributed so the first `size % parts`
// segments get one extra byte — this keeps contiguity exact without
// requiring size to be a multiple of parts.
func Plan(size uint64, parts uint32) []Segment {
	if size == 0 {
		return []Segment{{Start: 0, End: 0, Size: 0}}
	}

	if parts < 1 {
		parts = 1
	}
	if uint64(parts) > size {
		parts = uint32(size)
	}

	base := size / uint64(parts)
	rem := size % uint64(parts)

	segments := make([]Segment, 0, parts)
	var cursor uint64
	for i := uint32(0); i < parts; i++ {
		segSize := base
		if uint64(i) < rem {
			segSize++
		}
		start := cursor
		end := start + segSize - 1
		segments = append(segments, Segment{Start: start, End: end, Size: segSize})
		cursor = end + 1
	}
	return segments
}
