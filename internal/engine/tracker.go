// Copyright (c) 2026 Spry Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license
// that can be found in the LICENSE file.

package engine

import (
	"sync"
	"time"
)

// ProgressTracker is a hierarchical, sliding-window progress accountant.
// Every FileSync and every Session owns one; Streamers credit their
// FileSync's tracker directly, and it chains upward to the Session's, so
// a single Session-level query aggregates all in-flight activity.
//
// All mutators take the internal mutex; forwarding to the parent happens
// after the child's lock is released, so no two tracker locks are ever
// held at once by the same goroutine.
type ProgressTracker struct {
	mu sync.Mutex

	size   uint64 // target total; 0 means unknown
	total  uint64 // credited bytes
	window time.Duration

	times     []time.Time      // monotonically non-decreasing
	timeTotal map[time.Time]uint64

	parent   *ProgressTracker
	finished bool

	now func() time.Time // overridable for tests
}

// NewProgressTracker creates a tracker with the given sliding window and
// optional parent (nil for a root tracker).
func NewProgressTracker(window time.Duration, parent *ProgressTracker) *ProgressTracker {
	return &ProgressTracker{
		window:    window,
		timeTotal: make(map[time.Time]uint64),
		parent:    parent,
		now:       time.Now,
	}
}

// Add credits n bytes at the current wall time and forwards to the
// parent, if any. Same-timestamp adds coalesce into one time_total entry.
func (t *ProgressTracker) Add(n uint64) {
	t.mu.Lock()
	now := t.now()
	t.total += n
	if last, ok := t.timeTotal[now]; ok {
		t.timeTotal[now] = last + n
	} else {
		t.timeTotal[now] = n
		t.times = append(t.times, now)
	}
	parent := t.parent
	t.mu.Unlock()

	if parent != nil {
		parent.Add(n)
	}
}

// Remove un-credits n bytes — used when an attempt's bytes are suspect
// (the peer returned non-range content; see the Streamer retry loop) —
// and forwards to the parent.
func (t *ProgressTracker) Remove(n uint64) {
	t.mu.Lock()
	if n > t.total {
		t.total = 0
	} else {
		t.total -= n
	}
	parent := t.parent
	t.mu.Unlock()

	if parent != nil {
		parent.Remove(n)
	}
}

// Grow increases the target size by n and forwards to the parent.
func (t *ProgressTracker) Grow(n uint64) {
	t.mu.Lock()
	t.size += n
	parent := t.parent
	t.mu.Unlock()

	if parent != nil {
		parent.Grow(n)
	}
}

// Shrink decreases the target size by n and forwards to the parent.
func (t *ProgressTracker) Shrink(n uint64) {
	t.mu.Lock()
	if n > t.size {
		t.size = 0
	} else {
		t.size -= n
	}
	parent := t.parent
	t.mu.Unlock()

	if parent != nil {
		parent.Shrink(n)
	}
}

// Finish marks the tracker as explicitly finished, independent of whether
// total has reached size (used for the unknown-size case).
func (t *ProgressTracker) Finish() {
	t.mu.Lock()
	t.finished = true
	t.mu.Unlock()
}

// Reset clears this tracker's own accounting (size, total, window
// history, finished) back to zero. It does not touch the parent — a
// FileSync resetting for a restart must not erase its siblings' share of
// the Session's aggregate.
func (t *ProgressTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.size = 0
	t.total = 0
	t.times = nil
	t.timeTotal = make(map[time.Time]uint64)
	t.finished = false
}

// purge drops entries older than now-window from both times and
// timeTotal. Must be called with t.mu held.
func (t *ProgressTracker) purge(now time.Time) {
	cutoff := now.Add(-t.window)
	i := 0
	for i < len(t.times) && t.times[i].Before(cutoff) {
		delete(t.timeTotal, t.times[i])
		i++
	}
	if i > 0 {
		t.times = append(t.times[:0], t.times[i:]...)
	}
}

// GetProgress purges stale entries and returns (bytesPerSecond, etaSeconds,
// total, size). bps divides the sum of the window's credited bytes by the
// *fixed* window length, not the observed span, which damps bursts and
// keeps UI numbers stable. eta is 0 when size is unknown or bps is 0.
func (t *ProgressTracker) GetProgress() (bps float64, etaSeconds float64, total uint64, size uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.purge(now)

	total = t.total
	size = t.size

	if len(t.times) == 0 {
		return 0, 0, total, size
	}

	var sum uint64
	for _, v := range t.timeTotal {
		sum += v
	}
	bps = float64(sum) / t.window.Seconds()

	if size > 0 && bps > 0 {
		remaining := float64(size) - float64(total)
		if remaining < 0 {
			remaining = 0
		}
		etaSeconds = remaining / bps
	}
	return bps, etaSeconds, total, size
}

// Done reports whether the tracker is finished or has reached its known
// target size.
func (t *ProgressTracker) Done() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.finished || (t.size > 0 && t.total == t.size)
}

// Total returns the current credited total without purging.
func (t *ProgressTracker) Total() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}

// Size returns the current target size without purging.
func (t *ProgressTracker) Size() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.size
}
