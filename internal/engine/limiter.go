// Copyright (c) 2026 Spry Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license
// that can be found in the LICENSE file.

package engine

import (
	"sync"
	"time"
)

// ChunkSize is the default read granularity when no speed limit is
// configured.
const ChunkSize = 16 * 1024 // 16 KiB

// SpeedLimiter is a hierarchical, per-second byte-quota gate. Streamers
// call Get before every read; with no limit configured it simply returns
// the configured request size. With a limit, it hands out reservations
// against a 1-second wall-clock window and sleeps the caller when the
// window's quota is exhausted.
//
// This is deliberately not a continuous token bucket: the per-second
// reservation makes the invariant ("within any aligned 1-second window,
// requested bytes <= limit") directly falsifiable by a test, at the cost
// of coarser smoothing than a continuous bucket would give. See
// DESIGN.md for why golang.org/x/time/rate — a continuous bucket — does
// not fit this contract.
type SpeedLimiter struct {
	mu sync.Mutex

	limitBPS    uint64 // 0 = unlimited
	requestSize uint32
	parent      *SpeedLimiter

	requestedThisSecond uint64
	windowStart         time.Time

	priority bool // advisory; set by Promote/Demote

	now   func() time.Time
	sleep func(time.Duration)
}

// NewSpeedLimiter creates a limiter with the given request size and
// optional parent (nil for the root).
func NewSpeedLimiter(requestSize uint32, parent *SpeedLimiter) *SpeedLimiter {
	if requestSize == 0 {
		requestSize = ChunkSize
	}
	return &SpeedLimiter{
		requestSize: requestSize,
		parent:      parent,
		windowStart: time.Now(),
		now:         time.Now,
		sleep:       time.Sleep,
	}
}

// SetLimit sets the bytes/second cap. 0 disables the cap.
func (l *SpeedLimiter) SetLimit(bps uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.limitBPS = bps
}

// SetRequestSize sets the default chunk size requested per Get call.
func (l *SpeedLimiter) SetRequestSize(n uint32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n == 0 {
		n = ChunkSize
	}
	l.requestSize = n
}

// Reset clears the current window's accounting.
func (l *SpeedLimiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.requestedThisSecond = 0
	l.windowStart = l.now()
}

// Promote sets the advisory priority flag.
func (l *SpeedLimiter) Promote() { l.mu.Lock(); l.priority = true; l.mu.Unlock() }

// Demote clears the advisory priority flag.
func (l *SpeedLimiter) Demote() { l.mu.Lock(); l.priority = false; l.mu.Unlock() }

// Priority reports the advisory flag's current value.
func (l *SpeedLimiter) Priority() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.priority
}

// Get reserves a chunk size for the caller's next read, blocking if the
// per-second quota is currently exhausted. With a parent set, it
// delegates entirely to the parent — child limiters contribute only
// their configured defaults; the effective cap lives at the root.
func (l *SpeedLimiter) Get() uint32 {
	l.mu.Lock()
	parent := l.parent
	if parent != nil {
		l.mu.Unlock()
		return parent.Get()
	}

	if l.limitBPS == 0 {
		size := l.requestSize
		l.mu.Unlock()
		return size
	}

	for {
		remaining := int64(l.limitBPS) - int64(l.requestedThisSecond)
		if remaining > 0 {
			reserve := uint32(remaining)
			if reserve > l.requestSize {
				reserve = l.requestSize
			}
			l.requestedThisSecond += uint64(reserve)
			l.mu.Unlock()
			return reserve
		}

		elapsed := l.now().Sub(l.windowStart)
		sleepFor := time.Second - elapsed
		l.mu.Unlock()
		if sleepFor > 0 {
			l.sleep(sleepFor)
		}
		l.mu.Lock()
		l.requestedThisSecond = 0
		l.windowStart = l.now()
		// Loop back around: the freshly reset window now has room.
	}
}
