// Copyright (c) 2026 Spry Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license
// that can be found in the LICENSE file.

package engine

import "sync"

// Counter is a monotonic byte baseline a Streamer compares its tracker's
// total against to detect whether any progress has been made since the
// last check. It is mutated only by its owning Streamer.
type Counter struct {
	mu    sync.Mutex
	value uint64
}

// Set stores n, returning the previous value.
func (c *Counter) Set(n uint64) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev := c.value
	c.value = n
	return prev
}

// Value returns the current baseline.
func (c *Counter) Value() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// LessThan reports whether the counter's current value is less than n —
// used by the Streamer's timeout guard to detect tracker progress.
func (c *Counter) LessThan(n uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value < n
}
