// Copyright (c) 2026 Spry Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license
// that can be found in the LICENSE file.

package engine

import (
	"fmt"
	"sync"
	"time"
)

// idleWindow is how long must pass with no calls before the collision
// counter resets, per spec.md §6 ("Timestamp fallback name format").
const idleWindow = 2 * time.Second

// TimestampNamer generates fallback destination filenames of the form
// "YYYY-MM-DDTHH.MM.SS.ffffff_N", guaranteeing uniqueness across
// consecutive calls within a 2-second cache window via a monotonic
// counter that resets after idleWindow of inactivity.
type TimestampNamer struct {
	mu      sync.Mutex
	counter int
	lastAt  time.Time
	now     func() time.Time
}

// NewTimestampNamer creates a namer.
func NewTimestampNamer() *TimestampNamer {
	return &TimestampNamer{now: time.Now}
}

// Next returns the next unique filename.
func (n *TimestampNamer) Next() string {
	n.mu.Lock()
	defer n.mu.Unlock()

	now := n.now()
	if n.lastAt.IsZero() || now.Sub(n.lastAt) >= idleWindow {
		n.counter = 0
	}
	n.counter++
	n.lastAt = now

	return fmt.Sprintf("%s_%d", now.Format("2006-01-02T15.04.05.000000"), n.counter)
}
