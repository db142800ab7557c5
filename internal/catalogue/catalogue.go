// Copyright (c) 2026 Spry Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license
// that can be found in the LICENSE file.

// Package catalogue specifies the interface contract for the optional,
// on-disk persistence collaborator spec.md describes: the engine does
// not need to persist its own state, but exposes enough lifecycle data
// for a catalogue to be bolted on. This package ships only a no-op
// default; a real catalogue (e.g. backed by a local database) is outside
// the scope of the segmented transfer engine.
package catalogue

import (
	"context"
	"time"
)

// FileRecord is a lifecycle notification for one file transfer.
type FileRecord struct {
	URL       string
	LocalPath string
	Status    string // "started", "done", "error"
	Size      uint64
	Timestamp time.Time
	Err       error
}

// SegmentRecord is a lifecycle notification for one segment attempt.
type SegmentRecord struct {
	URL       string
	Start     uint64
	End       uint64
	Status    string // "started", "done", "error"
	Timestamp time.Time
	Err       error
}

// Sink receives lifecycle notifications. Implementations must not block
// the caller for long; the engine treats a Sink purely as a notification
// fan-out and never changes its own behavior based on a Sink's return
// value beyond logging a failure to record.
type Sink interface {
	RecordFile(ctx context.Context, f FileRecord) error
	RecordSegment(ctx context.Context, s SegmentRecord) error
	Close() error
}

// NopSink is the default Sink: it discards every record.
type NopSink struct{}

// RecordFile discards f.
func (NopSink) RecordFile(ctx context.Context, f FileRecord) error { return nil }

// RecordSegment discards s.
func (NopSink) RecordSegment(ctx context.Context, s SegmentRecord) error { return nil }

// Close is a no-op.
func (NopSink) Close() error { return nil }
