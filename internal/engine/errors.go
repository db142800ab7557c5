// Copyright (c) 2026 Spry Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license
// that can be found in the LICENSE file.

package engine

import "errors"

// Sentinel errors for the three non-control-flow error kinds spec.md §7
// distinguishes. Transient transport errors are not sentinels — they are
// handled in-band by the Streamer and never escape it (spec.md §7 policy:
// "a Streamer never raises out of its thread").
var (
	// ErrProbeFailed indicates the initial discovery request could not
	// reach the remote or returned a non-success status.
	ErrProbeFailed = errors.New("engine: probe failed")

	// ErrInsufficientSpace indicates the destination filesystem does not
	// have enough free space for the pre-allocated file.
	ErrInsufficientSpace = errors.New("engine: insufficient free disk space")

	// ErrLocalPathUnwritable indicates the destination path (or its
	// parent directory, for a generated filename) cannot be opened for
	// writing.
	ErrLocalPathUnwritable = errors.New("engine: local path is not writable")

	// ErrSegmentTimeout indicates a Streamer's inactivity timeout expired
	// with no tracker progress since the last check.
	ErrSegmentTimeout = errors.New("engine: segment timed out with no progress")
)
