// Copyright (c) 2026 Spry Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license
// that can be found in the LICENSE file.

package transport

import (
	"context"

	"github.com/ofek-spry/spry/internal/engine"
)

// SFTPReader is an explicit placeholder. The original implementation
// never shipped SFTP support either; this type gives callers a concrete
// Opener that fails with ErrNotImplemented. The CLI's "sftp" subcommands
// do not construct it; they return ErrNotImplemented directly.
type SFTPReader struct{}

// NewSFTPReader returns an unimplemented SFTPReader.
func NewSFTPReader() *SFTPReader { return &SFTPReader{} }

// ProbeSize always returns ErrNotImplemented.
func (r *SFTPReader) ProbeSize(ctx context.Context, req engine.OpenRequest) (engine.Probe, error) {
	return engine.Probe{}, ErrNotImplemented
}

// Open always returns ErrNotImplemented.
func (r *SFTPReader) Open(ctx context.Context, req engine.OpenRequest) (engine.RangedReader, error) {
	return nil, ErrNotImplemented
}
