// Copyright (c) 2026 Spry Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license
// that can be found in the LICENSE file.

package engine

import (
	"context"
	"io"
	"os"
)

// RangedReader reads a (possibly unbounded) byte range from a remote
// source. Read may return fewer bytes than requested, and an empty read
// with a nil error signals EOF for this attempt — concrete transports
// live in internal/transport.
type RangedReader interface {
	io.Reader
	io.Closer
}

// Range describes the byte span an Opener should request. KnownSize is
// false for the degenerate unknown-total case (Segment.End == 0 with no
// prior knowledge), in which case no Range header/parameter should be
// sent.
type Range struct {
	Start     uint64
	End       uint64
	KnownSize bool
}

// Credential applies transport-specific authentication to an open
// request. Concrete implementations live in internal/auth; engine only
// depends on this interface.
type Credential interface {
	Apply(ctx context.Context, set func(key, value string))
}

// OpenRequest carries everything an Opener needs to produce a
// RangedReader for one Streamer attempt.
type OpenRequest struct {
	URL            string
	Credential     Credential
	Range          Range
	VerifyTLS      bool
	ConnectTimeout uint32 // seconds
	ReadTimeout    uint32 // seconds
}

// Probe is the result of a HEAD/GET discovery request: the authoritative
// size (if known) and a suggested remote filename.
type Probe struct {
	ContentLength int64
	RemoteName    string
	AcceptsRanges bool
}

// Opener probes a remote source (ProbeSize, called once per FileSync
// spawn) and constructs a RangedReader for a given OpenRequest (Open,
// called once per Streamer attempt). Implementations live in
// internal/transport (HTTP, S3, SFTP placeholder).
type Opener interface {
	// ProbeSize performs a lightweight discovery request (no range) and
	// returns size/name metadata without downloading the body.
	ProbeSize(ctx context.Context, req OpenRequest) (Probe, error)
	// Open issues the ranged request and returns a live reader.
	Open(ctx context.Context, req OpenRequest) (RangedReader, error)
}

// PositionalWriter writes into a pre-allocated sparse file at arbitrary
// offsets. Backed by *os.File.
type PositionalWriter interface {
	Seek(offset int64) error
	Write(p []byte) (int, error)
	Close() error
}

// FileWriter is the concrete PositionalWriter backing the local
// destination file.
type FileWriter struct {
	f *os.File
}

// NewFileWriter opens path for writing without truncating (the file is
// expected to have been pre-allocated by FileSync).
func NewFileWriter(path string) (*FileWriter, error) {
	f, err := os.OpenFile(path, os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &FileWriter{f: f}, nil
}

// Seek positions the file at offset for the next Write.
func (w *FileWriter) Seek(offset int64) error {
	_, err := w.f.Seek(offset, io.SeekStart)
	return err
}

// Write writes p at the current position.
func (w *FileWriter) Write(p []byte) (int, error) {
	return w.f.Write(p)
}

// Close closes the underlying file.
func (w *FileWriter) Close() error {
	return w.f.Close()
}

// TransferRequest describes one file transfer: remote source, local
// destination, and the knobs a FileSync plans segments and retries from.
type TransferRequest struct {
	URL               string
	LocalPath         string
	Credential        Credential
	VerifyTLS         bool
	Parts             uint32
	SpeedLimitBPS     uint64
	ConnectTimeoutSec uint32
	ReadTimeoutSec    uint32
	Restart           bool
	KeepRemoteName    bool
	PersistConnection bool
}
