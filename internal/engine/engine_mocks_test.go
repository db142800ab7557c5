// Copyright (c) 2026 Spry Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license
// that can be found in the LICENSE file.

package engine

import (
	"context"
	"errors"
	"sync"
	"time"
)

// scriptedReader is a RangedReader that serves a fixed byte slice, with
// an optional simulated disconnect after a given number of bytes.
type scriptedReader struct {
	data      []byte
	pos       int
	failAfter int // -1 = never fail
	err       error
	readDelay time.Duration
}

func (r *scriptedReader) Read(p []byte) (int, error) {
	if r.readDelay > 0 {
		time.Sleep(r.readDelay)
	}
	if r.failAfter >= 0 && r.pos >= r.failAfter {
		return 0, r.err
	}
	if r.pos >= len(r.data) {
		return 0, nil
	}
	n := copy(p, r.data[r.pos:])
	if r.failAfter >= 0 && r.pos+n > r.failAfter {
		n = r.failAfter - r.pos
	}
	r.pos += n
	return n, nil
}

func (r *scriptedReader) Close() error { return nil }

// mockOpener simulates a remote server. If ignoreRange is true, every
// attempt returns the full file regardless of the requested Range
// (spec.md §8 scenario 4). failAfterFirstAttempt simulates a mid-transfer
// disconnect on the first attempt only (scenario 3).
// mockOpener's fullData represents the content of a single segment; base
// is the absolute offset (Segment.Start) that fullData[0] corresponds to,
// so Range requests (which are always absolute) can be mapped back to
// indices into fullData.
type mockOpener struct {
	mu                    sync.Mutex
	fullData              []byte
	base                  uint64
	ignoreRange           bool
	failAfterFirstAttempt int
	attempts              int
	requestedRanges       []Range

	remoteName    string
	probeErr      error
	acceptsRanges bool
	readDelay     time.Duration
}

func (m *mockOpener) ProbeSize(ctx context.Context, req OpenRequest) (Probe, error) {
	if m.probeErr != nil {
		return Probe{}, m.probeErr
	}
	return Probe{
		ContentLength: int64(len(m.fullData)),
		RemoteName:    m.remoteName,
		AcceptsRanges: m.acceptsRanges,
	}, nil
}

func (m *mockOpener) Open(ctx context.Context, req OpenRequest) (RangedReader, error) {
	m.mu.Lock()
	m.attempts++
	attempt := m.attempts
	m.requestedRanges = append(m.requestedRanges, req.Range)
	m.mu.Unlock()

	if m.ignoreRange {
		return &scriptedReader{data: m.fullData, failAfter: -1, readDelay: m.readDelay}, nil
	}

	var data []byte
	if req.Range.KnownSize {
		start := req.Range.Start - m.base
		end := req.Range.End - m.base + 1
		if end > uint64(len(m.fullData)) {
			end = uint64(len(m.fullData))
		}
		data = m.fullData[start:end]
	} else {
		data = m.fullData
	}

	failAfter := -1
	if attempt == 1 && m.failAfterFirstAttempt > 0 {
		failAfter = m.failAfterFirstAttempt
	}
	return &scriptedReader{data: data, failAfter: failAfter, err: errors.New("connection reset"), readDelay: m.readDelay}, nil
}

// memWriter is an in-memory PositionalWriter shared across a Streamer's
// attempts (mimicking the pre-allocated sparse file all attempts share).
type memWriter struct {
	mu   sync.Mutex
	buf  []byte
	pos  int64
	open bool
}

func newMemWriter(size int) *memWriter {
	return &memWriter{buf: make([]byte, size)}
}

func (w *memWriter) Seek(offset int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pos = offset
	return nil
}

func (w *memWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := copy(w.buf[w.pos:], p)
	w.pos += int64(n)
	return n, nil
}

func (w *memWriter) Close() error { return nil }

func (w *memWriter) Bytes() []byte {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]byte, len(w.buf))
	copy(out, w.buf)
	return out
}

func sharedWriterFactory(w *memWriter) WriterFactory {
	return func(localPath string) (PositionalWriter, error) {
		return w, nil
	}
}
