// Copyright (c) 2026 Spry Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license
// that can be found in the LICENSE file.

package engine

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ofek-spry/spry/internal/catalogue"
)

// StateCheck is the poll interval used for pause/stop observation, per
// spec.md §3/§5.
const StateCheck = 1 * time.Second

// DefaultTimeout is the default per-Streamer inactivity timeout.
const DefaultTimeout = 20 * time.Second

// WriterFactory constructs the PositionalWriter for a Streamer's local
// destination. Exposed so tests can substitute an in-memory writer.
type WriterFactory func(localPath string) (PositionalWriter, error)

// Streamer owns one Segment and drives it to completion on its own
// goroutine: setup a reader/writer pair, pump bytes through the speed
// limiter with retry/resume on disconnect, and reconcile progress after
// every attempt. See spec.md §4.5 for the full algorithm.
type Streamer struct {
	segMu   sync.Mutex
	segment Segment

	req           TransferRequest
	opener        Opener
	writerFactory WriterFactory
	localPath     string

	tracker *ProgressTracker
	limiter *SpeedLimiter
	counter Counter

	timeout    time.Duration
	stateCheck time.Duration

	alive     atomic.Bool
	running   atomic.Bool
	paused    atomic.Bool
	done      atomic.Bool
	connected atomic.Bool

	logger *slog.Logger
	sink   catalogue.Sink

	wg sync.WaitGroup

	// overridable for tests
	sleep func(time.Duration)
	now   func() time.Time
}

// StreamerConfig bundles the dependencies NewStreamer needs.
type StreamerConfig struct {
	Segment       Segment
	Request       TransferRequest
	Opener        Opener
	WriterFactory WriterFactory
	LocalPath     string
	Tracker       *ProgressTracker
	Limiter       *SpeedLimiter
	Timeout       time.Duration
	Logger        *slog.Logger
	Sink          catalogue.Sink
}

// NewStreamer creates a Streamer for one segment. It does not start the
// goroutine; call Start.
func NewStreamer(cfg StreamerConfig) *Streamer {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.WriterFactory == nil {
		cfg.WriterFactory = func(path string) (PositionalWriter, error) {
			return NewFileWriter(path)
		}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Sink == nil {
		cfg.Sink = catalogue.NopSink{}
	}
	return &Streamer{
		segment:       cfg.Segment,
		req:           cfg.Request,
		opener:        cfg.Opener,
		writerFactory: cfg.WriterFactory,
		localPath:     cfg.LocalPath,
		tracker:       cfg.Tracker,
		limiter:       cfg.Limiter,
		timeout:       cfg.Timeout,
		stateCheck:    StateCheck,
		logger:        cfg.Logger.With("segment_start", cfg.Segment.Start, "segment_end", cfg.Segment.End),
		sink:          cfg.Sink,
		sleep:         time.Sleep,
		now:           time.Now,
	}
}

// Segment returns a snapshot of the current segment state.
func (s *Streamer) Segment() Segment {
	s.segMu.Lock()
	defer s.segMu.Unlock()
	return s.segment
}

// IsAlive reports whether the Streamer's goroutine is currently running.
func (s *Streamer) IsAlive() bool { return s.alive.Load() }

// IsDone reports whether the segment completed successfully.
func (s *Streamer) IsDone() bool { return s.done.Load() }

// IsConnected reports whether the last I/O attempt succeeded.
func (s *Streamer) IsConnected() bool { return s.connected.Load() }

// Start launches the Streamer's goroutine if it is not already running.
func (s *Streamer) Start() {
	if s.alive.Load() {
		return
	}
	s.running.Store(true)
	s.alive.Store(true)
	s.wg.Add(1)
	go s.run(context.Background())
}

// Stop requests graceful shutdown; the Streamer notices at the next
// control check (at most one chunk read later) and cleans up.
func (s *Streamer) Stop() { s.running.Store(false) }

// Pause requests the Streamer stall at the next control check.
func (s *Streamer) Pause() { s.paused.Store(true) }

// Resume clears a prior Pause.
func (s *Streamer) Resume() { s.paused.Store(false) }

// Wait blocks until the Streamer's goroutine has exited.
func (s *Streamer) Wait() { s.wg.Wait() }

func (s *Streamer) run(ctx context.Context) {
	defer s.wg.Done()
	defer s.alive.Store(false)

	lastActive := s.now()
	s.notify(ctx, "started", nil)

	for {
		if !s.running.Load() {
			return
		}

		reader, writer, err := s.setup(ctx)
		if err != nil {
			s.connected.Store(false)
			s.logger.Warn("streamer setup failed", "error", err)
		} else {
			s.connected.Store(true)
		}

		var bytesConsumed uint64

		if s.connected.Load() {
			bytesConsumed = s.pump(reader, writer)
		}

		if reader != nil {
			reader.Close()
		}
		if writer != nil {
			writer.Close()
		}

		s.reconcile(bytesConsumed)

		if s.done.Load() {
			s.running.Store(false)
			s.notify(ctx, "done", nil)
			return
		}

		total := s.tracker.Total()
		if s.counter.LessThan(total) {
			s.counter.Set(total)
			lastActive = s.now()
			continue
		}

		if s.now().Sub(lastActive) < s.timeout {
			continue
		}

		s.logger.Error("segment timed out with no progress", "segment", s.Segment().String())
		s.running.Store(false)
		s.notify(ctx, "error", ErrSegmentTimeout)
		return
	}
}

func (s *Streamer) notify(ctx context.Context, status string, err error) {
	seg := s.Segment()
	if rerr := s.sink.RecordSegment(ctx, catalogue.SegmentRecord{
		URL:       s.req.URL,
		Start:     seg.Start,
		End:       seg.End,
		Status:    status,
		Timestamp: s.now(),
		Err:       err,
	}); rerr != nil {
		s.logger.Debug("catalogue sink failed to record segment", "error", rerr)
	}
}

func (s *Streamer) setup(ctx context.Context) (RangedReader, PositionalWriter, error) {
	seg := s.Segment()

	writer, err := s.writerFactory(s.localPath)
	if err != nil {
		return nil, nil, err
	}
	if err := writer.Seek(int64(seg.Start)); err != nil {
		writer.Close()
		return nil, nil, err
	}

	rng := Range{Start: seg.Start, End: seg.End, KnownSize: seg.End != 0}
	openReq := OpenRequest{
		URL:            s.req.URL,
		Credential:     s.req.Credential,
		Range:          rng,
		VerifyTLS:      s.req.VerifyTLS,
		ConnectTimeout: s.req.ConnectTimeoutSec,
		ReadTimeout:    s.req.ReadTimeoutSec,
	}

	reader, err := s.opener.Open(ctx, openReq)
	if err != nil {
		writer.Close()
		return nil, nil, err
	}
	return reader, writer, nil
}

// pump drives the inner byte-pump loop for one connection attempt,
// returning how many bytes were banked this attempt.
func (s *Streamer) pump(reader RangedReader, writer PositionalWriter) uint64 {
	seg := s.Segment()
	var bytesConsumed uint64

	for {
		if !s.running.Load() {
			return bytesConsumed
		}
		for s.paused.Load() {
			s.sleep(s.stateCheck)
			if !s.running.Load() {
				return bytesConsumed
			}
		}

		chunkSize := s.limiter.Get()
		buf := make([]byte, chunkSize)
		n, err := reader.Read(buf)

		if err != nil && err != io.EOF {
			s.connected.Store(false)
			return bytesConsumed
		}

		if n == 0 {
			if !s.connected.Load() {
				return bytesConsumed
			}
			s.connected.Store(true)
			return bytesConsumed
		}

		chunk := buf[:n]

		if seg.Size > 0 && bytesConsumed+uint64(n) > seg.Size {
			allowed := seg.Size - bytesConsumed
			chunk = chunk[:allowed]
			if _, werr := writer.Write(chunk); werr != nil {
				s.connected.Store(false)
				return bytesConsumed
			}
			s.tracker.Add(uint64(len(chunk)))
			bytesConsumed += uint64(len(chunk))
			return bytesConsumed
		}

		if _, werr := writer.Write(chunk); werr != nil {
			s.connected.Store(false)
			return bytesConsumed
		}
		s.tracker.Add(uint64(len(chunk)))
		bytesConsumed += uint64(len(chunk))

		if err == io.EOF {
			// Drained exactly at EOF; the next Read will report 0 bytes
			// and let the loop above treat it as clean completion.
			continue
		}
	}
}

// reconcile applies spec.md §4.5 step 4 to the segment and tracker after
// one connection attempt.
func (s *Streamer) reconcile(bytesConsumed uint64) {
	s.segMu.Lock()
	size := s.segment.Size
	connected := s.connected.Load()

	switch {
	case size > 0 && bytesConsumed == size:
		s.segment.Size -= bytesConsumed
		s.segMu.Unlock()
		s.done.Store(true)
		return

	case size > 0 && bytesConsumed < size:
		if !connected {
			s.segment.Start += bytesConsumed
			s.segment.Size -= bytesConsumed
			s.segMu.Unlock()
			return
		}
		s.segMu.Unlock()
		s.tracker.Remove(bytesConsumed)
		return

	default: // size == 0: unknown total
		s.segMu.Unlock()
		if connected {
			s.done.Store(true)
		}
		return
	}
}
