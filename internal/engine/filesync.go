// Copyright (c) 2026 Spry Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license
// that can be found in the LICENSE file.

package engine

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ofek-spry/spry/internal/catalogue"
)

// FileSync coordinates one file transfer: it probes the remote source,
// plans segments, and spawns/supervises one Streamer per segment. See
// spec.md §4.6.
type FileSync struct {
	mu        sync.Mutex
	req       TransferRequest
	localPath string
	streamers []*Streamer

	opener Opener
	namer  *TimestampNamer

	tracker *ProgressTracker
	limiter *SpeedLimiter

	freeBytes func(dir string) (uint64, error)
	logger    *slog.Logger
	sink      catalogue.Sink

	now func() time.Time
}

// FileSyncConfig bundles the dependencies NewFileSync needs.
type FileSyncConfig struct {
	Request       TransferRequest
	Opener        Opener
	ParentTracker *ProgressTracker
	ParentLimiter *SpeedLimiter
	Namer         *TimestampNamer
	FreeBytes     func(dir string) (uint64, error)
	Logger        *slog.Logger
	Sink          catalogue.Sink
}

// NewFileSync creates a FileSync wired to a Session's root tracker and
// limiter (or nil, for standalone use).
func NewFileSync(cfg FileSyncConfig) *FileSync {
	if cfg.Namer == nil {
		cfg.Namer = NewTimestampNamer()
	}
	if cfg.FreeBytes == nil {
		cfg.FreeBytes = FreeBytes
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Sink == nil {
		cfg.Sink = catalogue.NopSink{}
	}
	return &FileSync{
		req:       cfg.Request,
		localPath: cfg.Request.LocalPath,
		opener:    cfg.Opener,
		namer:     cfg.Namer,
		tracker:   NewProgressTracker(30*time.Second, cfg.ParentTracker),
		limiter:   NewSpeedLimiter(ChunkSize, cfg.ParentLimiter),
		freeBytes: cfg.FreeBytes,
		logger:    cfg.Logger.With("url", cfg.Request.URL),
		sink:      cfg.Sink,
		now:       time.Now,
	}
}

// LocalPath returns the resolved destination path. Only meaningful after
// Run has completed the probe step.
func (f *FileSync) LocalPath() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.localPath
}

// Tracker returns this file's progress tracker.
func (f *FileSync) Tracker() *ProgressTracker { return f.tracker }

// Limiter returns this file's speed limiter.
func (f *FileSync) Limiter() *SpeedLimiter { return f.limiter }

// IsAlive reports whether any owned Streamer is currently alive.
func (f *FileSync) IsAlive() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.streamers {
		if s.IsAlive() {
			return true
		}
	}
	return false
}

// Success reports whether every owned Streamer finished done. A FileSync
// with no streamers yet (spawn not attempted or failed) is not a success.
func (f *FileSync) Success() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.streamers) == 0 {
		return false
	}
	for _, s := range f.streamers {
		if !s.IsDone() {
			return false
		}
	}
	return true
}

// Run is idempotent: if any streamer is alive, it is a no-op. Otherwise
// it invokes spawn. A non-nil error means the file could not even be
// planned (probe failure, disk space, unwritable path) — the caller
// should classify the file as errored without waiting on streamers.
func (f *FileSync) Run(ctx context.Context) error {
	if f.IsAlive() {
		return nil
	}
	return f.spawn(ctx)
}

// Stop cooperatively halts every owned Streamer.
func (f *FileSync) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.streamers {
		s.Stop()
	}
}

// Pause stalls every owned Streamer at its next control check.
func (f *FileSync) Pause() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.streamers {
		s.Pause()
	}
}

// Resume clears a prior Pause on every owned Streamer.
func (f *FileSync) Resume() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.streamers {
		s.Resume()
	}
}

func (f *FileSync) reset() {
	f.mu.Lock()
	f.streamers = nil
	f.mu.Unlock()
	f.tracker.Reset()
	f.limiter.Reset()
}

// spawn implements spec.md §4.6 _spawn() for method "get".
func (f *FileSync) spawn(ctx context.Context) error {
	f.reset()

	probeReq := OpenRequest{
		URL:        f.req.URL,
		Credential: f.req.Credential,
		VerifyTLS:  f.req.VerifyTLS,
	}
	probe, err := f.opener.ProbeSize(ctx, probeReq)
	if err != nil {
		f.logger.Error("probe failed", "error", err)
		f.notifyFile("error", err)
		return ErrProbeFailed
	}

	var remoteSize uint64
	parts := f.req.Parts
	if parts == 0 {
		parts = 1
	}
	if probe.ContentLength <= 0 {
		parts = 1
		remoteSize = 0
	} else {
		remoteSize = uint64(probe.ContentLength)
	}

	localPath := f.resolveLocalPath(probe)

	allocSize := remoteSize
	if allocSize == 0 {
		allocSize = 1
	}
	if err := f.checkFreeSpace(localPath, allocSize); err != nil {
		f.logger.Error("insufficient free space", "error", err, "path", localPath)
		f.notifyFile("error", err)
		return err
	}
	if err := preallocate(localPath, allocSize); err != nil {
		f.logger.Error("local path unwritable", "error", err, "path", localPath)
		f.notifyFile("error", err)
		return ErrLocalPathUnwritable
	}

	f.mu.Lock()
	f.localPath = localPath
	f.mu.Unlock()

	f.tracker.Grow(remoteSize)

	segments := Plan(remoteSize, parts)

	streamers := make([]*Streamer, 0, len(segments))
	for _, seg := range segments {
		s := NewStreamer(StreamerConfig{
			Segment:   seg,
			Request:   f.req,
			Opener:    f.opener,
			LocalPath: localPath,
			Tracker:   f.tracker,
			Limiter:   f.limiter,
			Logger:    f.logger,
			Sink:      f.sink,
		})
		streamers = append(streamers, s)
	}

	f.mu.Lock()
	f.streamers = streamers
	f.mu.Unlock()

	f.notifyFile("started", nil)

	for _, s := range streamers {
		s.Start()
	}
	return nil
}

func (f *FileSync) notifyFile(status string, err error) {
	f.mu.Lock()
	path := f.localPath
	f.mu.Unlock()
	if rerr := f.sink.RecordFile(context.Background(), catalogue.FileRecord{
		URL:       f.req.URL,
		LocalPath: path,
		Status:    status,
		Size:      f.tracker.Size(),
		Timestamp: f.now(),
		Err:       err,
	}); rerr != nil {
		f.logger.Debug("catalogue sink failed to record file", "error", rerr)
	}
}

// resolveLocalPath implements spec.md §4.6 step 4: if the configured
// local path is an existing directory, extend it with either the probed
// remote filename (when keep_remote_name is set) or a generated
// timestamp filename.
func (f *FileSync) resolveLocalPath(probe Probe) string {
	info, err := os.Stat(f.req.LocalPath)
	if err != nil || !info.IsDir() {
		return f.req.LocalPath
	}

	name := probe.RemoteName
	if !f.req.KeepRemoteName || name == "" {
		name = f.namer.Next()
	}
	name = strings.Trim(name, `"`)
	return filepath.Join(f.req.LocalPath, name)
}

// checkFreeSpace implements spec.md §4.6 step 5's space verification.
func (f *FileSync) checkFreeSpace(localPath string, size uint64) error {
	dir := filepath.Dir(localPath)
	free, err := f.freeBytes(dir)
	if err != nil {
		// Disk usage is best-effort: if the platform can't report it,
		// proceed and let the subsequent write surface any real failure.
		f.logger.Debug("free space check unavailable", "error", err, "dir", dir)
		return nil
	}
	if free < size {
		return ErrInsufficientSpace
	}
	return nil
}

// preallocate creates (or truncates-open) the destination file and seeds
// it as a sparse file of exactly size bytes, per spec.md §4.6 step 5.
func preallocate(path string, size uint64) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Seek(int64(size)-1, io.SeekStart); err != nil {
		return err
	}
	if _, err := f.Write([]byte{0}); err != nil {
		return err
	}
	return nil
}
