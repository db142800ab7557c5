// Copyright (c) 2026 Spry Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license
// that can be found in the LICENSE file.

package engine

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/ofek-spry/spry/internal/catalogue"
)

// SessionStateCheck is the scheduler loop's poll interval, per spec.md §4.7.
const SessionStateCheck = 1 * time.Second

// Session is the fleet scheduler: it bounds how many FileSyncs run
// concurrently and owns the root ProgressTracker/SpeedLimiter that every
// FileSync and Streamer chains up to. See spec.md §4.7.
type Session struct {
	mu         sync.Mutex
	unfinished []*FileSync
	workers    []*FileSync
	finished   []*FileSync
	errored    []*FileSync

	concurrent int
	forever    bool

	running atomic.Bool
	paused  atomic.Bool

	tracker *ProgressTracker
	limiter *SpeedLimiter
	sem     *semaphore.Weighted

	opener Opener
	sink   catalogue.Sink
	logger *slog.Logger

	stateCheck time.Duration
	sleep      func(time.Duration)

	wg sync.WaitGroup
}

// SessionConfig bundles the dependencies NewSession needs.
type SessionConfig struct {
	Concurrent int
	// Forever keeps the scheduler loop alive even when both queues empty
	// (e.g. a long-running daemon that will receive more Get calls).
	Forever bool
	Opener  Opener
	Sink    catalogue.Sink
	Logger  *slog.Logger
}

// NewSession creates a Session. Concurrent is clamped to at least 1.
func NewSession(cfg SessionConfig) *Session {
	if cfg.Concurrent < 1 {
		cfg.Concurrent = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Sink == nil {
		cfg.Sink = catalogue.NopSink{}
	}
	return &Session{
		concurrent: cfg.Concurrent,
		forever:    cfg.Forever,
		tracker:    NewProgressTracker(30*time.Second, nil),
		limiter:    NewSpeedLimiter(ChunkSize, nil),
		sem:        semaphore.NewWeighted(int64(cfg.Concurrent)),
		opener:     cfg.Opener,
		sink:       cfg.Sink,
		logger:     cfg.Logger.With("component", "session"),
		stateCheck: SessionStateCheck,
		sleep:      time.Sleep,
	}
}

// Tracker returns the Session's root progress tracker.
func (sess *Session) Tracker() *ProgressTracker { return sess.tracker }

// Limiter returns the Session's root speed limiter.
func (sess *Session) Limiter() *SpeedLimiter { return sess.limiter }

// Get enqueues a new file transfer and returns its FileSync handle. The
// handle is queued in unfinished; the scheduler loop admits it once a
// worker slot opens up. A non-zero req.SpeedLimitBPS sets the Session's
// root limiter cap, which every FileSync and Streamer shares.
func (sess *Session) Get(req TransferRequest) *FileSync {
	if req.SpeedLimitBPS > 0 {
		sess.limiter.SetLimit(req.SpeedLimitBPS)
	}
	fs := NewFileSync(FileSyncConfig{
		Request:       req,
		Opener:        sess.opener,
		ParentTracker: sess.tracker,
		ParentLimiter: sess.limiter,
		Sink:          sess.sink,
		Logger:        sess.logger,
	})
	sess.mu.Lock()
	sess.unfinished = append(sess.unfinished, fs)
	sess.mu.Unlock()
	return fs
}

// Start launches the scheduler loop goroutine if it is not already
// running.
func (sess *Session) Start() {
	if sess.running.Load() {
		return
	}
	sess.running.Store(true)
	sess.wg.Add(1)
	go sess.loop(context.Background())
}

// Stop requests the scheduler loop exit; in-flight FileSyncs are also
// asked to stop cooperatively.
func (sess *Session) Stop() {
	sess.running.Store(false)
	sess.mu.Lock()
	workers := append([]*FileSync(nil), sess.workers...)
	sess.mu.Unlock()
	for _, w := range workers {
		w.Stop()
	}
}

// Pause stalls admission and reaping; workers already running continue
// making progress unless individually paused.
func (sess *Session) Pause() { sess.paused.Store(true) }

// Resume clears a prior Pause.
func (sess *Session) Resume() { sess.paused.Store(false) }

// Wait blocks until the scheduler loop has exited.
func (sess *Session) Wait() { sess.wg.Wait() }

// Finished returns the FileSyncs that completed successfully.
func (sess *Session) Finished() []*FileSync {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return append([]*FileSync(nil), sess.finished...)
}

// Errors returns the FileSyncs that left the active set without success.
func (sess *Session) Errors() []*FileSync {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return append([]*FileSync(nil), sess.errored...)
}

// Pending reports how many FileSyncs are queued or actively running,
// used by callers deciding whether to keep waiting in non-forever mode.
func (sess *Session) Pending() int {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return len(sess.unfinished) + len(sess.workers)
}

func (sess *Session) loop(ctx context.Context) {
	defer sess.wg.Done()
	for {
		sess.sleep(sess.stateCheck)

		if !sess.running.Load() {
			return
		}
		if sess.paused.Load() {
			continue
		}

		sess.reap(ctx)
		sess.refill()
		sess.kick(ctx)

		if !sess.forever && sess.queuesEmpty() {
			sess.running.Store(false)
			return
		}
	}
}

// reap processes exactly one full rotation of the current worker set: a
// dead worker is popped and classified; a live one is rotated to the
// back, so every worker gets equal attention across ticks.
func (sess *Session) reap(ctx context.Context) {
	sess.mu.Lock()
	n := len(sess.workers)
	for i := 0; i < n; i++ {
		w := sess.workers[0]
		sess.workers = sess.workers[1:]

		if !w.IsAlive() {
			sess.sem.Release(1)
			if w.Success() {
				sess.finished = append(sess.finished, w)
				w.notifyFile("done", nil)
				sess.logger.Info("file transfer completed", "local_path", w.LocalPath())
			} else {
				sess.errored = append(sess.errored, w)
				sess.logger.Warn("file transfer did not complete successfully", "local_path", w.LocalPath())
			}
			continue
		}
		sess.workers = append(sess.workers, w)
	}
	sess.mu.Unlock()
}

// refill admits as many queued FileSyncs into workers as the semaphore
// has slots for, matching the "bounded rotation (size <= concurrent)"
// invariant without a redundant length check racing the Release calls
// in reap.
func (sess *Session) refill() {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	for len(sess.unfinished) > 0 {
		if !sess.sem.TryAcquire(1) {
			return
		}
		next := sess.unfinished[0]
		sess.unfinished = sess.unfinished[1:]
		sess.workers = append(sess.workers, next)
	}
}

// kick starts every admitted worker that isn't already running. Each
// worker's synchronous spawn phase (probe, plan, preallocate) runs
// concurrently via errgroup so one file's probe round-trip never blocks
// another's; a plain errgroup.Group (not WithContext) is used
// deliberately so one worker's setup failure never cancels its siblings.
func (sess *Session) kick(ctx context.Context) {
	sess.mu.Lock()
	workers := append([]*FileSync(nil), sess.workers...)
	sess.mu.Unlock()

	var g errgroup.Group
	for _, w := range workers {
		w := w
		if w.IsAlive() {
			continue
		}
		g.Go(func() error {
			if err := w.Run(ctx); err != nil {
				sess.logger.Error("file sync failed to start", "error", err)
			}
			return nil
		})
	}
	g.Wait()
}

func (sess *Session) queuesEmpty() bool {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return len(sess.unfinished) == 0 && len(sess.workers) == 0
}
