// Copyright (c) 2026 Spry Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license
// that can be found in the LICENSE file.

// Package daemon runs spry's jobs on a schedule: one cron entry per
// configured job, each executing a Session against a single
// TransferRequest with retry and a per-run log file.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ofek-spry/spry/internal/daemonconfig"
)

// JobResult records the outcome of the most recent run of a Job.
type JobResult struct {
	Status           string // "completed", "failed", "skipped"
	DurationSeconds  float64
	BytesTransferred uint64
	Timestamp        time.Time
}

// Job pairs a configured entry with a run guard so an overlapping cron
// trigger is skipped rather than queued behind a still-running one.
type Job struct {
	Entry daemonconfig.JobEntry

	mu         sync.Mutex
	running    bool
	LastResult *JobResult
}

// RunFunc executes one job attempt. It is supplied by the caller (see
// RunDaemon) so Scheduler stays independent of how a job is actually
// carried out.
type RunFunc func(ctx context.Context, entry daemonconfig.JobEntry, logger *slog.Logger, job *Job) error

// Scheduler manages one cron entry per job.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
	jobs   []*Job
}

// NewScheduler builds a Scheduler with one registered cron job per
// entry in cfg.Jobs.
func NewScheduler(cfg *daemonconfig.Config, logger *slog.Logger, runFn RunFunc) (*Scheduler, error) {
	s := &Scheduler{logger: logger}

	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	for _, entry := range cfg.Jobs {
		job := &Job{Entry: entry}
		s.jobs = append(s.jobs, job)

		jobRef := job
		entryRef := entry
		if _, err := c.AddFunc(entry.Schedule, func() {
			s.executeJob(jobRef, entryRef, runFn)
		}); err != nil {
			return nil, fmt.Errorf("daemon: adding cron entry for job %q: %w", entry.Name, err)
		}

		logger.Info("registered job", "job", entry.Name, "url", entry.URL, "schedule", entry.Schedule)
	}

	s.cron = c
	return s, nil
}

// Start begins firing cron triggers.
func (s *Scheduler) Start() {
	s.logger.Info("scheduler started", "jobs", len(s.jobs))
	s.cron.Start()
}

// Stop stops the cron driver and waits (up to ctx's deadline) for any
// in-flight job to finish.
func (s *Scheduler) Stop(ctx context.Context) {
	s.logger.Info("scheduler stopping")
	stopCtx := s.cron.Stop()

	select {
	case <-stopCtx.Done():
		s.logger.Info("scheduler stopped gracefully")
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out")
	}
}

// Jobs returns the registered jobs in registration order, each carrying
// its LastResult, for a status endpoint or CLI summary to inspect.
func (s *Scheduler) Jobs() []*Job {
	return s.jobs
}

func (s *Scheduler) executeJob(job *Job, entry daemonconfig.JobEntry, runFn RunFunc) {
	jobLogger := s.logger.With("job", entry.Name)

	job.mu.Lock()
	if job.running {
		job.mu.Unlock()
		jobLogger.Warn("job already running, skipping scheduled trigger")
		job.LastResult = &JobResult{Status: "skipped", Timestamp: time.Now()}
		return
	}
	job.running = true
	job.mu.Unlock()

	defer func() {
		job.mu.Lock()
		job.running = false
		job.mu.Unlock()
	}()

	jobLogger.Info("scheduled job triggered")
	start := time.Now()

	err := runFn(context.Background(), entry, jobLogger, job)
	duration := time.Since(start)

	if err != nil {
		jobLogger.Error("job failed", "error", err, "duration", duration)
		job.LastResult = &JobResult{Status: "failed", DurationSeconds: duration.Seconds(), Timestamp: time.Now()}
		return
	}

	jobLogger.Info("job completed", "duration", duration)
	job.LastResult = &JobResult{Status: "completed", DurationSeconds: duration.Seconds(), Timestamp: time.Now()}
}
