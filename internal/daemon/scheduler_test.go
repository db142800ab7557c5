// Copyright (c) 2026 Spry Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license
// that can be found in the LICENSE file.

package daemon

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/ofek-spry/spry/internal/daemonconfig"
)

func TestNewScheduler_BadCronExpressionErrors(t *testing.T) {
	cfg := &daemonconfig.Config{Jobs: []daemonconfig.JobEntry{
		{Name: "bad", URL: "https://example.invalid/f", Schedule: "not a cron expression"},
	}}
	if _, err := NewScheduler(cfg, testLogger(), func(context.Context, daemonconfig.JobEntry, *slog.Logger, *Job) error { return nil }); err == nil {
		t.Error("expected error for invalid cron expression, got nil")
	}
}

func TestScheduler_ExecuteJobSkipsWhileRunning(t *testing.T) {
	cfg := &daemonconfig.Config{Jobs: []daemonconfig.JobEntry{
		{Name: "slow", URL: "https://example.invalid/f", Schedule: "@every 1h"},
	}}

	started := make(chan struct{})
	release := make(chan struct{})
	var calls int
	var mu sync.Mutex

	runFn := func(ctx context.Context, entry daemonconfig.JobEntry, logger *slog.Logger, job *Job) error {
		mu.Lock()
		calls++
		mu.Unlock()
		close(started)
		<-release
		return nil
	}

	sched, err := NewScheduler(cfg, testLogger(), runFn)
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}

	job := sched.Jobs()[0]
	go sched.executeJob(job, job.Entry, runFn)

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("first execution never started")
	}

	// A second trigger while the first is still running must be skipped,
	// not queued behind it.
	sched.executeJob(job, job.Entry, runFn)

	mu.Lock()
	got := calls
	mu.Unlock()
	if got != 1 {
		t.Errorf("calls = %d, want 1 (second trigger should have been skipped)", got)
	}
	if job.LastResult == nil || job.LastResult.Status != "skipped" {
		t.Errorf("LastResult = %+v, want status=skipped", job.LastResult)
	}

	close(release)
}
