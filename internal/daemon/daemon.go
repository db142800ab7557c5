// Copyright (c) 2026 Spry Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license
// that can be found in the LICENSE file.

package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ofek-spry/spry/internal/auth"
	"github.com/ofek-spry/spry/internal/catalogue"
	"github.com/ofek-spry/spry/internal/daemonconfig"
	"github.com/ofek-spry/spry/internal/engine"
	"github.com/ofek-spry/spry/internal/logging"
)

// RunDaemon runs the scheduler until it receives SIGTERM or SIGINT.
// SIGHUP reloads configPath without downtime, swapping in a fresh
// Scheduler built from the reloaded jobs.
func RunDaemon(configPath string, cfg *daemonconfig.Config, logger *slog.Logger, opener engine.Opener, sink catalogue.Sink, runLogDir string) error {
	logger.Info("starting daemon", "agent", cfg.Agent.Name, "jobs", len(cfg.Jobs))

	runFn := func(ctx context.Context, entry daemonconfig.JobEntry, entryLogger *slog.Logger, job *Job) error {
		return RunJobWithRetry(ctx, cfg, entry, entryLogger, job, opener, sink, runLogDir)
	}

	sched, err := NewScheduler(cfg, logger, runFn)
	if err != nil {
		return fmt.Errorf("daemon: creating scheduler: %w", err)
	}
	sched.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGHUP)

	for {
		sig := <-sigCh

		if sig == syscall.SIGHUP {
			logger.Info("received SIGHUP, reloading config", "path", configPath)

			newCfg, loadErr := daemonconfig.Load(configPath)
			if loadErr != nil {
				logger.Error("reload failed, keeping current config", "error", loadErr)
				continue
			}

			stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
			sched.Stop(stopCtx)
			stopCancel()

			cfg = newCfg
			runFn = func(ctx context.Context, entry daemonconfig.JobEntry, entryLogger *slog.Logger, job *Job) error {
				return RunJobWithRetry(ctx, cfg, entry, entryLogger, job, opener, sink, runLogDir)
			}
			sched, err = NewScheduler(cfg, logger, runFn)
			if err != nil {
				logger.Error("failed to rebuild scheduler after reload", "error", err)
				return fmt.Errorf("daemon: reload scheduler: %w", err)
			}
			sched.Start()

			logger.Info("config reloaded successfully", "agent", cfg.Agent.Name, "jobs", len(cfg.Jobs))
			continue
		}

		logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		sched.Stop(ctx)
		cancel()
		return nil
	}
}

// RunJobWithRetry runs one job entry to completion with exponential
// backoff between failed attempts, up to cfg.Retry.MaxAttempts. Each
// attempt gets its own per-run log file via logging.NewRunLogger, which
// is removed again on success.
func RunJobWithRetry(ctx context.Context, cfg *daemonconfig.Config, entry daemonconfig.JobEntry, logger *slog.Logger, job *Job, opener engine.Opener, sink catalogue.Sink, runLogDir string) error {
	var lastErr error

	for attempt := 0; attempt < cfg.Retry.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := calculateBackoff(attempt, cfg.Retry.InitialDelay, cfg.Retry.MaxDelay)
			logger.Info("retrying job", "attempt", attempt+1, "delay", delay)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		err := runJobOnce(ctx, entry, logger, opener, sink, runLogDir)
		if err == nil {
			return nil
		}

		lastErr = err
		logger.Warn("job attempt failed", "attempt", attempt+1, "error", err)
	}

	return fmt.Errorf("daemon: all %d attempts for job %q failed, last error: %w", cfg.Retry.MaxAttempts, entry.Name, lastErr)
}

// runJobOnce drives a single Session carrying exactly one TransferRequest
// through to completion (or failure), and reports it through sink.
func runJobOnce(ctx context.Context, entry daemonconfig.JobEntry, logger *slog.Logger, opener engine.Opener, sink catalogue.Sink, runLogDir string) error {
	runID := time.Now().UTC().Format("20060102T150405.000000000")

	runLogger, closer, logPath, err := logging.NewRunLogger(logger, runLogDir, entry.Name, runID)
	if err != nil {
		return fmt.Errorf("daemon: opening run log: %w", err)
	}
	defer closer.Close()

	sess := engine.NewSession(engine.SessionConfig{
		Concurrent: 1,
		Opener:     opener,
		Sink:       sink,
		Logger:     runLogger,
	})

	fs := sess.Get(buildTransferRequest(entry))
	sess.Start()
	sess.Wait()

	if len(sess.Errors()) > 0 || !fs.Success() {
		return fmt.Errorf("daemon: job %q did not complete successfully (run log: %s)", entry.Name, logPath)
	}

	logging.RemoveRunLog(runLogDir, entry.Name, runID)
	return nil
}

// buildTransferRequest adapts a configured job entry into the engine's
// TransferRequest shape, resolving its credential (if any) via
// internal/auth.
func buildTransferRequest(entry daemonconfig.JobEntry) engine.TransferRequest {
	var cred engine.Credential = auth.None{}
	if entry.Username != "" {
		cred = auth.Basic{Username: entry.Username, Password: entry.Password}
	}

	return engine.TransferRequest{
		URL:               entry.URL,
		LocalPath:         entry.Path,
		Credential:        cred,
		VerifyTLS:         !entry.Insecure,
		Parts:             entry.Parts,
		SpeedLimitBPS:     entry.LimitBPS,
		ConnectTimeoutSec: entry.ConnectTimeout,
		ReadTimeoutSec:    entry.ReadTimeout,
		KeepRemoteName:    entry.KeepRemoteName,
	}
}

// calculateBackoff returns initialDelay doubled once per attempt past
// the first, capped at maxDelay.
func calculateBackoff(attempt int, initialDelay, maxDelay time.Duration) time.Duration {
	delay := time.Duration(float64(initialDelay) * math.Pow(2, float64(attempt-1)))
	if delay > maxDelay {
		delay = maxDelay
	}
	return delay
}
