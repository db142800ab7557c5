// Copyright (c) 2026 Spry Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license
// that can be found in the LICENSE file.

package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

// maxKeptRunLogs bounds how many run log files NewRunLogger leaves behind
// per job directory. A daemon job fires on a cron schedule indefinitely,
// so unlike a one-shot run, a job that keeps failing (and so never hits
// RemoveRunLog) would otherwise accumulate one log file per scheduled
// tick forever; pruning the oldest files down to this cap keeps that
// bounded while still leaving enough recent failures around to debug.
const maxKeptRunLogs = 20

// fanOutHandler is a slog.Handler that dispatches every record to two
// handlers. NewRunLogger uses it to write simultaneously to the global
// logger and a run's dedicated log file.
type fanOutHandler struct {
	primary   slog.Handler
	secondary slog.Handler
}

func (h *fanOutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.primary.Enabled(ctx, level) || h.secondary.Enabled(ctx, level)
}

func (h *fanOutHandler) Handle(ctx context.Context, r slog.Record) error {
	// Check each handler's Enabled() individually so a DEBUG record isn't
	// forwarded to a primary handler configured for INFO-or-above.
	if h.primary.Enabled(ctx, r.Level) {
		if err := h.primary.Handle(ctx, r); err != nil {
			return err
		}
	}
	// A write failure on the run's log file must not suppress the global
	// log.
	if h.secondary.Enabled(ctx, r.Level) {
		_ = h.secondary.Handle(ctx, r)
	}
	return nil
}

func (h *fanOutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &fanOutHandler{
		primary:   h.primary.WithAttrs(attrs),
		secondary: h.secondary.WithAttrs(attrs),
	}
}

func (h *fanOutHandler) WithGroup(name string) slog.Handler {
	return &fanOutHandler{
		primary:   h.primary.WithGroup(name),
		secondary: h.secondary.WithGroup(name),
	}
}

// NewRunLogger creates a logger that writes to both the base (global)
// logger and a dedicated file for one daemon job run:
//
//	{runLogDir}/{jobName}/{runID}.log
//
// It returns the enriched logger, an io.Closer that must be closed
// (defer) when the run ends, and the created file's path (absolute only
// if runLogDir is). If
// runLogDir is empty, it returns the base logger unmodified (a no-op).
//
// Creating a file also prunes the job's directory down to the
// maxKeptRunLogs most recent entries, since a cron-scheduled job that
// keeps failing never reaches RemoveRunLog.
func NewRunLogger(baseLogger *slog.Logger, runLogDir, jobName, runID string) (*slog.Logger, io.Closer, string, error) {
	if runLogDir == "" {
		return baseLogger, io.NopCloser(nil), "", nil
	}

	dir := filepath.Join(runLogDir, jobName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, nil, "", fmt.Errorf("creating run log directory %s: %w", dir, err)
	}

	logPath := filepath.Join(dir, runID+".log")
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, "", fmt.Errorf("opening run log file %s: %w", logPath, err)
	}

	// The run's own file always captures at DEBUG in JSON, independent of
	// the base logger's configured level.
	fileHandler := slog.NewJSONHandler(f, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})

	combined := &fanOutHandler{
		primary:   baseLogger.Handler(),
		secondary: fileHandler,
	}

	pruneRunLogs(dir, maxKeptRunLogs)

	return slog.New(combined), f, logPath, nil
}

// pruneRunLogs removes the oldest *.log files in dir beyond keep. Run IDs
// are timestamp-formatted, so lexicographic order is chronological order.
// Failures here are logged-nowhere-but-ignored: pruning is best-effort
// housekeeping, not something a job run should fail over.
func pruneRunLogs(dir string, keep int) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".log" {
			names = append(names, e.Name())
		}
	}
	if len(names) <= keep {
		return
	}

	sort.Strings(names)
	for _, name := range names[:len(names)-keep] {
		os.Remove(filepath.Join(dir, name))
	}
}

// RemoveRunLog deletes a finished run's log file. It is a no-op if
// runLogDir is empty or the file does not exist — used after a
// successful daemon job run to avoid accumulating logs for the common
// case, keeping only failures around for inspection.
func RemoveRunLog(runLogDir, jobName, runID string) {
	if runLogDir == "" {
		return
	}
	logPath := filepath.Join(runLogDir, jobName, runID+".log")
	os.Remove(logPath)
}
