// Copyright (c) 2026 Spry Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license
// that can be found in the LICENSE file.

package logging

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewRunLogger_Disabled(t *testing.T) {
	base := slog.New(slog.NewTextHandler(os.Stderr, nil))

	logger, closer, path, err := NewRunLogger(base, "", "daily-sync", "run-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer closer.Close()

	if logger != base {
		t.Error("expected base logger when runLogDir is empty")
	}
	if path != "" {
		t.Errorf("expected empty path, got %q", path)
	}
}

func TestNewRunLogger_CreatesFileAndLogs(t *testing.T) {
	dir := t.TempDir()
	var baseBuf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&baseBuf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	logger, closer, logPath, err := NewRunLogger(base, dir, "daily-sync", "run-abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	jobDir := filepath.Join(dir, "daily-sync")
	if _, err := os.Stat(jobDir); os.IsNotExist(err) {
		t.Fatalf("job dir not created: %s", jobDir)
	}

	expectedPath := filepath.Join(jobDir, "run-abc.log")
	if logPath != expectedPath {
		t.Errorf("expected path %q, got %q", expectedPath, logPath)
	}

	logger.Info("test message", "key", "value")
	closer.Close()

	if !strings.Contains(baseBuf.String(), "test message") {
		t.Errorf("log message not found in base handler output: %s", baseBuf.String())
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("reading run log file: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "test message") {
		t.Errorf("log message not found in run file: %s", content)
	}
	if !strings.Contains(content, `"key":"value"`) {
		t.Errorf("structured key not found in run file: %s", content)
	}
}

func TestNewRunLogger_DebugInFileInfoInBase(t *testing.T) {
	dir := t.TempDir()

	var baseBuf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&baseBuf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	logger, closer, logPath, err := NewRunLogger(base, dir, "daily-sync", "run-debug")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logger.Debug("debug only message")
	logger.Info("info for both")

	closer.Close()

	if strings.Contains(baseBuf.String(), "debug only message") {
		t.Error("DEBUG message should not appear in base handler with INFO level")
	}
	if !strings.Contains(baseBuf.String(), "info for both") {
		t.Error("INFO message missing from base handler")
	}

	data, _ := os.ReadFile(logPath)
	content := string(data)
	if !strings.Contains(content, "debug only message") {
		t.Errorf("DEBUG message missing from run file: %s", content)
	}
	if !strings.Contains(content, "info for both") {
		t.Errorf("INFO message missing from run file: %s", content)
	}
}

func TestRemoveRunLog(t *testing.T) {
	dir := t.TempDir()
	jobDir := filepath.Join(dir, "daily-sync")
	os.MkdirAll(jobDir, 0755)

	logPath := filepath.Join(jobDir, "run-to-remove.log")
	os.WriteFile(logPath, []byte("test"), 0644)

	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		t.Fatal("setup failed: log file not created")
	}

	RemoveRunLog(dir, "daily-sync", "run-to-remove")

	if _, err := os.Stat(logPath); !os.IsNotExist(err) {
		t.Error("run log file should have been removed")
	}
}

func TestRemoveRunLog_NoOpWhenEmpty(t *testing.T) {
	RemoveRunLog("", "daily-sync", "run")
}

func TestRemoveRunLog_NoOpWhenFileMissing(t *testing.T) {
	RemoveRunLog(t.TempDir(), "daily-sync", "nonexistent-run")
}

func TestNewRunLogger_PrunesOldestBeyondCap(t *testing.T) {
	dir := t.TempDir()
	jobDir := filepath.Join(dir, "daily-sync")
	os.MkdirAll(jobDir, 0755)

	base := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))

	// Seed maxKeptRunLogs pre-existing run logs, oldest-named first.
	for i := 0; i < maxKeptRunLogs; i++ {
		name := filepath.Join(jobDir, runIDForTest(i)+".log")
		if err := os.WriteFile(name, []byte("x"), 0644); err != nil {
			t.Fatalf("seeding run log %d: %v", i, err)
		}
	}

	_, closer, _, err := NewRunLogger(base, dir, "daily-sync", runIDForTest(maxKeptRunLogs))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	closer.Close()

	entries, err := os.ReadDir(jobDir)
	if err != nil {
		t.Fatalf("reading job dir: %v", err)
	}
	if len(entries) != maxKeptRunLogs {
		t.Fatalf("expected %d run logs after pruning, got %d", maxKeptRunLogs, len(entries))
	}

	if _, err := os.Stat(filepath.Join(jobDir, runIDForTest(0)+".log")); !os.IsNotExist(err) {
		t.Error("oldest run log should have been pruned")
	}
	if _, err := os.Stat(filepath.Join(jobDir, runIDForTest(maxKeptRunLogs)+".log")); err != nil {
		t.Error("newest run log should still exist")
	}
}

func runIDForTest(i int) string {
	return fmt.Sprintf("run-%03d", i)
}

func TestNewRunLogger_WithAttrs(t *testing.T) {
	dir := t.TempDir()
	var baseBuf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&baseBuf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	logger, closer, logPath, err := NewRunLogger(base, dir, "daily-sync", "run-attrs")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	enriched := logger.With("run", "run-attrs", "mode", "parallel")
	enriched.Info("enriched message")

	closer.Close()

	if !strings.Contains(baseBuf.String(), "run-attrs") {
		t.Error("run attr missing from base handler")
	}

	data, _ := os.ReadFile(logPath)
	content := string(data)
	if !strings.Contains(content, "run-attrs") {
		t.Errorf("run attr missing from run file: %s", content)
	}
	if !strings.Contains(content, "parallel") {
		t.Errorf("mode attr missing from run file: %s", content)
	}
}
