// Copyright (c) 2026 Spry Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license
// that can be found in the LICENSE file.

// Package daemonconfig loads the YAML configuration for "spry daemon":
// a set of named, cron-scheduled transfer jobs plus the retry/logging
// knobs the daemon needs between runs.
package daemonconfig

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ofek-spry/spry/internal/cliutil"
)

// Config is the full contents of a daemon YAML file.
type Config struct {
	Agent      AgentInfo   `yaml:"agent"`
	Concurrent int         `yaml:"concurrent"`
	Jobs       []JobEntry  `yaml:"jobs"`
	Retry      RetryInfo   `yaml:"retry"`
	Logging    LoggingInfo `yaml:"logging"`
}

// AgentInfo identifies the daemon instance in log output.
type AgentInfo struct {
	Name string `yaml:"name"`
}

// JobEntry is one named, recurring transfer.
type JobEntry struct {
	Name           string `yaml:"name"`
	URL            string `yaml:"url"`
	Path           string `yaml:"path"`
	Schedule       string `yaml:"schedule"` // standard 5-field cron expression
	Parts          uint32 `yaml:"parts"`
	Limit          string `yaml:"limit"` // e.g. "10MiB", parsed into LimitBPS
	LimitBPS       uint64 `yaml:"-"`
	Insecure       bool   `yaml:"insecure"`
	KeepRemoteName bool   `yaml:"keep_remote_name"`
	Username       string `yaml:"username"`
	Password       string `yaml:"password"`
	ConnectTimeout uint32 `yaml:"connect_timeout"` // seconds, 0 = engine default
	ReadTimeout    uint32 `yaml:"read_timeout"`    // seconds, 0 = engine default
}

// RetryInfo configures exponential backoff between failed job attempts.
type RetryInfo struct {
	MaxAttempts  int           `yaml:"max_attempts"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`
}

// LoggingInfo configures the base logger the daemon runs under.
type LoggingInfo struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads and validates a daemon YAML file, parsing each job's Limit
// string into bytes-per-second and filling in defaults for anything the
// file left zero.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("daemonconfig: reading %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("daemonconfig: parsing %s: %w", path, err)
	}

	if cfg.Concurrent < 1 {
		cfg.Concurrent = 1
	}
	if cfg.Retry.MaxAttempts < 1 {
		cfg.Retry.MaxAttempts = 1
	}
	if cfg.Retry.InitialDelay <= 0 {
		cfg.Retry.InitialDelay = 5 * time.Second
	}
	if cfg.Retry.MaxDelay <= 0 {
		cfg.Retry.MaxDelay = 5 * time.Minute
	}

	for i := range cfg.Jobs {
		job := &cfg.Jobs[i]
		if job.Name == "" {
			return nil, fmt.Errorf("daemonconfig: job %d is missing a name", i)
		}
		if job.URL == "" {
			return nil, fmt.Errorf("daemonconfig: job %q is missing a url", job.Name)
		}
		if job.Schedule == "" {
			return nil, fmt.Errorf("daemonconfig: job %q is missing a schedule", job.Name)
		}
		if job.Parts == 0 {
			job.Parts = 1
		}
		if job.Limit != "" {
			bps, err := cliutil.ParseByteRate(job.Limit)
			if err != nil {
				return nil, fmt.Errorf("daemonconfig: job %q limit: %w", job.Name, err)
			}
			job.LimitBPS = bps
		}
	}

	return &cfg, nil
}
