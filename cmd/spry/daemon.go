// Copyright (c) 2026 Spry Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license
// that can be found in the LICENSE file.

package main

import (
	"github.com/spf13/cobra"

	"github.com/ofek-spry/spry/internal/catalogue"
	"github.com/ofek-spry/spry/internal/daemon"
	"github.com/ofek-spry/spry/internal/daemonconfig"
	"github.com/ofek-spry/spry/internal/logging"
)

func newDaemonCmd() *cobra.Command {
	var configPath string
	var runLogDir string

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run scheduled transfer jobs from a YAML config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := daemonconfig.Load(configPath)
			if err != nil {
				return err
			}

			logger, closer := logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format, "")
			defer closer.Close()

			router := &schemeRouter{}
			return daemon.RunDaemon(configPath, cfg, logger, router, catalogue.NopSink{}, runLogDir)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to the daemon's YAML job file")
	cmd.Flags().StringVar(&runLogDir, "run-log-dir", "", "directory to hold per-run log files (disabled if empty)")
	cmd.MarkFlagRequired("config")

	return cmd
}
