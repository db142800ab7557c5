// Copyright (c) 2026 Spry Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license
// that can be found in the LICENSE file.

// Command spry is a segmented HTTP/S3 file-transfer accelerator.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ofek-spry/spry/internal/cliutil"
)

// rootFlags holds the persistent flags shared by every transfer
// subcommand (parts, rate limit, timeout, silent, restart).
type rootFlags struct {
	parts    uint32
	limit    string
	limitBPS uint64
	timeout  uint32
	silent   bool
	restart  bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "spry",
		Short: "Segmented, resumable file transfers over HTTP(S) and S3",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if flags.limit == "" {
				return nil
			}
			bps, err := cliutil.ParseByteRate(flags.limit)
			if err != nil {
				return fmt.Errorf("--limit: %w", err)
			}
			flags.limitBPS = bps
			return nil
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().Uint32VarP(&flags.parts, "parts", "p", 4, "number of parallel segments per file")
	root.PersistentFlags().StringVarP(&flags.limit, "limit", "l", "", "speed limit, e.g. \"10MiB\" or \"500KiBps\"")
	root.PersistentFlags().Uint32VarP(&flags.timeout, "timeout", "t", 20, "per-segment inactivity timeout, in seconds")
	root.PersistentFlags().BoolVarP(&flags.silent, "silent", "s", false, "suppress progress bar and logging")
	root.PersistentFlags().BoolVar(&flags.restart, "restart", false, "restart transfers from scratch (every transfer already starts from scratch, so this has no further effect)")

	root.AddCommand(newHTTPCmd(flags))
	root.AddCommand(newSFTPCmd())
	root.AddCommand(newDaemonCmd())

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "spry:", err)
		os.Exit(1)
	}
}
