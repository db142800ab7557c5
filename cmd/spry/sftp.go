// Copyright (c) 2026 Spry Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license
// that can be found in the LICENSE file.

package main

import (
	"github.com/spf13/cobra"

	"github.com/ofek-spry/spry/internal/transport"
)

func newSFTPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sftp",
		Short: "Transfer files over SFTP (not yet implemented)",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Download a file over SFTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return transport.ErrNotImplemented
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "send",
		Short: "Upload a file over SFTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return transport.ErrNotImplemented
		},
	})
	return cmd
}
