// Copyright (c) 2026 Spry Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license
// that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ofek-spry/spry/internal/auth"
	"github.com/ofek-spry/spry/internal/engine"
)

// httpFlags holds flags scoped to the "http" command tree.
type httpFlags struct {
	username string
	password string
	authType string
	insecure bool
}

func newHTTPCmd(root *rootFlags) *cobra.Command {
	hf := &httpFlags{authType: "basic"}

	cmd := &cobra.Command{
		Use:   "http",
		Short: "Transfer files over HTTP(S)",
	}
	cmd.PersistentFlags().StringVar(&hf.username, "username", "", "basic auth username")
	cmd.PersistentFlags().StringVar(&hf.password, "password", "", "basic auth password (prompted if --username is set and this is empty)")
	cmd.PersistentFlags().StringVar(&hf.authType, "auth", "basic", "authentication scheme: basic (digest, oauth1, kerberos and ntlm are rejected as not implemented)")
	cmd.PersistentFlags().BoolVar(&hf.insecure, "insecure", false, "skip TLS certificate verification")

	cmd.AddCommand(newHTTPGetCmd(root, hf))
	cmd.AddCommand(newHTTPSendCmd())
	return cmd
}

func newHTTPSendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send",
		Short: "Upload a file over HTTP(S)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return errors.New("http send: not implemented")
		},
	}
}

// resolveCredential builds the engine.Credential for hf, prompting for a
// password on the controlling terminal if a username was given without
// one.
func resolveCredential(hf *httpFlags) (engine.Credential, error) {
	if hf.username == "" {
		return auth.None{}, nil
	}

	switch hf.authType {
	case "basic":
		password := hf.password
		if password == "" {
			fmt.Fprintf(os.Stderr, "Password for %s: ", hf.username)
			raw, err := term.ReadPassword(int(os.Stdin.Fd()))
			fmt.Fprintln(os.Stderr)
			if err != nil {
				return nil, fmt.Errorf("reading password: %w", err)
			}
			password = string(raw)
		}
		return auth.Basic{Username: hf.username, Password: password}, nil
	default:
		return nil, fmt.Errorf("--auth %q: not implemented", hf.authType)
	}
}

