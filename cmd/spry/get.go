// Copyright (c) 2026 Spry Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license
// that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/ofek-spry/spry/internal/engine"
	"github.com/ofek-spry/spry/internal/logging"
	"github.com/ofek-spry/spry/internal/transport"
)

// schemeRouter dispatches a request to an HTTP or S3 opener depending on
// the request URL's scheme, so one Session can carry a batch of mixed
// http(s):// and s3:// transfers.
type schemeRouter struct {
	mu  sync.Mutex
	http engine.Opener
	s3  engine.Opener
}

func (r *schemeRouter) resolve(ctx context.Context, url string) (engine.Opener, error) {
	if strings.HasPrefix(url, "s3://") {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.s3 == nil {
			reader, err := transport.NewS3Reader(ctx)
			if err != nil {
				return nil, fmt.Errorf("initializing S3 client: %w", err)
			}
			r.s3 = reader
		}
		return r.s3, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.http == nil {
		r.http = transport.NewHTTPOpener()
	}
	return r.http, nil
}

func (r *schemeRouter) ProbeSize(ctx context.Context, req engine.OpenRequest) (engine.Probe, error) {
	o, err := r.resolve(ctx, req.URL)
	if err != nil {
		return engine.Probe{}, err
	}
	return o.ProbeSize(ctx, req)
}

func (r *schemeRouter) Open(ctx context.Context, req engine.OpenRequest) (engine.RangedReader, error) {
	o, err := r.resolve(ctx, req.URL)
	if err != nil {
		return nil, err
	}
	return o.Open(ctx, req)
}

type getFlags struct {
	urls    []string
	path    string
	persist bool
}

func newHTTPGetCmd(root *rootFlags, hf *httpFlags) *cobra.Command {
	gf := &getFlags{}

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Download one or more files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cred, err := resolveCredential(hf)
			if err != nil {
				return err
			}
			return runGet(root, gf, cred, !hf.insecure)
		},
	}

	cmd.Flags().StringArrayVarP(&gf.urls, "url", "u", nil, "source URL (http(s):// or s3://), repeatable")
	cmd.Flags().StringVarP(&gf.path, "path", "p", ".", "local destination file or directory")
	cmd.Flags().BoolVar(&gf.persist, "persist", false, "persistent-connection flag; has no effect, every request opens its own connection")
	cmd.MarkFlagRequired("url")

	return cmd
}

func runGet(root *rootFlags, gf *getFlags, cred engine.Credential, verifyTLS bool) error {
	router := &schemeRouter{}

	cfg := engine.SessionConfig{
		Concurrent: len(gf.urls),
		Opener:     router,
	}
	if root.silent {
		cfg.Logger, _ = logging.NewLogger("silent", "", "")
	}
	sess := engine.NewSession(cfg)

	for _, url := range gf.urls {
		sess.Get(engine.TransferRequest{
			URL:               url,
			LocalPath:         gf.path,
			Credential:        cred,
			VerifyTLS:         verifyTLS,
			Parts:             root.parts,
			SpeedLimitBPS:     root.limitBPS,
			ConnectTimeoutSec: root.timeout,
			ReadTimeoutSec:    root.timeout,
			Restart:           root.restart,
			KeepRemoteName:    true,
			PersistConnection: gf.persist,
		})
	}

	sess.Start()

	if !root.silent {
		stop := renderProgress(sess)
		defer stop()
	}

	sess.Wait()

	if len(sess.Errors()) > 0 {
		return fmt.Errorf("%d of %d transfers did not complete successfully", len(sess.Errors()), len(gf.urls))
	}
	return nil
}

// renderProgress polls the Session's aggregate tracker on a ticker and
// draws a single schollz/progressbar/v3 bar for the whole batch. It
// returns a stop function that finalizes the bar.
func renderProgress(sess *engine.Session) func() {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(250 * time.Millisecond)
		defer ticker.Stop()
		bar := newSessionBar()
		for {
			select {
			case <-done:
				bar.finish()
				return
			case <-ticker.C:
				bps, eta, total, size := sess.Tracker().GetProgress()
				bar.update(bps, eta, total, size)
			}
		}
	}()
	return func() { close(done) }
}
