// Copyright (c) 2026 Spry Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license
// that can be found in the LICENSE file.

package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ofek-spry/spry/internal/engine"
)

const defaultConnectTimeout = 30 * time.Second

// HTTPOpener implements engine.Opener over plain net/http, honoring
// per-request Range headers, an optional Credential, a TLS-verify flag,
// and connect/read timeouts. See SPEC_FULL.md §4.1.1.
type HTTPOpener struct{}

// NewHTTPOpener creates an HTTPOpener. There is no shared *http.Client:
// TLS verification and connect timeout are both per-request knobs on
// engine.OpenRequest, so each call builds its own transport.
func NewHTTPOpener() *HTTPOpener { return &HTTPOpener{} }

func (o *HTTPOpener) client(req engine.OpenRequest) *http.Client {
	connectTimeout := defaultConnectTimeout
	if req.ConnectTimeout > 0 {
		connectTimeout = time.Duration(req.ConnectTimeout) * time.Second
	}
	dialer := &net.Dialer{Timeout: connectTimeout}

	var headerTimeout time.Duration
	if req.ReadTimeout > 0 {
		headerTimeout = time.Duration(req.ReadTimeout) * time.Second
	}

	return &http.Client{
		Transport: &http.Transport{
			DialContext:           dialer.DialContext,
			ResponseHeaderTimeout: headerTimeout,
			TLSClientConfig:       &tls.Config{InsecureSkipVerify: !req.VerifyTLS},
		},
	}
}

func (o *HTTPOpener) newRequest(ctx context.Context, req engine.OpenRequest) (*http.Request, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, err
	}
	if req.Range.KnownSize {
		httpReq.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", req.Range.Start, req.Range.End))
	}
	if req.Credential != nil {
		req.Credential.Apply(ctx, func(key, value string) {
			httpReq.Header.Set(key, value)
		})
	}
	return httpReq, nil
}

// ProbeSize issues a streaming GET and closes the body immediately after
// reading headers, per spec.md §4.6 step 2.
func (o *HTTPOpener) ProbeSize(ctx context.Context, req engine.OpenRequest) (engine.Probe, error) {
	httpReq, err := o.newRequest(ctx, req)
	if err != nil {
		return engine.Probe{}, err
	}

	resp, err := o.client(req).Do(httpReq)
	if err != nil {
		return engine.Probe{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		return engine.Probe{}, fmt.Errorf("%w: %s", ErrBadStatus, resp.Status)
	}

	length := resp.ContentLength
	if length <= 0 {
		// net/http reports -1 for some chunked/proxied responses even
		// when the origin did send a concrete Content-Length header.
		length = parseContentLength(resp.Header.Get("Content-Length"))
	}

	return engine.Probe{
		ContentLength: length,
		RemoteName:    parseContentDispositionFilename(resp.Header.Get("Content-Disposition")),
		AcceptsRanges: strings.EqualFold(resp.Header.Get("Accept-Ranges"), "bytes"),
	}, nil
}

// Open issues the ranged GET and returns the live response body as a
// RangedReader; http.Response.Body already satisfies io.Reader+io.Closer.
func (o *HTTPOpener) Open(ctx context.Context, req engine.OpenRequest) (engine.RangedReader, error) {
	httpReq, err := o.newRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := o.client(req).Do(httpReq)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", ErrBadStatus, resp.Status)
	}
	return resp.Body, nil
}

// parseContentDispositionFilename extracts the filename= parameter from
// a Content-Disposition header value, stripping surrounding double
// quotes if present, per spec.md §4.6 step 2. It does not attempt full
// RFC 5987 extended-parameter decoding.
func parseContentDispositionFilename(header string) string {
	if header == "" {
		return ""
	}
	for _, part := range strings.Split(header, ";") {
		part = strings.TrimSpace(part)
		const prefix = "filename="
		if !strings.HasPrefix(strings.ToLower(part), prefix) {
			continue
		}
		name := strings.TrimSpace(part[len(prefix):])
		name = strings.Trim(name, `"`)
		return name
	}
	return ""
}

// parseContentLength is a defensive helper for servers that omit
// Content-Length from http.Response.ContentLength (e.g. chunked
// responses report -1) but still surface it as a plain header.
func parseContentLength(header string) int64 {
	n, err := strconv.ParseInt(header, 10, 64)
	if err != nil {
		return -1
	}
	return n
}
