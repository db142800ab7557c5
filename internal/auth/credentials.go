// Copyright (c) 2026 Spry Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license
// that can be found in the LICENSE file.

// Package auth implements engine.Credential for the transports in
// internal/transport.
package auth

import (
	"context"
	"encoding/base64"
)

// Basic applies HTTP Basic authentication.
type Basic struct {
	Username string
	Password string
}

// Apply sets the Authorization header's Basic scheme value.
func (b Basic) Apply(ctx context.Context, set func(key, value string)) {
	raw := b.Username + ":" + b.Password
	set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(raw)))
}

// Bearer applies a bearer token, for sources fronted by an OAuth-style
// gateway or a presigned-adjacent token scheme.
type Bearer struct {
	Token string
}

// Apply sets the Authorization header's Bearer scheme value.
func (b Bearer) Apply(ctx context.Context, set func(key, value string)) {
	set("Authorization", "Bearer "+b.Token)
}

// Header applies an arbitrary, pre-formatted header (e.g. a custom API
// key header some private mirrors use instead of Authorization).
type Header struct {
	Name  string
	Value string
}

// Apply sets the configured header verbatim.
func (h Header) Apply(ctx context.Context, set func(key, value string)) {
	set(h.Name, h.Value)
}

// None applies no credential at all — the zero value for an anonymous
// transfer request.
type None struct{}

// Apply is a no-op.
func (None) Apply(ctx context.Context, set func(key, value string)) {}
