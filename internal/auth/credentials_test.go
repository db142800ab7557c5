// Copyright (c) 2026 Spry Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license
// that can be found in the LICENSE file.

package auth

import (
	"context"
	"testing"
)

func collectHeaders(c interface {
	Apply(ctx context.Context, set func(key, value string))
}) map[string]string {
	out := make(map[string]string)
	c.Apply(context.Background(), func(k, v string) { out[k] = v })
	return out
}

func TestBasic_Apply(t *testing.T) {
	headers := collectHeaders(Basic{Username: "alice", Password: "hunter2"})
	want := "Basic YWxpY2U6aHVudGVyMg=="
	if headers["Authorization"] != want {
		t.Errorf("Authorization = %q, want %q", headers["Authorization"], want)
	}
}

func TestBearer_Apply(t *testing.T) {
	headers := collectHeaders(Bearer{Token: "abc123"})
	if headers["Authorization"] != "Bearer abc123" {
		t.Errorf("Authorization = %q, want Bearer abc123", headers["Authorization"])
	}
}

func TestHeader_Apply(t *testing.T) {
	headers := collectHeaders(Header{Name: "X-Api-Key", Value: "secret"})
	if headers["X-Api-Key"] != "secret" {
		t.Errorf("X-Api-Key = %q, want secret", headers["X-Api-Key"])
	}
}

func TestNone_Apply(t *testing.T) {
	headers := collectHeaders(None{})
	if len(headers) != 0 {
		t.Errorf("expected no headers, got %v", headers)
	}
}
