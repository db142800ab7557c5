// Copyright (c) 2026 Spry Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license
// that can be found in the LICENSE file.

package transport

import (
	"context"
	"errors"
	"testing"

	"github.com/ofek-spry/spry/internal/engine"
)

func TestSFTPReader_NotImplemented(t *testing.T) {
	r := NewSFTPReader()

	if _, err := r.ProbeSize(context.Background(), engine.OpenRequest{}); !errors.Is(err, ErrNotImplemented) {
		t.Errorf("ProbeSize error = %v, want ErrNotImplemented", err)
	}
	if _, err := r.Open(context.Background(), engine.OpenRequest{}); !errors.Is(err, ErrNotImplemented) {
		t.Errorf("Open error = %v, want ErrNotImplemented", err)
	}
}
