// Copyright (c) 2026 Spry Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/ofek-spry/spry/internal/cliutil"
)

// sessionBar wraps a schollz/progressbar/v3 bar driven by a Session's
// aggregate ProgressTracker. The bar starts indeterminate (the aggregate
// size isn't known until a file's probe completes) and its maximum is set
// to the aggregate size whenever that size is nonzero and has changed.
type sessionBar struct {
	bar *progressbar.ProgressBar
	max uint64
}

func newSessionBar() *sessionBar {
	bar := progressbar.NewOptions64(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowBytes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionSetDescription("spry"),
	)
	return &sessionBar{bar: bar}
}

func (b *sessionBar) update(bps, etaSeconds float64, total, size uint64) {
	if size > 0 && size != b.max {
		b.max = size
		b.bar.ChangeMax64(int64(size))
	}
	b.bar.Describe(fmt.Sprintf("spry  %s  ETA %s", cliutil.FormatRate(bps), cliutil.FormatETA(etaSeconds)))
	b.bar.Set64(int64(total))
}

func (b *sessionBar) finish() {
	b.bar.Finish()
	fmt.Fprintln(os.Stderr)
}
