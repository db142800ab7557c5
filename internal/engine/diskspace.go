// Copyright (c) 2026 Spry Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license
// that can be found in the LICENSE file.

package engine

import (
	"github.com/shirou/gopsutil/v3/disk"
)

// FreeBytes reports the free space available on the filesystem holding
// dir, grounded on the agent's system monitor use of gopsutil's disk
// package. Callers pass the destination's parent directory.
func FreeBytes(dir string) (uint64, error) {
	usage, err := disk.Usage(dir)
	if err != nil {
		return 0, err
	}
	return usage.Free, nil
}
