// Copyright (c) 2026 Spry Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license
// that can be found in the LICENSE file.

// Package transport provides concrete engine.Opener implementations:
// HTTP(S), S3, and an SFTP placeholder.
package transport

import "errors"

// ErrNotImplemented is returned by SFTPReader.Open; the type exists so
// callers can wire a "sftp" subcommand without pretending the transport
// works.
var ErrNotImplemented = errors.New("transport: sftp support is not implemented")

// ErrBadStatus indicates the remote returned a non-2xx status for a
// request that is not itself the signal for retry (the Streamer treats
// all transport errors uniformly; this sentinel exists for logging).
var ErrBadStatus = errors.New("transport: unexpected response status")
