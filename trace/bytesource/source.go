// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package bytesource implements the byte-source abstraction that decouples
// the trace parser from its concrete compression codec (spec §4.1).
//
// A Source opens a file, detects its compression by magic bytes, and
// exposes byte-level reads plus a logical offset that can be saved and
// restored. Two implementations are provided: GzipSource, backed by
// compress/gzip, which cannot support offsets; and SnappySource, backed by
// a block-framed github.com/golang/snappy container, which can.
package bytesource

import (
	"io"

	"github.com/corylanou/apitrace/support/dataio"
)

// Source is a seekable-ish byte stream: forward reads are always available,
// and implementations that support it can save and restore a logical
// offset.
type Source interface {
	dataio.Reader

	// Skip discards n bytes without materializing them.
	Skip(n int64) error

	// CurrentOffset returns the source's logical position. For SnappySource
	// this is the decompressed stream offset; for GzipSource it is
	// gzip.Reader's equivalent forward-only position.
	CurrentOffset() uint64

	// SetCurrentOffset repositions the source. Returns ErrOffsetsUnsupported
	// if SupportsOffsets is false.
	SetCurrentOffset(off uint64) error

	// SupportsOffsets reports whether SetCurrentOffset can succeed at all.
	SupportsOffsets() bool

	// PercentRead returns advisory progress in [0, 100], based on the
	// compressed byte position over the compressed file size.
	PercentRead() int

	// Close releases the underlying file.
	Close() error
}

// readerAtSeeker is what both Source implementations need from the
// underlying file: ordinary reads plus the ability to reopen the
// compressed envelope from an arbitrary byte position.
type readerAtSeeker interface {
	io.ReaderAt
	io.ReadSeeker
}
