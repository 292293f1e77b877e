// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package trace

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrVersionUnsupported is the sentinel Open's returned error wraps when the
// trace header declares a format version newer than this package
// understands. Callers match it with errors.Is; the error's Error() text is
// produced by VersionUnsupportedError, not this sentinel's own message.
var ErrVersionUnsupported = errors.New("unsupported trace format version")

// ErrBookmarkUnsupported is returned by SetBookmark (and GetBookmark) when
// the underlying byte source does not support offsets (spec §4.6, gzip
// streams).
var ErrBookmarkUnsupported = errors.New("bookmark operations unsupported on this stream")

// ErrParserClosed is returned by operations attempted on a closed Parser.
var ErrParserClosed = errors.New("parser is closed")

// FatalError reports an unrecoverable framing error: an unknown event byte
// or an unknown value tag. Per spec §4.4/§7, the format is not
// self-synchronizing once a tag is wrong, so every subsequent byte in the
// stream would be garbage; ParseCall returns a FatalError instead of
// attempting to continue, and the caller must stop calling ParseCall.
//
// The original C++ parser calls exit(1) on this condition; a library may not
// take its host process down, so this type carries the same diagnostic
// information up through a normal error return instead.
type FatalError struct {
	// Reason is a short, human-readable description, e.g. "unknown event" or
	// "unknown type".
	Reason string
	// Byte is the offending tag byte.
	Byte int
	// Offset is the byte source's logical offset at the point of failure.
	Offset uint64
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("error: %s %d (at offset %d)", e.Reason, e.Byte, e.Offset)
}

// VersionUnsupportedError is returned by Open when the trace header's
// version exceeds what this package accepts. Its Error() text matches
// trace_parser.cpp's diagnostic shape verbatim: "error: unsupported trace
// format version %d".
type VersionUnsupportedError struct {
	// Version is the rejected header version.
	Version uint64
}

func (e *VersionUnsupportedError) Error() string {
	return fmt.Sprintf("error: unsupported trace format version %d", e.Version)
}

// Unwrap exposes ErrVersionUnsupported so callers can match with errors.Is.
func (e *VersionUnsupportedError) Unwrap() error { return ErrVersionUnsupported }

// Cause exposes ErrVersionUnsupported to github.com/pkg/errors.Cause, the
// style used throughout this package for error wrapping.
func (e *VersionUnsupportedError) Cause() error { return ErrVersionUnsupported }
