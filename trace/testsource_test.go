// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package trace

import (
	"io"

	"github.com/corylanou/apitrace/support/logging"
	"github.com/corylanou/apitrace/trace/bytesource"
)

// memSource is a minimal in-memory bytesource.Source used to drive Parser
// and value/signature parsing directly in tests, without routing through a
// real gzip or Snappy container.
type memSource struct {
	buf []byte
	pos int
}

var _ bytesource.Source = (*memSource)(nil)

func newMemSource(b []byte) *memSource { return &memSource{buf: b} }

func (s *memSource) Read(p []byte) (int, error) {
	if s.pos >= len(s.buf) {
		return 0, io.EOF
	}
	n := copy(p, s.buf[s.pos:])
	s.pos += n
	if s.pos >= len(s.buf) {
		return n, io.EOF
	}
	return n, nil
}

func (s *memSource) ReadByte() (byte, error) {
	if s.pos >= len(s.buf) {
		return 0, io.EOF
	}
	b := s.buf[s.pos]
	s.pos++
	return b, nil
}

func (s *memSource) Skip(n int64) error {
	s.pos += int(n)
	if s.pos > len(s.buf) {
		s.pos = len(s.buf)
		return io.EOF
	}
	return nil
}

func (s *memSource) CurrentOffset() uint64 { return uint64(s.pos) }

func (s *memSource) SetCurrentOffset(off uint64) error {
	if off > uint64(len(s.buf)) {
		return bytesource.ErrOffsetsUnsupported
	}
	s.pos = int(off)
	return nil
}

func (s *memSource) SupportsOffsets() bool { return true }

func (s *memSource) PercentRead() int {
	if len(s.buf) == 0 {
		return 100
	}
	return int(100 * s.pos / len(s.buf))
}

func (s *memSource) Close() error { return nil }

// newTestParser builds a Parser directly over body, skipping Open's file
// detection and header read, for tests that exercise parsing logic below
// the byte-source layer.
func newTestParser(body []byte, version uint64) *Parser {
	return &Parser{
		source:     newMemSource(body),
		logger:     logging.Nop,
		maxVersion: TraceVersion,
		version:    version,
	}
}
