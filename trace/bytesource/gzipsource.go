// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package bytesource

import (
	"bufio"
	"compress/gzip"
	"io"
	"os"

	"github.com/pkg/errors"
)

// gzipBufferSize mirrors the teacher's rawStreamReader buffer size for the
// underlying file reader.
const gzipBufferSize = 1024 * 1024 * 4

// GzipSource reads a gzip-compressed trace file.
//
// GzipSource does not support offsets (SupportsOffsets returns false):
// compress/gzip's Reader is forward-only, matching the original
// ZLibFile::supportsOffsets() == false (trace_file_zlib.cpp).
// SetCurrentOffset fails with ErrOffsetsUnsupported, and the trace Parser's
// bookmark operations over a GzipSource fail with ErrBookmarkUnsupported,
// rather than silently reading from the wrong position.
type GzipSource struct {
	f  *os.File
	br *bufio.Reader
	gz *gzip.Reader

	fileSize int64
	pos      uint64
}

var _ Source = (*GzipSource)(nil)

func newGzipSource(f *os.File) (*GzipSource, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, errors.Wrap(err, "stat trace file")
	}

	br := bufio.NewReaderSize(f, gzipBufferSize)
	gz, err := gzip.NewReader(br)
	if err != nil {
		return nil, errors.Wrap(err, "creating gzip reader")
	}

	return &GzipSource{
		f:        f,
		br:       br,
		gz:       gz,
		fileSize: info.Size(),
	}, nil
}

// Read implements dataio.Reader.
func (s *GzipSource) Read(buf []byte) (int, error) {
	n, err := s.gz.Read(buf)
	s.pos += uint64(n)
	return n, err
}

// ReadByte implements dataio.Reader.
func (s *GzipSource) ReadByte() (byte, error) {
	var b [1]byte
	n, err := s.gz.Read(b[:])
	if n == 1 {
		s.pos++
		return b[0], nil
	}
	if err == nil {
		err = io.EOF
	}
	return 0, err
}

// Skip implements Source by reading and discarding n bytes; gzip.Reader
// offers no native seek.
func (s *GzipSource) Skip(n int64) error {
	if n <= 0 {
		return nil
	}
	_, err := io.CopyN(io.Discard, s.gz, n)
	s.pos += uint64(n)
	return err
}

// CurrentOffset implements Source, returning the decompressed byte position.
func (s *GzipSource) CurrentOffset() uint64 { return s.pos }

// SetCurrentOffset always fails: gzip streams don't support seeking.
func (s *GzipSource) SetCurrentOffset(uint64) error {
	return ErrOffsetsUnsupported
}

// SupportsOffsets implements Source.
func (s *GzipSource) SupportsOffsets() bool { return false }

// PercentRead implements Source, based on the compressed file position, per
// the original ZLibFile::rawPercentRead.
func (s *GzipSource) PercentRead() int {
	if s.fileSize <= 0 {
		return 0
	}
	compressedPos, err := s.f.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0
	}
	pct := int(100 * compressedPos / s.fileSize)
	if pct > 100 {
		pct = 100
	}
	return pct
}

// Close implements Source.
func (s *GzipSource) Close() error {
	gzErr := s.gz.Close()
	fErr := s.f.Close()
	if gzErr != nil {
		return gzErr
	}
	return fErr
}
