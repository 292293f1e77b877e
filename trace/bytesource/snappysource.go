// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package bytesource

import (
	"bufio"
	"io"
	"os"

	"github.com/corylanou/apitrace/support/bufferpool"
	"github.com/corylanou/apitrace/support/byteslicereader"

	"github.com/golang/snappy"
	"github.com/pkg/errors"
)

// defaultBlockSize is the uncompressed size of every block except possibly
// the last. Chosen to match the teacher's rawStreamLargeBufferSize.
const defaultBlockSize = 1024 * 1024 * 4

// SnappySource reads a Snappy-framed trace file.
//
// Per spec §6, the detailed block framing is "sketched but not re-derived";
// this package defines it concretely: a uvarint block size header, then a
// sequence of blocks, each a uvarint compressed length followed by that many
// bytes of github.com/golang/snappy block-API output (snappy.Encode, not
// the streaming snappy.Reader/Writer, since the streaming API cannot seek).
//
// SnappySource supports offsets (SupportsOffsets returns true): the logical
// stream offset is blockIndex*blockSize + intraBlockOffset, and
// SetCurrentOffset can reposition to any block boundary the source has
// already visited during forward reading. This is sufficient for every
// bookmark this parser produces, since bookmarks are only ever taken at
// positions reached by forward parsing (spec §4.6).
type SnappySource struct {
	f        *os.File
	fileSize int64
	br       *bufio.Reader
	brOffset int64 // file offset br.ReadByte() will next read from

	blockSize uint64
	pool      *bufferpool.Pool

	// blockFileOffset[i] is the file offset of block i's length prefix, for
	// every block index reached so far.
	blockFileOffset []int64

	curIdx int64 // index of the block currently loaded into cur, or -1
	cur    *bufferpool.Buffer
	cursor byteslicereader.R
}

var _ Source = (*SnappySource)(nil)

func newSnappySource(f *os.File) (*SnappySource, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, errors.Wrap(err, "stat trace file")
	}

	br := bufio.NewReaderSize(f, defaultBlockSize)
	blockSize, headerLen, err := readContainerHeader(br)
	if err != nil {
		return nil, errors.Wrap(err, "reading snappy container header")
	}

	s := &SnappySource{
		f:               f,
		fileSize:        info.Size(),
		br:              br,
		brOffset:        headerLen,
		blockSize:       blockSize,
		pool:            &bufferpool.Pool{Size: int(blockSize)},
		blockFileOffset: []int64{headerLen},
		curIdx:          -1,
	}
	return s, nil
}

// readContainerHeader reads the leading uvarint block size and returns it
// along with the number of header bytes consumed.
func readContainerHeader(r io.ByteReader) (blockSize uint64, headerLen int64, err error) {
	var shift uint
	for {
		c, err := r.ReadByte()
		if err != nil {
			return 0, headerLen, err
		}
		headerLen++
		blockSize |= uint64(c&0x7f) << shift
		if c&0x80 == 0 {
			break
		}
		shift += 7
	}
	if blockSize == 0 {
		return 0, headerLen, errors.New("zero block size")
	}
	return blockSize, headerLen, nil
}

// readUvarintAt reads a uvarint from r, returning the number of bytes it
// consumed alongside the decoded value.
func readUvarintAt(r io.ByteReader) (uint64, int64, error) {
	var value uint64
	var shift uint
	var n int64
	for {
		c, err := r.ReadByte()
		if err != nil {
			return 0, n, err
		}
		n++
		value |= uint64(c&0x7f) << shift
		if c&0x80 == 0 {
			return value, n, nil
		}
		shift += 7
	}
}

// loadBlock decompresses the block whose length prefix begins at exactly
// the source's current br position, records its file offset under idx, and
// makes it the active block with the cursor at the start.
func (s *SnappySource) loadBlock(idx int64) error {
	fileOffset := s.brOffset

	compressedLen, n, err := readUvarintAt(s.br)
	if err != nil {
		return err
	}
	s.brOffset += n

	compressed := make([]byte, compressedLen)
	if _, err := io.ReadFull(s.br, compressed); err != nil {
		return err
	}
	s.brOffset += int64(compressedLen)

	if s.cur != nil {
		s.cur.Release()
		s.cur = nil
	}
	buf := s.pool.Get()
	decoded, err := snappy.Decode(buf.Bytes()[:cap(buf.Bytes())], compressed)
	if err != nil {
		buf.Release()
		return errors.Wrap(err, "decoding snappy block")
	}
	buf.Truncate(len(decoded))
	s.cur = buf
	s.cursor = byteslicereader.R{Buffer: buf.Bytes()}

	if int64(len(s.blockFileOffset)) == idx {
		s.blockFileOffset = append(s.blockFileOffset, fileOffset)
	} else if int64(len(s.blockFileOffset)) > idx {
		s.blockFileOffset[idx] = fileOffset
	} else {
		// Should not happen: blocks are always loaded in index order except
		// via SetCurrentOffset, which seeks br directly and passes a
		// pre-validated idx.
		grown := make([]int64, idx+1)
		copy(grown, s.blockFileOffset)
		s.blockFileOffset = grown
		s.blockFileOffset[idx] = fileOffset
	}
	s.curIdx = idx
	return nil
}

// ensureData loads the next block if the cursor has run out and more data
// exists, returning io.EOF once the container is exhausted.
func (s *SnappySource) ensureData() error {
	if s.cur != nil && s.cursor.Remaining() > 0 {
		return nil
	}
	if s.brOffset >= s.fileSize {
		return io.EOF
	}
	return s.loadBlock(s.curIdx + 1)
}

// Read implements dataio.Reader.
func (s *SnappySource) Read(buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		if err := s.ensureData(); err != nil {
			if total > 0 {
				return total, nil
			}
			return 0, err
		}
		n, _ := s.cursor.Read(buf[total:])
		total += n
	}
	return total, nil
}

// ReadByte implements dataio.Reader.
func (s *SnappySource) ReadByte() (byte, error) {
	if err := s.ensureData(); err != nil {
		return 0, err
	}
	return s.cursor.ReadByte()
}

// Skip implements Source.
//
// It repositions the cursor by reslicing s.cur's decoded bytes rather than
// calling cursor.Seek, since Seek rejects landing exactly at the end of
// Buffer and a skip commonly lands a block's last byte.
func (s *SnappySource) Skip(n int64) error {
	for n > 0 {
		if err := s.ensureData(); err != nil {
			return err
		}
		remaining := int64(s.cursor.Remaining())
		chunk := n
		if chunk > remaining {
			chunk = remaining
		}
		consumed := int64(len(s.cur.Bytes())) - remaining
		s.cursor = byteslicereader.R{Buffer: s.cur.Bytes()[consumed+chunk:]}
		n -= chunk
	}
	return nil
}

// CurrentOffset implements Source as the logical decompressed stream
// offset: blockIndex*blockSize + intraBlockOffset.
func (s *SnappySource) CurrentOffset() uint64 {
	if s.curIdx < 0 {
		return 0
	}
	consumed := int64(len(s.cur.Bytes())) - int64(s.cursor.Remaining())
	return uint64(s.curIdx)*s.blockSize + uint64(consumed)
}

// SetCurrentOffset implements Source. It succeeds only for a block index
// already reached by forward reading (spec §4.6's bookmarks are always
// taken at such positions); jumping past an unvisited block is rejected
// rather than silently decompressing everything in between.
//
// Repositioning within the loaded block reslices s.cur's decoded bytes
// directly rather than calling cursor.Seek, since Seek rejects landing
// exactly at the end of Buffer (a legal intra-block offset: the position
// just past the block's last byte).
func (s *SnappySource) SetCurrentOffset(off uint64) error {
	blockIdx := int64(off / s.blockSize)
	intra := int64(off % s.blockSize)

	if blockIdx == s.curIdx {
		if intra < 0 || intra > int64(len(s.cur.Bytes())) {
			return ErrOffsetsUnsupported
		}
		s.cursor = byteslicereader.R{Buffer: s.cur.Bytes()[intra:]}
		return nil
	}

	if blockIdx < 0 || blockIdx >= int64(len(s.blockFileOffset)) {
		return ErrOffsetsUnsupported
	}

	fileOffset := s.blockFileOffset[blockIdx]
	if _, err := s.f.Seek(fileOffset, io.SeekStart); err != nil {
		return err
	}
	s.br.Reset(s.f)
	s.brOffset = fileOffset

	if err := s.loadBlock(blockIdx); err != nil {
		return err
	}
	if intra < 0 || intra > int64(len(s.cur.Bytes())) {
		return ErrOffsetsUnsupported
	}
	s.cursor = byteslicereader.R{Buffer: s.cur.Bytes()[intra:]}
	return nil
}

// SupportsOffsets implements Source.
func (s *SnappySource) SupportsOffsets() bool { return true }

// PercentRead implements Source, based on the compressed file position.
func (s *SnappySource) PercentRead() int {
	if s.fileSize <= 0 {
		return 0
	}
	pct := int(100 * s.brOffset / s.fileSize)
	if pct > 100 {
		pct = 100
	}
	return pct
}

// Close implements Source.
func (s *SnappySource) Close() error {
	if s.cur != nil {
		s.cur.Release()
		s.cur = nil
	}
	return s.f.Close()
}
