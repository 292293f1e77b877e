// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package trace

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/corylanou/apitrace/support/dataio"

	"github.com/pkg/errors"
)

// maxVarintBytes bounds how many bytes readUvarint will consume before
// giving up; the format does not police overflow (spec §4.2), but a reader
// still must not loop forever on a corrupt stream of continuation bytes.
const maxVarintBytes = 10

// readUvarint decodes a LEB128-style unsigned varint: the low 7 bits of each
// byte are payload, shifted by 7*iteration; the high bit signals
// continuation. EOF terminates early and yields whatever was accumulated,
// matching Parser::read_uint in the original implementation.
func readUvarint(r dataio.Reader) (uint64, error) {
	var value uint64
	var shift uint
	for i := 0; i < maxVarintBytes; i++ {
		c, err := r.ReadByte()
		if err != nil {
			if err == io.EOF {
				return value, io.EOF
			}
			return value, err
		}
		value |= uint64(c&0x7f) << shift
		if c&0x80 == 0 {
			return value, nil
		}
		shift += 7
	}
	return value, errors.New("varint too long")
}

// skipUvarint consumes a varint without decoding it, used when re-scanning a
// signature descriptor that has already been parsed (spec §4.3 rule 3).
func skipUvarint(r dataio.Reader) error {
	for i := 0; i < maxVarintBytes; i++ {
		c, err := r.ReadByte()
		if err != nil {
			return err
		}
		if c&0x80 == 0 {
			return nil
		}
	}
	return errors.New("varint too long")
}

// readString decodes a length-prefixed byte string: uvarint len, then len raw
// bytes. The returned string owns an independent copy of the bytes.
func readString(r dataio.Reader) (string, error) {
	n, err := readUvarint(r)
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	buf := make([]byte, n)
	if err := dataio.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// skipString consumes a length-prefixed string without retaining its bytes.
func skipString(r dataio.Reader) error {
	n, err := readUvarint(r)
	if err != nil {
		return err
	}
	return skipN(r, n)
}

// skipN discards n raw bytes from r.
func skipN(r dataio.Reader, n uint64) error {
	if n == 0 {
		return nil
	}
	// Reuse a bounded scratch buffer rather than allocating n bytes just to
	// throw them away.
	var scratch [4096]byte
	for n > 0 {
		chunk := uint64(len(scratch))
		if n < chunk {
			chunk = n
		}
		if err := dataio.ReadFull(r, scratch[:chunk]); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}

// readFloat32 reads a little-endian 32-bit IEEE float, per the wire format
// (spec §6: "little-endian payloads"). Recorders that wrote host-native big-
// endian floats are not supported; see spec §9's open question on
// endianness.
func readFloat32(r dataio.Reader) (float32, error) {
	var buf [4]byte
	if err := dataio.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[:])), nil
}

// readFloat64 reads a little-endian 64-bit IEEE double.
func readFloat64(r dataio.Reader) (float64, error) {
	var buf [8]byte
	if err := dataio.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(buf[:])), nil
}

func skipFloat32(r dataio.Reader) error { return skipN(r, 4) }
func skipFloat64(r dataio.Reader) error { return skipN(r, 8) }
