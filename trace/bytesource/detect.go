// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package bytesource

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

// gzipMagic is the two-byte header gzip prepends to every stream.
var gzipMagic = [2]byte{0x1F, 0x8B}

// Open opens path and detects its compression by peeking the first two
// bytes: the gzip magic selects GzipSource, anything else is treated as a
// Snappy-framed container (spec §4.1, §6).
func Open(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening trace file")
	}

	var head [2]byte
	if _, err := f.ReadAt(head[:], 0); err != nil && err != io.EOF {
		f.Close()
		return nil, errors.Wrap(err, "reading magic bytes")
	}

	if head == gzipMagic {
		src, err := newGzipSource(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return src, nil
	}

	src, err := newSnappySource(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return src, nil
}
