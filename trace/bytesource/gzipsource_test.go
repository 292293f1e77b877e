// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package bytesource

import (
	"io"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("GzipSource", func() {
	It("reads back exactly the bytes it was given, byte by byte", func() {
		body := []byte("hello, trace world")
		path := writeTempFile(gzipBytes(body))

		src, err := Open(path)
		Expect(err).ToNot(HaveOccurred())
		defer src.Close()

		var got []byte
		for {
			c, err := src.ReadByte()
			if err == io.EOF {
				break
			}
			Expect(err).ToNot(HaveOccurred())
			got = append(got, c)
		}
		Expect(got).To(Equal(body))
	})

	It("tracks CurrentOffset as bytes are consumed", func() {
		path := writeTempFile(gzipBytes([]byte("abcdef")))
		src, err := Open(path)
		Expect(err).ToNot(HaveOccurred())
		defer src.Close()

		Expect(src.CurrentOffset()).To(Equal(uint64(0)))
		_, err = src.ReadByte()
		Expect(err).ToNot(HaveOccurred())
		Expect(src.CurrentOffset()).To(Equal(uint64(1)))
	})

	It("does not support offsets", func() {
		path := writeTempFile(gzipBytes([]byte("x")))
		src, err := Open(path)
		Expect(err).ToNot(HaveOccurred())
		defer src.Close()

		Expect(src.SupportsOffsets()).To(BeFalse())
		Expect(src.SetCurrentOffset(0)).To(Equal(ErrOffsetsUnsupported))
	})

	It("skips n bytes without materializing them", func() {
		path := writeTempFile(gzipBytes([]byte("abcdefgh")))
		src, err := Open(path)
		Expect(err).ToNot(HaveOccurred())
		defer src.Close()

		Expect(src.Skip(4)).To(Succeed())
		c, err := src.ReadByte()
		Expect(err).ToNot(HaveOccurred())
		Expect(c).To(Equal(byte('e')))
	})
})
