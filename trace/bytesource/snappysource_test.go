// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package bytesource

import (
	"io"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("SnappySource", func() {
	It("reads back exactly the bytes it was given, spanning multiple blocks", func() {
		body := make([]byte, 30)
		for i := range body {
			body[i] = byte(i)
		}
		path := writeTempFile(snappyContainer(body, 8)) // 4 blocks: 8,8,8,6

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

	It("supports offsets", func() {
		path := writeTempFile(snappyContainer([]byte("abcdefgh"), 8))
		src, err := Open(path)
		Expect(err).ToNot(HaveOccurred())
		defer src.Close()

		Expect(src.SupportsOffsets()).To(BeTrue())
	})

	It("can SetCurrentOffset back into a block it already visited", func() {
		body := make([]byte, 24)
		for i := range body {
			body[i] = byte('a' + i%26)
		}
		path := writeTempFile(snappyContainer(body, 8))
		src, err := Open(path)
		Expect(err).ToNot(HaveOccurred())
		defer src.Close()

		// Read through all three blocks so each is visited.
		buf := make([]byte, len(body))
		n, err := io.ReadFull(src, buf)
		Expect(err).ToNot(HaveOccurred())
		Expect(n).To(Equal(len(body)))

		Expect(src.SetCurrentOffset(0)).To(Succeed())
		c, err := src.ReadByte()
		Expect(err).ToNot(HaveOccurred())
		Expect(c).To(Equal(body[0]))

		Expect(src.SetCurrentOffset(10)).To(Succeed())
		c, err = src.ReadByte()
		Expect(err).ToNot(HaveOccurred())
		Expect(c).To(Equal(body[10]))
	})

	It("rejects SetCurrentOffset into a block never reached by forward reading", func() {
		body := make([]byte, 24)
		path := writeTempFile(snappyContainer(body, 8))
		src, err := Open(path)
		Expect(err).ToNot(HaveOccurred())
		defer src.Close()

		// Only the first block has been loaded so far (none at all, in fact:
		// ensureData triggers lazily on first read).
		_, err = src.ReadByte()
		Expect(err).ToNot(HaveOccurred())

		Expect(src.SetCurrentOffset(16)).To(Equal(ErrOffsetsUnsupported))
	})

	It("can Skip and SetCurrentOffset to exactly a block's end", func() {
		body := make([]byte, 16) // exactly two 8-byte blocks
		for i := range body {
			body[i] = byte(i)
		}
		path := writeTempFile(snappyContainer(body, 8))
		src, err := Open(path)
		Expect(err).ToNot(HaveOccurred())
		defer src.Close()

		Expect(src.Skip(8)).To(Succeed()) // lands exactly at the first block's end
		Expect(src.CurrentOffset()).To(Equal(uint64(8)))

		c, err := src.ReadByte() // should transparently cross into block 2
		Expect(err).ToNot(HaveOccurred())
		Expect(c).To(Equal(body[8]))

		Expect(src.SetCurrentOffset(8)).To(Succeed())
		c, err = src.ReadByte()
		Expect(err).ToNot(HaveOccurred())
		Expect(c).To(Equal(body[8]))
	})
})
