// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package trace

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("bookmarks", func() {
	It("round-trips offset and call numbering on an offset-capable source", func() {
		body := concatBytes(
			b(eventEnter), b(0), str("foo"), b(0), b(callEnd),
			b(eventLeave), b(0), b(callEnd),
			b(eventEnter), b(1), str("bar"), b(0), b(callEnd),
			b(eventLeave), b(1), b(callEnd),
		)
		p := newTestParser(body, TraceVersion)

		// Mark the position between the two calls: call 0 has been returned
		// and nothing is pending, so a restore has no pending call to drop.
		first, err := p.ParseCall()
		Expect(err).ToNot(HaveOccurred())
		Expect(first.No).To(Equal(uint32(0)))

		bm, err := p.GetBookmark()
		Expect(err).ToNot(HaveOccurred())
		Expect(bm.NextCallNo).To(Equal(uint32(1)))

		second, err := p.ParseCall()
		Expect(err).ToNot(HaveOccurred())
		Expect(second.No).To(Equal(uint32(1)))

		// Restore: call numbering is exactly as captured and nothing is
		// left pending.
		Expect(p.SetBookmark(bm)).To(Succeed())
		Expect(p.nextCallNo).To(Equal(uint32(1)))
		Expect(p.pending).To(BeEmpty())

		// Re-parsing from the restored position reproduces the same call.
		again, err := p.ParseCall()
		Expect(err).ToNot(HaveOccurred())
		Expect(again.No).To(Equal(uint32(1)))
	})

	It("drops pending calls on restore, since they belong to an undone future", func() {
		body := concatBytes(
			b(eventEnter), b(0), str("foo"), b(0), b(callEnd),
			b(eventEnter), b(1), str("bar"), b(0), b(callEnd),
			b(eventLeave), b(1), b(callEnd),
		)
		p := newTestParser(body, TraceVersion)

		bm, err := p.GetBookmark()
		Expect(err).ToNot(HaveOccurred())

		// ENTER 0 and ENTER 1 both go pending; LEAVE 1 returns call 1 and
		// leaves call 0's ENTER still outstanding in p.pending.
		call, err := p.ParseCall()
		Expect(err).ToNot(HaveOccurred())
		Expect(call.No).To(Equal(uint32(1)))
		Expect(p.pending).To(HaveLen(1))

		Expect(p.SetBookmark(bm)).To(Succeed())
		Expect(p.pending).To(BeEmpty())
	})

	It("re-scans rather than re-allocates a signature when restored to before its first occurrence", func() {
		body := concatBytes(
			b(eventEnter), b(0), str("foo"), b(0), b(callEnd),
			b(eventLeave), b(0), b(callEnd),
		)
		p := newTestParser(body, TraceVersion)

		bm, err := p.GetBookmark() // offset 0, nextCallNo 0
		Expect(err).ToNot(HaveOccurred())

		call, err := p.ParseCall()
		Expect(err).ToNot(HaveOccurred())
		sigBefore := call.Sig

		Expect(p.SetBookmark(bm)).To(Succeed())
		Expect(p.source.CurrentOffset()).To(Equal(uint64(0)))

		call2, err := p.ParseCall()
		Expect(err).ToNot(HaveOccurred())
		Expect(call2.Sig).To(BeIdenticalTo(sigBefore))
		Expect(call2.No).To(Equal(uint32(0)))
	})

	It("fails with ErrBookmarkUnsupported when the source cannot report offsets", func() {
		p := newTestParser(nil, TraceVersion)
		p.source = noOffsetSource{memSource: newMemSource(nil)}

		_, err := p.GetBookmark()
		Expect(err).To(Equal(ErrBookmarkUnsupported))

		err = p.SetBookmark(ParseBookmark{})
		Expect(err).To(Equal(ErrBookmarkUnsupported))
	})

	It("fails with ErrParserClosed once the parser is closed", func() {
		p := newTestParser(nil, TraceVersion)
		Expect(p.Close()).To(Succeed())

		_, err := p.GetBookmark()
		Expect(err).To(Equal(ErrParserClosed))

		err = p.SetBookmark(ParseBookmark{})
		Expect(err).To(Equal(ErrParserClosed))
	})
})

// noOffsetSource wraps memSource to force SupportsOffsets false, exercising
// the gzip-like "bookmarks unsupported" path without a real gzip fixture.
type noOffsetSource struct {
	*memSource
}

func (noOffsetSource) SupportsOffsets() bool { return false }
