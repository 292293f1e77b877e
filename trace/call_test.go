// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package trace

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Call", func() {
	It("reports <unknown> for a nil Sig", func() {
		c := &Call{}
		Expect(c.Name()).To(Equal("<unknown>"))
	})

	It("returns a Null Value for any index never written", func() {
		c := &Call{}
		Expect(c.Arg(0).IsNull()).To(BeTrue())
		Expect(c.Arg(5).IsNull()).To(BeTrue())
	})

	It("pads newly exposed gap positions with Null when writing past the end", func() {
		c := &Call{}
		c.setArg(2, uintValue(42))

		Expect(c.Args).To(HaveLen(3))
		Expect(c.Arg(0).IsNull()).To(BeTrue())
		Expect(c.Arg(1).IsNull()).To(BeTrue())
		Expect(c.Arg(2).UInt()).To(Equal(uint64(42)))
	})

	It("overwrites an existing index without disturbing its neighbors", func() {
		c := &Call{}
		c.setArg(0, uintValue(1))
		c.setArg(1, uintValue(2))
		c.setArg(0, uintValue(99))

		Expect(c.Arg(0).UInt()).To(Equal(uint64(99)))
		Expect(c.Arg(1).UInt()).To(Equal(uint64(2)))
	})

	It("treats a negative index as absent rather than panicking", func() {
		c := &Call{}
		Expect(c.Arg(-1).IsNull()).To(BeTrue())
	})
})
