// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package pixel

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Pixel Buffer", func() {
	Context("an RGB Buffer", func() {
		var pb *Buffer
		BeforeEach(func() {
			pb = &Buffer{Layout: BufferRGB}
		})

		It("has length 0", func() {
			Expect(pb.Len()).To(Equal(0))
			Expect(pb.Bytes()).To(HaveLen(0))
		})

		It("will grow its buffer when reset", func() {
			pb.Reset(5)
			Expect(pb.Bytes()).To(HaveLen(15))
		})

		It("zeroes a reused buffer on reset", func() {
			pb.SetPixels(P{Red: 1}, P{Green: 2})
			pb.Reset(1)
			Expect(pb.Bytes()).To(BeEquivalentTo([]byte{0, 0, 0}))
		})

		It("will ignore out-of-bounds pixels", func() {
			pb.Reset(1)
			pb.SetPixel(1337, P{Red: 1})
			pb.SetPixel(-1, P{Red: 1})
			Expect(pb.Pixel(1337)).To(Equal(P{}))
			Expect(pb.Bytes()).To(BeEquivalentTo([]byte{0, 0, 0}))
		})

		It("can mutate pixels", func() {
			pb.Reset(2)

			By("setting pixels")
			pb.SetPixel(0, P{Red: 1, Green: 2, Blue: 3})
			pb.SetPixel(1, P{Red: 6, Green: 7, Blue: 8})

			By("reading pixels")
			Expect(pb.Pixel(0)).To(Equal(P{Red: 1, Green: 2, Blue: 3}))
			Expect(pb.Pixels()).To(Equal([]P{{1, 2, 3}, {6, 7, 8}}))

			By("reading pixel buffer")
			Expect(pb.Bytes()).To(BeEquivalentTo([]byte{1, 2, 3, 6, 7, 8}))
		})

		It("can clone a buffer", func() {
			pb.SetPixels(P{Red: 1}, P{Blue: 2})

			var other Buffer
			other.CloneFrom(pb)
			Expect(other.Bytes()).To(BeEquivalentTo(pb.Bytes()))

			// Mutating the clone should not change the original.
			other.Clear()
			Expect(pb.Pixel(0)).To(Equal(P{Red: 1}))
		})
	})

	Context("a GRB Buffer", func() {
		var pb *Buffer
		BeforeEach(func() {
			pb = &Buffer{Layout: BufferGRB}
		})

		It("stores green first", func() {
			pb.SetPixels(P{Red: 1, Green: 2, Blue: 3})
			Expect(pb.Bytes()).To(BeEquivalentTo([]byte{2, 1, 3}))
			Expect(pb.Pixel(0)).To(Equal(P{Red: 1, Green: 2, Blue: 3}))
		})
	})
})
