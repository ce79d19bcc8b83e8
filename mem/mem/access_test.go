package mem

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Operation", func() {
	It("should parse read and write", func() {
		op, err := ParseOperation("R")
		Expect(err).NotTo(HaveOccurred())
		Expect(op).To(Equal(Read))

		op, err = ParseOperation("W")
		Expect(err).NotTo(HaveOccurred())
		Expect(op).To(Equal(Write))
	})

	It("should reject unknown operations", func() {
		for _, s := range []string{"", "r", "X", "RW"} {
			_, err := ParseOperation(s)
			Expect(err).To(HaveOccurred(), s)
		}
	})

	It("should print the trace form", func() {
		Expect(Read.String()).To(Equal("R"))
		Expect(Write.String()).To(Equal("W"))
		Expect(Operation(7).String()).To(Equal("Operation(7)"))
	})
})
