package tagging

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Tags", func() {
	var (
		tags TagArray
	)

	BeforeEach(func() {
		tags = NewTagArray(16, 4, NewFIFOVictimFinder())
	})

	It("should report its shape", func() {
		Expect(tags.NumSets()).To(Equal(16))
		Expect(tags.NumWays()).To(Equal(4))
		Expect(tags.GetSet(3).Blocks).To(BeEmpty())
	})

	It("should allocate ways only when they are filled", func() {
		huge := NewTagArray(1, 1<<40, NewFIFOVictimFinder())

		huge.Insert(0, 1)
		huge.Insert(0, 2)

		Expect(huge.GetSet(0).Blocks).To(HaveLen(2))
		Expect(huge.GetSet(0).FIFOQueue).To(Equal([]int{0, 1}))
		Expect(huge.GetSet(0).ResidentTags()).To(Equal([]uint64{1, 2}))
	})

	It("should not allocate untouched sets", func() {
		huge := NewTagArray(1<<40, 1, NewFIFOVictimFinder())

		huge.Insert(1<<39, 5)

		_, ok := huge.Lookup(1<<39, 5)
		Expect(ok).To(BeTrue())
		_, ok = huge.Lookup(3, 5)
		Expect(ok).To(BeFalse())
	})

	It("should return false when lookup cannot find block", func() {
		block, ok := tags.Lookup(0, 0x100)
		Expect(ok).To(BeFalse())
		Expect(block).To(BeZero())
	})

	It("should lookup an inserted block", func() {
		_, evicted := tags.Insert(2, 0x100)
		Expect(evicted).To(BeFalse())

		block, ok := tags.Lookup(2, 0x100)
		Expect(ok).To(BeTrue())
		Expect(block.Tag).To(Equal(uint64(0x100)))
		Expect(block.SetID).To(Equal(2))
		Expect(block.IsValid).To(BeTrue())
	})

	It("should not find a tag in another set", func() {
		tags.Insert(2, 0x100)

		_, ok := tags.Lookup(3, 0x100)
		Expect(ok).To(BeFalse())
	})

	It("should fill empty ways in order", func() {
		for i := uint64(0); i < 4; i++ {
			_, evicted := tags.Insert(1, i)
			Expect(evicted).To(BeFalse())
		}

		Expect(tags.GetSet(1).ResidentTags()).
			To(Equal([]uint64{0, 1, 2, 3}))
	})

	It("should evict the oldest block when the set is full", func() {
		for i := uint64(0); i < 4; i++ {
			tags.Insert(1, i)
		}

		victim, evicted := tags.Insert(1, 4)

		Expect(evicted).To(BeTrue())
		Expect(victim.Tag).To(Equal(uint64(0)))
		Expect(tags.GetSet(1).ResidentTags()).
			To(Equal([]uint64{1, 2, 3, 4}))
	})

	It("should keep insertion order after lookups", func() {
		for i := uint64(0); i < 4; i++ {
			tags.Insert(1, i)
		}

		_, ok := tags.Lookup(1, 0)
		Expect(ok).To(BeTrue())

		victim, _ := tags.Insert(1, 4)
		Expect(victim.Tag).To(Equal(uint64(0)))
	})

	It("should invalidate all blocks on reset", func() {
		tags.Insert(0, 7)

		tags.Reset()

		_, ok := tags.Lookup(0, 7)
		Expect(ok).To(BeFalse())
		Expect(tags.GetSet(0).ResidentTags()).To(BeEmpty())
	})
})
