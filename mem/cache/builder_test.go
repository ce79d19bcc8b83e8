package cache

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = Describe("Builder", func() {
	var (
		mockCtrl *gomock.Controller
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should build with defaults", func() {
		c, err := MakeBuilder().Build()

		Expect(err).NotTo(HaveOccurred())
		Expect(c.Geometry().CacheSize).To(Equal(uint64(16 * 1024)))
		Expect(c.Geometry().Ways).To(Equal(uint64(1)))
		Expect(c.PrefetchSize()).To(Equal(uint64(0)))
	})

	It("should build the configured geometry", func() {
		c, err := MakeBuilder().
			WithCacheSize(4096).
			WithBlockSize(32).
			WithAssociativity("assoc:8").
			WithPrefetchSize(2).
			Build()

		Expect(err).NotTo(HaveOccurred())
		g := c.Geometry()
		Expect(g.NumSets).To(Equal(uint64(16)))
		Expect(g.Ways).To(Equal(uint64(8)))
		Expect(g.Associativity.String()).To(Equal("set:8"))
		Expect(c.PrefetchSize()).To(Equal(uint64(2)))
	})

	It("should resolve the geometry without building", func() {
		g, err := MakeBuilder().
			WithCacheSize(1024).
			WithBlockSize(64).
			WithAssociativity("full").
			Geometry()

		Expect(err).NotTo(HaveOccurred())
		Expect(g.NumSets).To(Equal(uint64(1)))
		Expect(g.Ways).To(Equal(uint64(16)))

		_, err = MakeBuilder().WithAssociativity("set:0").Geometry()
		Expect(err).To(MatchError(ErrInvalidConfig))
	})

	It("should reject a negative prefetch size", func() {
		c, err := MakeBuilder().WithPrefetchSize(-1).Build()

		Expect(err).To(MatchError(ErrInvalidConfig))
		Expect(c).To(BeNil())
	})

	It("should reject an invalid associativity", func() {
		c, err := MakeBuilder().WithAssociativity("lru").Build()

		Expect(err).To(MatchError(ErrInvalidConfig))
		Expect(c).To(BeNil())
	})

	It("should reject sizes that are not powers of two", func() {
		_, err := MakeBuilder().WithCacheSize(3000).Build()

		Expect(err).To(MatchError(ErrInvalidConfig))
	})

	It("should register hooks", func() {
		hook := NewMockHook(mockCtrl)

		c, err := MakeBuilder().WithHook(hook).Build()

		Expect(err).NotTo(HaveOccurred())
		Expect(c.Hooks()).To(ConsistOf(hook))
	})

	It("should not share hooks between derived builders", func() {
		hook1 := NewMockHook(mockCtrl)
		hook2 := NewMockHook(mockCtrl)
		base := MakeBuilder().WithHook(hook1)

		c1, _ := base.WithHook(hook2).Build()
		c2, _ := base.Build()

		Expect(c1.NumHooks()).To(Equal(2))
		Expect(c2.NumHooks()).To(Equal(1))
	})
})
