package cache

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/cachesim/mem/mem"
	"github.com/sarchlab/cachesim/sim/hooking"
)

var _ = Describe("Hooks", func() {
	var (
		mockCtrl *gomock.Controller
		hook     *MockHook
		c        *Cache
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		hook = NewMockHook(mockCtrl)
		c = mustBuild(MakeBuilder().
			WithCacheSize(256).
			WithBlockSize(64).
			WithAssociativity("direct").
			WithPrefetchSize(1).
			WithHook(hook))
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should report the access before its insertions", func() {
		gomock.InOrder(
			hook.EXPECT().Func(hooking.HookCtx{
				Domain: c,
				Pos:    HookPosAccess,
				Item: AccessEvent{
					Op:           mem.Write,
					Address:      0x48,
					BlockAddress: 1,
					SetID:        1,
					Tag:          0,
					Result:       Miss,
				},
			}),
			hook.EXPECT().Func(hooking.HookCtx{
				Domain: c,
				Pos:    HookPosPrefetch,
				Item: PrefetchEvent{
					TriggerBlock: 1,
					BlockAddress: 2,
					SetID:        2,
					Tag:          0,
					Inserted:     true,
				},
			}),
		)

		c.Access(mem.Write, 0x48)
	})

	It("should report evictions", func() {
		hook.EXPECT().Func(gomock.Any()).Times(4)

		c.Access(mem.Read, 0x00)
		c.Access(mem.Read, 0x80)

		hook.EXPECT().Func(hooking.HookCtx{
			Domain: c,
			Pos:    HookPosEvict,
			Item: EvictEvent{
				BlockAddress: 1,
				SetID:        1,
				Tag:          0,
				ByPrefetch:   true,
			},
		})
		hook.EXPECT().Func(gomock.Any()).Times(3)

		c.Access(mem.Read, 0x100)
	})
})

var _ = Describe("StatsCollector", func() {
	It("should collect statistics", func() {
		collector := NewStatsCollector()
		c := mustBuild(MakeBuilder().
			WithCacheSize(256).
			WithBlockSize(64).
			WithAssociativity("direct").
			WithPrefetchSize(1).
			WithHook(collector))

		c.Access(mem.Read, 0x00)
		c.Access(mem.Write, 0x40)
		c.Access(mem.Read, 0x100)
		c.Access(mem.Read, 0x100)

		stats := collector.Stats()
		hits, misses := c.Results()
		Expect(stats.Hits).To(Equal(hits))
		Expect(stats.Misses).To(Equal(misses))
		Expect(stats.Reads).To(Equal(uint64(3)))
		Expect(stats.Writes).To(Equal(uint64(1)))
		Expect(stats.Prefetches).To(Equal(uint64(2)))
		Expect(stats.Evictions).To(Equal(uint64(2)))
		Expect(stats.PrefetchEvictions).To(Equal(uint64(1)))
		Expect(stats.Accesses()).To(Equal(uint64(4)))
		Expect(stats.HitRate()).To(Equal(0.5))
	})

	It("should report a zero hit rate without accesses", func() {
		Expect(Statistics{}.HitRate()).To(Equal(0.0))
	})
})
