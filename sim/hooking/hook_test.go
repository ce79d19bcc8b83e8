package hooking

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var (
	posA = &HookPos{Name: "A"}
	posB = &HookPos{Name: "B"}
)

var _ = Describe("HookableBase", func() {
	var (
		mockCtrl *gomock.Controller
		base     *HookableBase
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		base = &HookableBase{}
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should register hooks", func() {
		hook := NewMockHook(mockCtrl)

		Expect(base.HasHooks()).To(BeFalse())

		base.AcceptHook(hook)

		Expect(base.HasHooks()).To(BeTrue())
		Expect(base.NumHooks()).To(Equal(1))
		Expect(base.Hooks()).To(ConsistOf(hook))
	})

	It("should panic on duplicated hook", func() {
		hook := NewMockHook(mockCtrl)
		base.AcceptHook(hook)

		Expect(func() { base.AcceptHook(hook) }).To(Panic())
	})

	It("should invoke hooks in registration order", func() {
		hook1 := NewMockHook(mockCtrl)
		hook2 := NewMockHook(mockCtrl)
		base.AcceptHook(hook1)
		base.AcceptHook(hook2)

		ctx := HookCtx{Pos: posA, Item: 1}
		gomock.InOrder(
			hook1.EXPECT().Func(ctx),
			hook2.EXPECT().Func(ctx),
		)

		base.InvokeHook(ctx)
	})

	It("should only forward selected positions", func() {
		hook := NewMockHook(mockCtrl)
		base.AcceptHook(OnlyAt(hook, posB))

		hook.EXPECT().Func(HookCtx{Pos: posB, Item: 2})

		base.InvokeHook(HookCtx{Pos: posA, Item: 1})
		base.InvokeHook(HookCtx{Pos: posB, Item: 2})
	})
})
