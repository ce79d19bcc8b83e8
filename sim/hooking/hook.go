// Package hooking lets a simulated structure expose what happens inside it to
// external observers without knowing who they are.
package hooking

// HookPos names a site inside a Hookable where hooks can be triggered.
type HookPos struct {
	Name string
}

// HookCtx is the context that holds all the information about the site that a
// hook is triggered.
type HookCtx struct {
	Domain Hookable
	Pos    *HookPos
	Item   any
	Detail any
}

// Hookable defines an object that accept Hooks.
type Hookable interface {
	// AcceptHook registers a hook.
	AcceptHook(hook Hook)

	// NumHooks returns the number of hooks registered.
	NumHooks() int

	// Hooks returns all the hooks registered.
	Hooks() []Hook
}

// Hook is a short piece of program that can be invoked by a hookable object.
type Hook interface {
	// Func determines what to do if hook is invoked.
	Func(ctx HookCtx)
}

// A HookableBase provides some utility function for other type that implement
// the Hookable interface.
type HookableBase struct {
	hookList []Hook
}

// NumHooks returns the number of hooks registered.
func (h *HookableBase) NumHooks() int {
	return len(h.hookList)
}

// Hooks returns all the hooks registered.
func (h *HookableBase) Hooks() []Hook {
	return h.hookList
}

// AcceptHook register a hook. Hooks are invoked in registration order.
func (h *HookableBase) AcceptHook(hook Hook) {
	h.mustNotHaveDuplicatedHook(hook)
	h.hookList = append(h.hookList, hook)
}

func (h *HookableBase) mustNotHaveDuplicatedHook(hook Hook) {
	for _, registered := range h.hookList {
		if registered == hook {
			panic("duplicated hook")
		}
	}
}

// InvokeHook triggers the register Hooks.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.hookList {
		hook.Func(ctx)
	}
}

// HasHooks tells if invoking hooks would reach anyone. Callers use it to skip
// building a HookCtx on hot paths.
func (h *HookableBase) HasHooks() bool {
	return len(h.hookList) > 0
}

// positionFilter forwards to an inner hook only at selected positions.
type positionFilter struct {
	inner     Hook
	positions []*HookPos
}

// OnlyAt wraps a hook so that it only fires at the given positions.
func OnlyAt(hook Hook, positions ...*HookPos) Hook {
	return &positionFilter{
		inner:     hook,
		positions: positions,
	}
}

func (f *positionFilter) Func(ctx HookCtx) {
	for _, pos := range f.positions {
		if ctx.Pos == pos {
			f.inner.Func(ctx)
			return
		}
	}
}
