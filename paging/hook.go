package paging

// HookPos names the engine operation that triggered a hook.
type HookPos struct {
	Name string
}

// HookPosConfig triggers after the engine is reconfigured.
var HookPosConfig = &HookPos{Name: "Config"}

// HookPosAdmit triggers after a process is admitted.
var HookPosAdmit = &HookPos{Name: "Admit"}

// HookPosAccess triggers after a page access completes, hit or fault.
var HookPosAccess = &HookPos{Name: "Access"}

// HookPosDealloc triggers after a process is torn down.
var HookPosDealloc = &HookPos{Name: "Dealloc"}

// HookCtx carries the information about the operation a hook observes.
type HookCtx struct {
	Domain Hookable
	Pos    *HookPos
	Item   interface{}
}

// A Hook is a short piece of program invoked by a hookable object.
type Hook interface {
	Func(ctx HookCtx)
}

// Hookable defines an object that accepts hooks.
type Hookable interface {
	AcceptHook(hook Hook)
}

// A HookableBase provides the utility functions for types that implement
// the Hookable interface.
type HookableBase struct {
	Hooks []Hook
}

// AcceptHook registers a hook.
func (h *HookableBase) AcceptHook(hook Hook) {
	h.Hooks = append(h.Hooks, hook)
}

// InvokeHook triggers the registered hooks.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.Hooks {
		hook.Func(ctx)
	}
}
