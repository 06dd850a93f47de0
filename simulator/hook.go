package simulator

// HookPos defines the enum of possible hooking positions
type HookPos struct {
	Name string
}

// HookPosBeforeEvent triggers right after an event is popped, before its
// transition is applied. Item is the Event.
var HookPosBeforeEvent = &HookPos{Name: "BeforeEvent"}

// HookPosAfterEvent triggers after an event's transition is applied. Item is
// the Event.
var HookPosAfterEvent = &HookPos{Name: "AfterEvent"}

// HookPosElementTerminal triggers when an element is recorded as served,
// rejected or drained. Item is the *Element.
var HookPosElementTerminal = &HookPos{Name: "ElementTerminal"}

// HookCtx is the context that holds all the information about the site that a
// hook is triggered
type HookCtx struct {
	Sim  *Simulator
	Pos  *HookPos
	Now  float64
	Item interface{}
}

// Hook is a short piece of program that can be invoked by the simulator.
type Hook interface {
	// Func determines what to do if hook is invoked.
	Func(ctx HookCtx)
}

// HookFunc adapts a plain function to the Hook interface
type HookFunc func(ctx HookCtx)

// Func calls f(ctx)
func (f HookFunc) Func(ctx HookCtx) {
	f(ctx)
}

type hookableBase struct {
	hooks []Hook
}

// AcceptHook registers a hook
func (h *hookableBase) AcceptHook(hook Hook) {
	h.hooks = append(h.hooks, hook)
}

// NumHooks returns the number of registered hooks
func (h *hookableBase) NumHooks() int {
	return len(h.hooks)
}

func (h *hookableBase) invokeHook(ctx HookCtx) {
	for _, hook := range h.hooks {
		hook.Func(ctx)
	}
}
