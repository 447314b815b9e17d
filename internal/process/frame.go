package process

import "amberlang/internal/object"

// FrameState is the state machine of a frame (spec.md §4.E).
type FrameState uint8

const (
	Executing FrameState = iota
	Unwinding
	Returning
)

// Frame is one entry of a process's call stack: a CompiledCode body, its
// program counter, its register file, and the Binding capturing its local
// variable slots (spec.md §3 Binding, §4.C "call stack of bindings +
// registers").
type Frame struct {
	Code      *object.CompiledCodeValue
	Binding   *object.Binding
	Registers []object.Pointer
	PC        int
	State     FrameState

	// CallerRegister is the register in the calling frame that should
	// receive this frame's return value once it pops, or -1 for a
	// process's entry frame, which has no caller to report back to.
	CallerRegister int
}

// NewFrame allocates a frame ready to execute code from PC 0, with
// registers sized to the CompiledCode's declared register count and a
// fresh Binding chained to parent (nil for a top-level call).
// callerRegister should be -1 for a process's entry frame.
func NewFrame(code *object.CompiledCodeValue, parent *object.Binding, callerRegister int) *Frame {
	return &Frame{
		Code:           code,
		Binding:        &object.Binding{Parent: parent},
		Registers:      make([]object.Pointer, code.RegisterCount),
		State:          Executing,
		CallerRegister: callerRegister,
	}
}

// Get/Set registers; out-of-range access panics rather than silently
// returning Nil, since an out-of-range register index can only come from a
// malformed CompiledCode (the loader does not check register operands
// against RegisterCount).
func (f *Frame) GetRegister(i int) object.Pointer { return f.Registers[i] }
func (f *Frame) SetRegister(i int, v object.Pointer) { f.Registers[i] = v }

// ExceptionHandlerFor returns the handler program counter and register for
// the first exception table entry covering pc, or (-1, -1) if none
// applies. Used by Throw to unwind (spec.md §4.E "Throw ... unwinds frames
// consulting the exception table").
func (f *Frame) ExceptionHandlerFor(pc int) (handlerPC, register int, ok bool) {
	for _, e := range f.Code.Exceptions {
		if pc >= e.StartPC && pc < e.EndPC {
			return e.HandlerPC, e.Register, true
		}
	}
	return -1, -1, false
}
