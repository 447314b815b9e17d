package interp

import (
	"amberlang/internal/object"
	"amberlang/internal/process"
	"amberlang/internal/vmerrors"
)

// truthy treats Nil and integer zero as false, everything else as true —
// the only two "obviously false" inline values spec.md's tagged-value set
// offers with no dedicated boolean kind.
func truthy(v object.Pointer) bool {
	if v.IsNil() {
		return false
	}
	if v.IsInteger() && v.IntegerValue() == 0 {
		return false
	}
	return true
}

func (ip *Interpreter) opGoto(p *process.Process, f *process.Frame, instr object.Instruction) (signal, error) {
	f.PC = int(instr.Operands[0])
	return sigContinue, nil
}

func (ip *Interpreter) opGotoIf(p *process.Process, f *process.Frame, instr object.Instruction, wantTrue bool) (signal, error) {
	pc, r := int(instr.Operands[0]), int(instr.Operands[1])
	if truthy(f.GetRegister(r)) == wantTrue {
		f.PC = pc
	} else {
		f.PC++
	}
	return sigContinue, nil
}

func (ip *Interpreter) opReturn(p *process.Process, f *process.Frame, instr object.Instruction) (signal, error) {
	r := int(instr.Operands[0])
	return ip.doReturn(p, f, f.GetRegister(r))
}

// doReturn pops f and, if a caller frame remains, deposits value in the
// register the call instruction named (spec.md §4.E "Return ... pops the
// frame, depositing the result in the caller's designated register",
// rendered here via Frame.CallerRegister rather than a separate call
// stack of pending registers). With no caller left, the process's result
// is the value Terminate records.
func (ip *Interpreter) doReturn(p *process.Process, f *process.Frame, value object.Pointer) (signal, error) {
	p.PopFrame()
	caller := p.CurrentFrame()
	if caller == nil {
		p.Terminate(process.TerminationReason{Completed: true, Result: value})
		return sigTerminate, nil
	}
	switch {
	case f.CallerRegister == syncCallSentinel:
		p.SetSyncResult(value)
	case f.CallerRegister >= 0:
		caller.SetRegister(f.CallerRegister, value)
	}
	return sigReturnFrame, nil
}

// opThrow raises a catchable exception that unwinds frames consulting the
// exception table (spec.md:93 "Throw r ... unwinds frames consulting the
// exception table; if none, terminates the process with an error"). It
// uses vmerrors.External rather than vmerrors.Panic: spec.md:147 reserves
// Panic for the uncatchable case that "bypasses the table", which unwind
// enforces by never consulting a handler for a Panic-kind error. Throw and
// Panic are distinct constructs in spec.md's taxonomy even though both
// originate from user bytecode.
func (ip *Interpreter) opThrow(p *process.Process, f *process.Frame, instr object.Instruction) (signal, error) {
	r := int(instr.Operands[0])
	v := f.GetRegister(r)
	msg := "thrown exception"
	if v.IsHeap() && v.HeapObject().Kind == object.KindString {
		msg = v.HeapObject().Str
	}
	return sigThrow, vmerrors.New(vmerrors.External, "%s", msg)
}

// opRunBlock enters a block's captured environment as a new frame,
// binding up to four argument registers into the callee's first
// registers (spec.md §4.E "RunBlock ... binding its enclosing binding").
func (ip *Interpreter) opRunBlock(p *process.Process, f *process.Frame, instr object.Instruction) (signal, error) {
	r, blockReg := int(instr.Operands[0]), int(instr.Operands[1])
	blockVal := f.GetRegister(blockReg)
	if !blockVal.IsHeap() || blockVal.HeapObject().Kind != object.KindBlock {
		return sigThrow, vmerrors.New(vmerrors.InvalidType, "RunBlock: register does not hold a block")
	}
	bv, ok := blockVal.HeapObject().Any.(*object.BlockValue)
	if !ok || bv == nil {
		return sigThrow, vmerrors.New(vmerrors.InvalidType, "RunBlock: malformed block value")
	}
	if p.Depth() >= maxFrameDepth {
		return sigThrow, vmerrors.New(vmerrors.StackOverflow, "call stack exceeded %d frames", maxFrameDepth)
	}

	callee := process.NewFrame(bv.Code, bv.Capture, r)
	for i := 0; i < 4 && i < bv.Code.Arity; i++ {
		callee.SetRegister(i, f.GetRegister(int(instr.Operands[2+i])))
	}
	p.Reductions.Charge(process.WeightCall)
	f.PC++
	p.PushFrame(callee)
	return sigEnterFrame, nil
}
