package interp

import (
	"errors"

	"amberlang/internal/externals"
	"amberlang/internal/object"
	"amberlang/internal/process"
	"amberlang/internal/scheduler"
	"amberlang/internal/vmerrors"
)

// syncCallSentinel marks a frame pushed by callBlockSync: there is no real
// caller register to deposit the block's return value into, since the
// "caller" is native Go code paused inside an ExternalCall handler, not
// another frame. doReturn recognises it and routes the value through
// Process.SetSyncResult instead.
const syncCallSentinel = -2

// opExternalCall resolves name_lit in the registry and invokes it with up
// to four argument registers, depositing the result in r (spec.md §4.E
// ExternalCall, SPEC_FULL.md §6's category table).
func (ip *Interpreter) opExternalCall(p *process.Process, f *process.Frame, instr object.Instruction) (signal, error) {
	r, nameLit := int(instr.Operands[0]), int(instr.Operands[1])
	if nameLit < 0 || nameLit >= len(f.Code.Literals) {
		return sigThrow, vmerrors.New(vmerrors.InvalidType, "ExternalCall: literal index %d out of range", nameLit)
	}
	nameVal := f.Code.Literals[nameLit]
	if !nameVal.IsHeap() || nameVal.HeapObject().Kind != object.KindString {
		return sigThrow, vmerrors.New(vmerrors.InvalidType, "ExternalCall: name literal must be a string")
	}
	fn, err := ip.externals.Get(nameVal.HeapObject().Str)
	if err != nil {
		return sigThrow, err
	}

	args := make([]object.Pointer, 0, 4)
	for i := 0; i < 4; i++ {
		args = append(args, f.GetRegister(int(instr.Operands[2+i])))
	}

	result, err := fn(ip.context(p), args)
	if err != nil {
		if errors.Is(err, externals.ErrWaitingOnIO) {
			// fn already registered its fd with the poller; park without
			// advancing PC so the same ExternalCall retries once it is
			// ready (SPEC_FULL.md §4.D).
			return sigWaitIO, nil
		}
		return sigThrow, err
	}
	f.SetRegister(r, result)
	f.PC++
	return sigContinue, nil
}

// context builds the externals.Context for one ExternalCall, binding
// CallBlock back to this interpreter's nested-execution loop and
// RegisterIO to the attached scheduler's poller (nil before AttachScheduler
// or on a poller-less configuration, which stdin_read_line, its one user,
// checks for).
func (ip *Interpreter) context(p *process.Process) *externals.Context {
	ctx := &externals.Context{
		Process:   p,
		Permanent: ip.permanent,
		Log:       ip.log,
		CallBlock: ip.callBlockSync,
	}
	if ip.sched != nil {
		if poller := ip.sched.Poller(); poller != nil {
			ctx.RegisterIO = func(fd int, write bool, proc *process.Process) error {
				interest := scheduler.InterestRead
				if write {
					interest = scheduler.InterestWrite
				}
				return poller.Register(fd, interest, proc)
			}
		}
	}
	return ctx
}

// callBlockSync re-enters a block's code synchronously, for the "blocks"
// external category's call_block (SPEC_FULL.md §6). Unlike opRunBlock,
// which pushes a frame and lets the ordinary dispatch loop (and its
// reductions accounting) carry on across time slices, a native Go caller
// needs the result back before it can return control to bytecode, so this
// drives its own nested dispatch loop down to the depth it started at.
// Reduction exhaustion is intentionally not honoured mid-call: a block
// invoked this way runs to completion within the external call rather than
// yielding the worker, since there is no bytecode frame above it that
// could meaningfully resume later.
func (ip *Interpreter) callBlockSync(p *process.Process, bv *object.BlockValue, args []object.Pointer) (object.Pointer, error) {
	if p.Depth() >= maxFrameDepth {
		return object.Nil, vmerrors.New(vmerrors.StackOverflow, "call_block: call stack exceeded %d frames", maxFrameDepth)
	}
	startDepth := p.Depth()
	callee := process.NewFrame(bv.Code, bv.Capture, syncCallSentinel)
	for i := 0; i < len(args) && i < bv.Code.Arity; i++ {
		callee.SetRegister(i, args[i])
	}
	p.PushFrame(callee)

	for p.Depth() > startDepth {
		f := p.CurrentFrame()
		var sig signal
		var err error
		if f.PC >= len(f.Code.Instructions) {
			sig, err = ip.doReturn(p, f, object.Nil)
		} else {
			sig, err = ip.dispatch(p, f, f.Code.Instructions[f.PC])
		}
		if err != nil {
			sig, err = ip.unwind(p, err)
			if sig == sigThrow {
				return object.Nil, err
			}
			continue
		}
		if sig == sigTerminate {
			return object.Nil, vmerrors.New(vmerrors.Panic, "call_block: process terminated during block execution")
		}
	}
	return p.TakeSyncResult(), nil
}
