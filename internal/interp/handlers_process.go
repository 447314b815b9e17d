package interp

import (
	"time"

	"amberlang/internal/object"
	"amberlang/internal/process"
	"amberlang/internal/vmerrors"
)

// opSpawn creates a new process running block's code from a fresh
// top-level binding and admits it to the scheduler (spec.md §4.C "spawn
// enqueues the new process", §4.D). The new process does not inherit
// block's captured binding: a capture may hold Local-space pointers into
// the spawning process's own heap, and spec.md §3 never licenses a
// pointer living in one process's Local space to be read by another, so
// carrying the closure across the process boundary would violate process
// isolation. Only the code body transfers; programs that need to pass
// data to a spawned process do so via its first message, like process
// messaging everywhere else in this model.
func (ip *Interpreter) opSpawn(p *process.Process, f *process.Frame, instr object.Instruction) (signal, error) {
	r, blockReg := int(instr.Operands[0]), int(instr.Operands[1])
	blockVal := f.GetRegister(blockReg)
	if !blockVal.IsHeap() || blockVal.HeapObject().Kind != object.KindBlock {
		return sigThrow, vmerrors.New(vmerrors.InvalidType, "Spawn: register does not hold a block")
	}
	bv, ok := blockVal.HeapObject().Any.(*object.BlockValue)
	if !ok || bv == nil {
		return sigThrow, vmerrors.New(vmerrors.InvalidType, "Spawn: malformed block value")
	}

	child := process.New(ip.nextPID(), ip.pool, ip.youngThreshold, ip.matureThreshold)
	child.EntryCode = bv.Code
	ip.registerChild(child)
	p.Reductions.Charge(process.WeightCall)

	handle := object.New(object.Local)
	handle.Kind = object.KindProcessHandle
	handle.Any = &object.ProcessHandleValue{ProcessID: child.ID}
	ptr, err := ip.allocate(p, handle)
	if err != nil {
		return sigThrow, err
	}
	f.SetRegister(r, ptr)
	f.PC++
	return sigContinue, nil
}

func (ip *Interpreter) registerChild(child *process.Process) {
	ip.RegisterProcess(child)
	ip.sched.Spawn(child)
}

func processHandle(f *process.Frame, reg int) (*object.ProcessHandleValue, error) {
	v := f.GetRegister(reg)
	if !v.IsHeap() || v.HeapObject().Kind != object.KindProcessHandle {
		return nil, vmerrors.New(vmerrors.InvalidType, "expected a process handle register")
	}
	h, ok := v.HeapObject().Any.(*object.ProcessHandleValue)
	if !ok || h == nil {
		return nil, vmerrors.New(vmerrors.InvalidType, "malformed process handle")
	}
	return h, nil
}

// opSend delivers val to recv's mailbox, deep-copying through
// process.Send, and wakes the receiver if it was parked in Receive
// (spec.md §4.C).
func (ip *Interpreter) opSend(p *process.Process, f *process.Frame, instr object.Instruction) (signal, error) {
	recvReg, valReg := int(instr.Operands[0]), int(instr.Operands[1])
	h, err := processHandle(f, recvReg)
	if err != nil {
		return sigThrow, err
	}
	receiver, ok := ip.lookupProcess(h.ProcessID)
	if !ok {
		return sigThrow, vmerrors.New(vmerrors.InvalidType, "Send: unknown process id %d", h.ProcessID)
	}
	woke, err := process.Send(receiver, f.GetRegister(valReg))
	if err != nil {
		return sigThrow, err
	}
	if woke {
		ip.sched.NotifyMessage(receiver)
	}
	f.PC++
	return sigContinue, nil
}

// opReceive dequeues the oldest mailbox message into r, or parks the
// process until one arrives, with an optional relative timeout in
// milliseconds (0 means wait indefinitely, spec.md §4.C "Receive with an
// optional timeout"; spec.md:173 "Receive r, 10ms on empty mailbox returns
// nil after >=10ms and <1s").
//
// A timed-out Receive is retried on the same instruction once the process
// is rescheduled, since nothing else tells this handler why it was woken:
// a Send delivering a message and the timer firing both just mark the
// process Runnable. opReceive distinguishes the two itself by recording
// the deadline it armed (Process.receiveDeadline, never touched by the
// scheduler's generic Reschedule) and checking it against the clock before
// re-arming a fresh one, so a wakeup with an empty mailbox and an elapsed
// deadline resolves to nil instead of waiting forever.
func (ip *Interpreter) opReceive(p *process.Process, f *process.Frame, instr object.Instruction) (signal, error) {
	r, timeoutReg := int(instr.Operands[0]), int(instr.Operands[1])
	if v, ok := process.Receive(p); ok {
		p.SetReceiveDeadline(nil)
		f.SetRegister(r, v)
		f.PC++
		return sigContinue, nil
	}

	if deadline, ok := p.ReceiveDeadline(); ok {
		if !time.Now().Before(deadline) {
			p.SetReceiveDeadline(nil)
			f.SetRegister(r, object.Nil)
			f.PC++
			return sigContinue, nil
		}
		// Woken before our own deadline (some other concurrent status
		// transition); keep waiting on the same deadline rather than
		// restarting the timeout from now.
		p.SetDeadline(&deadline)
		return sigWaitMessage, nil
	}

	timeoutMS := f.GetRegister(timeoutReg)
	if timeoutMS.IsInteger() && timeoutMS.IntegerValue() > 0 {
		deadline := time.Now().Add(time.Duration(timeoutMS.IntegerValue()) * time.Millisecond)
		p.SetReceiveDeadline(&deadline)
		p.SetDeadline(&deadline)
	}
	return sigWaitMessage, nil
}

// opSuspend parks p until timeoutMS elapses (spec.md §4.C "Suspend(duration)").
func (ip *Interpreter) opSuspend(p *process.Process, f *process.Frame, instr object.Instruction) (signal, error) {
	timeoutReg := int(instr.Operands[0])
	v := f.GetRegister(timeoutReg)
	if !v.IsInteger() || v.IntegerValue() < 0 {
		return sigThrow, vmerrors.New(vmerrors.InvalidType, "Suspend: timeout must be a non-negative integer")
	}
	deadline := time.Now().Add(time.Duration(v.IntegerValue()) * time.Millisecond)
	p.SetDeadline(&deadline)
	f.PC++
	return sigSuspend, nil
}
