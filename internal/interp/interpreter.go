package interp

import (
	"sync"

	"amberlang/internal/bytecode"
	"amberlang/internal/externals"
	"amberlang/internal/heap"
	"amberlang/internal/object"
	"amberlang/internal/opcode"
	"amberlang/internal/process"
	"amberlang/internal/scheduler"
	"amberlang/internal/vmerrors"
	"amberlang/internal/vmlog"
)

// maxFrameDepth bounds the call stack (spec.md §7 StackOverflow). The
// reference runtime leaves the exact bound unspecified; this is a
// generous default a deliberately-recursive test program can still hit
// without a multi-second run.
const maxFrameDepth = 4096

// Spawner is the minimal scheduler surface the interpreter needs: admit a
// freshly spawned process, and reinject one a Send just woke. Kept narrow
// so this package's tests can fake it without building a real Scheduler.
type Spawner interface {
	Spawn(p *process.Process)
	NotifyMessage(p *process.Process)
	Poller() scheduler.IOPoller
}

// Interpreter is the Runner the scheduler drives: it executes one
// reduction-bounded slice of a process per Run call (spec.md §4.C/§4.E).
type Interpreter struct {
	module    *bytecode.Module
	externals *externals.Registry
	sched     Spawner
	log       *vmlog.Logger

	permanent *heap.Permanent

	pool            *heap.Pool
	youngThreshold  int
	matureThreshold int
	nextPID         func() uint64

	mu        sync.Mutex
	processes map[uint64]*process.Process
}

// New returns an Interpreter bound to module's global scope and the given
// external-function registry, allocating every process it spawns from
// pool with the given young/mature block thresholds (internal/config).
// permanent is handed to external functions that need to reach the shared
// permanent space, such as load_module. AttachScheduler must be called
// once the scheduler exists, before any process runs Spawn/Send/Suspend.
func New(module *bytecode.Module, reg *externals.Registry, log *vmlog.Logger, permanent *heap.Permanent, pool *heap.Pool, youngThreshold, matureThreshold int, nextPID func() uint64) *Interpreter {
	if log == nil {
		log = vmlog.Default()
	}
	return &Interpreter{
		module:          module,
		externals:       reg,
		log:             log,
		permanent:       permanent,
		pool:            pool,
		youngThreshold:  youngThreshold,
		matureThreshold: matureThreshold,
		nextPID:         nextPID,
		processes:       make(map[uint64]*process.Process),
	}
}

// RegisterProcess records p in the PID table so Send can resolve a
// process handle to its concrete Process (spec.md §6 "Opaque to user
// code; exposes send/receive via instructions only" — the table is how
// the opaque handle's ProcessID turns back into something Send can use).
func (ip *Interpreter) RegisterProcess(p *process.Process) {
	ip.mu.Lock()
	ip.processes[p.ID] = p
	ip.mu.Unlock()
}

func (ip *Interpreter) lookupProcess(id uint64) (*process.Process, bool) {
	ip.mu.Lock()
	defer ip.mu.Unlock()
	p, ok := ip.processes[id]
	return p, ok
}

// AttachScheduler completes construction; the scheduler needs a Runner at
// construction time but the Runner needs the scheduler too, so wiring
// happens in two steps.
func (ip *Interpreter) AttachScheduler(s Spawner) { ip.sched = s }

// Run executes p until it yields, blocks, suspends, or terminates,
// implementing scheduler.Runner (spec.md §4.C "Reductions ... at 0 the
// process yields within one instruction").
func (ip *Interpreter) Run(p *process.Process) scheduler.RunResult {
	if p.CurrentFrame() == nil {
		p.PushFrame(process.NewFrame(p.EntryCode, nil, -1))
	}

	for {
		f := p.CurrentFrame()
		if f == nil {
			p.Terminate(process.TerminationReason{Completed: true})
			return scheduler.RunTerminated
		}
		if f.PC >= len(f.Code.Instructions) {
			// Falling off the end of a code body behaves like an implicit
			// Return of Nil.
			sig, err := ip.doReturn(p, f, object.Nil)
			if res, done := ip.handleSignal(p, sig, err); done {
				return res
			}
			continue
		}

		instr := f.Code.Instructions[f.PC]
		p.Reductions.Charge(process.WeightInstruction)

		sig, err := ip.dispatch(p, f, instr)
		if res, done := ip.handleSignal(p, sig, err); done {
			return res
		}

		if p.Reductions.Exhausted() {
			return scheduler.RunYielded
		}
	}
}

// handleSignal translates a handler's outcome into either "keep looping"
// (done=false) or a final scheduler.RunResult (done=true).
func (ip *Interpreter) handleSignal(p *process.Process, sig signal, err error) (scheduler.RunResult, bool) {
	if err != nil {
		sig, err = ip.unwind(p, err)
	}
	switch sig {
	case sigContinue, sigEnterFrame, sigReturnFrame:
		return 0, false
	case sigYield:
		return scheduler.RunYielded, true
	case sigSuspend:
		return scheduler.RunSuspended, true
	case sigWaitMessage:
		return scheduler.RunWaitingOnMessage, true
	case sigWaitIO:
		return scheduler.RunWaitingOnIO, true
	case sigTerminate:
		return scheduler.RunTerminated, true
	case sigThrow:
		p.Terminate(process.TerminationReason{Completed: false, Err: err})
		return scheduler.RunTerminated, true
	default:
		return scheduler.RunTerminated, true
	}
}

// unwind consults the current frame's exception table; if nothing handles
// err it pops frames looking for a handler, terminating the process with
// Err set if the stack empties out (spec.md §4.E "Throw ... unwinds frames
// consulting the exception table; an uncaught throw terminates the
// process"). A Panic-kind error never consults a handler at all: spec.md:147
// "Panic bypasses the table and terminates the process" is unconditional,
// so it skips straight to popping every frame.
func (ip *Interpreter) unwind(p *process.Process, cause error) (signal, error) {
	if verr, ok := cause.(*vmerrors.Error); ok && verr.Kind == vmerrors.Panic {
		for p.PopFrame() != nil {
		}
		return sigThrow, cause
	}
	for {
		f := p.CurrentFrame()
		if f == nil {
			return sigThrow, cause
		}
		if handlerPC, reg, ok := f.ExceptionHandlerFor(f.PC); ok {
			f.SetRegister(reg, errorValue(cause))
			f.PC = handlerPC
			return sigContinue, nil
		}
		p.PopFrame()
	}
}

// errorValue boxes a Go error as a string object so handler code can
// inspect it; the reference object model has no dedicated exception kind,
// matching spec.md §3's tagged-inline-value set exactly.
func errorValue(err error) object.Pointer {
	o := object.New(object.Local)
	o.Kind = object.KindString
	o.Str = err.Error()
	return object.Ref(o)
}

func (ip *Interpreter) dispatch(p *process.Process, f *process.Frame, instr object.Instruction) (signal, error) {
	switch opcode.Opcode(instr.Opcode) {
	case opcode.SetLiteral:
		return ip.opSetLiteral(p, f, instr)
	case opcode.GetLocal:
		return ip.opGetLocal(p, f, instr)
	case opcode.SetLocal:
		return ip.opSetLocal(p, f, instr)
	case opcode.GetGlobal:
		return ip.opGetGlobal(p, f, instr)
	case opcode.SetGlobal:
		return ip.opSetGlobal(p, f, instr)
	case opcode.IntegerAdd:
		return ip.opIntegerAdd(p, f, instr)

	case opcode.Allocate:
		return ip.opAllocate(p, f, instr)
	case opcode.SetAttribute:
		return ip.opSetAttribute(p, f, instr)
	case opcode.GetAttribute:
		return ip.opGetAttribute(p, f, instr, false)
	case opcode.GetAttributeStrict:
		return ip.opGetAttribute(p, f, instr, true)
	case opcode.DefMethod:
		return ip.opDefMethod(p, f, instr)
	case opcode.LookupMethod:
		return ip.opLookupMethod(p, f, instr)
	case opcode.RespondsTo:
		return ip.opRespondsTo(p, f, instr)

	case opcode.Goto:
		return ip.opGoto(p, f, instr)
	case opcode.GotoIfTrue:
		return ip.opGotoIf(p, f, instr, true)
	case opcode.GotoIfFalse:
		return ip.opGotoIf(p, f, instr, false)
	case opcode.Return:
		return ip.opReturn(p, f, instr)
	case opcode.Throw:
		return ip.opThrow(p, f, instr)

	case opcode.RunBlock:
		return ip.opRunBlock(p, f, instr)

	case opcode.Spawn:
		return ip.opSpawn(p, f, instr)
	case opcode.Send:
		return ip.opSend(p, f, instr)
	case opcode.Receive:
		return ip.opReceive(p, f, instr)
	case opcode.Suspend:
		return ip.opSuspend(p, f, instr)

	case opcode.ExternalCall:
		return ip.opExternalCall(p, f, instr)

	default:
		return sigThrow, vmerrors.New(vmerrors.InvalidType, "unknown opcode %d", instr.Opcode)
	}
}

// allocate places a freshly built object into p's local heap, charging the
// allocation reduction weight (spec.md §9 reduction-weight resolution).
func (ip *Interpreter) allocate(p *process.Process, o *object.Object) (object.Pointer, error) {
	if err := p.Allocate(o); err != nil {
		return object.Nil, err
	}
	p.Reductions.Charge(process.WeightAllocation)
	return object.Ref(o), nil
}
