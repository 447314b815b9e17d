package scheduler

import "amberlang/internal/process"

// RunResult is what a Runner reports after giving a process one time slice
// of execution (spec.md §4.C/§4.D). internal/interp's interpreter loop is
// the concrete Runner; this package only needs the outcome to decide
// whether to reschedule, park, or drop the process.
type RunResult uint8

const (
	// RunYielded means reductions were exhausted mid-execution; the
	// process is runnable again immediately (spec.md §8 invariant 5).
	RunYielded RunResult = iota
	// RunSuspended means the process called Suspend(duration); the
	// scheduler's Timer will reinject it once the deadline passes.
	RunSuspended
	// RunWaitingOnMessage means the process is blocked in Receive; the
	// scheduler arms the Timer if Receive set a deadline, and otherwise
	// takes no further action until Send wakes it
	// (internal/process.Process.Status transitions back to Runnable).
	RunWaitingOnMessage
	// RunWaitingOnIO means the process has already been registered with
	// the IOPoller by an external call; the scheduler takes no further
	// action until the poller reinjects it.
	RunWaitingOnIO
	// RunTerminated means the process finished (normally or via an
	// uncaught Throw) and Process.Terminate has already been called.
	RunTerminated
)

// Runner executes one reduction-bounded slice of a process. Implemented by
// internal/interp.Interpreter.
type Runner interface {
	Run(p *process.Process) RunResult
}
