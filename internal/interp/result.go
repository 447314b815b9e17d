// Package interp implements the fetch/decode/dispatch loop described in
// spec.md §4.E: one goroutine-free, reduction-bounded step function per
// process time slice, driven by internal/scheduler's worker loop through
// the Runner interface.
package interp

// signal tells the dispatch loop what an instruction handler wants to
// happen next. It is internal to this package; the scheduler only ever
// sees the coarser scheduler.RunResult a whole time slice produces.
type signal uint8

const (
	sigContinue signal = iota
	sigEnterFrame
	sigReturnFrame
	sigYield
	sigSuspend
	sigWaitMessage
	sigWaitIO
	sigTerminate
	sigThrow
)
