package scheduler

import (
	"time"

	"amberlang/internal/process"
)

// Interest is the set of readiness events a registration cares about.
type Interest uint8

const (
	InterestRead Interest = 1 << iota
	InterestWrite
)

// IOPoller is the blocking-I/O offload primitive of spec.md §4.D: a process
// that would block on a file descriptor registers it here instead of
// blocking a worker, and is handed back to the injector once the
// descriptor becomes ready. Two implementations exist behind this
// interface: an epoll-backed one on Linux (iopoller_linux.go) and a
// goroutine-per-wait fallback everywhere else (iopoller_other.go) — the
// platform's best primitive, which spec.md leaves unspecified
// (SPEC_FULL.md §4.D).
type IOPoller interface {
	// Register arranges for p to be resumed via the injector once fd is
	// ready for the given interest.
	Register(fd int, interest Interest, p *process.Process) error
	// Deregister cancels a pending registration for fd, if any.
	Deregister(fd int) error
	// Run drives the poll loop until Close is called.
	Run()
	Close() error
}

// pollTimeout bounds how long a single poll iteration blocks so the loop
// can observe Close promptly.
const pollTimeout = 250 * time.Millisecond
