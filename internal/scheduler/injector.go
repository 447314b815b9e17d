package scheduler

import "amberlang/internal/process"

// Injector is the global run queue: newly spawned processes, processes
// woken by a message or timer from outside their owning worker, and
// overflow from a full local deque all land here (spec.md §4.D "a global
// injector queue used for newly spawned processes and load balancing
// overflow").
type Injector struct {
	ring chan *process.Process
}

// NewInjector returns an Injector buffered to capacity.
func NewInjector(capacity int) *Injector {
	return &Injector{ring: make(chan *process.Process, capacity)}
}

// Push enqueues p, blocking only if the injector is saturated (back-pressure
// rather than unbounded growth).
func (i *Injector) Push(p *process.Process) { i.ring <- p }

// TryPush enqueues p without blocking, reporting whether it succeeded.
func (i *Injector) TryPush(p *process.Process) bool {
	select {
	case i.ring <- p:
		return true
	default:
		return false
	}
}

// Pop removes one process, blocking until one is available or done is
// closed, in which case it returns (nil, false).
func (i *Injector) Pop(done <-chan struct{}) (*process.Process, bool) {
	select {
	case p := <-i.ring:
		return p, true
	case <-done:
		return nil, false
	}
}

// TryPop removes one process without blocking.
func (i *Injector) TryPop() *process.Process {
	select {
	case p := <-i.ring:
		return p
	default:
		return nil
	}
}
