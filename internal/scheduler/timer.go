package scheduler

import (
	"container/heap"
	"sync"
	"time"

	"amberlang/internal/process"
)

// timerEntry is one pending wakeup: fire p's suspension once Deadline has
// passed (spec.md §4.D "a timer thread maintains a min-heap of pending
// wakeups ordered by deadline").
type timerEntry struct {
	deadline time.Time
	proc     *process.Process
	index    int
	cancelled bool
}

type timerHeap []*timerEntry

func (h timerHeap) Len() int            { return len(h) }
func (h timerHeap) Less(i, j int) bool  { return h[i].deadline.Before(h[j].deadline) }
func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index, h[j].index = i, j
}
func (h *timerHeap) Push(x any) {
	e := x.(*timerEntry)
	e.index = len(*h)
	*h = append(*h, e)
}
func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// Timer is a single goroutine driving a min-heap of (deadline, process)
// pairs, waking processes whose suspension has expired and handing them to
// the scheduler's injector (spec.md §4.D, §7 "Suspend(duration)").
type Timer struct {
	mu      sync.Mutex
	h       timerHeap
	wake    chan struct{}
	inject  func(*process.Process)
	entries map[uint64]*timerEntry
	stop    chan struct{}
}

// NewTimer returns a Timer that hands expired processes to inject.
func NewTimer(inject func(*process.Process)) *Timer {
	return &Timer{
		wake:    make(chan struct{}, 1),
		inject:  inject,
		entries: make(map[uint64]*timerEntry),
		stop:    make(chan struct{}),
	}
}

// Schedule arranges for p to be handed to the injector at deadline,
// replacing any existing pending deadline for p.
func (t *Timer) Schedule(p *process.Process, deadline time.Time) {
	t.mu.Lock()
	if old, ok := t.entries[p.ID]; ok {
		old.cancelled = true
	}
	e := &timerEntry{deadline: deadline, proc: p}
	heap.Push(&t.h, e)
	t.entries[p.ID] = e
	t.mu.Unlock()

	select {
	case t.wake <- struct{}{}:
	default:
	}
}

// Cancel removes any pending deadline for p, used when a message arrives
// before a receive timeout expires.
func (t *Timer) Cancel(p *process.Process) {
	t.mu.Lock()
	if e, ok := t.entries[p.ID]; ok {
		e.cancelled = true
		delete(t.entries, p.ID)
	}
	t.mu.Unlock()
}

// Run drives the timer loop until Stop is called. Intended to run in its
// own goroutine.
func (t *Timer) Run() {
	timer := time.NewTimer(time.Hour)
	defer timer.Stop()
	for {
		t.mu.Lock()
		var wait time.Duration
		if t.h.Len() == 0 {
			wait = time.Hour
		} else {
			wait = time.Until(t.h[0].deadline)
			if wait < 0 {
				wait = 0
			}
		}
		t.mu.Unlock()

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(wait)

		select {
		case <-t.stop:
			return
		case <-t.wake:
			continue
		case <-timer.C:
			t.fireExpired()
		}
	}
}

func (t *Timer) fireExpired() {
	now := timeNow()
	var fired []*process.Process
	t.mu.Lock()
	for t.h.Len() > 0 && !t.h[0].deadline.After(now) {
		e := heap.Pop(&t.h).(*timerEntry)
		if e.cancelled {
			continue
		}
		delete(t.entries, e.proc.ID)
		fired = append(fired, e.proc)
	}
	t.mu.Unlock()
	for _, p := range fired {
		t.inject(p)
	}
}

// Stop halts the timer loop.
func (t *Timer) Stop() { close(t.stop) }

// timeNow exists so the zero-value wall clock path is the single place a
// real-time call is made, matching the rest of the runtime's avoidance of
// scattered time.Now() calls in hot logic.
func timeNow() time.Time { return time.Now() }
