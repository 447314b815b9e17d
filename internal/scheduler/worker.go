package scheduler

import (
	"math/rand"
	"time"

	"amberlang/internal/process"
)

// Worker is one of the fixed N OS threads (goroutines, in this Go
// rendering) driving the run queue (spec.md §4.D "N = max(1, cpu_count)
// worker threads"). Each worker owns a local deque, popping its own tail
// first, then stealing from a random peer, then falling back to the
// global injector, and finally parking briefly when every source is dry.
type Worker struct {
	id      int
	deque   *Deque
	sched   *Scheduler
	rng     *rand.Rand
	stop    chan struct{}
}

func newWorker(id int, sched *Scheduler) *Worker {
	return &Worker{
		id:    id,
		deque: NewDeque(256),
		sched: sched,
		rng:   rand.New(rand.NewSource(int64(id) + 1)),
		stop:  make(chan struct{}),
	}
}

// Run drives the worker loop until Stop is called (spec.md §4.D work-
// stealing loop: local pop, steal, injector, park).
func (w *Worker) Run() {
	idle := time.Millisecond
	for {
		select {
		case <-w.stop:
			return
		default:
		}

		stats := w.sched.stats
		p := w.deque.PopBottom()
		switch {
		case p != nil:
			if stats != nil {
				stats.RecordLocalPop()
			}
		default:
			if p = w.steal(); p != nil {
				if stats != nil {
					stats.RecordSteal()
				}
			} else if p = w.sched.injector.TryPop(); p != nil {
				if stats != nil {
					stats.RecordInjectorPop()
				}
			}
		}
		if p == nil {
			if stats != nil {
				stats.RecordPark()
			}
			select {
			case <-w.stop:
				return
			case <-time.After(idle):
			}
			continue
		}
		idle = time.Millisecond
		w.execute(p)
	}
}

// steal tries every peer worker once, in a random rotation, per spec.md
// §4.D "steal from a randomly chosen peer".
func (w *Worker) steal() *process.Process {
	peers := w.sched.workers
	if len(peers) <= 1 {
		return nil
	}
	start := w.rng.Intn(len(peers))
	for i := 0; i < len(peers); i++ {
		peer := peers[(start+i)%len(peers)]
		if peer == w {
			continue
		}
		if p := peer.deque.StealTop(); p != nil {
			return p
		}
	}
	return nil
}

func (w *Worker) execute(p *process.Process) {
	if !p.CompareAndSetStatus(process.Runnable, process.Running) {
		// A racing timer/message wakeup already changed status (e.g. the
		// process terminated concurrently); drop it rather than run a
		// stale process.
		if p.Status() == process.Runnable {
			w.sched.Reschedule(p)
		}
		return
	}
	p.Reductions.Reset()

	switch w.sched.runner.Run(p) {
	case RunYielded:
		p.SetStatus(process.Runnable)
		w.sched.Reschedule(p)
	case RunSuspended:
		p.SetStatus(process.Sleeping)
		w.scheduleDeadline(p)
	case RunWaitingOnMessage:
		p.SetStatus(process.WaitingOnMessage)
		// A Receive with a timeout sets a deadline even though the
		// process parks as WaitingOnMessage rather than Sleeping; either
		// a matching Send or the timer firing first reschedules it.
		w.scheduleDeadline(p)
	case RunWaitingOnIO:
		p.SetStatus(process.WaitingOnIO)
	case RunTerminated:
		// Process.Terminate was already called by the runner.
	}
}

// scheduleDeadline arms the timer if p.SetDeadline was called during this
// slice; a Receive without a timeout or a plain WaitingOnMessage leaves no
// deadline set, so this is a no-op for the common indefinite-wait case.
func (w *Worker) scheduleDeadline(p *process.Process) {
	if deadline, ok := p.Deadline(); ok {
		w.sched.timer.Schedule(p, deadline)
	}
}

// Stop halts the worker loop after its current slice finishes.
func (w *Worker) Stop() { close(w.stop) }

// pushLocal places p on this worker's own deque, spilling to the injector
// if the deque is saturated.
func (w *Worker) pushLocal(p *process.Process) {
	if !w.deque.PushBottom(p) {
		w.sched.injector.Push(p)
	}
}
