package scheduler

import (
	"runtime"
	"sync"
	"sync/atomic"

	"amberlang/internal/process"
	"amberlang/internal/runtimestats"
)

// Scheduler is the top-level M:N orchestrator of spec.md §4.D: a fixed
// pool of Workers, a global Injector, a Timer thread, and an IOPoller, all
// sharing one Runner (the interpreter) to advance processes.
type Scheduler struct {
	workers  []*Worker
	injector *Injector
	timer    *Timer
	poller   IOPoller
	runner   Runner
	stats    *runtimestats.Scheduler

	next    uint64 // round-robin counter for spawn placement
	started bool
	wg      sync.WaitGroup
}

// New builds a Scheduler with workerCount workers (0 means
// max(1, runtime.NumCPU()), per spec.md §4.D) driving runner. The returned
// Scheduler is not started until Start is called.
func New(workerCount int, runner Runner, stats *runtimestats.Scheduler) *Scheduler {
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
		if workerCount < 1 {
			workerCount = 1
		}
	}
	s := &Scheduler{
		injector: NewInjector(4096),
		runner:   runner,
		stats:    stats,
	}
	s.timer = NewTimer(s.Reschedule)
	poller, err := NewIOPoller(func(p *process.Process) {
		// Mark the wakeup as IO-driven before reinjecting so the external
		// function that registered the descriptor (internal/externals)
		// can tell a readiness wakeup apart from any other reschedule.
		p.SetIOReady(true)
		s.Reschedule(p)
	})
	if err == nil {
		s.poller = poller
	}
	s.workers = make([]*Worker, workerCount)
	for i := range s.workers {
		s.workers[i] = newWorker(i, s)
	}
	return s
}

// Start launches every worker, the timer, and the I/O poller in their own
// goroutines.
func (s *Scheduler) Start() {
	s.started = true
	for _, w := range s.workers {
		s.wg.Add(1)
		go func(w *Worker) {
			defer s.wg.Done()
			w.Run()
		}(w)
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.timer.Run()
	}()
	if s.poller != nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.poller.Run()
		}()
	}
}

// Shutdown stops every worker, the timer, and the poller, and waits for
// them to exit.
func (s *Scheduler) Shutdown() {
	for _, w := range s.workers {
		w.Stop()
	}
	s.timer.Stop()
	if s.poller != nil {
		s.poller.Close()
	}
	s.wg.Wait()
}

// Spawn admits a newly created process into the run queue. Before Start,
// processes are placed on the workers' local deques round-robin so an
// initial burst fans out across workers; once Start has run, only a
// deque's owning worker may push onto it, so later spawns go through the
// injector (spec.md §4.D/§4.C "spawn enqueues the new process").
func (s *Scheduler) Spawn(p *process.Process) {
	if s.stats != nil {
		s.stats.RecordSpawn()
	}
	if s.started {
		if !s.injector.TryPush(p) {
			s.injector.Push(p)
		}
		return
	}
	idx := atomic.AddUint64(&s.next, 1) % uint64(len(s.workers))
	s.workers[idx].pushLocal(p)
}

// Reschedule returns a previously running process to the run queue,
// whether because it yielded, its timer fired, a message woke it, or its
// I/O became ready. It always goes through the injector: the worker that
// last ran p may have moved on, so there is no "local" deque to prefer.
func (s *Scheduler) Reschedule(p *process.Process) {
	// Clear any deadline the last slice armed: it has either just fired
	// (this call came from the Timer) or is now moot (this call came from
	// a Send waking a receiver early). Leaving it set would make the next
	// scheduleDeadline call re-arm the timer against a stale, already-past
	// deadline and busy-loop.
	p.SetDeadline(nil)
	p.SetStatus(process.Runnable)
	if !s.injector.TryPush(p) {
		s.injector.Push(p)
	}
}

// NotifyMessage re-enqueues p if Send woke it from WaitingOnMessage, and
// cancels any pending receive-timeout in the timer. Callers (the Send
// opcode handler in internal/interp) call this after process.Send reports
// wokeReceiver.
func (s *Scheduler) NotifyMessage(p *process.Process) {
	s.timer.Cancel(p)
	s.Reschedule(p)
}

// Poller exposes the scheduler's IOPoller so external-call handlers
// (internal/externals) can register blocking file descriptors directly.
func (s *Scheduler) Poller() IOPoller { return s.poller }

// WorkerCount reports how many workers are running.
func (s *Scheduler) WorkerCount() int { return len(s.workers) }
