package scheduler

import (
	"sync"
	"testing"
	"time"

	"amberlang/internal/heap"
	"amberlang/internal/object"
	"amberlang/internal/process"
	"amberlang/internal/runtimestats"
)

func newTestProcess(id uint64) *process.Process {
	pool := heap.NewPool(&runtimestats.Heap{}, 0)
	return process.New(id, pool, 1<<20, 1<<20)
}

// terminatingRunner finishes every process on its first slice, used for
// scenario 6's "many independent processes, work gets distributed" shape.
type terminatingRunner struct {
	mu  sync.Mutex
	ran []uint64
}

func (r *terminatingRunner) Run(p *process.Process) RunResult {
	r.mu.Lock()
	r.ran = append(r.ran, p.ID)
	r.mu.Unlock()
	p.Terminate(process.TerminationReason{Completed: true})
	return RunTerminated
}

func TestSchedulerRunsSpawnedProcesses(t *testing.T) {
	runner := &terminatingRunner{}
	stats := &runtimestats.Scheduler{}
	s := New(4, runner, stats)
	s.Start()
	defer s.Shutdown()

	const n = 200
	procs := make([]*process.Process, n)
	for i := 0; i < n; i++ {
		procs[i] = newTestProcess(uint64(i))
		s.Spawn(procs[i])
	}
	for _, p := range procs {
		select {
		case <-waitChan(p):
		case <-time.After(5 * time.Second):
			t.Fatalf("process %d never terminated", p.ID)
		}
	}
	if stats.Spawned() != n {
		t.Fatalf("Spawned() = %d, want %d", stats.Spawned(), n)
	}
}

func waitChan(p *process.Process) <-chan struct{} {
	ch := make(chan struct{})
	go func() {
		p.Wait()
		close(ch)
	}()
	return ch
}

// messageRunner completes a process once a message is queued, otherwise
// reports it as waiting — exercising scenario 3 ("message round trip wakes
// a waiting receiver").
type messageRunner struct {
	mu       sync.Mutex
	received map[uint64]object.Pointer
}

func newMessageRunner() *messageRunner {
	return &messageRunner{received: make(map[uint64]object.Pointer)}
}

func (r *messageRunner) Run(p *process.Process) RunResult {
	if v, ok := process.Receive(p); ok {
		r.mu.Lock()
		r.received[p.ID] = v
		r.mu.Unlock()
		p.Terminate(process.TerminationReason{Completed: true, Result: v})
		return RunTerminated
	}
	return RunWaitingOnMessage
}

func TestSchedulerWakesProcessOnMessage(t *testing.T) {
	runner := newMessageRunner()
	s := New(2, runner, nil)
	s.Start()
	defer s.Shutdown()

	p := newTestProcess(1)
	s.Spawn(p)

	// Give the worker a chance to observe the empty mailbox and park the
	// process in WaitingOnMessage before we send.
	deadline := time.Now().Add(time.Second)
	for p.Status() != process.WaitingOnMessage && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if p.Status() != process.WaitingOnMessage {
		t.Fatalf("process never reached WaitingOnMessage, status=%v", p.Status())
	}

	woke, err := process.Send(p, object.Int(42))
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !woke {
		t.Fatal("expected Send to report the receiver woke")
	}
	s.NotifyMessage(p)

	select {
	case <-waitChan(p):
	case <-time.After(5 * time.Second):
		t.Fatal("process never terminated after message delivery")
	}
	runner.mu.Lock()
	v, ok := runner.received[p.ID]
	runner.mu.Unlock()
	if !ok || !v.IsInteger() || v.IntegerValue() != 42 {
		t.Fatalf("received = %v, %v, want int(42)", v, ok)
	}
}

// suspendRunner suspends a process once for a short duration, then
// terminates it the second time it runs — exercising scenario 4's
// "suspended process resumes after its deadline via the timer".
type suspendRunner struct {
	mu       sync.Mutex
	suspended map[uint64]bool
}

func newSuspendRunner() *suspendRunner {
	return &suspendRunner{suspended: make(map[uint64]bool)}
}

func (r *suspendRunner) Run(p *process.Process) RunResult {
	r.mu.Lock()
	already := r.suspended[p.ID]
	r.suspended[p.ID] = true
	r.mu.Unlock()
	if !already {
		deadline := time.Now().Add(50 * time.Millisecond)
		p.SetDeadline(&deadline)
		return RunSuspended
	}
	p.Terminate(process.TerminationReason{Completed: true})
	return RunTerminated
}

func TestSchedulerTimerWakesSuspendedProcess(t *testing.T) {
	runner := newSuspendRunner()
	s := New(2, runner, nil)
	s.Start()
	defer s.Shutdown()

	p := newTestProcess(7)
	start := time.Now()
	s.Spawn(p)

	select {
	case <-waitChan(p):
	case <-time.After(5 * time.Second):
		t.Fatal("suspended process never woke and terminated")
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Fatalf("process terminated too soon (%v), timer should have delayed it", elapsed)
	}
}

// slowRunner burns wall-clock time so that a backlog built up on one
// worker gets stolen by idle peers (spec.md §8 scenario 6).
type slowRunner struct {
	delay time.Duration
}

func (r *slowRunner) Run(p *process.Process) RunResult {
	time.Sleep(r.delay)
	p.Terminate(process.TerminationReason{Completed: true})
	return RunTerminated
}

func TestSchedulerStealsWork(t *testing.T) {
	runner := &slowRunner{delay: 5 * time.Millisecond}
	stats := &runtimestats.Scheduler{}
	s := New(4, runner, stats)

	const n = 64
	procs := make([]*process.Process, n)
	for i := 0; i < n; i++ {
		procs[i] = newTestProcess(uint64(i))
		// Pile every process onto worker 0's own deque directly, bypassing
		// Spawn's round-robin placement, so the other three workers start
		// idle and must steal to find work.
		s.workers[0].pushLocal(procs[i])
	}

	s.Start()
	defer s.Shutdown()

	for _, p := range procs {
		select {
		case <-waitChan(p):
		case <-time.After(10 * time.Second):
			t.Fatalf("process %d never terminated", p.ID)
		}
	}
	if stats.Steals() == 0 {
		t.Fatal("expected at least one steal when work was piled onto a single worker")
	}
}
