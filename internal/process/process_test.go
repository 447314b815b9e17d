package process

import (
	"testing"
	"time"

	"amberlang/internal/heap"
	"amberlang/internal/object"
	"amberlang/internal/runtimestats"
)

func newTestProcess(t *testing.T, id uint64) *Process {
	t.Helper()
	pool := heap.NewPool(&runtimestats.Heap{}, 0)
	return New(id, pool, 64, 512)
}

func TestSendReceiveRoundTripImmediate(t *testing.T) {
	receiver := newTestProcess(t, 2)
	woke, err := Send(receiver, object.Int(42))
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if woke {
		t.Fatal("receiver was Runnable already, should not report woke")
	}
	v, ok := Receive(receiver)
	if !ok || !v.Equal(object.Int(42)) {
		t.Fatalf("Receive = %v, %v; want 42, true", v, ok)
	}
}

func TestSendWakesWaitingReceiver(t *testing.T) {
	receiver := newTestProcess(t, 3)
	receiver.SetStatus(WaitingOnMessage)
	woke, err := Send(receiver, object.Int(1))
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !woke {
		t.Fatal("expected Send to report waking the receiver")
	}
	if receiver.Status() != Runnable {
		t.Fatalf("status = %v, want Runnable", receiver.Status())
	}
}

// Receive itself only reports an empty mailbox; the transition to
// WaitingOnMessage with a deadline is made by its caller (the interpreter's
// Receive handler), so this test performs that caller step by hand.
func TestReceiveEmptyTransitionsToWaiting(t *testing.T) {
	p := newTestProcess(t, 4)
	if _, ok := Receive(p); ok {
		t.Fatal("expected empty mailbox")
	}
	dl := time.Now().Add(10 * time.Millisecond)
	p.SetStatus(WaitingOnMessage)
	p.SetDeadline(&dl)
	if p.Status() != WaitingOnMessage {
		t.Fatal("expected WaitingOnMessage status")
	}
	got, ok := p.Deadline()
	if !ok || got != dl {
		t.Fatal("expected deadline to be recorded")
	}
}

func TestSendDeepCopiesLocalObjectIntoMailbox(t *testing.T) {
	sender := newTestProcess(t, 5)
	receiver := newTestProcess(t, 6)

	child := object.New(object.Local)
	child.Kind = object.KindInteger
	child.Int = 99
	_ = sender.Allocate(child)

	root := object.New(object.Local)
	root.AddAttribute("child", object.Ref(child))
	_ = sender.Allocate(root)

	if _, err := Send(receiver, object.Ref(root)); err != nil {
		t.Fatalf("Send: %v", err)
	}
	v, ok := Receive(receiver)
	if !ok {
		t.Fatal("expected a message")
	}
	copied := v.HeapObject()
	if copied == root {
		t.Fatal("expected a structural copy, not the original pointer (invariant 2)")
	}
	if copied.Space() != object.Mailbox {
		t.Fatalf("copy space = %v, want Mailbox", copied.Space())
	}
	cv, ok := copied.LookupAttribute("child")
	if !ok {
		t.Fatal("expected child attribute to survive the copy")
	}
	if cv.HeapObject().Space() != object.Mailbox {
		t.Fatal("nested object must also be copied into the mailbox space (invariant 2)")
	}
	if cv.HeapObject().Int != 99 {
		t.Fatalf("nested int = %d, want 99", cv.HeapObject().Int)
	}
}

func TestSendHandlesCycles(t *testing.T) {
	sender := newTestProcess(t, 7)
	receiver := newTestProcess(t, 8)

	a := object.New(object.Local)
	b := object.New(object.Local)
	a.AddAttribute("next", object.Ref(b))
	b.AddAttribute("next", object.Ref(a)) // cycle
	_ = sender.Allocate(a)
	_ = sender.Allocate(b)

	if _, err := Send(receiver, object.Ref(a)); err != nil {
		t.Fatalf("Send with cycle: %v", err)
	}
	v, ok := Receive(receiver)
	if !ok {
		t.Fatal("expected a message")
	}
	copiedA := v.HeapObject()
	nextB, _ := copiedA.LookupAttribute("next")
	nextA, _ := nextB.HeapObject().LookupAttribute("next")
	if nextA.HeapObject() != copiedA {
		t.Fatal("expected the cycle to be preserved in the copy")
	}
}

func TestSendPermanentIsSharedNotCopied(t *testing.T) {
	pool := heap.NewPool(&runtimestats.Heap{}, 0)
	perm := heap.NewPermanent(pool)
	o := object.New(object.Permanent)
	_ = perm.Allocate(o)

	receiver := newTestProcess(t, 9)
	if _, err := Send(receiver, object.Ref(o)); err != nil {
		t.Fatalf("Send: %v", err)
	}
	v, ok := Receive(receiver)
	if !ok {
		t.Fatal("expected a message")
	}
	if v.HeapObject() != o {
		t.Fatal("expected permanent object to be enqueued as-is (pointer-equal)")
	}
}

func TestReductionsYieldAtZero(t *testing.T) {
	r := NewReductions(5)
	r.Charge(3)
	if r.Exhausted() {
		t.Fatal("should not be exhausted yet")
	}
	r.Charge(10)
	if !r.Exhausted() {
		t.Fatal("expected exhausted after overcharging")
	}
	if r.Remaining() != 0 {
		t.Fatalf("remaining = %d, want 0 (never negative, invariant 5)", r.Remaining())
	}
	r.Reset()
	if r.Remaining() != 5 {
		t.Fatalf("remaining after reset = %d, want 5", r.Remaining())
	}
}

func TestFrameStackDepthAndPushPop(t *testing.T) {
	p := newTestProcess(t, 10)
	code := &object.CompiledCodeValue{RegisterCount: 2}
	f := NewFrame(code, nil, -1)
	p.PushFrame(f)
	if p.Depth() != 1 {
		t.Fatalf("depth = %d, want 1", p.Depth())
	}
	popped := p.PopFrame()
	if popped != f {
		t.Fatal("expected PopFrame to return the pushed frame")
	}
	if p.Depth() != 0 {
		t.Fatalf("depth = %d, want 0", p.Depth())
	}
}
