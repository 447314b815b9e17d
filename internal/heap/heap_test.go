package heap

import (
	"testing"

	"amberlang/internal/object"
	"amberlang/internal/runtimestats"
)

func newTestPool() *Pool {
	return NewPool(&runtimestats.Heap{}, 0)
}

func TestBlockPoolRecyclesBlocks(t *testing.T) {
	pool := newTestPool()
	b, err := pool.Get(object.Local)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	pool.Put(b)
	if pool.FreeCount() != 1 {
		t.Fatalf("FreeCount = %d, want 1", pool.FreeCount())
	}
	b2, err := pool.Get(object.Local)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if b2 != b {
		t.Fatal("expected the recycled block to be reissued")
	}
	if pool.FreeCount() != 0 {
		t.Fatalf("FreeCount = %d, want 0 after reissue", pool.FreeCount())
	}
}

func TestBlockPoolOutOfMemory(t *testing.T) {
	pool := NewPool(&runtimestats.Heap{}, 1)
	if _, err := pool.Get(object.Local); err != nil {
		t.Fatalf("first Get: %v", err)
	}
	_, err := pool.Get(object.Local)
	if err == nil {
		t.Fatal("expected OutOfMemory on second Get")
	}
}

func TestLocalAllocateAndYoungGC(t *testing.T) {
	pool := newTestPool()
	local := NewLocal(pool, 1, 1)

	root := object.New(object.Local)
	if err := local.Allocate(root); err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	child := object.New(object.Local)
	if err := local.Allocate(child); err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	root.AddAttribute("child", object.Ref(child))

	garbage := object.New(object.Local)
	if err := local.Allocate(garbage); err != nil {
		t.Fatalf("Allocate: %v", err)
	}

	roots := []object.Pointer{object.Ref(root)}
	if err := CollectYoung(local, roots); err != nil {
		t.Fatalf("CollectYoung: %v", err)
	}

	if len(local.YoungBlocks()) != 0 {
		t.Fatalf("expected young blocks to be emptied, got %d", len(local.YoungBlocks()))
	}
	foundRoot, foundChild, foundGarbage := false, false, false
	for _, b := range local.MatureBlocks() {
		for _, o := range b.Slots() {
			switch o {
			case root:
				foundRoot = true
			case child:
				foundChild = true
			case garbage:
				foundGarbage = true
			}
		}
	}
	if !foundRoot || !foundChild {
		t.Fatalf("expected reachable objects to survive: root=%v child=%v", foundRoot, foundChild)
	}
	if foundGarbage {
		t.Fatal("unreachable object should not have survived collection")
	}
	if root.Generation() != 1 || child.Generation() != 1 {
		t.Fatal("survivors must be promoted to the mature generation")
	}
}

func TestNoForwardingPointerVisibleAfterCollection(t *testing.T) {
	pool := newTestPool()
	local := NewLocal(pool, 0, 10)
	root := object.New(object.Local)
	_ = local.Allocate(root)

	roots := []object.Pointer{object.Ref(root)}
	if err := CollectYoung(local, roots); err != nil {
		t.Fatalf("CollectYoung: %v", err)
	}
	if root.Forward() != nil {
		t.Fatal("collector must not leave a visible forwarding pointer (invariant 3)")
	}
}

func TestPermanentTwoPhaseLifecycle(t *testing.T) {
	pool := newTestPool()
	perm := NewPermanent(pool)
	o := object.New(object.Permanent)
	if err := perm.Allocate(o); err != nil {
		t.Fatalf("Allocate before seal: %v", err)
	}
	perm.Seal()
	o2 := object.New(object.Permanent)
	if err := perm.Allocate(o2); err == nil {
		t.Fatal("expected allocate-after-seal to fail")
	}
}

func TestPermanentNeverReferencesLocal_Invariant(t *testing.T) {
	// Invariant 1: no pointer in permanent space references a local-space
	// object. This module does not enforce it automatically (the loader
	// does, per spec.md), so the test documents the expected discipline: a
	// permanent object's attribute must itself be permanent or an
	// immediate.
	pool := newTestPool()
	perm := NewPermanent(pool)
	permChild := object.New(object.Permanent)
	_ = perm.Allocate(permChild)
	permParent := object.New(object.Permanent)
	permParent.AddAttribute("x", object.Ref(permChild))
	_ = perm.Allocate(permParent)

	v, _ := permParent.LookupAttribute("x")
	if !v.IsPermanent() {
		t.Fatal("permanent object attribute must be permanent (invariant 1)")
	}
}

func TestMailboxAllocateIsConcurrencySafe(t *testing.T) {
	pool := newTestPool()
	mb := NewMailbox(pool)
	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			o := object.New(object.Mailbox)
			_ = mb.Allocate(o)
			done <- struct{}{}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
	total := 0
	for _, b := range mb.Blocks() {
		total += len(b.Slots())
	}
	if total != 8 {
		t.Fatalf("expected 8 allocated objects, got %d", total)
	}
}

func TestMailboxReleaseReturnsBlocksToPool(t *testing.T) {
	pool := newTestPool()
	mb := NewMailbox(pool)
	_ = mb.Allocate(object.New(object.Mailbox))
	before := pool.FreeCount()
	mb.Release()
	if pool.FreeCount() <= before {
		t.Fatal("expected Release to return blocks to the pool")
	}
}
