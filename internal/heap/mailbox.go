package heap

import (
	"sync"

	"amberlang/internal/object"
)

// Mailbox is the one multi-writer heap region: any sending process may
// allocate into a receiver's mailbox heap, guarded by a single mutex over
// the block cursor (spec.md §4.C "mailbox heap is the one multi-writer
// region"). The owning process reads the resulting values without taking
// the lock — it only observes the mailbox queue's FIFO pointers
// (internal/process), never the allocator's own bookkeeping.
type Mailbox struct {
	mu     sync.Mutex
	pool   *Pool
	blocks []*Block
}

// NewMailbox returns an empty mailbox heap drawing blocks from pool.
func NewMailbox(pool *Pool) *Mailbox {
	return &Mailbox{pool: pool}
}

// Allocate places a deep-copied object into the mailbox heap. Copy is a
// deep copy of the source object's inline value and attribute/method
// tables; the caller (internal/process Send) is responsible for walking
// the object graph and calling Allocate once per node.
func (m *Mailbox) Allocate(o *object.Object) error {
	o.SetSpace(object.Mailbox)
	m.mu.Lock()
	defer m.mu.Unlock()
	blk, err := m.currentLocked()
	if err != nil {
		return err
	}
	blk.Put(o, approxObjectBytes(o))
	return nil
}

func (m *Mailbox) currentLocked() (*Block, error) {
	if n := len(m.blocks); n > 0 && !m.blocks[n-1].Full() {
		return m.blocks[n-1], nil
	}
	blk, err := m.pool.Get(object.Mailbox)
	if err != nil {
		return nil, err
	}
	m.blocks = append(m.blocks, blk)
	return blk, nil
}

// Blocks exposes the mailbox heap's blocks for collection when the owning
// process is collected or terminated (spec.md §4.B: "collected with the
// process").
func (m *Mailbox) Blocks() []*Block {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Block, len(m.blocks))
	copy(out, m.blocks)
	return out
}

// Release returns every block this mailbox owns to the shared pool, called
// once the owning process terminates.
func (m *Mailbox) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.blocks {
		m.pool.Put(b)
	}
	m.blocks = nil
}
