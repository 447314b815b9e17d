package heap

import (
	"sync"

	"amberlang/internal/object"
	"amberlang/internal/runtimestats"
	"amberlang/internal/vmerrors"
)

// Pool is the global block allocator: a mutex-guarded free list of
// recycled blocks, falling back to a fresh allocation when empty
// (spec.md §4.B: "maintains a free list of recycled blocks and requests
// fresh OS pages when empty"). A sync.Pool was considered and rejected —
// see DESIGN.md — because its entries may be evicted between GC cycles,
// which would silently violate the "recycled blocks are available" Immix
// contract this allocator exists to provide.
type Pool struct {
	mu    sync.Mutex
	free  []*Block
	stats *runtimestats.Heap
	// maxBlocks bounds how many blocks this pool will ever hand out before
	// reporting OutOfMemory, standing in for "the OS refuses a new block"
	// (spec.md §4.B failure mode) without actually exhausting host memory
	// in tests.
	maxBlocks int
	issued    int
}

// NewPool returns a Pool that will report OutOfMemory once issued exceeds
// maxBlocks. A maxBlocks of 0 means unbounded.
func NewPool(stats *runtimestats.Heap, maxBlocks int) *Pool {
	return &Pool{stats: stats, maxBlocks: maxBlocks}
}

// Get returns a block for the given space, preferring a recycled one.
func (p *Pool) Get(space object.Space) (*Block, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if n := len(p.free); n > 0 {
		b := p.free[n-1]
		p.free = p.free[:n-1]
		b.reset()
		b.space = space
		p.stats.RecordRecycled()
		return b, nil
	}

	if p.maxBlocks > 0 && p.issued >= p.maxBlocks {
		return nil, vmerrors.New(vmerrors.OutOfMemory, "block allocator exhausted after %d blocks", p.issued)
	}
	p.issued++
	p.stats.RecordMapped()
	return newBlock(space), nil
}

// Put returns a block to the free list for reuse, matching spec.md §4.B's
// "block recycling". Its callers are the collector, which recycles a block
// only once its slots have all been evacuated or found dead, per cycle,
// and Mailbox.Release, which returns a terminated process's mailbox
// blocks once.
func (p *Pool) Put(b *Block) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.free = append(p.free, b)
}

// FreeCount reports how many blocks currently sit on the recycled list,
// for tests and the -stats CLI flag.
func (p *Pool) FreeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}
