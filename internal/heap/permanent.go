package heap

import (
	"sync"

	"amberlang/internal/object"
	"amberlang/internal/vmerrors"
)

// lifecycle is the two-phase module-load contract of SPEC_FULL.md §9:
// writes to permanent space happen only while a module is `loading`; once
// `sealed`, reads are unsynchronized because the data is never mutated
// again (spec.md §5 "Permanent-space discipline").
type lifecycle uint8

const (
	loading lifecycle = iota
	sealed
)

// Permanent is the process-global, append-only heap. It is never
// collected (spec.md §4.B).
type Permanent struct {
	pool  *Pool
	blocks []*Block

	mu    sync.Mutex
	state lifecycle

	interned map[string]object.Pointer // literal string interning, write-locked
}

// NewPermanent returns an empty Permanent space in the `loading` state.
func NewPermanent(pool *Pool) *Permanent {
	return &Permanent{pool: pool, state: loading, interned: make(map[string]object.Pointer)}
}

// Allocate places an object into the permanent space. It is only legal
// while the space (or the particular module publishing into it) is in the
// `loading` phase; attempting to allocate after Seal returns an error,
// enforcing spec.md §9's "initialise-once contract".
func (p *Permanent) Allocate(o *object.Object) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == sealed {
		return vmerrors.New(vmerrors.InvalidType, "cannot allocate into a sealed permanent space")
	}
	o.SetSpace(object.Permanent)
	blk, err := p.currentLocked()
	if err != nil {
		return err
	}
	blk.Put(o, approxObjectBytes(o))
	return nil
}

func (p *Permanent) currentLocked() (*Block, error) {
	if n := len(p.blocks); n > 0 && !p.blocks[n-1].Full() {
		return p.blocks[n-1], nil
	}
	blk, err := p.pool.Get(object.Permanent)
	if err != nil {
		return nil, err
	}
	p.blocks = append(p.blocks, blk)
	return blk, nil
}

// InternLiteral returns the canonical permanent-space string object for s,
// allocating and publishing one on first use. Like Allocate it holds the
// space's lock; unlike Allocate it does not check the sealed state, so it
// also works after Seal.
func (p *Permanent) InternLiteral(s string, build func() *object.Object) (object.Pointer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ptr, ok := p.interned[s]; ok {
		return ptr, nil
	}
	o := build()
	o.SetSpace(object.Permanent)
	blk, err := p.currentLocked()
	if err != nil {
		return object.Nil, err
	}
	blk.Put(o, approxObjectBytes(o))
	ptr := object.Ref(o)
	p.interned[s] = ptr
	return ptr, nil
}

// Seal transitions the permanent space from loading to sealed. It is
// idempotent.
func (p *Permanent) Seal() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = sealed
}

// Sealed reports whether Seal has been called.
func (p *Permanent) Sealed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state == sealed
}

// Objects returns every object currently published in the permanent
// space, used once per module load to validate spec.md §3's "cycles are
// forbidden" invariant before Seal (internal/bytecode.Load calls this
// directly through the Permanent interface and passes the result to
// object.ValidateNoCycles before returning the loaded module).
func (p *Permanent) Objects() []*object.Object {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []*object.Object
	for _, b := range p.blocks {
		out = append(out, b.Slots()...)
	}
	return out
}
