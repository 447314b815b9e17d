package heap

import "amberlang/internal/object"

// approxObjectBytes is a rough per-kind size estimate used purely for Immix
// line accounting (see block.go); it does not reflect actual Go memory
// layout.
func approxObjectBytes(o *object.Object) int {
	base := 48
	switch o.Kind {
	case object.KindString:
		return base + len(o.Str)
	case object.KindByteArray:
		return base + len(o.Bytes)
	case object.KindArray:
		return base + len(o.Arr)*8
	default:
		return base
	}
}

// Local is a process-private, collectable heap split into a young
// generation (where new allocations land) and a mature generation
// (where survivors of a young collection are evacuated to).
// spec.md §4.B / §4.C.
type Local struct {
	pool *Pool

	youngBlocks []*Block
	matureBlocks []*Block

	youngThreshold  int
	matureThreshold int
}

// NewLocal returns an empty Local heap drawing blocks from pool.
// NeedsYoungGC and NeedsFullGC report when the young or mature block count
// exceeds youngThreshold or matureThreshold (spec.md §4.B "Collection
// policy"); Local itself starts no collection, and no caller in the
// runtime acts on those reports.
func NewLocal(pool *Pool, youngThreshold, matureThreshold int) *Local {
	return &Local{pool: pool, youngThreshold: youngThreshold, matureThreshold: matureThreshold}
}

// Allocate places a freshly constructed object into the young generation,
// requesting a new block when the current one is full.
func (l *Local) Allocate(o *object.Object) error {
	o.SetSpace(object.Local)
	o.SetGeneration(0)
	blk, err := l.currentYoung()
	if err != nil {
		return err
	}
	blk.Put(o, approxObjectBytes(o))
	return nil
}

func (l *Local) currentYoung() (*Block, error) {
	if n := len(l.youngBlocks); n > 0 && !l.youngBlocks[n-1].Full() {
		return l.youngBlocks[n-1], nil
	}
	blk, err := l.pool.Get(object.Local)
	if err != nil {
		return nil, err
	}
	l.youngBlocks = append(l.youngBlocks, blk)
	return blk, nil
}

func (l *Local) currentMature() (*Block, error) {
	if n := len(l.matureBlocks); n > 0 && !l.matureBlocks[n-1].Full() {
		return l.matureBlocks[n-1], nil
	}
	blk, err := l.pool.Get(object.Local)
	if err != nil {
		return nil, err
	}
	l.matureBlocks = append(l.matureBlocks, blk)
	return blk, nil
}

// NeedsYoungGC reports whether the young-generation block count exceeds
// the configured threshold.
func (l *Local) NeedsYoungGC() bool { return len(l.youngBlocks) > l.youngThreshold }

// NeedsFullGC reports whether the mature-generation block count exceeds
// the configured threshold.
func (l *Local) NeedsFullGC() bool { return len(l.matureBlocks) > l.matureThreshold }

// YoungBlocks/MatureBlocks expose the current block lists to the collector
// (internal/heap/gc.go) and to tests.
func (l *Local) YoungBlocks() []*Block  { return l.youngBlocks }
func (l *Local) MatureBlocks() []*Block { return l.matureBlocks }

// replaceYoung/replaceMature install the post-collection block lists; only
// the collector calls these.
func (l *Local) replaceYoung(blocks []*Block)  { l.youngBlocks = blocks }
func (l *Local) replaceMature(blocks []*Block) { l.matureBlocks = blocks }

// evacuateToMature moves a surviving young object into the mature
// generation, used by the collector during a young collection.
func (l *Local) evacuateToMature(o *object.Object) error {
	o.SetGeneration(1)
	blk, err := l.currentMature()
	if err != nil {
		return err
	}
	blk.Put(o, approxObjectBytes(o))
	return nil
}
