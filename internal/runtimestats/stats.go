// Package runtimestats collects heap and scheduler counters in the shape of
// the reference runtime's own mstats/mprof bookkeeping (SPEC_FULL.md §4.B),
// exposed read-only for the CLI's -stats flag.
package runtimestats

import "sync/atomic"

// Heap tracks allocator and collector activity across every process's
// local heap plus the shared mailbox and permanent spaces. All fields are
// updated with atomic operations since blocks are requested and recycled
// concurrently by many workers. The block pool records mapped and recycled
// blocks; nothing calls RecordYoungGC, RecordMatureGC, RecordEvacuated or
// SetBytesAllocated, so those counters stay zero.
type Heap struct {
	blocksMapped     int64 // fresh OS-backed blocks ever requested
	blocksRecycled   int64 // blocks satisfied from the free list
	bytesAllocated   int64 // live bytes at last collection
	youngCollections int64
	matureCollections int64
	evacuatedObjects int64
}

func (h *Heap) RecordMapped()            { atomic.AddInt64(&h.blocksMapped, 1) }
func (h *Heap) RecordRecycled()          { atomic.AddInt64(&h.blocksRecycled, 1) }
func (h *Heap) RecordYoungGC()           { atomic.AddInt64(&h.youngCollections, 1) }
func (h *Heap) RecordMatureGC()          { atomic.AddInt64(&h.matureCollections, 1) }
func (h *Heap) RecordEvacuated(n int64)  { atomic.AddInt64(&h.evacuatedObjects, n) }
func (h *Heap) SetBytesAllocated(n int64) { atomic.StoreInt64(&h.bytesAllocated, n) }

// Snapshot is an immutable point-in-time copy of Heap, safe to print or
// serialize without racing the live counters.
type Snapshot struct {
	BlocksMapped      int64
	BlocksRecycled    int64
	BytesAllocated    int64
	YoungCollections  int64
	MatureCollections int64
	EvacuatedObjects  int64
}

func (h *Heap) Snapshot() Snapshot {
	return Snapshot{
		BlocksMapped:      atomic.LoadInt64(&h.blocksMapped),
		BlocksRecycled:    atomic.LoadInt64(&h.blocksRecycled),
		BytesAllocated:    atomic.LoadInt64(&h.bytesAllocated),
		YoungCollections:  atomic.LoadInt64(&h.youngCollections),
		MatureCollections: atomic.LoadInt64(&h.matureCollections),
		EvacuatedObjects:  atomic.LoadInt64(&h.evacuatedObjects),
	}
}

// Scheduler tracks work-stealing activity as totals summed over all
// workers (no per-worker breakdown), printed by cmd/amber -stats and read
// by the work-stealing test scenario (spec.md §8 scenario 6: "all workers
// report non-zero steals and non-zero local pops").
type Scheduler struct {
	localPops int64
	steals    int64
	injectorPops int64
	parks     int64
	spawned   int64
}

func (s *Scheduler) RecordLocalPop()   { atomic.AddInt64(&s.localPops, 1) }
func (s *Scheduler) RecordSteal()      { atomic.AddInt64(&s.steals, 1) }
func (s *Scheduler) RecordInjectorPop() { atomic.AddInt64(&s.injectorPops, 1) }
func (s *Scheduler) RecordPark()       { atomic.AddInt64(&s.parks, 1) }
func (s *Scheduler) RecordSpawn()      { atomic.AddInt64(&s.spawned, 1) }

func (s *Scheduler) LocalPops() int64    { return atomic.LoadInt64(&s.localPops) }
func (s *Scheduler) Steals() int64       { return atomic.LoadInt64(&s.steals) }
func (s *Scheduler) InjectorPops() int64 { return atomic.LoadInt64(&s.injectorPops) }
func (s *Scheduler) Parks() int64        { return atomic.LoadInt64(&s.parks) }
func (s *Scheduler) Spawned() int64      { return atomic.LoadInt64(&s.spawned) }
