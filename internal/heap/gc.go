package heap

import "amberlang/internal/object"

// children appends every object.Pointer reachable in one hop from o onto
// out. It is the traversal spine for both marking and deep-copy (the
// Mailbox Send path in internal/process reuses the same shape by walking
// the object graph itself). Kind-specific inline values that are opaque to
// the collector (sockets, files, library/function handles, foreign
// pointers, hasher state) hold no further object pointers and are skipped.
func children(o *object.Object, out []object.Pointer) []object.Pointer {
	if !o.Prototype.IsNil() {
		out = append(out, o.Prototype)
	}
	out = append(out, o.Traits...)
	names := o.AttrNames()
	for _, name := range names {
		v, _ := o.LookupAttribute(name)
		out = append(out, v)
	}
	out = append(out, o.MethodValues()...)
	switch o.Kind {
	case object.KindArray:
		out = append(out, o.Arr...)
	case object.KindBinding:
		if b, ok := o.Any.(*object.Binding); ok {
			out = append(out, bindingChain(b)...)
		}
	case object.KindBlock:
		if bl, ok := o.Any.(*object.BlockValue); ok {
			if bl.Capture != nil {
				out = append(out, bindingChain(bl.Capture)...)
			}
			if bl.Code != nil {
				out = append(out, bl.Code.Literals...)
			}
		}
	case object.KindCompiledCode:
		if cc, ok := o.Any.(*object.CompiledCodeValue); ok {
			out = append(out, cc.Literals...)
		}
	}
	return out
}

func bindingChain(b *object.Binding) []object.Pointer {
	var out []object.Pointer
	for cur := b; cur != nil; cur = cur.Parent {
		out = append(out, cur.Slots...)
	}
	return out
}

// mark performs a tri-colour BFS from roots, visiting every reachable
// object exactly once and returning the set of objects that live in the
// given collectable blocks (the only ones the caller is allowed to move or
// free). Objects outside the collectable set (mature during a young GC,
// permanent, mailbox) are still traversed for their outgoing edges but
// never added to the live set themselves — spec.md §4.B: "Marking is
// tri-colour starting from roots ... Live objects in the young space are
// evacuated".
func mark(roots []object.Pointer, collectable map[*object.Object]bool) map[*object.Object]bool {
	live := make(map[*object.Object]bool)
	var grey []*object.Object

	for _, r := range roots {
		if r.IsHeap() {
			o := r.HeapObject()
			if o.Colour() == object.White {
				o.SetColour(object.Grey)
				grey = append(grey, o)
			}
		}
	}

	var buf []object.Pointer
	for len(grey) > 0 {
		n := len(grey) - 1
		o := grey[n]
		grey = grey[:n]

		if collectable[o] {
			live[o] = true
		}

		buf = buf[:0]
		buf = children(o, buf)
		for _, c := range buf {
			if !c.IsHeap() {
				continue
			}
			co := c.HeapObject()
			if co.Colour() == object.White {
				co.SetColour(object.Grey)
				grey = append(grey, co)
			}
		}
		o.SetColour(object.Black)
	}
	return live
}

// CollectYoung runs a young-generation collection on l: objects reachable
// from roots that live in a young block are evacuated into the mature
// generation; young blocks are returned to the pool afterward
// (spec.md §4.B). Evacuation does not copy objects: each survivor keeps its
// identity and is re-recorded in a mature block, and no forwarding pointer
// is installed, so none is visible to the interpreter after CollectYoung
// returns (spec.md §8 invariant 3).
func CollectYoung(l *Local, roots []object.Pointer) error {
	resetColours(l.youngBlocks)
	resetColours(l.matureBlocks)

	collectable := make(map[*object.Object]bool)
	for _, b := range l.youngBlocks {
		for _, o := range b.Slots() {
			collectable[o] = true
		}
	}

	live := mark(roots, collectable)

	for o := range live {
		if err := l.evacuateToMature(o); err != nil {
			return err
		}
	}

	for _, b := range l.youngBlocks {
		l.pool.Put(b)
	}
	l.replaceYoung(nil)
	resetColours(l.matureBlocks)
	return nil
}

// CollectMature compacts the most-fragmented mature blocks by evacuating
// their live objects into fresh target blocks, per spec.md §4.B "compacting
// Immix-style by evacuating out of the most-fragmented blocks into target
// blocks".
func CollectMature(l *Local, roots []object.Pointer) error {
	resetColours(l.youngBlocks)
	resetColours(l.matureBlocks)

	sorted := append([]*Block(nil), l.matureBlocks...)
	sortByOccupancyAscending(sorted)

	// Evacuate the bottom half (most fragmented) of mature blocks.
	cut := len(sorted) / 2
	toEvacuate := make(map[*Block]bool, cut)
	for i := 0; i < cut; i++ {
		toEvacuate[sorted[i]] = true
	}

	collectable := make(map[*object.Object]bool)
	for blk := range toEvacuate {
		for _, o := range blk.Slots() {
			collectable[o] = true
		}
	}

	live := mark(roots, collectable)

	kept := make([]*Block, 0, len(l.matureBlocks)-cut)
	for _, b := range l.matureBlocks {
		if !toEvacuate[b] {
			kept = append(kept, b)
		}
	}

	target := func() (*Block, error) {
		if n := len(kept); n > 0 && !kept[n-1].Full() {
			return kept[n-1], nil
		}
		blk, err := l.pool.Get(object.Local)
		if err != nil {
			return nil, err
		}
		kept = append(kept, blk)
		return blk, nil
	}

	for o := range live {
		blk, err := target()
		if err != nil {
			return err
		}
		blk.Put(o, approxObjectBytes(o))
	}
	l.replaceMature(kept)

	for blk := range toEvacuate {
		l.pool.Put(blk)
	}
	resetColours(l.youngBlocks)
	resetColours(l.matureBlocks)
	return nil
}

func resetColours(blocks []*Block) {
	for _, b := range blocks {
		for _, o := range b.Slots() {
			o.SetColour(object.White)
		}
	}
}

func sortByOccupancyAscending(blocks []*Block) {
	for i := 1; i < len(blocks); i++ {
		for j := i; j > 0 && blocks[j].Occupancy() < blocks[j-1].Occupancy(); j-- {
			blocks[j], blocks[j-1] = blocks[j-1], blocks[j]
		}
	}
}
