package object

// maxInlineChain is how many prototype hops LookupMethod walks using a
// fixed-size array before it falls back to a heap-allocated visited set.
// Ordinary prototype chains (object -> class -> a couple of mixins -> Object)
// are far shorter than this; the fallback only matters for pathological
// chains the loader should have rejected (see HasCycle below) but that a
// defensive runtime walk must still terminate on.
const maxInlineChain = 16

// LookupMethod walks the prototype chain o, o.prototype, o.prototype.prototype,
// … returning the first method found for name (spec.md §4.A: "ties broken by
// proximity, nearest wins"). It never fails — a miss returns (Nil, false),
// matching the "LookupMethod never fails" contract in spec.md §4.E so the
// hot path stays branchless on the lookup itself.
func LookupMethod(recv Pointer, name string) (Pointer, bool) {
	var inline [maxInlineChain]*Object
	n := 0
	var seen map[*Object]bool

	cur := recv
	for {
		if !cur.IsHeap() {
			return Nil, false
		}
		obj := cur.HeapObject()

		if n < maxInlineChain {
			for i := 0; i < n; i++ {
				if inline[i] == obj {
					return Nil, false // cycle, defensively stop
				}
			}
			inline[n] = obj
			n++
		} else {
			if seen == nil {
				seen = make(map[*Object]bool, n)
				for i := 0; i < n; i++ {
					seen[inline[i]] = true
				}
			}
			if seen[obj] {
				return Nil, false
			}
			seen[obj] = true
		}

		if m, ok := obj.ownMethod(name); ok {
			return m, true
		}
		cur = obj.Prototype
	}
}

// RespondsTo reports whether recv (or something in its prototype chain) has
// a method named name. It is defined directly in terms of LookupMethod per
// spec.md §4.A.
func RespondsTo(recv Pointer, name string) bool {
	_, ok := LookupMethod(recv, name)
	return ok
}

// LookupAttribute walks only recv itself — attributes, unlike methods, are
// not inherited through the prototype chain in this object model; spec.md
// §3 defines attributes as a per-object ordered mapping with no mention of
// chain traversal, and §4.A exposes lookup_attribute as a direct op.
func LookupAttribute(recv Pointer, name string) (Pointer, bool) {
	if !recv.IsHeap() {
		return Nil, false
	}
	return recv.HeapObject().LookupAttribute(name)
}

// HasCycle reports whether walking obj's prototype chain revisits a node,
// used by the bytecode loader (internal/bytecode) to reject cyclic
// prototypes at module-load time, per spec.md §3 invariant: "cycles are
// forbidden (the loader must reject them)".
func HasCycle(start Pointer) bool {
	seen := make(map[*Object]bool)
	cur := start
	for cur.IsHeap() {
		obj := cur.HeapObject()
		if seen[obj] {
			return true
		}
		seen[obj] = true
		cur = obj.Prototype
	}
	return false
}
