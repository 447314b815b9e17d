package object

import "amberlang/internal/vmerrors"

// Kind is the tagged-variant discriminant for an Object's inline value
// (spec.md §3, §9 "dynamic dispatch over inline value kinds → tagged
// variant").
type Kind uint8

const (
	KindNone Kind = iota
	KindInteger
	KindFloat
	KindString
	KindArray
	KindHasher
	KindBinding
	KindBlock
	KindCompiledCode
	KindProcessHandle
	KindSocket
	KindFile
	KindByteArray
	KindLibraryHandle
	KindFunctionHandle
	KindForeignPointer
)

// Object is a heap-resident value: optional name, ordered attributes,
// ordered methods, implemented traits, an optional prototype, and one
// inline value. The GC header lives alongside it (mark colour, generation,
// forwarding slot) rather than in a separate side table, so evacuation can
// mutate a single struct in place.
type Object struct {
	space Space
	mark  Colour
	gen   uint8 // 0 = young, 1 = mature; meaningless outside Local space
	fwd   *Object

	Name       string
	attrNames  []string
	attrVals   []Pointer
	attrIndex  map[string]int
	methNames  []string
	methVals   []Pointer
	methIndex  map[string]int
	Traits     []Pointer
	Prototype  Pointer

	Kind  Kind
	Int   int64
	Float float64
	Str   string
	Arr   []Pointer
	Bytes []byte
	Any   interface{} // Hasher/Binding/Block/CompiledCode/handles/foreign pointer
}

// New allocates a bare Object for the given space; callers (internal/heap)
// are responsible for actually placing it in a block.
func New(space Space) *Object {
	return &Object{space: space, Prototype: Nil}
}

// Space reports the object's owning heap space.
func (o *Object) Space() Space { return o.space }

// SetSpace records the logical space (Local/Mailbox/Permanent) the object
// was allocated into; each heap's Allocate calls it. The collector's
// young-to-mature moves use SetGeneration, not SetSpace.
func (o *Object) SetSpace(s Space) { o.space = s }

// Mark/Colour are used by the collector's tri-colour sweep.
func (o *Object) Colour() Colour     { return o.mark }
func (o *Object) SetColour(c Colour) { o.mark = c }

// Generation reports 0 (young) or 1 (mature) for Local-space objects.
func (o *Object) Generation() uint8     { return o.gen }
func (o *Object) SetGeneration(g uint8) { o.gen = g }

// Forward returns the forwarding pointer installed during evacuation, or
// nil if this object has not been moved.
func (o *Object) Forward() *Object      { return o.fwd }
func (o *Object) SetForward(to *Object) { o.fwd = to }

// IsInteger reports whether the inline value is an integer-64.
func (o *Object) IsInteger() bool { return o.Kind == KindInteger }

// IntegerValue returns the inline integer value, failing with InvalidType
// if the object does not hold one.
func (o *Object) IntegerValue() (int64, error) {
	if o.Kind != KindInteger {
		return 0, vmerrors.New(vmerrors.InvalidType, "object has no integer value")
	}
	return o.Int, nil
}

// IsPermanent reports whether this object lives in the permanent space.
func (o *Object) IsPermanent() bool { return o.space == Permanent }

// AddAttribute binds name to ptr, preserving first-bound order
// (spec.md §3 invariant: "preserves the order in which names were first
// bound"). Rebinding an existing name updates the value in place without
// reordering.
func (o *Object) AddAttribute(name string, ptr Pointer) {
	if o.attrIndex == nil {
		o.attrIndex = make(map[string]int)
	}
	if i, ok := o.attrIndex[name]; ok {
		o.attrVals[i] = ptr
		return
	}
	o.attrIndex[name] = len(o.attrNames)
	o.attrNames = append(o.attrNames, name)
	o.attrVals = append(o.attrVals, ptr)
}

// LookupAttribute returns the attribute bound directly on o (no prototype
// walk), and whether it was found.
func (o *Object) LookupAttribute(name string) (Pointer, bool) {
	if i, ok := o.attrIndex[name]; ok {
		return o.attrVals[i], true
	}
	return Nil, false
}

// AddMethod binds name to a pointer to a method object, same ordering
// discipline as AddAttribute.
func (o *Object) AddMethod(name string, ptr Pointer) {
	if o.methIndex == nil {
		o.methIndex = make(map[string]int)
	}
	if i, ok := o.methIndex[name]; ok {
		o.methVals[i] = ptr
		return
	}
	o.methIndex[name] = len(o.methNames)
	o.methNames = append(o.methNames, name)
	o.methVals = append(o.methVals, ptr)
}

// ownMethod returns the method bound directly on o, without walking
// prototypes.
func (o *Object) ownMethod(name string) (Pointer, bool) {
	if i, ok := o.methIndex[name]; ok {
		return o.methVals[i], true
	}
	return Nil, false
}

// SetPrototype installs o's prototype pointer.
func (o *Object) SetPrototype(p Pointer) { o.Prototype = p }

// AttrNames returns the attribute names in first-bound order, for
// collector traversal (internal/heap) and debugging.
func (o *Object) AttrNames() []string { return o.attrNames }

// MethodValues returns the bound method pointers, for collector traversal.
func (o *Object) MethodValues() []Pointer { return o.methVals }

// MethodNames returns the method names in first-bound order.
func (o *Object) MethodNames() []string { return o.methNames }
