// Package object implements the tagged ObjectPointer scheme, the heap Object
// layout, prototype-chain method/attribute lookup, and symbol interning
// described in SPEC_FULL.md §3 and §4.A.
package object

import "math"

// Space identifies which heap an Object's header lives in. It is folded into
// the object header rather than the pointer itself, matching spec.md §3:
// "a heap pointer additionally encodes, in spare bits of the referenced
// object header, its space".
type Space uint8

const (
	// Local is a process-private, collectable heap.
	Local Space = iota
	// Mailbox is a per-process heap only senders write into.
	Mailbox
	// Permanent is the process-global, never-collected heap.
	Permanent
)

func (s Space) String() string {
	switch s {
	case Local:
		return "local"
	case Mailbox:
		return "mailbox"
	case Permanent:
		return "permanent"
	default:
		return "unknown"
	}
}

// Colour is the tri-colour mark used by the collector (internal/heap).
type Colour uint8

const (
	White Colour = iota // not yet visited this cycle
	Grey                // visited, children not yet scanned
	Black               // visited, children scanned
)

// Pointer is the uniform ObjectPointer: either a tagged small integer or a
// reference to a heap Object. The representation is a plain Go value (not an
// unsafe.Pointer trick) because the interpreter never needs to store a
// Pointer anywhere but in a register slice or a Go map key, and keeping it a
// comparable struct lets bitwise equality (spec.md §3) fall out of Go's `==`
// for free.
type Pointer struct {
	// tag distinguishes the immediate-integer case from the heap-reference
	// case without a type switch on every dereference.
	tag tagKind
	imm int64
	ref *Object
}

type tagKind uint8

const (
	tagNil tagKind = iota
	tagInt
	tagHeap
)

// Nil is the distinguished all-zero pointer value (spec.md §3).
var Nil = Pointer{tag: tagNil}

// SmallIntMax/SmallIntMin bound the range representable without boxing: the
// full int64 range, since the tag lives in its own field rather than in the
// integer's bits, so interpreter arithmetic never has to special-case
// overflow into a bignum inline value for ordinary counters.
const (
	SmallIntMax = math.MaxInt64
	SmallIntMin = math.MinInt64
)

// Int returns a tagged small-integer pointer.
func Int(v int64) Pointer { return Pointer{tag: tagInt, imm: v} }

// Ref returns a heap-reference pointer. obj must not be nil; use Nil instead.
func Ref(obj *Object) Pointer {
	if obj == nil {
		return Nil
	}
	return Pointer{tag: tagHeap, ref: obj}
}

// IsNil reports whether p is the distinguished null pointer.
func (p Pointer) IsNil() bool { return p.tag == tagNil }

// IsInteger reports whether p is a tagged small integer.
func (p Pointer) IsInteger() bool { return p.tag == tagInt }

// IsHeap reports whether p references a heap Object.
func (p Pointer) IsHeap() bool { return p.tag == tagHeap }

// IntegerValue returns the integer value of p. Callers must check
// IsInteger first; it panics with a fixed message otherwise, and nothing
// in the runtime recovers that panic.
func (p Pointer) IntegerValue() int64 {
	if p.tag != tagInt {
		panic("object: IntegerValue on non-integer pointer")
	}
	return p.imm
}

// HeapObject returns the Object p references. Callers must check IsHeap
// first.
func (p Pointer) HeapObject() *Object {
	if p.tag != tagHeap {
		panic("object: HeapObject on non-heap pointer")
	}
	return p.ref
}

// Equal is bitwise pointer equality (spec.md §3: "Equality of pointers is
// bitwise").
func (p Pointer) Equal(other Pointer) bool {
	if p.tag != other.tag {
		return false
	}
	switch p.tag {
	case tagNil:
		return true
	case tagInt:
		return p.imm == other.imm
	default:
		return p.ref == other.ref
	}
}

// Space reports the owning space of a heap pointer, or Local for an
// immediate (immediates have no header and are never collected directly).
func (p Pointer) Space() Space {
	if p.tag != tagHeap {
		return Local
	}
	return p.ref.space
}

// IsPermanent reports whether p is an immediate (always safe to embed
// anywhere) or a heap pointer into the permanent space.
func (p Pointer) IsPermanent() bool {
	return p.tag == tagInt || (p.tag == tagHeap && p.ref.space == Permanent)
}
