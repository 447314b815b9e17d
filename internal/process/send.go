package process

import "amberlang/internal/object"

// Send implements spec.md §4.C: if value is already Permanent, enqueue the
// pointer as-is; otherwise deep-copy it into the receiver's mailbox heap
// using a worklist that handles cycles via a forwarding map, then enqueue
// the copy. If the receiver was WaitingOnMessage, it is marked Runnable
// (the caller, internal/interp's Send handler, is responsible for having
// the scheduler re-enqueue it — this package has no knowledge of the
// scheduler).
func Send(receiver *Process, value object.Pointer) (wokeReceiver bool, err error) {
	var toEnqueue object.Pointer
	if value.IsPermanent() {
		toEnqueue = value
	} else {
		toEnqueue, err = deepCopy(receiver.Mailbox, value)
		if err != nil {
			return false, err
		}
	}
	receiver.Queue.Push(toEnqueue)
	woke := receiver.CompareAndSetStatus(WaitingOnMessage, Runnable)
	return woke, nil
}

// deepCopy walks value's object graph, allocating a structural copy of
// every non-permanent node into dst, and returns a pointer to the copy of
// the root. A forwarding map breaks cycles: once a source object has been
// assigned a destination copy, later edges into it resolve to the same
// copy instead of recursing again (spec.md §4.C "a worklist that handles
// cycles via a forwarding map").
func deepCopy(dst mailboxAllocator, root object.Pointer) (object.Pointer, error) {
	if !root.IsHeap() {
		return root, nil // immediates copy by value trivially
	}
	forward := make(map[*object.Object]*object.Object)

	var copyOne func(src *object.Object) (*object.Object, error)
	copyOne = func(src *object.Object) (*object.Object, error) {
		if c, ok := forward[src]; ok {
			return c, nil
		}
		dstObj := object.New(object.Mailbox)
		forward[src] = dstObj // install before recursing, so cycles resolve

		dstObj.Name = src.Name
		dstObj.Kind = src.Kind
		dstObj.Int = src.Int
		dstObj.Float = src.Float
		dstObj.Str = src.Str
		dstObj.Any = src.Any // opaque handles/compiled code copy by reference

		if len(src.Bytes) > 0 {
			dstObj.Bytes = append([]byte(nil), src.Bytes...)
		}
		if len(src.Arr) > 0 {
			dstObj.Arr = make([]object.Pointer, len(src.Arr))
			for i, el := range src.Arr {
				cp, err := copyPointer(copyOne, el)
				if err != nil {
					return nil, err
				}
				dstObj.Arr[i] = cp
			}
		}

		proto, err := copyPointer(copyOne, src.Prototype)
		if err != nil {
			return nil, err
		}
		dstObj.Prototype = proto

		for _, t := range src.Traits {
			cp, err := copyPointer(copyOne, t)
			if err != nil {
				return nil, err
			}
			dstObj.Traits = append(dstObj.Traits, cp)
		}

		for _, name := range src.AttrNames() {
			v, _ := src.LookupAttribute(name)
			cp, err := copyPointer(copyOne, v)
			if err != nil {
				return nil, err
			}
			dstObj.AddAttribute(name, cp)
		}
		for i, name := range src.MethodNames() {
			cp, err := copyPointer(copyOne, src.MethodValues()[i])
			if err != nil {
				return nil, err
			}
			dstObj.AddMethod(name, cp)
		}

		if err := dst.Allocate(dstObj); err != nil {
			return nil, err
		}
		return dstObj, nil
	}

	rootObj, err := copyOne(root.HeapObject())
	if err != nil {
		return object.Nil, err
	}
	return object.Ref(rootObj), nil
}

// copyPointer copies p unless it is already an immediate or a permanent
// heap pointer, in which case it is reused as-is — permanent values are
// safe to alias across mailbox heaps since they are never mutated or
// collected (spec.md §3 invariant: permanent objects never reference
// Local, so there is nothing unsafe about sharing them by pointer).
func copyPointer(copyOne func(*object.Object) (*object.Object, error), p object.Pointer) (object.Pointer, error) {
	if !p.IsHeap() || p.IsPermanent() {
		return p, nil
	}
	c, err := copyOne(p.HeapObject())
	if err != nil {
		return object.Nil, err
	}
	return object.Ref(c), nil
}

// mailboxAllocator is the minimal interface deepCopy needs from a mailbox
// heap, letting this file avoid importing internal/heap's concrete type in
// its signature (kept for symmetry with how handlers in internal/interp
// depend on narrow interfaces, not concrete allocator types).
type mailboxAllocator interface {
	Allocate(o *object.Object) error
}

// Receive implements the non-blocking half of spec.md §4.C: dequeue the
// head if present. Callers (internal/interp's Receive handler) are
// responsible for transitioning the process to WaitingOnMessage with an
// optional deadline when this returns false.
func Receive(p *Process) (object.Pointer, bool) {
	return p.Queue.Pop()
}
