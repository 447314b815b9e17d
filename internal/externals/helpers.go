package externals

import (
	"errors"

	"amberlang/internal/object"
	"amberlang/internal/vmerrors"
)

// ErrWaitingOnIO is returned by an external function that has already
// registered its file descriptor with ctx.RegisterIO and wants the
// ExternalCall handler to park the process (scheduler.RunWaitingOnIO)
// instead of treating the call as failed (SPEC_FULL.md §4.D). The
// interpreter retries the same instruction once the scheduler's poller
// reports the descriptor ready.
var ErrWaitingOnIO = errors.New("externals: waiting on io readiness")

// argString requires args[i] to be a string object and returns its value.
func argString(args []object.Pointer, i int) (string, error) {
	if i >= len(args) || !args[i].IsHeap() || args[i].HeapObject().Kind != object.KindString {
		return "", vmerrors.New(vmerrors.InvalidType, "external call argument %d must be a string", i)
	}
	return args[i].HeapObject().Str, nil
}

// argInt requires args[i] to be a tagged integer and returns its value.
func argInt(args []object.Pointer, i int) (int64, error) {
	if i >= len(args) || !args[i].IsInteger() {
		return 0, vmerrors.New(vmerrors.InvalidType, "external call argument %d must be an integer", i)
	}
	return args[i].IntegerValue(), nil
}

// argBytes requires args[i] to be a byte-array object and returns its
// bytes.
func argBytes(args []object.Pointer, i int) ([]byte, error) {
	if i >= len(args) || !args[i].IsHeap() || args[i].HeapObject().Kind != object.KindByteArray {
		return nil, vmerrors.New(vmerrors.InvalidType, "external call argument %d must be a byte array", i)
	}
	return args[i].HeapObject().Bytes, nil
}

// result builders allocate directly into the calling process's local heap
// (spec.md §4.C allocate), the same place any other instruction's output
// would land.

func stringResult(ctx *Context, s string) (object.Pointer, error) {
	o := object.New(object.Local)
	o.Kind = object.KindString
	o.Str = s
	return allocate(ctx, o)
}

func intResult(v int64) (object.Pointer, error) { return object.Int(v), nil }

func bytesResult(ctx *Context, b []byte) (object.Pointer, error) {
	o := object.New(object.Local)
	o.Kind = object.KindByteArray
	o.Bytes = b
	return allocate(ctx, o)
}

func arrayResult(ctx *Context, elems []object.Pointer) (object.Pointer, error) {
	o := object.New(object.Local)
	o.Kind = object.KindArray
	o.Arr = elems
	return allocate(ctx, o)
}

func allocate(ctx *Context, o *object.Object) (object.Pointer, error) {
	if err := ctx.Process.Allocate(o); err != nil {
		return object.Nil, err
	}
	return object.Ref(o), nil
}
