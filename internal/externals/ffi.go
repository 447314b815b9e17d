package externals

import (
	"plugin"

	"amberlang/internal/object"
	"amberlang/internal/vmerrors"
)

// registerFFI wires ffi_open/ffi_lookup/ffi_call onto stdlib plugin
// (SPEC_FULL.md §6 foreign-function row). Go's plugin package only
// supports Linux ELF .so files built with `go build -buildmode=plugin`,
// so this category is a Linux-only capability by construction, same as
// the upstream package it wraps — no separate build tag is needed here
// because plugin.Open itself returns an error on unsupported platforms
// rather than failing to compile.
func registerFFI(r *Registry) error {
	if err := r.Add("ffi_open", ffiOpen); err != nil {
		return err
	}
	if err := r.Add("ffi_lookup", ffiLookup); err != nil {
		return err
	}
	return r.Add("ffi_call", ffiCall)
}

func ffiOpen(ctx *Context, args []object.Pointer) (object.Pointer, error) {
	path, err := argString(args, 0)
	if err != nil {
		return object.Nil, err
	}
	p, err := plugin.Open(path)
	if err != nil {
		return object.Nil, vmerrors.Wrap(vmerrors.External, err, "ffi_open %q", path)
	}
	o := object.New(object.Local)
	o.Kind = object.KindLibraryHandle
	o.Any = p
	return allocate(ctx, o)
}

func ffiLookup(ctx *Context, args []object.Pointer) (object.Pointer, error) {
	if len(args) < 2 || !args[0].IsHeap() || args[0].HeapObject().Kind != object.KindLibraryHandle {
		return object.Nil, vmerrors.New(vmerrors.InvalidType, "ffi_lookup: first argument must be a library handle")
	}
	lib, _ := args[0].HeapObject().Any.(*plugin.Plugin)
	name, err := argString(args, 1)
	if err != nil {
		return object.Nil, err
	}
	sym, err := lib.Lookup(name)
	if err != nil {
		return object.Nil, vmerrors.Wrap(vmerrors.External, err, "ffi_lookup %q", name)
	}
	o := object.New(object.Local)
	o.Kind = object.KindFunctionHandle
	o.Any = sym
	return allocate(ctx, o)
}

// foreignFunc is the calling convention this runtime requires of any
// exported plugin symbol bound to ffi_call: byte slice in, byte slice
// out. A richer ABI (typed arguments, multiple returns) is future work;
// this is enough to let a plugin do arbitrary work on marshalled data the
// caller controls.
type foreignFunc func([]byte) []byte

func ffiCall(ctx *Context, args []object.Pointer) (object.Pointer, error) {
	if len(args) < 1 || !args[0].IsHeap() || args[0].HeapObject().Kind != object.KindFunctionHandle {
		return object.Nil, vmerrors.New(vmerrors.InvalidType, "ffi_call: first argument must be a function handle")
	}
	sym := args[0].HeapObject().Any
	raw, ok := sym.(func([]byte) []byte)
	if !ok {
		return object.Nil, vmerrors.New(vmerrors.InvalidType, "ffi_call: symbol does not match func([]byte) []byte")
	}
	fn := foreignFunc(raw)
	var payload []byte
	if len(args) > 1 {
		var err error
		payload, err = argBytes(args, 1)
		if err != nil {
			return object.Nil, err
		}
	}
	return bytesResult(ctx, fn(payload))
}
