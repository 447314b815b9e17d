// Package externals implements the registry contract of spec.md §6: a
// process-global name→function map the ExternalCall opcode looks up by
// name, wired to concrete standard-library and ecosystem implementations
// per category (SPEC_FULL.md §6's table).
package externals

import (
	"sync"

	"amberlang/internal/heap"
	"amberlang/internal/object"
	"amberlang/internal/process"
	"amberlang/internal/vmerrors"
	"amberlang/internal/vmlog"
)

// Func is one registered external function. args are already resolved
// register values; the return pointer is installed into the calling
// frame's destination register by the ExternalCall handler.
type Func func(ctx *Context, args []object.Pointer) (object.Pointer, error)

// Context is what an external function needs to do its job: allocate
// results into the calling process's heap, re-enter a block, or reach the
// shared permanent space for dynamic module loading.
type Context struct {
	Process   *process.Process
	Permanent *heap.Permanent
	Log       *vmlog.Logger

	// CallBlock re-enters the interpreter's RunBlock logic from native
	// code (the "blocks" category's call_block, SPEC_FULL.md §6). It is a
	// function value rather than an interface method so this package never
	// has to import internal/interp, which would be a cycle (interp
	// already imports externals to drive ExternalCall).
	CallBlock func(p *process.Process, block *object.BlockValue, args []object.Pointer) (object.Pointer, error)

	// RegisterIO arranges for p to be resumed once fd is ready, used by the
	// stdio category's stdin_read_line. nil on platforms/configurations with
	// no poller.
	RegisterIO func(fd int, write bool, p *process.Process) error
}

// Registry is the process-global name→function map (spec.md §6 "registry
// contract"). Registration happens once at startup; lookups happen on
// every ExternalCall.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Func
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]Func)}
}

// Add registers fn under name, failing if name is already bound — a
// duplicate registration is almost always a startup-time bug, not a
// legitimate override.
func (r *Registry) Add(name string, fn Func) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.funcs[name]; exists {
		return vmerrors.New(vmerrors.InvalidType, "external function %q already registered", name)
	}
	r.funcs[name] = fn
	return nil
}

// Get resolves name, reporting an InvalidType error if nothing is
// registered under it (spec.md §4.E/§6 ExternalCall "undefined name" is
// an ordinary catchable error, not a host crash).
func (r *Registry) Get(name string) (Func, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[name]
	if !ok {
		return nil, vmerrors.New(vmerrors.InvalidType, "undefined external function %q", name)
	}
	return fn, nil
}

// NewStandardRegistry returns a Registry with every category of
// SPEC_FULL.md §6's table wired in.
func NewStandardRegistry() *Registry {
	r := NewRegistry()
	for _, reg := range []func(*Registry) error{
		registerFilesystem,
		registerStdio,
		registerEnvironment,
		registerTime,
		registerHashing,
		registerBlocks,
		registerFFI,
		registerModuleLoading,
		registerSockets,
		registerProcessControl,
		registerRandom,
	} {
		if err := reg(r); err != nil {
			panic(err) // startup-time registration can only fail on a duplicate name bug
		}
	}
	return r
}
