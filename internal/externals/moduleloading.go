package externals

import (
	"os"

	"amberlang/internal/bytecode"
	"amberlang/internal/object"
	"amberlang/internal/vmerrors"
)

// registerModuleLoading wires load_module onto internal/bytecode's
// loader (SPEC_FULL.md §6 module-loading row), the "dynamic, post-startup
// load" spec.md §6 names as a capability distinct from the CLI's own
// startup-time load. The loaded module's literals go into the shared
// permanent space, which cmd/amber seals before running: after that,
// string and integer literals still load, but a float, bigint or array
// literal makes Load fail.
func registerModuleLoading(r *Registry) error {
	return r.Add("load_module", loadModule)
}

// defaultGlobalSlots is used for modules loaded dynamically at runtime,
// since the caller has no compile-time knowledge of how many global
// scope entries the loaded module declares beyond what its own header
// will eventually carry; internal/bytecode.Load sizes the slice from this
// and SetGlobal already range-checks every write.
const defaultGlobalSlots = 256

func loadModule(ctx *Context, args []object.Pointer) (object.Pointer, error) {
	path, err := argString(args, 0)
	if err != nil {
		return object.Nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return object.Nil, vmerrors.IoErrorFrom(0, err)
	}
	defer f.Close()

	m, err := bytecode.Load(f, ctx.Permanent, defaultGlobalSlots)
	if err != nil {
		return object.Nil, err
	}
	m.Seal()

	o := object.New(object.Local)
	o.Kind = object.KindForeignPointer
	o.Any = m
	return allocate(ctx, o)
}
