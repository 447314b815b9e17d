package externals

import (
	"amberlang/internal/object"
	"amberlang/internal/vmerrors"
)

// registerBlocks wires call_block, which re-enters RunBlock from native
// external code (SPEC_FULL.md §6 blocks row) — the mechanism every other
// category's higher-order helpers (a future sort-with-comparator, a
// future each-with-callback) would build on.
func registerBlocks(r *Registry) error {
	return r.Add("call_block", callBlock)
}

func callBlock(ctx *Context, args []object.Pointer) (object.Pointer, error) {
	if len(args) == 0 || !args[0].IsHeap() || args[0].HeapObject().Kind != object.KindBlock {
		return object.Nil, vmerrors.New(vmerrors.InvalidType, "call_block: first argument must be a block")
	}
	bv, ok := args[0].HeapObject().Any.(*object.BlockValue)
	if !ok || bv == nil {
		return object.Nil, vmerrors.New(vmerrors.InvalidType, "call_block: malformed block value")
	}
	if ctx.CallBlock == nil {
		return object.Nil, vmerrors.New(vmerrors.External, "call_block: no interpreter attached to this context")
	}
	return ctx.CallBlock(ctx.Process, bv, args[1:])
}
