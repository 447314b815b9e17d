package externals

import (
	"hash/fnv"

	"golang.org/x/crypto/blake2b"

	"amberlang/internal/object"
	"amberlang/internal/vmerrors"
)

// registerHashing wires hash_fnv1a/hash_blake2b onto stdlib hash/fnv and
// golang.org/x/crypto/blake2b (SPEC_FULL.md §6 hashing row) — the same
// FNV-1a algorithm internal/object's symbol table uses internally, now
// exposed to user code for general-purpose hashing.
func registerHashing(r *Registry) error {
	if err := r.Add("hash_fnv1a", hashFNV1a); err != nil {
		return err
	}
	return r.Add("hash_blake2b", hashBlake2b)
}

func hashFNV1a(ctx *Context, args []object.Pointer) (object.Pointer, error) {
	data, err := argBytes(args, 0)
	if err != nil {
		return object.Nil, err
	}
	h := fnv.New64a()
	h.Write(data)
	return intResult(int64(h.Sum64()))
}

func hashBlake2b(ctx *Context, args []object.Pointer) (object.Pointer, error) {
	data, err := argBytes(args, 0)
	if err != nil {
		return object.Nil, err
	}
	h, err := blake2b.New256(nil)
	if err != nil {
		return object.Nil, vmerrors.Wrap(vmerrors.External, err, "blake2b.New256")
	}
	h.Write(data)
	return bytesResult(ctx, h.Sum(nil))
}
