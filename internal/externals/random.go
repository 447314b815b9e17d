package externals

import (
	crand "crypto/rand"
	"math/rand"

	"amberlang/internal/object"
	"amberlang/internal/vmerrors"
)

// registerRandom wires random_bytes/random_int onto stdlib crypto/rand
// and math/rand (SPEC_FULL.md §6 random row): cryptographically secure
// bytes for anything security-sensitive, a fast PRNG for everything else.
func registerRandom(r *Registry) error {
	if err := r.Add("random_bytes", randomBytes); err != nil {
		return err
	}
	return r.Add("random_int", randomInt)
}

func randomBytes(ctx *Context, args []object.Pointer) (object.Pointer, error) {
	n, err := argInt(args, 0)
	if err != nil {
		return object.Nil, err
	}
	if n < 0 || n > 1<<20 {
		return object.Nil, vmerrors.New(vmerrors.InvalidType, "random_bytes: length %d out of range", n)
	}
	buf := make([]byte, n)
	if _, err := crand.Read(buf); err != nil {
		return object.Nil, vmerrors.Wrap(vmerrors.External, err, "random_bytes")
	}
	return bytesResult(ctx, buf)
}

func randomInt(ctx *Context, args []object.Pointer) (object.Pointer, error) {
	bound, err := argInt(args, 0)
	if err != nil {
		return object.Nil, err
	}
	if bound <= 0 {
		return object.Nil, vmerrors.New(vmerrors.InvalidType, "random_int: bound must be positive")
	}
	return intResult(rand.Int63n(bound))
}
