package externals

import (
	"os"
	"strings"

	"amberlang/internal/object"
	"amberlang/internal/vmerrors"
)

// registerEnvironment wires env_get/env_set/env_vars onto stdlib os
// (SPEC_FULL.md §6 environment row).
func registerEnvironment(r *Registry) error {
	if err := r.Add("env_get", envGet); err != nil {
		return err
	}
	if err := r.Add("env_set", envSet); err != nil {
		return err
	}
	return r.Add("env_vars", envVars)
}

func envGet(ctx *Context, args []object.Pointer) (object.Pointer, error) {
	name, err := argString(args, 0)
	if err != nil {
		return object.Nil, err
	}
	v, ok := os.LookupEnv(name)
	if !ok {
		return object.Nil, nil
	}
	return stringResult(ctx, v)
}

func envSet(ctx *Context, args []object.Pointer) (object.Pointer, error) {
	name, err := argString(args, 0)
	if err != nil {
		return object.Nil, err
	}
	value, err := argString(args, 1)
	if err != nil {
		return object.Nil, err
	}
	if err := os.Setenv(name, value); err != nil {
		return object.Nil, vmerrors.Wrap(vmerrors.External, err, "env_set %q", name)
	}
	return object.Nil, nil
}

func envVars(ctx *Context, args []object.Pointer) (object.Pointer, error) {
	raw := os.Environ()
	elems := make([]object.Pointer, len(raw))
	for i, kv := range raw {
		parts := strings.SplitN(kv, "=", 2)
		s, err := stringResult(ctx, parts[0])
		if err != nil {
			return object.Nil, err
		}
		elems[i] = s
	}
	return arrayResult(ctx, elems)
}
