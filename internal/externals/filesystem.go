package externals

import (
	"os"

	"amberlang/internal/object"
	"amberlang/internal/vmerrors"
)

// registerFilesystem wires file_read/file_write/file_stat onto stdlib
// os/io (SPEC_FULL.md §6 filesystem row).
func registerFilesystem(r *Registry) error {
	if err := r.Add("file_read", fileRead); err != nil {
		return err
	}
	if err := r.Add("file_write", fileWrite); err != nil {
		return err
	}
	return r.Add("file_stat", fileStat)
}

func fileRead(ctx *Context, args []object.Pointer) (object.Pointer, error) {
	path, err := argString(args, 0)
	if err != nil {
		return object.Nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return object.Nil, vmerrors.IoErrorFrom(0, err)
	}
	return bytesResult(ctx, data)
}

func fileWrite(ctx *Context, args []object.Pointer) (object.Pointer, error) {
	path, err := argString(args, 0)
	if err != nil {
		return object.Nil, err
	}
	data, err := argBytes(args, 1)
	if err != nil {
		return object.Nil, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return object.Nil, vmerrors.IoErrorFrom(0, err)
	}
	return intResult(int64(len(data)))
}

func fileStat(ctx *Context, args []object.Pointer) (object.Pointer, error) {
	path, err := argString(args, 0)
	if err != nil {
		return object.Nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return object.Nil, vmerrors.IoErrorFrom(0, err)
	}
	return intResult(info.Size())
}
