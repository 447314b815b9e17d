package externals

import (
	"time"

	"amberlang/internal/object"
)

// registerTime wires monotonic_now/system_time onto stdlib time
// (SPEC_FULL.md §6 time row).
func registerTime(r *Registry) error {
	if err := r.Add("monotonic_now", monotonicNow); err != nil {
		return err
	}
	return r.Add("system_time", systemTime)
}

var processStart = time.Now()

func monotonicNow(ctx *Context, args []object.Pointer) (object.Pointer, error) {
	return intResult(int64(time.Since(processStart)))
}

func systemTime(ctx *Context, args []object.Pointer) (object.Pointer, error) {
	return intResult(time.Now().UnixNano())
}
