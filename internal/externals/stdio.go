package externals

import (
	"bufio"
	"os"
	"sync"

	"amberlang/internal/object"
	"amberlang/internal/vmerrors"
)

// stdinReader is shared across calls so successive stdin_read_line calls
// don't each wrap os.Stdin in a fresh, unbuffered reader and lose
// read-ahead bytes between calls.
var (
	stdinOnce   sync.Once
	stdinReader *bufio.Reader
)

func sharedStdin() *bufio.Reader {
	stdinOnce.Do(func() { stdinReader = bufio.NewReader(os.Stdin) })
	return stdinReader
}

// registerStdio wires stdout_write/stdin_read_line onto stdlib
// bufio/os (SPEC_FULL.md §6 stdio row).
func registerStdio(r *Registry) error {
	if err := r.Add("stdout_write", stdoutWrite); err != nil {
		return err
	}
	return r.Add("stdin_read_line", stdinReadLine)
}

func stdoutWrite(ctx *Context, args []object.Pointer) (object.Pointer, error) {
	s, err := argString(args, 0)
	if err != nil {
		return object.Nil, err
	}
	n, err := os.Stdout.WriteString(s)
	if err != nil {
		return object.Nil, vmerrors.IoErrorFrom(0, err)
	}
	return intResult(int64(n))
}

// stdinReadLine routes through the scheduler's I/O poller when one is
// available (SPEC_FULL.md §4.D): the first call registers stdin's file
// descriptor and reports ErrWaitingOnIO instead of blocking the worker
// goroutine; the interpreter retries the same instruction once the
// poller reports the descriptor readable, at which point
// Process.TakeIOReady is true and the real (now non-blocking) read runs.
func stdinReadLine(ctx *Context, args []object.Pointer) (object.Pointer, error) {
	if ctx.RegisterIO != nil && !ctx.Process.TakeIOReady() {
		if err := ctx.RegisterIO(int(os.Stdin.Fd()), false, ctx.Process); err != nil {
			return object.Nil, vmerrors.Wrap(vmerrors.IoError, err, "registering stdin for readiness")
		}
		return object.Nil, ErrWaitingOnIO
	}

	line, err := sharedStdin().ReadString('\n')
	if err != nil && line == "" {
		return object.Nil, vmerrors.IoErrorFrom(0, err)
	}
	return stringResult(ctx, line)
}
