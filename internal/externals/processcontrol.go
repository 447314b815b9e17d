package externals

import (
	"os"
	"os/signal"
	"syscall"

	"amberlang/internal/object"
)

// registerProcessControl wires proc_exit_code/proc_signal_wait onto
// stdlib os and os/signal (SPEC_FULL.md §6 process-control row).
func registerProcessControl(r *Registry) error {
	if err := r.Add("proc_exit_code", procExitCode); err != nil {
		return err
	}
	return r.Add("proc_signal_wait", procSignalWait)
}

// lastExitCode is read by cmd/amber after the entry process terminates,
// letting user code set the host process's eventual exit status without
// this package importing cmd/amber (which would be backwards).
var lastExitCode int64

func procExitCode(ctx *Context, args []object.Pointer) (object.Pointer, error) {
	code, err := argInt(args, 0)
	if err != nil {
		return object.Nil, err
	}
	lastExitCode = code
	return object.Nil, nil
}

// LastExitCode returns the most recent value set via proc_exit_code, or 0
// if none was ever set.
func LastExitCode() int64 { return lastExitCode }

// procSignalWait blocks the calling goroutine until SIGINT or SIGTERM is
// received, then reports which one as a small integer (1=INT, 2=TERM).
// Like Suspend, calling this inline blocks the worker goroutine running
// this process's time slice; a production scheduler would route it
// through the IOPoller instead, but os/signal has no file-descriptor
// handle to register with epoll, so there's nothing to hand the poller.
func procSignalWait(ctx *Context, args []object.Pointer) (object.Pointer, error) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(ch)
	switch <-ch {
	case syscall.SIGINT:
		return intResult(1)
	default:
		return intResult(2)
	}
}
