// Package vmerrors defines the runtime-visible error taxonomy shared by every
// VM component: the heap, the scheduler, and the interpreter all report
// failures through this single type so callers can use errors.As/errors.Is
// instead of matching on ad-hoc sentinel values.
package vmerrors

import (
	"errors"
	"fmt"
	"syscall"
)

// Kind identifies one row of the error taxonomy.
type Kind int

const (
	// InvalidType is raised when an instruction operand has the wrong
	// inline-value kind for the opcode that reads it.
	InvalidType Kind = iota
	// UndefinedAttribute is raised by the strict GetAttribute variant when
	// the named attribute is absent.
	UndefinedAttribute
	// StackOverflow is raised when frame depth exceeds the configured bound.
	StackOverflow
	// OutOfMemory is raised when the block allocator has no free block and
	// the OS refuses a new mapping.
	OutOfMemory
	// IoError wraps an underlying syscall failure; Code carries the
	// OS errno-like value.
	IoError
	// Panic is an explicit user panic. It is never caught by an exception
	// table and always terminates the process.
	Panic
	// External is raised when a registered external function reports
	// failure.
	External
)

func (k Kind) String() string {
	switch k {
	case InvalidType:
		return "InvalidType"
	case UndefinedAttribute:
		return "UndefinedAttribute"
	case StackOverflow:
		return "StackOverflow"
	case OutOfMemory:
		return "OutOfMemory"
	case IoError:
		return "IoError"
	case Panic:
		return "Panic"
	case External:
		return "External"
	default:
		return "Unknown"
	}
}

// Error is the concrete type behind every runtime-visible failure.
type Error struct {
	Kind    Kind
	Message string
	Code    int   // populated for IoError
	Cause   error // wrapped underlying error, if any
}

func (e *Error) Error() string {
	if e.Kind == IoError {
		return fmt.Sprintf("%s(%d): %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error of the given kind around a lower-level cause.
func Wrap(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// IoErrorFrom builds an IoError carrying the OS errno-like code. A zero
// code is taken from a syscall.Errno wrapped in cause, when there is one.
func IoErrorFrom(code int, cause error) *Error {
	if code == 0 {
		var errno syscall.Errno
		if errors.As(cause, &errno) {
			code = int(errno)
		}
	}
	return &Error{Kind: IoError, Message: cause.Error(), Code: code, Cause: cause}
}
