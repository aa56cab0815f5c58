package dualec

import (
	"context"
	"errors"
	"fmt"
)

// Fault is an error raised by one of the package entry points. It names the
// operation and wraps the underlying cause.
type Fault struct {
	Op  string
	Err error
}

func (f *Fault) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("dualec %s: %v", f.Op, f.Err)
	}
	return fmt.Sprintf("dualec %s failed", f.Op)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

func newFault(op string, err error) *Fault {
	return &Fault{Op: op, Err: err}
}

// IsFatal reports whether err leaves no way forward with the same inputs.
// Oversized outputs and cancellation are the caller's to fix or retry.
func IsFatal(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrInputTooLarge),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return false
	default:
		return true
	}
}
