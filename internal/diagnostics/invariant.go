package diagnostics

import (
	"fmt"

	"github.com/pkg/errors"
)

// InvariantError marks an evaluator "should not happen" condition: an
// internal consistency check failed, indicating an implementation bug
// rather than a guest-script error. It is built with github.com/pkg/errors
// so the resulting error carries a Go stack trace, which Engine folds into
// ExceptionInfo.CallStack alongside the guest call stack.
type InvariantError struct {
	cause error
}

// NewInvariant creates an InvariantError with a captured stack trace.
func NewInvariant(format string, args ...any) *InvariantError {
	return &InvariantError{cause: errors.Errorf(format, args...)}
}

// WrapInvariant attaches a captured stack trace to an existing error,
// for internal helpers that bubble up a bare error that must become
// host-visible with context.
func WrapInvariant(err error, context string) *InvariantError {
	if err == nil {
		return nil
	}
	return &InvariantError{cause: errors.Wrap(err, context)}
}

func (e *InvariantError) Error() string { return e.cause.Error() }
func (e *InvariantError) Unwrap() error { return e.cause }

// StackFrames renders the captured Go stack trace as CallFrame-shaped
// strings, best-effort (pkg/errors stack frames don't map onto guest
// function names, so these are reported with SourceFile set to the Go
// source location instead).
func (e *InvariantError) StackFrames() []CallFrame {
	type stackTracer interface {
		StackTrace() errors.StackTrace
	}
	st, ok := e.cause.(stackTracer)
	if !ok {
		return nil
	}
	frames := st.StackTrace()
	out := make([]CallFrame, 0, len(frames))
	for _, f := range frames {
		out = append(out, CallFrame{
			FunctionName: fmt.Sprintf("%n", f),
			SourceFile:   fmt.Sprintf("%s:%d", f, f),
		})
	}
	return out
}
