package diagnostics

import "github.com/google/uuid"

// SourceHandle identifies which parsed source unit a diagnostic or value
// originated from, without exposing the engine's internal arena layout to
// the host.
type SourceHandle uuid.UUID

// NewSourceHandle allocates a fresh handle.
func NewSourceHandle() SourceHandle { return SourceHandle(uuid.New()) }

func (h SourceHandle) String() string { return uuid.UUID(h).String() }

// ExceptionKind classifies an entry on the exception channel.
type ExceptionKind string

const (
	KindParseError       ExceptionKind = "parse_error"
	KindGuestThrow       ExceptionKind = "guest_throw"
	KindUnhandledReject  ExceptionKind = "unhandled_rejection"
	KindInvariantFailure ExceptionKind = "invariant_failure"
	KindHostCallback     ExceptionKind = "host_callback_error"
)

// CallFrame names one frame of a guest call stack at the point an
// exception was raised.
type CallFrame struct {
	FunctionName string // "<anonymous>" if unnamed
	Line, Column int
	SourceFile   string
}

// ExceptionInfo describes one entry on the exception channel, surfaced to
// the host through Engine.Exceptions().
type ExceptionInfo struct {
	Kind      ExceptionKind
	Message   string
	Context   string // formatted source snippet, when available
	CallStack []CallFrame
}

// DebugMessage carries the bound variables, call stack, and control-flow
// state captured at one guest-visible `__debug()` call.
type DebugMessage struct {
	Variables        map[string]string // name -> String() of the bound value
	CallStack        []CallFrame
	ControlFlowState string // e.g. "in-loop", "in-try", "top-level"
}
