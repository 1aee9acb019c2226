package eval

import "github.com/meko-tech/jsengine/internal/runtime/values"

// CompletionType tags the non-local signal a statement evaluation
// produced: Normal(value), Break(label?), Continue(label?), or
// Return(value). Throw is modeled separately as a Go error
// (*ThrownValue) rather than a CompletionType, since every evaluator
// method - statement and expression alike - already has to return an
// error for it, and piggy-backing it onto Completion would force
// expression evaluation to return completions too.
type CompletionType int

const (
	CompletionNormal CompletionType = iota
	CompletionBreak
	CompletionContinue
	CompletionReturn
)

// Completion is a statement evaluator's non-throwing result.
type Completion struct {
	Type  CompletionType
	Value values.Value
	Label string
}

func normal(v values.Value) Completion { return Completion{Type: CompletionNormal, Value: v} }

var normalUndefined = Completion{Type: CompletionNormal, Value: values.TheUndefined}

func breakSignal(label string) Completion {
	return Completion{Type: CompletionBreak, Label: label}
}

func continueSignal(label string) Completion {
	return Completion{Type: CompletionContinue, Label: label}
}

func returnSignal(v values.Value) Completion {
	return Completion{Type: CompletionReturn, Value: v}
}

// ThrownValue wraps a guest-visible thrown value so it can travel through
// ordinary Go error returns. It implements error so Call/Construct can
// be used directly as a values.NativeFunc-compatible signature.
type ThrownValue struct {
	Value values.Value
}

func (t *ThrownValue) Error() string {
	return t.Value.String()
}

// Throw wraps v as a *ThrownValue error.
func Throw(v values.Value) error { return &ThrownValue{Value: v} }
