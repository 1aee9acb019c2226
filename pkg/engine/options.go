package engine

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/meko-tech/jsengine/internal/runtime/eval"
)

// Options configures an Engine: a plain struct with a DefaultOptions()
// constructor and functional-option setters.
type Options struct {
	MaxCallStackDepth           int
	MicrotaskBudgetPerMacrotask int
	StrictByDefault             bool
	Output                      io.Writer
	Log                         *logrus.Entry
}

// DefaultOptions mirrors internal/runtime/eval.DefaultOptions, adding the
// embedding-level knobs (output stream, logger) eval itself has no
// opinion about.
func DefaultOptions() Options {
	evalDefaults := eval.DefaultOptions()
	return Options{
		MaxCallStackDepth:           evalDefaults.MaxCallStackDepth,
		MicrotaskBudgetPerMacrotask: evalDefaults.MicrotaskBudgetPerMacrotask,
		Output:                      io.Discard,
	}
}

// Option mutates an Options in place, the functional-options idiom used
// throughout this package's setters.
type Option func(*Options)

func WithMaxCallStackDepth(n int) Option {
	return func(o *Options) { o.MaxCallStackDepth = n }
}

func WithMicrotaskBudget(n int) Option {
	return func(o *Options) { o.MicrotaskBudgetPerMacrotask = n }
}

func WithStrictByDefault(b bool) Option {
	return func(o *Options) { o.StrictByDefault = b }
}

func WithOutput(w io.Writer) Option {
	return func(o *Options) { o.Output = w }
}

func WithLogger(l *logrus.Entry) Option {
	return func(o *Options) { o.Log = l }
}

func (o Options) toEvalOptions() eval.Options {
	return eval.Options{
		MaxCallStackDepth:           o.MaxCallStackDepth,
		MicrotaskBudgetPerMacrotask: o.MicrotaskBudgetPerMacrotask,
		StrictByDefault:             o.StrictByDefault,
	}
}
