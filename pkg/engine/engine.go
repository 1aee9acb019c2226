// Package engine is the embedding API: it wires the
// lexer/parser/astbuilder/fold/cps/eval pipeline together, bootstraps an
// internal/runtime/eval.Realm with every internal/stdlib package, and
// exposes Parse/Evaluate/Run plus the diagnostics channel to a host
// program.
//
// Engine.New wires realm prototypes plus every internal/stdlib/*.Install
// call into one eval.Interpreter behind a single constructor, keeping
// each concern in its own package.
package engine

import (
	"github.com/sirupsen/logrus"

	"github.com/meko-tech/jsengine/internal/ast"
	"github.com/meko-tech/jsengine/internal/astbuilder"
	"github.com/meko-tech/jsengine/internal/diagnostics"
	"github.com/meko-tech/jsengine/internal/lexer"
	"github.com/meko-tech/jsengine/internal/parser"
	"github.com/meko-tech/jsengine/internal/runtime/eval"
	"github.com/meko-tech/jsengine/internal/runtime/values"
	"github.com/meko-tech/jsengine/internal/stdlib/arrayobj"
	"github.com/meko-tech/jsengine/internal/stdlib/collectionsobj"
	"github.com/meko-tech/jsengine/internal/stdlib/dateobj"
	"github.com/meko-tech/jsengine/internal/stdlib/errorobj"
	"github.com/meko-tech/jsengine/internal/stdlib/globalobj"
	"github.com/meko-tech/jsengine/internal/stdlib/jsonobj"
	"github.com/meko-tech/jsengine/internal/stdlib/mathobj"
	"github.com/meko-tech/jsengine/internal/stdlib/numberobj"
	"github.com/meko-tech/jsengine/internal/stdlib/objectobj"
	"github.com/meko-tech/jsengine/internal/stdlib/promiseobj"
	"github.com/meko-tech/jsengine/internal/stdlib/regexpobj"
	"github.com/meko-tech/jsengine/internal/stdlib/stringobj"
	"github.com/meko-tech/jsengine/internal/transform/cps"
	"github.com/meko-tech/jsengine/internal/transform/fold"
)

// Engine is one embeddable interpreter instance: a realm, an Interpreter
// bound to it, and the diagnostics channel the host drains for
// exceptions and __debug() messages.
type Engine struct {
	it    *eval.Interpreter
	realm *eval.Realm
	diag  *diagnostics.Channel
	opts  Options
}

// New bootstraps a fresh Engine: it allocates Object.prototype and
// Function.prototype (every other intrinsic prototype chains from one of
// these two, so they must exist before any internal/stdlib package
// runs), then runs every internal/stdlib Install in dependency order.
func New(opts ...Option) (*Engine, error) {
	o := DefaultOptions()
	for _, fn := range opts {
		fn(&o)
	}

	log := o.Log
	if log == nil {
		l := logrus.New()
		l.SetOutput(o.Output)
		log = logrus.NewEntry(l)
	}

	objectProto := values.NewObject(nil)
	objectProto.Class = "Object"

	functionProto := values.NewObject(objectProto)
	functionProto.Class = "Function"
	functionProto.Internal = &values.FunctionData{
		Kind: values.FuncHost, Name: "", Length: 0,
		Native: func(this values.Value, args []values.Value) (values.Value, error) {
			return values.TheUndefined, nil
		},
	}

	global := values.NewObject(objectProto)
	global.Class = "global"

	realm := &eval.Realm{
		Global:        global,
		ObjectProto:   objectProto,
		FunctionProto: functionProto,
	}

	diag := diagnostics.NewChannel()
	it := eval.New(realm, o.toEvalOptions(), diag, log)

	objectobj.Install(it, realm, global)
	errorobj.Install(it, realm, global)
	globalobj.Install(it, global)
	mathobj.Install(it, global)
	arrayobj.Install(it, realm, global)
	stringobj.Install(it, realm, global)
	numberobj.Install(it, realm, global)
	regexpobj.Install(it, realm, global)
	promiseobj.Install(it, realm, global)
	collectionsobj.Install(it, realm, global)
	jsonobj.Install(it, realm, global)
	dateobj.Install(it, realm, global)

	return &Engine{it: it, realm: realm, diag: diag, opts: o}, nil
}

// ParseStep names one stage of the pipeline, for ParseWithSteps callers
// that want an intermediate representation (the `jsengine parse --steps`
// CLI mode).
type ParseStep string

const (
	StepIR     ParseStep = "ir"
	StepAST    ParseStep = "ast"
	StepFolded ParseStep = "folded"
	StepCPS    ParseStep = "cps"
)

// ParseResult carries whichever intermediate representations ParseWithSteps
// was asked to keep, plus the final AST ready for Evaluate.
type ParseResult struct {
	Program    *ast.Program
	IR         any
	AST        *ast.Program
	Folded     *ast.Program
	CPSApplied *ast.Program
}

// Parse runs the full lexer/parser/astbuilder/fold/cps pipeline over
// src and returns the resulting program, or the first parse error.
func (e *Engine) Parse(src, file string) (*ast.Program, error) {
	res, err := e.ParseWithSteps(src, file, nil)
	if err != nil {
		return nil, err
	}
	return res.Program, nil
}

// ParseWithSteps runs the same pipeline as Parse but additionally
// retains the intermediate representation at each stage named in keep,
// for the CLI's `parse --steps` inspection mode.
func (e *Engine) ParseWithSteps(src, file string, keep []ParseStep) (*ParseResult, error) {
	p := parser.New(src, file)
	cell := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		return nil, errs[0]
	}

	res := &ParseResult{}
	wants := func(s ParseStep) bool {
		for _, k := range keep {
			if k == s {
				return true
			}
		}
		return false
	}
	if wants(StepIR) {
		res.IR = cell
	}

	prog := astbuilder.Build(cell)
	if wants(StepAST) {
		res.AST = prog
	}

	prog = fold.Program(prog)
	if wants(StepFolded) {
		res.Folded = prog
	}

	if rewritten, err := cps.Program(prog); err == nil {
		prog = rewritten
	}
	if wants(StepCPS) {
		res.CPSApplied = prog
	}

	res.Program = prog
	return res, nil
}

// Lex tokenizes src without parsing, for the CLI's `jsengine lex` mode.
func (e *Engine) Lex(src, file string) []lexer.Token {
	lx := lexer.New(src, lexer.WithFile(file))
	var tokens []lexer.Token
	for {
		tok := lx.NextToken()
		tokens = append(tokens, tok)
		if tok.Kind == lexer.EOF {
			break
		}
	}
	return tokens
}

// Evaluate parses and runs src to its first suspension point (all
// synchronous code) without draining the event loop - callers that also
// want pending Promise/timer work to finish call Run afterward.
func (e *Engine) Evaluate(src, file string) (values.Value, error) {
	prog, err := e.Parse(src, file)
	if err != nil {
		return nil, err
	}
	return e.it.EvalProgram(prog)
}

// Run drains the event loop to quiescence: every scheduled microtask,
// macrotask, and timer runs until none remain.
func (e *Engine) Run() {
	e.it.RunEventLoop()
}

// EvaluateSync parses, evaluates, and drains the event loop in one call -
// the common case for a host that has no reason to interleave other work
// between "run the script" and "let pending promises settle".
func (e *Engine) EvaluateSync(src, file string) (values.Value, error) {
	v, err := e.Evaluate(src, file)
	if err != nil {
		return nil, err
	}
	e.Run()
	return v, nil
}

// SetGlobalFunction installs a host Go function as a global callable,
// the FFI surface a guest script reaches through an ordinary call
// expression.
func (e *Engine) SetGlobalFunction(name string, length int, fn values.NativeFunc) {
	e.realm.Global.DefineOwn(values.StringKey(name), &values.PropertyDescriptor{
		Value: values.NewNativeFunction(e.realm.FunctionProto, name, length, fn), Writable: true, Configurable: true,
	})
}

// ScheduleTask enqueues fn as a macrotask, for a host that wants to
// inject externally-triggered guest work (e.g. a completed host I/O
// operation) into the same queue setTimeout uses.
func (e *Engine) ScheduleTask(fn func() error) {
	e.it.Loop.ScheduleMacrotask(fn)
}

// Exceptions drains every ExceptionInfo pushed since the last call
// (unhandled guest throws, unhandled promise rejections, parse errors
// surfaced through eval()).
func (e *Engine) Exceptions() []diagnostics.ExceptionInfo {
	return e.diag.DrainExceptions()
}

// DebugMessages drains every DebugMessage pushed by __debug() calls
// since the last call.
func (e *Engine) DebugMessages() []diagnostics.DebugMessage {
	return e.diag.DrainDebug()
}

// Close releases the Engine. Evaluation holds no external resources
// beyond Go-managed memory today, so this is a no-op reserved for a
// future host-handle (file, socket) FFI surface.
func (e *Engine) Close() error {
	return nil
}
