package eval

import (
	"github.com/meko-tech/jsengine/internal/astbuilder"
	"github.com/meko-tech/jsengine/internal/parser"
	"github.com/meko-tech/jsengine/internal/runtime/env"
	"github.com/meko-tech/jsengine/internal/runtime/values"
	"github.com/meko-tech/jsengine/internal/transform/cps"
	"github.com/meko-tech/jsengine/internal/transform/fold"
)

// EvalSource backs the `eval` global: it runs the same
// lexer/parser/astbuilder/fold/cps pipeline pkg/engine runs over a whole
// program, over source text supplied at runtime. eval may import these
// lower packages directly since none of them import eval back.
//
// direct controls where declarations land: a direct call (a bare `eval(...)`
// identifier call, not `(0, eval)(...)` or assigning eval to another name)
// introduces `var`/function declarations into the calling scope, while an
// indirect call always evaluates against the global scope.
func (it *Interpreter) EvalSource(src string, scope *env.Environment, direct bool) (values.Value, error) {
	p := parser.New(src, "<eval>")
	cell := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		return nil, it.NewThrow("SyntaxError", "%s", errs[0].Error())
	}
	prog := astbuilder.Build(cell)
	prog = fold.Program(prog)
	if rewritten, err := cps.Program(prog); err == nil {
		prog = rewritten
	}

	target := it.Global
	if direct {
		target = scope
	}
	hoistProgram(target, prog.Body)

	var result values.Value = values.TheUndefined
	for _, stmt := range prog.Body {
		c, err := it.evalStatement(stmt, target)
		if err != nil {
			return nil, err
		}
		if c.Type == CompletionNormal && c.Value != nil {
			result = c.Value
		}
		if c.Type != CompletionNormal {
			break
		}
	}
	return result, nil
}
