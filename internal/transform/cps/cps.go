// Package cps implements the async/await desugaring rewrite: a
// source-to-source transform over the typed ast tree that turns `async
// function`s into ordinary functions returning a Promise, and `await`
// expressions into `.then` suspension points on that Promise. It runs
// after constant folding and before evaluation; on any shape it does not
// know how to rewrite it returns an *Unsupported error, and the caller
// then evaluates the folded typed tree without this rewrite (not the
// untyped IR), where the evaluator settles each `await` synchronously.
//
// Unlike folding, which only ever replaces a node with an equivalent one
// of the same shape, CPS must thread an explicit continuation through
// statement sequences, loops, and try/catch, which is why this package
// additionally carries a per-function state value for generating fresh
// temporary and helper-function names.
package cps

import (
	"fmt"

	"github.com/meko-tech/jsengine/internal/ast"
)

// Unsupported reports an async/await shape this rewriter does not yet
// desugar. Exported so callers can distinguish "evaluate the folded tree
// without the rewrite" from a genuine bug.
type Unsupported struct {
	Shape string
}

func (e *Unsupported) Error() string {
	return fmt.Sprintf("typed CPS does not yet support %s", e.Shape)
}

func unsupported(shape string) error { return &Unsupported{Shape: shape} }

// state carries the fresh-name counter and the resolve/reject function
// names in scope for the async function currently being rewritten. A new
// state is created per async function so names never collide across
// independently-transformed functions, and reject is reassigned (and
// restored) while descending into a try block with a catch clause, so
// that awaits inside the try route their rejection to the catch handler
// instead of the enclosing Promise's reject.
type state struct {
	n       int
	resolve string
	reject  string
}

func newState() *state {
	return &state{resolve: "__resolve", reject: "__reject"}
}

func (s *state) fresh(prefix string) string {
	s.n++
	return fmt.Sprintf("%s%d", prefix, s.n)
}

// Program rewrites every async function reachable from p, and desugars a
// top-level await (one appearing directly in p.Body, outside any
// function) by wrapping the whole program body in an immediately-invoked
// async function expression. It returns p unchanged if there is nothing
// to rewrite, or an *Unsupported error if some shape could not be
// desugared - pkg/engine and eval's EvalSource then keep the folded tree
// as it was and evaluate that.
func Program(p *ast.Program) (*ast.Program, error) {
	if containsTopLevelAwait(p.Body) {
		iife := &ast.Arrow{
			NodeBase: p.NodeBase,
			IsAsync:  true,
			Body:     &ast.Block{NodeBase: p.NodeBase, Body: p.Body},
		}
		transformed, err := transformAsyncFunctionLike(iife.Body.(*ast.Block), iife.NodeBase)
		if err != nil {
			return nil, err
		}
		call := &ast.Call{NodeBase: p.NodeBase, Callee: &ast.Arrow{
			NodeBase: p.NodeBase,
			Body:     transformed,
		}}
		np := *p
		np.Body = []ast.Statement{&ast.ExpressionStatement{NodeBase: p.NodeBase, Expr: call}}
		return &np, nil
	}

	body, changed, err := walkStatements(p.Body)
	if err != nil {
		return nil, err
	}
	if !changed {
		return p, nil
	}
	np := *p
	np.Body = body
	return &np, nil
}

// transformAsyncFunctionLike produces the rewritten, non-async body for
// an async function/method/arrow: `{ return new Promise(function
// (__resolve, __reject) { try { <body'> } catch (e) { __reject(e); } });
// }`.
func transformAsyncFunctionLike(body *ast.Block, base ast.NodeBase) (*ast.Block, error) {
	st := newState()

	innerBody, err := transformStatements(body.Body, 0, st, func() (ast.Statement, error) {
		return exprStmt(callOf(ident(st.resolve), undefinedLit())), nil
	})
	if err != nil {
		return nil, err
	}

	executorBody := &ast.Block{Body: []ast.Statement{
		&ast.Try{
			Block:      asBlock(innerBody),
			CatchParam: &ast.IdentifierPattern{Name: "e"},
			CatchBody:  asBlock(exprStmt(callOf(ident(st.reject), ident("e")))),
		},
	}}
	executor := &ast.FunctionExpr{
		Params: []ast.Pattern{
			&ast.IdentifierPattern{Name: st.resolve},
			&ast.IdentifierPattern{Name: st.reject},
		},
		Body: executorBody,
	}
	promiseNew := &ast.New{
		Callee: ident("Promise"),
		Args:   []ast.Expression{executor},
	}
	return &ast.Block{NodeBase: ast.NodeBase{SourceRef: base.SourceRef, Origin: body}, Body: []ast.Statement{
		&ast.Return{NodeBase: base, Arg: promiseNew},
	}}, nil
}
