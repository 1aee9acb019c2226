package cps

import (
	"reflect"
	"testing"

	"github.com/meko-tech/jsengine/internal/ast"
)

// buildAsyncFn builds `async function name() { <body> }` for the tests
// below to rewrite.
func buildAsyncFn(name string, body ...ast.Statement) *ast.FunctionDeclaration {
	return &ast.FunctionDeclaration{Name: name, IsAsync: true, Body: &ast.Block{Body: body}}
}

func TestProgramUnchangedWithoutAsync(t *testing.T) {
	p := &ast.Program{Body: []ast.Statement{
		&ast.ExpressionStatement{Expr: &ast.Call{Callee: &ast.Identifier{Name: "f"}}},
	}}
	got, err := Program(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != p {
		t.Fatalf("Program() allocated a new tree when nothing was async")
	}
}

func TestProgramRewritesAsyncFunctionDeclaration(t *testing.T) {
	// async function f() { return await g(); }
	fn := buildAsyncFn("f", &ast.Return{Arg: &ast.Await{Arg: &ast.Call{Callee: &ast.Identifier{Name: "g"}}}})
	p := &ast.Program{Body: []ast.Statement{fn}}

	got, err := Program(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == p {
		t.Fatalf("Program() did not rewrite an async function")
	}
	rewritten, ok := got.Body[0].(*ast.FunctionDeclaration)
	if !ok {
		t.Fatalf("Body[0] is %T, want *ast.FunctionDeclaration", got.Body[0])
	}
	if rewritten.IsAsync {
		t.Errorf("rewritten function is still marked async")
	}
	ret, ok := rewritten.Body.Body[0].(*ast.Return)
	if !ok {
		t.Fatalf("rewritten body[0] is %T, want *ast.Return", rewritten.Body.Body[0])
	}
	newExpr, ok := ret.Arg.(*ast.New)
	if !ok {
		t.Fatalf("return arg is %T, want *ast.New (Promise)", ret.Arg)
	}
	callee, ok := newExpr.Callee.(*ast.Identifier)
	if !ok || callee.Name != "Promise" {
		t.Fatalf("new callee = %#v, want Identifier(Promise)", newExpr.Callee)
	}
}

func TestAwaitInIfBranchBothCallRest(t *testing.T) {
	// async function f(x) { if (x) { await g(); } return 1; }
	fn := buildAsyncFn("f",
		&ast.If{
			Cond: &ast.Identifier{Name: "x"},
			Then: &ast.Block{Body: []ast.Statement{
				&ast.ExpressionStatement{Expr: &ast.Await{Arg: &ast.Call{Callee: &ast.Identifier{Name: "g"}}}},
			}},
		},
		&ast.Return{Arg: &ast.Literal{Kind: ast.LitNumber, Value: 1.0}},
	)
	p := &ast.Program{Body: []ast.Statement{fn}}
	got, err := Program(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The executor's try block holds the rewritten if: the else branch runs
	// the rest of the function directly, the then branch runs the same rest
	// inside g()'s .then callback.
	exec := got.Body[0].(*ast.FunctionDeclaration).Body.Body[0].(*ast.Return).Arg.(*ast.New).Args[0].(*ast.FunctionExpr)
	first := exec.Body.Body[0].(*ast.Try).Block.Body[0]
	ifStmt, ok := first.(*ast.If)
	if !ok {
		t.Fatalf("try block starts with %T, want *ast.If", first)
	}
	onFulfilled := ifStmt.Then.(*ast.Block).Body[0].(*ast.ExpressionStatement).Expr.(*ast.Call).Args[0].(*ast.FunctionExpr)
	elseBody := ifStmt.Else.(*ast.Block).Body
	if len(elseBody) == 0 || !reflect.DeepEqual(onFulfilled.Body.Body, elseBody) {
		t.Errorf("then branch continues with %#v, else branch with %#v; want the same rest in both", onFulfilled.Body.Body, elseBody)
	}
}

func TestAwaitInWhileLoopProducesTrampoline(t *testing.T) {
	// async function f() { while (cond()) { await step(); } return 1; }
	fn := buildAsyncFn("f",
		&ast.While{
			Cond: &ast.Call{Callee: &ast.Identifier{Name: "cond"}},
			Body: &ast.Block{Body: []ast.Statement{
				&ast.ExpressionStatement{Expr: &ast.Await{Arg: &ast.Call{Callee: &ast.Identifier{Name: "step"}}}},
			}},
		},
		&ast.Return{Arg: &ast.Literal{Kind: ast.LitNumber, Value: 1.0}},
	)
	p := &ast.Program{Body: []ast.Statement{fn}}
	got, err := Program(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == p {
		t.Fatalf("expected a rewrite")
	}
	// The executor's try block starts with the generated loop function.
	exec := got.Body[0].(*ast.FunctionDeclaration).Body.Body[0].(*ast.Return).Arg.(*ast.New).Args[0].(*ast.FunctionExpr)
	first := exec.Body.Body[0].(*ast.Try).Block.Body[0]
	if loop, ok := first.(*ast.FunctionDeclaration); !ok || loop.Name != "__loop1" {
		t.Fatalf("try block starts with %#v, want the __loop1 function declaration", first)
	}
}

func TestUnsupportedForAwaitOf(t *testing.T) {
	fn := buildAsyncFn("f",
		&ast.ForOf{
			IsAwait: true,
			Left:    &ast.IdentifierPattern{Name: "v"},
			Right:   &ast.Identifier{Name: "iterable"},
			Body:    &ast.Block{},
		},
	)
	p := &ast.Program{Body: []ast.Statement{fn}}
	_, err := Program(p)
	if err == nil {
		t.Fatalf("expected an Unsupported error for `for await ... of`")
	}
	if _, ok := err.(*Unsupported); !ok {
		t.Fatalf("error = %#v, want *Unsupported", err)
	}
}

func TestTopLevelAwaitWrapsProgramInIIFE(t *testing.T) {
	p := &ast.Program{Body: []ast.Statement{
		&ast.ExpressionStatement{Expr: &ast.Await{Arg: &ast.Call{Callee: &ast.Identifier{Name: "ready"}}}},
	}}
	got, err := Program(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Body) != 1 {
		t.Fatalf("expected the whole program collapsed into one statement, got %d", len(got.Body))
	}
	es, ok := got.Body[0].(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("Body[0] is %T, want *ast.ExpressionStatement", got.Body[0])
	}
	if _, ok := es.Expr.(*ast.Call); !ok {
		t.Fatalf("Expr is %T, want *ast.Call (the IIFE invocation)", es.Expr)
	}
}
