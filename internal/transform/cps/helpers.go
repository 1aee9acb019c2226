package cps

import "github.com/meko-tech/jsengine/internal/ast"

func ident(name string) *ast.Identifier { return &ast.Identifier{Name: name} }

func undefinedLit() *ast.Literal { return &ast.Literal{Kind: ast.LitUndefined} }

func exprStmt(e ast.Expression) ast.Statement {
	return &ast.ExpressionStatement{Expr: e}
}

func callOf(callee ast.Expression, args ...ast.Expression) *ast.Call {
	return &ast.Call{Callee: callee, Args: args}
}

func member(obj ast.Expression, name string) *ast.Member {
	return &ast.Member{Object: obj, Property: ident(name)}
}

// asBlock wraps a statement in a Block unless it already is one.
func asBlock(s ast.Statement) *ast.Block {
	if s == nil {
		return &ast.Block{}
	}
	if b, ok := s.(*ast.Block); ok {
		return b
	}
	return &ast.Block{Body: []ast.Statement{s}}
}

// prependStmt produces a statement equivalent to running first then rest,
// flattening into a single Block where possible rather than nesting
// blocks-within-blocks for every statement in a sequence.
func prependStmt(first ast.Statement, rest ast.Statement) ast.Statement {
	if restBlock, ok := rest.(*ast.Block); ok {
		body := make([]ast.Statement, 0, len(restBlock.Body)+1)
		body = append(body, first)
		body = append(body, restBlock.Body...)
		return &ast.Block{NodeBase: restBlock.NodeBase, Body: body}
	}
	return &ast.Block{Body: []ast.Statement{first, rest}}
}

// promiseResolveThen builds `Promise.resolve(v).then(function(bindName) {
// <body> }, <rejectName>)`, the suspension point every `await v` compiles
// to.
func promiseResolveThen(v ast.Expression, bindName string, body ast.Statement, rejectName string) ast.Expression {
	resolveCall := callOf(member(ident("Promise"), "resolve"), v)
	onFulfilled := &ast.FunctionExpr{
		Params: []ast.Pattern{&ast.IdentifierPattern{Name: bindName}},
		Body:   asBlock(body),
	}
	return callOf(member(resolveCall, "then"), onFulfilled, ident(rejectName))
}

// declareFunction builds a local named function-expression binding so it
// can be referenced by name and invoked, used for the loop-trampoline
// helper functions generated by transformLoop.
func declareFunction(name string, body *ast.Block) ast.Statement {
	return &ast.FunctionDeclaration{Name: name, Body: body}
}
