package cps

import "github.com/meko-tech/jsengine/internal/ast"

// contFn produces the statement implementing "everything after this
// point in the enclosing function", i.e. the delimited continuation
// captured by whatever suspension point comes next (or the function's
// implicit final `__resolve(undefined)` if nothing suspends again).
type contFn func() (ast.Statement, error)

// walkStatements rewrites every async function reachable from stmts
// without altering control flow at this level - used outside any async
// function body, where "await" sequencing does not apply but nested
// function literals still need their own async bodies desugared.
func walkStatements(stmts []ast.Statement) ([]ast.Statement, bool, error) {
	changed := false
	out := make([]ast.Statement, len(stmts))
	for i, s := range stmts {
		ns, c, err := walkStatement(s)
		if err != nil {
			return nil, false, err
		}
		if c {
			changed = true
		}
		out[i] = ns
	}
	if !changed {
		return stmts, false, nil
	}
	return out, true, nil
}

// transformStatements threads transformStatement across stmts[idx:],
// producing the full remaining control flow as a single statement.
func transformStatements(stmts []ast.Statement, idx int, st *state, cont contFn) (ast.Statement, error) {
	if idx >= len(stmts) {
		return cont()
	}
	head := stmts[idx]
	rest := func() (ast.Statement, error) { return transformStatements(stmts, idx+1, st, cont) }
	return transformStatement(head, st, rest)
}

// transformStatement rewrites one statement of an async function body.
// When the statement contains no await of its own, nested async function
// literals inside it are still desugared (via walkStatement) before it
// is prepended to whatever rest() produces.
func transformStatement(s ast.Statement, st *state, rest contFn) (ast.Statement, error) {
	if s == nil {
		return rest()
	}
	if !containsAwaitStmt(s) {
		walked, _, err := walkStatement(s)
		if err != nil {
			return nil, err
		}
		r, err := rest()
		if err != nil {
			return nil, err
		}
		return prependStmt(walked, r), nil
	}

	switch n := s.(type) {
	case *ast.Block:
		return transformStatements(n.Body, 0, st, rest)

	case *ast.ExpressionStatement:
		return transformExpr(n.Expr, st, func(ast.Expression) (ast.Statement, error) {
			return rest()
		})

	case *ast.Return:
		if n.Arg == nil {
			return exprStmt(callOf(ident(st.resolve), undefinedLit())), nil
		}
		return transformExpr(n.Arg, st, func(v ast.Expression) (ast.Statement, error) {
			return exprStmt(callOf(ident(st.resolve), v)), nil
		})

	case *ast.Throw:
		return transformExpr(n.Arg, st, func(v ast.Expression) (ast.Statement, error) {
			return exprStmt(callOf(ident(st.reject), v)), nil
		})

	case *ast.VariableDeclaration:
		return transformVarBindings(n.Kind, n.Bindings, 0, st, rest)

	case *ast.If:
		return transformExpr(n.Cond, st, func(c ast.Expression) (ast.Statement, error) {
			thenS, err := transformStatement(n.Then, st, rest)
			if err != nil {
				return nil, err
			}
			var elseS ast.Statement
			if n.Else != nil {
				elseS, err = transformStatement(n.Else, st, rest)
			} else {
				elseS, err = rest()
			}
			if err != nil {
				return nil, err
			}
			return &ast.If{Cond: c, Then: asBlock(thenS), Else: asBlock(elseS)}, nil
		})

	case *ast.While:
		return transformWhile(n, st, rest)

	case *ast.DoWhile:
		return transformDoWhile(n, st, rest)

	case *ast.For:
		return transformFor(n, st, rest)

	case *ast.Try:
		return transformTry(n, st, rest)

	case *ast.Labeled:
		return transformStatement(n.Body, st, rest)

	default:
		return nil, unsupported("await inside this statement form")
	}
}

func transformVarBindings(kind ast.VarKind, bindings []ast.VariableBinding, idx int, st *state, rest contFn) (ast.Statement, error) {
	if idx >= len(bindings) {
		return rest()
	}
	b := bindings[idx]
	restBindings := func() (ast.Statement, error) {
		return transformVarBindings(kind, bindings, idx+1, st, rest)
	}
	if b.Init == nil || !containsAwaitExpr(b.Init) {
		r, err := restBindings()
		if err != nil {
			return nil, err
		}
		decl := &ast.VariableDeclaration{Kind: kind, Bindings: []ast.VariableBinding{b}}
		return prependStmt(decl, r), nil
	}
	if _, ok := b.Target.(*ast.IdentifierPattern); !ok {
		return nil, unsupported("await in a destructuring variable initializer")
	}
	return transformExpr(b.Init, st, func(v ast.Expression) (ast.Statement, error) {
		decl := &ast.VariableDeclaration{Kind: kind, Bindings: []ast.VariableBinding{{Target: b.Target, Init: v}}}
		r, err := restBindings()
		if err != nil {
			return nil, err
		}
		return prependStmt(decl, r), nil
	})
}

// transformWhile rewrites a while-loop containing await into a
// self-recursive local function: each iteration either re-enters the
// loop function or falls through to rest(), exactly once in the
// generated source regardless of how many times it runs at evaluation
// time.
func transformWhile(n *ast.While, st *state, rest contFn) (ast.Statement, error) {
	if containsAwaitExpr(n.Cond) {
		return nil, unsupported("await in a while-loop condition")
	}
	loopName := st.fresh("__loop")
	bodyStmt, err := transformStatement(n.Body, st, func() (ast.Statement, error) {
		return exprStmt(callOf(ident(loopName))), nil
	})
	if err != nil {
		return nil, err
	}
	restStmt, err := rest()
	if err != nil {
		return nil, err
	}
	fn := declareFunction(loopName, &ast.Block{Body: []ast.Statement{
		&ast.If{Cond: n.Cond, Then: asBlock(bodyStmt), Else: asBlock(restStmt)},
	}})
	return &ast.Block{Body: []ast.Statement{fn, exprStmt(callOf(ident(loopName)))}}, nil
}

// transformDoWhile is transformWhile with the body run once unconditionally
// before the condition is first tested.
func transformDoWhile(n *ast.DoWhile, st *state, rest contFn) (ast.Statement, error) {
	if containsAwaitExpr(n.Cond) {
		return nil, unsupported("await in a do-while condition")
	}
	loopName := st.fresh("__loop")
	restStmt, err := rest()
	if err != nil {
		return nil, err
	}
	checkStmt := &ast.If{
		Cond: n.Cond,
		Then: asBlock(exprStmt(callOf(ident(loopName)))),
		Else: asBlock(restStmt),
	}
	bodyStmt, err := transformStatement(n.Body, st, func() (ast.Statement, error) { return checkStmt, nil })
	if err != nil {
		return nil, err
	}
	fn := declareFunction(loopName, asBlock(bodyStmt))
	return &ast.Block{Body: []ast.Statement{fn, exprStmt(callOf(ident(loopName)))}}, nil
}

// transformFor desugars the three-clause for-loop to `{ init; while (cond)
// { body; update; } }` and delegates to transformWhile; init/cond/update
// must not themselves await - the common case, `for (let i = 0; i < n;
// i++) { await step(i); }`, only needs body to await.
func transformFor(n *ast.For, st *state, rest contFn) (ast.Statement, error) {
	if (n.Cond != nil && containsAwaitExpr(n.Cond)) || (n.Update != nil && containsAwaitExpr(n.Update)) {
		return nil, unsupported("await in a for-loop condition or update clause")
	}
	cond := n.Cond
	if cond == nil {
		cond = &ast.Literal{Kind: ast.LitBool, Value: true}
	}
	var bodyStmts []ast.Statement
	bodyStmts = append(bodyStmts, n.Body)
	if n.Update != nil {
		bodyStmts = append(bodyStmts, exprStmt(n.Update))
	}
	whileStmt := &ast.While{Cond: cond, Body: &ast.Block{Body: bodyStmts}}
	if n.Init == nil {
		return transformStatement(whileStmt, st, rest)
	}
	return transformStatement(n.Init, st, func() (ast.Statement, error) {
		return transformStatement(whileStmt, st, rest)
	})
}

// transformTry rewrites `try { block } catch (param) { catchBody }` by
// redirecting the reject continuation used for awaits inside block to a
// generated catch-handler function, and wrapping the synchronously-
// executing portion of block in a real try/catch so synchronous throws
// reach the same handler. `finally` and catch-less try are rejected as
// unsupported; the evaluator then runs the un-rewritten tree.
func transformTry(n *ast.Try, st *state, rest contFn) (ast.Statement, error) {
	if n.Finally != nil {
		return nil, unsupported("await inside a try with a finally clause")
	}
	if n.CatchBody == nil {
		return nil, unsupported("await inside a try with no catch clause")
	}

	catchName := st.fresh("__catch")
	catchParamName := "e"
	if ip, ok := n.CatchParam.(*ast.IdentifierPattern); ok && ip.Name != "" {
		catchParamName = ip.Name
	}
	catchStmt, err := transformStatement(n.CatchBody, st, rest)
	if err != nil {
		return nil, err
	}
	catchFn := &ast.FunctionExpr{
		Params: []ast.Pattern{&ast.IdentifierPattern{Name: catchParamName}},
		Body:   asBlock(catchStmt),
	}
	catchDecl := &ast.VariableDeclaration{Kind: ast.VarConst, Bindings: []ast.VariableBinding{
		{Target: &ast.IdentifierPattern{Name: catchName}, Init: catchFn},
	}}

	savedReject := st.reject
	st.reject = catchName
	innerStmt, err := transformStatement(n.Block, st, rest)
	st.reject = savedReject
	if err != nil {
		return nil, err
	}

	guarded := &ast.Try{
		Block:      asBlock(innerStmt),
		CatchParam: &ast.IdentifierPattern{Name: "__syncErr"},
		CatchBody:  asBlock(exprStmt(callOf(ident(catchName), ident("__syncErr")))),
	}
	return prependStmt(catchDecl, guarded), nil
}
