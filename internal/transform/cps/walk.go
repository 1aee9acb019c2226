package cps

import "github.com/meko-tech/jsengine/internal/ast"

// walkStatement finds and desugars async function/method declarations
// reachable from s without threading any continuation through s itself -
// used for statements outside an async function body (or already outside
// the await-containing portion of one), where only nested function
// literals need rewriting.
func walkStatement(s ast.Statement) (ast.Statement, bool, error) {
	switch n := s.(type) {
	case *ast.Block:
		body, changed, err := walkStatements(n.Body)
		if err != nil || !changed {
			return s, changed, err
		}
		nn := *n
		nn.Body = body
		return &nn, true, nil

	case *ast.ExpressionStatement:
		e, changed, err := walkExpr(n.Expr)
		if err != nil || !changed {
			return s, changed, err
		}
		nn := *n
		nn.Expr = e
		return &nn, true, nil

	case *ast.VariableDeclaration:
		changed := false
		bindings := make([]ast.VariableBinding, len(n.Bindings))
		for i, b := range n.Bindings {
			nb := b
			if b.Init != nil {
				fe, c, err := walkExpr(b.Init)
				if err != nil {
					return nil, false, err
				}
				if c {
					nb.Init = fe
					changed = true
				}
			}
			bindings[i] = nb
		}
		if !changed {
			return s, false, nil
		}
		nn := *n
		nn.Bindings = bindings
		return &nn, true, nil

	case *ast.FunctionDeclaration:
		return walkFunctionDeclLike(n)

	case *ast.ClassDeclaration:
		members, changed, err := walkClassMembers(n.Body)
		if err != nil || !changed {
			return s, changed, err
		}
		nn := *n
		nn.Body = members
		return &nn, true, nil

	case *ast.If:
		cond, c1, err := walkExpr(n.Cond)
		if err != nil {
			return nil, false, err
		}
		then, c2, err := walkStatement(n.Then)
		if err != nil {
			return nil, false, err
		}
		var els ast.Statement = n.Else
		c3 := false
		if n.Else != nil {
			els, c3, err = walkStatement(n.Else)
			if err != nil {
				return nil, false, err
			}
		}
		if !c1 && !c2 && !c3 {
			return s, false, nil
		}
		nn := *n
		nn.Cond, nn.Then, nn.Else = cond, then, els
		return &nn, true, nil

	case *ast.For:
		var init ast.Statement = n.Init
		var cond, update ast.Expression = n.Cond, n.Update
		changed := false
		var err error
		if n.Init != nil {
			var c bool
			init, c, err = walkStatement(n.Init)
			if err != nil {
				return nil, false, err
			}
			changed = changed || c
		}
		if n.Cond != nil {
			var c bool
			cond, c, err = walkExpr(n.Cond)
			if err != nil {
				return nil, false, err
			}
			changed = changed || c
		}
		if n.Update != nil {
			var c bool
			update, c, err = walkExpr(n.Update)
			if err != nil {
				return nil, false, err
			}
			changed = changed || c
		}
		body, c, err := walkStatement(n.Body)
		if err != nil {
			return nil, false, err
		}
		changed = changed || c
		if !changed {
			return s, false, nil
		}
		nn := *n
		nn.Init, nn.Cond, nn.Update, nn.Body = init, cond, update, body
		return &nn, true, nil

	case *ast.ForIn:
		right, c1, err := walkExpr(n.Right)
		if err != nil {
			return nil, false, err
		}
		body, c2, err := walkStatement(n.Body)
		if err != nil {
			return nil, false, err
		}
		if !c1 && !c2 {
			return s, false, nil
		}
		nn := *n
		nn.Right, nn.Body = right, body
		return &nn, true, nil

	case *ast.ForOf:
		right, c1, err := walkExpr(n.Right)
		if err != nil {
			return nil, false, err
		}
		body, c2, err := walkStatement(n.Body)
		if err != nil {
			return nil, false, err
		}
		if !c1 && !c2 {
			return s, false, nil
		}
		nn := *n
		nn.Right, nn.Body = right, body
		return &nn, true, nil

	case *ast.While:
		cond, c1, err := walkExpr(n.Cond)
		if err != nil {
			return nil, false, err
		}
		body, c2, err := walkStatement(n.Body)
		if err != nil {
			return nil, false, err
		}
		if !c1 && !c2 {
			return s, false, nil
		}
		nn := *n
		nn.Cond, nn.Body = cond, body
		return &nn, true, nil

	case *ast.DoWhile:
		body, c1, err := walkStatement(n.Body)
		if err != nil {
			return nil, false, err
		}
		cond, c2, err := walkExpr(n.Cond)
		if err != nil {
			return nil, false, err
		}
		if !c1 && !c2 {
			return s, false, nil
		}
		nn := *n
		nn.Body, nn.Cond = body, cond
		return &nn, true, nil

	case *ast.Switch:
		disc, changed, err := walkExpr(n.Disc)
		if err != nil {
			return nil, false, err
		}
		cases := make([]ast.SwitchCase, len(n.Cases))
		for i, c := range n.Cases {
			nc := c
			if c.Test != nil {
				ft, fc, err := walkExpr(c.Test)
				if err != nil {
					return nil, false, err
				}
				if fc {
					nc.Test = ft
					changed = true
				}
			}
			fb, bc, err := walkStatements(c.Body)
			if err != nil {
				return nil, false, err
			}
			if bc {
				nc.Body = fb
				changed = true
			}
			cases[i] = nc
		}
		if !changed {
			return s, false, nil
		}
		nn := *n
		nn.Disc, nn.Cases = disc, cases
		return &nn, true, nil

	case *ast.Try:
		block, c1, err := walkStatement(n.Block)
		if err != nil {
			return nil, false, err
		}
		var catchBody ast.Statement = n.CatchBody
		c2 := false
		if n.CatchBody != nil {
			catchBody, c2, err = walkStatement(n.CatchBody)
			if err != nil {
				return nil, false, err
			}
		}
		var fin ast.Statement = n.Finally
		c3 := false
		if n.Finally != nil {
			fin, c3, err = walkStatement(n.Finally)
			if err != nil {
				return nil, false, err
			}
		}
		if !c1 && !c2 && !c3 {
			return s, false, nil
		}
		nn := *n
		nn.Block, _ = block.(*ast.Block)
		if catchBody != nil {
			nn.CatchBody, _ = catchBody.(*ast.Block)
		}
		if fin != nil {
			nn.Finally, _ = fin.(*ast.Block)
		}
		return &nn, true, nil

	case *ast.Throw:
		arg, changed, err := walkExpr(n.Arg)
		if err != nil || !changed {
			return s, changed, err
		}
		nn := *n
		nn.Arg = arg
		return &nn, true, nil

	case *ast.Return:
		if n.Arg == nil {
			return s, false, nil
		}
		arg, changed, err := walkExpr(n.Arg)
		if err != nil || !changed {
			return s, changed, err
		}
		nn := *n
		nn.Arg = arg
		return &nn, true, nil

	case *ast.Labeled:
		body, changed, err := walkStatement(n.Body)
		if err != nil || !changed {
			return s, changed, err
		}
		nn := *n
		nn.Body = body
		return &nn, true, nil

	default:
		return s, false, nil
	}
}

func walkFunctionDeclLike(n *ast.FunctionDeclaration) (ast.Statement, bool, error) {
	body, changed, err := walkStatements(n.Body.Body)
	if err != nil {
		return nil, false, err
	}
	newBody := n.Body
	if changed {
		newBody = &ast.Block{NodeBase: n.Body.NodeBase, Body: body}
	}
	if !n.IsAsync {
		if !changed {
			return n, false, nil
		}
		nn := *n
		nn.Body = newBody
		return &nn, true, nil
	}
	rewritten, err := transformAsyncFunctionLike(newBody, n.NodeBase)
	if err != nil {
		return nil, false, err
	}
	nn := *n
	nn.Body, nn.IsAsync = rewritten, false
	return &nn, true, nil
}

func walkClassMembers(members []ast.ClassMember) ([]ast.ClassMember, bool, error) {
	changed := false
	out := make([]ast.ClassMember, len(members))
	for i, m := range members {
		nm := m
		if m.Body != nil {
			body, c, err := walkStatements(m.Body.Body)
			if err != nil {
				return nil, false, err
			}
			newBody := m.Body
			if c {
				newBody = &ast.Block{NodeBase: m.Body.NodeBase, Body: body}
			}
			if m.IsAsync {
				rewritten, err := transformAsyncFunctionLike(newBody, m.NodeBase)
				if err != nil {
					return nil, false, err
				}
				nm.Body, nm.IsAsync = rewritten, false
				changed = true
			} else if c {
				nm.Body = newBody
				changed = true
			}
		}
		if m.Value != nil {
			v, c, err := walkExpr(m.Value)
			if err != nil {
				return nil, false, err
			}
			if c {
				nm.Value = v
				changed = true
			}
		}
		out[i] = nm
	}
	if !changed {
		return members, false, nil
	}
	return out, true, nil
}

// walkExpr mirrors walkStatement at expression granularity, additionally
// handling the function-like expression forms (FunctionExpr, Arrow,
// ClassExpr) where an async rewrite may apply.
func walkExpr(e ast.Expression) (ast.Expression, bool, error) {
	switch n := e.(type) {
	case *ast.FunctionExpr:
		body, changed, err := walkStatements(n.Body.Body)
		if err != nil {
			return nil, false, err
		}
		newBody := n.Body
		if changed {
			newBody = &ast.Block{NodeBase: n.Body.NodeBase, Body: body}
		}
		if !n.IsAsync {
			if !changed {
				return n, false, nil
			}
			nn := *n
			nn.Body = newBody
			return &nn, true, nil
		}
		rewritten, err := transformAsyncFunctionLike(newBody, n.NodeBase)
		if err != nil {
			return nil, false, err
		}
		nn := *n
		nn.Body, nn.IsAsync = rewritten, false
		return &nn, true, nil

	case *ast.Arrow:
		switch body := n.Body.(type) {
		case *ast.Block:
			stmts, changed, err := walkStatements(body.Body)
			if err != nil {
				return nil, false, err
			}
			newBody := body
			if changed {
				newBody = &ast.Block{NodeBase: body.NodeBase, Body: stmts}
			}
			if !n.IsAsync {
				if !changed {
					return n, false, nil
				}
				nn := *n
				nn.Body = newBody
				return &nn, true, nil
			}
			rewritten, err := transformAsyncFunctionLike(newBody, n.NodeBase)
			if err != nil {
				return nil, false, err
			}
			nn := *n
			nn.Body, nn.IsAsync = rewritten, false
			return &nn, true, nil
		case ast.Expression:
			inner, changed, err := walkExpr(body)
			if err != nil {
				return nil, false, err
			}
			if !n.IsAsync {
				if !changed {
					return n, false, nil
				}
				nn := *n
				nn.Body = inner
				return &nn, true, nil
			}
			block := &ast.Block{NodeBase: n.NodeBase, Body: []ast.Statement{&ast.Return{Arg: inner}}}
			rewritten, err := transformAsyncFunctionLike(block, n.NodeBase)
			if err != nil {
				return nil, false, err
			}
			nn := *n
			nn.Body, nn.IsAsync = rewritten, false
			return &nn, true, nil
		}
		return n, false, nil

	case *ast.ClassExpr:
		members, changed, err := walkClassMembers(n.Body)
		if err != nil || !changed {
			return e, changed, err
		}
		nn := *n
		nn.Body = members
		return &nn, true, nil

	case *ast.Binary:
		l, c1, err := walkExpr(n.Left)
		if err != nil {
			return nil, false, err
		}
		r, c2, err := walkExpr(n.Right)
		if err != nil {
			return nil, false, err
		}
		if !c1 && !c2 {
			return e, false, nil
		}
		nn := *n
		nn.Left, nn.Right = l, r
		return &nn, true, nil

	case *ast.Logical:
		l, c1, err := walkExpr(n.Left)
		if err != nil {
			return nil, false, err
		}
		r, c2, err := walkExpr(n.Right)
		if err != nil {
			return nil, false, err
		}
		if !c1 && !c2 {
			return e, false, nil
		}
		nn := *n
		nn.Left, nn.Right = l, r
		return &nn, true, nil

	case *ast.Unary:
		a, changed, err := walkExpr(n.Arg)
		if err != nil || !changed {
			return e, changed, err
		}
		nn := *n
		nn.Arg = a
		return &nn, true, nil

	case *ast.Update:
		a, changed, err := walkExpr(n.Arg)
		if err != nil || !changed {
			return e, changed, err
		}
		nn := *n
		nn.Arg = a
		return &nn, true, nil

	case *ast.Conditional:
		c, c1, err := walkExpr(n.Cond)
		if err != nil {
			return nil, false, err
		}
		t, c2, err := walkExpr(n.Then)
		if err != nil {
			return nil, false, err
		}
		el, c3, err := walkExpr(n.Else)
		if err != nil {
			return nil, false, err
		}
		if !c1 && !c2 && !c3 {
			return e, false, nil
		}
		nn := *n
		nn.Cond, nn.Then, nn.Else = c, t, el
		return &nn, true, nil

	case *ast.Sequence:
		changed := false
		exprs := make([]ast.Expression, len(n.Exprs))
		for i, x := range n.Exprs {
			fx, c, err := walkExpr(x)
			if err != nil {
				return nil, false, err
			}
			if c {
				changed = true
			}
			exprs[i] = fx
		}
		if !changed {
			return e, false, nil
		}
		nn := *n
		nn.Exprs = exprs
		return &nn, true, nil

	case *ast.Assignment:
		v, changed, err := walkExpr(n.Value)
		if err != nil || !changed {
			return e, changed, err
		}
		nn := *n
		nn.Value = v
		return &nn, true, nil

	case *ast.Call:
		callee, c1, err := walkExpr(n.Callee)
		if err != nil {
			return nil, false, err
		}
		changed := c1
		args := make([]ast.Expression, len(n.Args))
		for i, a := range n.Args {
			fa, c, err := walkExpr(a)
			if err != nil {
				return nil, false, err
			}
			if c {
				changed = true
			}
			args[i] = fa
		}
		if !changed {
			return e, false, nil
		}
		nn := *n
		nn.Callee, nn.Args = callee, args
		return &nn, true, nil

	case *ast.New:
		callee, c1, err := walkExpr(n.Callee)
		if err != nil {
			return nil, false, err
		}
		changed := c1
		args := make([]ast.Expression, len(n.Args))
		for i, a := range n.Args {
			fa, c, err := walkExpr(a)
			if err != nil {
				return nil, false, err
			}
			if c {
				changed = true
			}
			args[i] = fa
		}
		if !changed {
			return e, false, nil
		}
		nn := *n
		nn.Callee, nn.Args = callee, args
		return &nn, true, nil

	case *ast.Member:
		obj, c1, err := walkExpr(n.Object)
		if err != nil {
			return nil, false, err
		}
		prop, c2 := n.Property, false
		if n.Computed {
			prop, c2, err = walkExpr(n.Property)
			if err != nil {
				return nil, false, err
			}
		}
		if !c1 && !c2 {
			return e, false, nil
		}
		nn := *n
		nn.Object, nn.Property = obj, prop
		return &nn, true, nil

	case *ast.ArrayExpr:
		changed := false
		elems := make([]ast.Expression, len(n.Elements))
		for i, el := range n.Elements {
			if el == nil {
				continue
			}
			fe, c, err := walkExpr(el)
			if err != nil {
				return nil, false, err
			}
			if c {
				changed = true
			}
			elems[i] = fe
		}
		if !changed {
			return e, false, nil
		}
		nn := *n
		nn.Elements = elems
		return &nn, true, nil

	case *ast.ObjectExpr:
		changed := false
		props := make([]ast.ObjectProperty, len(n.Properties))
		for i, p := range n.Properties {
			np := p
			if p.Value != nil {
				fv, c, err := walkExpr(p.Value)
				if err != nil {
					return nil, false, err
				}
				if c {
					np.Value = fv
					changed = true
				}
			}
			props[i] = np
		}
		if !changed {
			return e, false, nil
		}
		nn := *n
		nn.Properties = props
		return &nn, true, nil

	case *ast.Spread:
		a, changed, err := walkExpr(n.Arg)
		if err != nil || !changed {
			return e, changed, err
		}
		nn := *n
		nn.Arg = a
		return &nn, true, nil

	case *ast.Await:
		a, changed, err := walkExpr(n.Arg)
		if err != nil || !changed {
			return e, changed, err
		}
		nn := *n
		nn.Arg = a
		return &nn, true, nil

	case *ast.Template:
		changed := false
		exprs := make([]ast.Expression, len(n.Expressions))
		for i, x := range n.Expressions {
			fx, c, err := walkExpr(x)
			if err != nil {
				return nil, false, err
			}
			if c {
				changed = true
			}
			exprs[i] = fx
		}
		if !changed {
			return e, false, nil
		}
		nn := *n
		nn.Expressions = exprs
		return &nn, true, nil

	default:
		return e, false, nil
	}
}
