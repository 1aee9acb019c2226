package astbuilder

import (
	"strings"

	"github.com/meko-tech/jsengine/internal/ast"
	"github.com/meko-tech/jsengine/internal/ir"
)

func buildExpression(c *ir.Cell) ast.Expression {
	switch c.Tag() {
	case "literal":
		return buildLiteral(c)
	case "regexp":
		return buildRegExp(c)
	case "ident":
		ch := children(c)
		return &ast.Identifier{NodeBase: base(c), Name: symOf(ch[0])}
	case "this":
		return &ast.ThisExpr{NodeBase: base(c)}
	case "super":
		return &ast.SuperExpr{NodeBase: base(c)}
	case "array":
		return buildArray(c)
	case "object":
		return buildObject(c)
	case "function":
		return buildFunctionExpr(c)
	case "class":
		return buildClassExpr(c)
	case "arrow":
		return buildArrow(c)
	case "member":
		return buildMember(c)
	case "call":
		return buildCall(c)
	case "new":
		ch := children(c)
		return &ast.New{NodeBase: base(c), Callee: buildExpression(ch[0]), Args: buildArgs(ch[1])}
	case "newtarget":
		return unknown(c)
	case "unary":
		ch := children(c)
		return &ast.Unary{NodeBase: base(c), Op: symOf(ch[0]), Arg: buildExpression(ch[1])}
	case "update":
		ch := children(c)
		return &ast.Update{NodeBase: base(c), Op: symOf(ch[0]), Arg: buildExpression(ch[1]), Prefix: boolOf(ch[2])}
	case "binary":
		ch := children(c)
		return &ast.Binary{NodeBase: base(c), Op: symOf(ch[0]), Left: buildExpression(ch[1]), Right: buildExpression(ch[2])}
	case "logical":
		ch := children(c)
		return &ast.Logical{NodeBase: base(c), Op: symOf(ch[0]), Left: buildExpression(ch[1]), Right: buildExpression(ch[2])}
	case "assign":
		ch := children(c)
		return &ast.Assignment{NodeBase: base(c), Op: symOf(ch[0]), Target: buildAssignTarget(ch[1]), Value: buildExpression(ch[2])}
	case "conditional":
		ch := children(c)
		return &ast.Conditional{NodeBase: base(c), Cond: buildExpression(ch[0]), Then: buildExpression(ch[1]), Else: buildExpression(ch[2])}
	case "seq":
		var exprs []ast.Expression
		for _, e := range children(c) {
			exprs = append(exprs, buildExpression(e))
		}
		return &ast.Sequence{NodeBase: base(c), Exprs: exprs}
	case "template":
		return buildTemplate(c)
	case "taggedtemplate":
		ch := children(c)
		return &ast.TaggedTemplate{NodeBase: base(c), Tag: buildExpression(ch[0]), Quasi: buildTemplate(ch[1])}
	case "spread":
		ch := children(c)
		return &ast.Spread{NodeBase: base(c), Arg: buildExpression(ch[0])}
	case "yield":
		ch := children(c)
		n := &ast.Yield{NodeBase: base(c), Delegate: boolOf(ch[1])}
		if !ch[0].IsEmpty() {
			n.Arg = buildExpression(ch[0])
		}
		return n
	case "await":
		ch := children(c)
		return &ast.Await{NodeBase: base(c), Arg: buildExpression(ch[0])}
	default:
		return unknown(c)
	}
}

func buildLiteral(c *ir.Cell) *ast.Literal {
	ch := children(c)
	v := ch[0]
	switch v.Tag() {
	case "bigint":
		digits := children(v)[0]
		return &ast.Literal{NodeBase: base(c), Kind: ast.LitBigInt, Value: strOf(digits)}
	case "null":
		return &ast.Literal{NodeBase: base(c), Kind: ast.LitNull}
	case "undefined":
		return &ast.Literal{NodeBase: base(c), Kind: ast.LitUndefined}
	}
	switch atom := v.Atom.(type) {
	case float64:
		return &ast.Literal{NodeBase: base(c), Kind: ast.LitNumber, Value: atom}
	case bool:
		return &ast.Literal{NodeBase: base(c), Kind: ast.LitBool, Value: atom}
	case string:
		return &ast.Literal{NodeBase: base(c), Kind: ast.LitString, Value: atom}
	default:
		return &ast.Literal{NodeBase: base(c), Kind: ast.LitUndefined}
	}
}

func buildRegExp(c *ir.Cell) *ast.RegExpLit {
	ch := children(c)
	lexeme := strOf(ch[0])
	last := strings.LastIndexByte(lexeme, '/')
	return &ast.RegExpLit{NodeBase: base(c), Pattern: lexeme[1:last], Flags: lexeme[last+1:]}
}

func buildArray(c *ir.Cell) *ast.ArrayExpr {
	var elems []ast.Expression
	for _, e := range children(c) {
		if e.Tag() == "hole" {
			elems = append(elems, nil)
			continue
		}
		elems = append(elems, buildExpression(e))
	}
	return &ast.ArrayExpr{NodeBase: base(c), Elements: elems}
}

func buildObject(c *ir.Cell) *ast.ObjectExpr {
	var props []ast.ObjectProperty
	for _, p := range children(c) {
		switch p.Tag() {
		case "prop":
			ch := children(p)
			props = append(props, ast.ObjectProperty{
				NodeBase: base(p), Kind: "prop",
				Key: buildPropertyKey(ch[0]), Value: buildExpression(ch[1]), Computed: boolOf(ch[2]),
			})
		case "method":
			ch := children(p)
			fn := buildMethodFunction(p, ch[1], ch[2], boolOf(ch[5]), boolOf(ch[6]))
			props = append(props, ast.ObjectProperty{
				NodeBase: base(p), Kind: symOf(ch[3]),
				Key: buildPropertyKey(ch[0]), Value: fn, Computed: boolOf(ch[4]),
				IsAsync: boolOf(ch[5]), IsGenerator: boolOf(ch[6]),
			})
		case "spreadprop":
			ch := children(p)
			props = append(props, ast.ObjectProperty{NodeBase: base(p), Kind: "spread", Value: buildExpression(ch[0])})
		}
	}
	return &ast.ObjectExpr{NodeBase: base(c), Properties: props}
}

// buildPropertyKey builds a property key, which is either a computed
// expression or a bare name/number/string leaf re-wrapped as a Literal
// (identifier-shaped names are not `ident` IR nodes here; they are plain
// leaves carrying a string atom - see internal/parser/expressions.go
// parsePropertyKey).
func buildPropertyKey(c *ir.Cell) ast.Expression {
	if c.IsAtom() {
		switch v := c.Atom.(type) {
		case float64:
			return &ast.Literal{NodeBase: base(c), Kind: ast.LitNumber, Value: v}
		case string:
			return &ast.Literal{NodeBase: base(c), Kind: ast.LitString, Value: v}
		}
	}
	return buildExpression(c)
}

func buildMethodFunction(node, params, body *ir.Cell, isAsync, isGenerator bool) *ast.FunctionExpr {
	ps, rest := buildParams(params)
	return &ast.FunctionExpr{NodeBase: base(node), Params: ps, RestParam: rest, Body: buildBlock(body), IsAsync: isAsync, IsGenerator: isGenerator}
}

func buildFunctionExpr(c *ir.Cell) *ast.FunctionExpr {
	ch := children(c)
	ps, rest := buildParams(ch[1])
	return &ast.FunctionExpr{
		NodeBase: base(c), Name: symOf(ch[0]), Params: ps, RestParam: rest,
		Body: buildBlock(ch[2]), IsAsync: boolOf(ch[3]), IsGenerator: boolOf(ch[4]),
	}
}

func buildArrow(c *ir.Cell) *ast.Arrow {
	ch := children(c)
	ps, rest := buildParams(ch[0])
	n := &ast.Arrow{NodeBase: base(c), Params: ps, RestParam: rest, IsAsync: boolOf(ch[2])}
	bodyCell := ch[1]
	if bodyCell.Tag() == "exprbody" {
		bch := children(bodyCell)
		n.Body = buildExpression(bch[0])
	} else {
		n.Body = buildBlock(bodyCell)
	}
	return n
}

func buildMember(c *ir.Cell) *ast.Member {
	ch := children(c)
	optional, computed := boolOf(ch[2]), boolOf(ch[3])
	var prop ast.Expression
	if computed {
		prop = buildExpression(ch[1])
	} else {
		prop = &ast.Identifier{NodeBase: base(ch[1]), Name: symOf(ch[1])}
	}
	return &ast.Member{NodeBase: base(c), Object: buildExpression(ch[0]), Property: prop, Computed: computed, Optional: optional}
}

func buildCall(c *ir.Cell) *ast.Call {
	ch := children(c)
	return &ast.Call{NodeBase: base(c), Callee: buildExpression(ch[0]), Optional: boolOf(ch[1]), Args: buildArgs(ch[2])}
}

func buildArgs(c *ir.Cell) []ast.Expression {
	var args []ast.Expression
	for _, a := range c.Items() {
		args = append(args, buildExpression(a))
	}
	return args
}

func buildTemplate(c *ir.Cell) *ast.Template {
	ch := children(c)
	var quasis []ast.TemplateQuasi
	for _, q := range ch[0].Items() {
		qch := q.Items()
		quasis = append(quasis, ast.TemplateQuasi{Raw: strOf(qch[0]), Cooked: strOf(qch[1]), Tail: boolOf(qch[2])})
	}
	var exprs []ast.Expression
	for _, e := range ch[1].Items() {
		exprs = append(exprs, buildExpression(e))
	}
	return &ast.Template{NodeBase: base(c), Quasis: quasis, Expressions: exprs}
}

// buildAssignTarget builds the left-hand side of an `=`/compound-assignment
// expression: a destructuring pattern for `(array...)`/`(object...)`
// shapes, otherwise the plain expression (identifier or member access).
func buildAssignTarget(c *ir.Cell) ast.Node {
	switch c.Tag() {
	case "array", "object":
		return buildPattern(c)
	default:
		return buildExpression(c)
	}
}
