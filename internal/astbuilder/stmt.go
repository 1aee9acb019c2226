package astbuilder

import (
	"github.com/meko-tech/jsengine/internal/ast"
	"github.com/meko-tech/jsengine/internal/ir"
)

func buildStatement(c *ir.Cell) ast.Statement {
	switch c.Tag() {
	case "block":
		return buildBlock(c)
	case "exprstmt":
		ch := children(c)
		return &ast.ExpressionStatement{NodeBase: base(c), Expr: buildExpression(ch[0])}
	case "vardecl":
		return buildVarDecl(c)
	case "functiondecl":
		return buildFunctionDecl(c)
	case "classdecl":
		return buildClassDecl(c)
	case "if":
		ch := children(c)
		n := &ast.If{NodeBase: base(c), Cond: buildExpression(ch[0]), Then: buildStatement(ch[1])}
		if len(ch) > 2 {
			n.Else = buildStatement(ch[2])
		}
		return n
	case "for":
		ch := children(c)
		n := &ast.For{NodeBase: base(c)}
		if !ch[0].IsEmpty() {
			n.Init = buildStatement(ch[0])
		}
		if !ch[1].IsEmpty() {
			n.Cond = buildExpression(ch[1])
		}
		if !ch[2].IsEmpty() {
			n.Update = buildExpression(ch[2])
		}
		n.Body = buildStatement(ch[3])
		return n
	case "forin":
		ch := children(c)
		return &ast.ForIn{
			NodeBase: base(c), Kind: ast.VarKind(symOf(ch[0])),
			Left: buildForTarget(ch[1]), Right: buildExpression(ch[2]), Body: buildStatement(ch[3]),
		}
	case "forof":
		ch := children(c)
		return &ast.ForOf{
			NodeBase: base(c), Kind: ast.VarKind(symOf(ch[0])),
			Left: buildForTarget(ch[1]), Right: buildExpression(ch[2]), Body: buildStatement(ch[3]),
			IsAwait: boolOf(ch[4]),
		}
	case "while":
		ch := children(c)
		return &ast.While{NodeBase: base(c), Cond: buildExpression(ch[0]), Body: buildStatement(ch[1])}
	case "dowhile":
		ch := children(c)
		return &ast.DoWhile{NodeBase: base(c), Body: buildStatement(ch[0]), Cond: buildExpression(ch[1])}
	case "switch":
		return buildSwitch(c)
	case "try":
		return buildTry(c)
	case "throw":
		ch := children(c)
		return &ast.Throw{NodeBase: base(c), Arg: buildExpression(ch[0])}
	case "return":
		ch := children(c)
		n := &ast.Return{NodeBase: base(c)}
		if len(ch) > 0 {
			n.Arg = buildExpression(ch[0])
		}
		return n
	case "break":
		ch := children(c)
		n := &ast.Break{NodeBase: base(c)}
		if len(ch) > 0 {
			n.Label = symOf(ch[0])
		}
		return n
	case "continue":
		ch := children(c)
		n := &ast.Continue{NodeBase: base(c)}
		if len(ch) > 0 {
			n.Label = symOf(ch[0])
		}
		return n
	case "labeled":
		ch := children(c)
		return &ast.Labeled{NodeBase: base(c), Label: symOf(ch[0]), Body: buildStatement(ch[1])}
	case "empty":
		return &ast.Empty{NodeBase: base(c)}
	default:
		return unknown(c)
	}
}

func buildBlock(c *ir.Cell) *ast.Block {
	var body []ast.Statement
	for _, s := range children(c) {
		body = append(body, buildStatement(s))
	}
	return &ast.Block{NodeBase: base(c), Body: body}
}

func buildVarDecl(c *ir.Cell) *ast.VariableDeclaration {
	ch := children(c)
	kind := ast.VarKind(symOf(ch[0]))
	var bindings []ast.VariableBinding
	for _, b := range ch[1:] {
		bch := children(b)
		vb := ast.VariableBinding{NodeBase: base(b), Target: buildPattern(bch[0])}
		if len(bch) > 1 {
			vb.Init = buildExpression(bch[1])
		}
		bindings = append(bindings, vb)
	}
	return &ast.VariableDeclaration{NodeBase: base(c), Kind: kind, Bindings: bindings}
}

// buildForTarget builds the left-hand binding of a for-in/for-of head: a
// fresh declaration pattern when preceded by var/let/const, or an existing
// assignment target expression's pattern form otherwise.
func buildForTarget(c *ir.Cell) ast.Pattern {
	return buildPattern(c)
}

func buildFunctionDecl(c *ir.Cell) *ast.FunctionDeclaration {
	ch := children(c)
	params, rest := buildParams(ch[1])
	return &ast.FunctionDeclaration{
		NodeBase: base(c), Name: symOf(ch[0]), Params: params, RestParam: rest,
		Body: buildBlock(ch[2]), IsAsync: boolOf(ch[3]), IsGenerator: boolOf(ch[4]),
	}
}

// buildParams splits a parsed parameter list into its ordinary patterns
// and trailing rest parameter, if any (only the last parameter may be a
// `(restparam target)` cell - see internal/parser/functions.go).
func buildParams(c *ir.Cell) (params []ast.Pattern, rest ast.Pattern) {
	for _, p := range c.Items() {
		if p.Tag() == "restparam" {
			ch := children(p)
			rest = buildPattern(ch[0])
			continue
		}
		params = append(params, buildPattern(p))
	}
	return params, rest
}

func buildSwitch(c *ir.Cell) *ast.Switch {
	ch := children(c)
	disc := buildExpression(ch[0])
	var cases []ast.SwitchCase
	for _, cc := range ch[1:] {
		cch := children(cc)
		sc := ast.SwitchCase{NodeBase: base(cc)}
		if !cch[0].IsEmpty() {
			sc.Test = buildExpression(cch[0])
		}
		for _, s := range cch[1:] {
			sc.Body = append(sc.Body, buildStatement(s))
		}
		cases = append(cases, sc)
	}
	return &ast.Switch{NodeBase: base(c), Disc: disc, Cases: cases}
}

func buildTry(c *ir.Cell) *ast.Try {
	ch := children(c)
	n := &ast.Try{NodeBase: base(c), Block: buildBlock(ch[0])}
	if !ch[1].IsEmpty() {
		n.CatchParam = buildPattern(ch[1])
	}
	if !ch[2].IsEmpty() {
		n.CatchBody = buildBlock(ch[2])
	}
	if !ch[3].IsEmpty() {
		n.Finally = buildBlock(ch[3])
	}
	return n
}
