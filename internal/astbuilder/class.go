package astbuilder

import (
	"github.com/meko-tech/jsengine/internal/ast"
	"github.com/meko-tech/jsengine/internal/ir"
)

func buildClassDecl(c *ir.Cell) *ast.ClassDeclaration {
	ch := children(c)
	n := &ast.ClassDeclaration{NodeBase: base(c), Name: symOf(ch[0])}
	if !ch[1].IsEmpty() {
		n.SuperClass = buildExpression(ch[1])
	}
	n.Body = buildClassBody(ch[2])
	return n
}

func buildClassExpr(c *ir.Cell) *ast.ClassExpr {
	ch := children(c)
	n := &ast.ClassExpr{NodeBase: base(c), Name: symOf(ch[0])}
	if !ch[1].IsEmpty() {
		n.SuperClass = buildExpression(ch[1])
	}
	n.Body = buildClassBody(ch[2])
	return n
}

func buildClassBody(c *ir.Cell) []ast.ClassMember {
	var members []ast.ClassMember
	for _, m := range children(c) {
		members = append(members, buildClassMember(m))
	}
	return members
}

func buildClassMember(c *ir.Cell) ast.ClassMember {
	switch c.Tag() {
	case "classmethod":
		ch := children(c)
		ps, rest := buildParams(ch[1])
		return ast.ClassMember{
			NodeBase: base(c), Kind: symOf(ch[3]), Key: buildPropertyKey(ch[0]),
			Computed: boolOf(ch[4]), Static: boolOf(ch[5]),
			Params: ps, RestParam: rest, Body: buildBlock(ch[2]),
			IsAsync: boolOf(ch[6]), IsGenerator: boolOf(ch[7]),
		}
	case "classfield":
		ch := children(c)
		m := ast.ClassMember{NodeBase: base(c), Kind: "field", Key: buildPropertyKey(ch[0]), Computed: boolOf(ch[2]), Static: boolOf(ch[3])}
		if !ch[1].IsEmpty() {
			m.Value = buildExpression(ch[1])
		}
		return m
	case "staticblock":
		ch := children(c)
		return ast.ClassMember{NodeBase: base(c), Kind: "staticblock", Static: true, Body: buildBlock(ch[0])}
	default:
		return ast.ClassMember{NodeBase: base(c), Kind: "unknown"}
	}
}
