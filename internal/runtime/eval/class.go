package eval

import (
	"strings"

	"github.com/meko-tech/jsengine/internal/ast"
	"github.com/meko-tech/jsengine/internal/runtime/env"
	"github.com/meko-tech/jsengine/internal/runtime/values"
)

// evalClass desugars a class declaration/expression into a constructor
// function object with its prototype populated: instance
// methods/getters/setters live on the prototype, static members live
// directly on the constructor object, `extends` links both prototype
// chains, and `super` resolution is threaded through two reserved scope
// bindings (homeObjectBinding, superCtorBinding) rather than an extra
// evalExpr parameter.
//
// Private fields (`#x`) are modelled as ordinary own properties keyed by
// the literal "#x" string with Enumerable=false: guest code has no
// bracket-access syntax that can ever produce a string starting with '#'
// (only a class body's own private-name tokens can), so this is
// observably equivalent to a per-instance weak map keyed by field name
// without the extra indirection, since a private name token can only be
// written inside the class whose brace scope declared it; see
// DESIGN.md.
func (it *Interpreter) evalClass(name string, superExpr ast.Expression, members []ast.ClassMember, scope *env.Environment) (values.Value, error) {
	var superCtor *values.Object
	if superExpr != nil {
		sv, err := it.evalExpr(superExpr, scope)
		if err != nil {
			return nil, err
		}
		sc, ok := sv.(*values.Object)
		if !ok || !sc.IsCallable() {
			return nil, it.NewThrow("TypeError", "Class extends value is not a constructor")
		}
		superCtor = sc
	}

	instanceProto := values.NewObject(it.Realm.ObjectProto)
	if superCtor != nil {
		if pv, ok := superCtor.GetOwn(values.StringKey("prototype")); ok {
			if p, ok := pv.Value.(*values.Object); ok {
				instanceProto.Proto = p
			}
		}
	}

	classScope := env.NewBlock(scope)
	if superCtor != nil {
		classScope.Declare(superCtorBinding, env.SlotConst, true)
		classScope.Initialize(superCtorBinding, superCtor)
	}
	instanceScope := env.NewBlock(classScope)
	instanceScope.Declare(homeObjectBinding, env.SlotConst, true)

	var ctorMember *ast.ClassMember
	var instanceFields, staticFields []ast.ClassMember
	var staticBlocks []ast.ClassMember
	for i := range members {
		m := &members[i]
		switch {
		case m.Kind == "constructor":
			ctorMember = m
		case m.Kind == "field" && m.Static:
			staticFields = append(staticFields, *m)
		case m.Kind == "field":
			instanceFields = append(instanceFields, *m)
		case m.Kind == "staticblock":
			staticBlocks = append(staticBlocks, *m)
		}
	}

	ctorBody, params, rest := buildConstructorBody(ctorMember, instanceFields, superCtor != nil)
	ctorFd := &values.FunctionData{
		Kind: values.FuncConstructor, Name: name, Params: params, RestParam: rest,
		Body: ctorBody, Closure: instanceScope, Length: arity(params),
	}
	ctorFn := values.NewFunctionObject(it.Realm.FunctionProto, ctorFd, true, instanceProto)
	ctorFn.DefineOwn(values.StringKey("prototype"), &values.PropertyDescriptor{Value: instanceProto})
	instanceProto.DefineOwn(values.StringKey("constructor"), &values.PropertyDescriptor{Value: ctorFn, Writable: true, Configurable: true})
	if superCtor != nil {
		ctorFn.Proto = superCtor
	}

	staticScope := env.NewBlock(classScope)
	staticScope.Declare(homeObjectBinding, env.SlotConst, true)
	staticScope.Initialize(homeObjectBinding, ctorFn)
	instanceScope.Initialize(homeObjectBinding, instanceProto)

	for i := range members {
		m := &members[i]
		if m.Kind != "method" && m.Kind != "get" && m.Kind != "set" {
			continue
		}
		target := instanceProto
		ms := instanceScope
		if m.Static {
			target = ctorFn
			ms = staticScope
		}
		key, err := it.resolvePropertyKey(m.Key, m.Computed, ms)
		if err != nil {
			return nil, err
		}
		fd := &values.FunctionData{
			Kind: values.FuncMethod, Params: m.Params, RestParam: m.RestParam,
			Body: m.Body, Closure: ms, Length: arity(m.Params), HomeObject: target,
			NotConstructible: true,
		}
		if m.IsGenerator {
			fd.Kind = values.FuncGenerator
		} else if m.IsAsync {
			fd.Kind = values.FuncAsync
		}
		fn := values.NewFunctionObject(it.Realm.FunctionProto, fd, false, nil)
		if m.Kind == "method" {
			target.DefineOwn(key, &values.PropertyDescriptor{Value: fn, Writable: true, Configurable: true})
			continue
		}
		existing, _ := target.GetOwn(key)
		desc := &values.PropertyDescriptor{IsAccessor: true, Configurable: true}
		if existing != nil && existing.IsAccessor {
			desc.Get, desc.Set = existing.Get, existing.Set
		}
		if m.Kind == "get" {
			desc.Get = fn
		} else {
			desc.Set = fn
		}
		target.DefineOwn(key, desc)
	}

	for _, f := range staticFields {
		key, err := it.resolvePropertyKey(f.Key, f.Computed, staticScope)
		if err != nil {
			return nil, err
		}
		var v values.Value = values.TheUndefined
		if f.Value != nil {
			fv, err := it.evalExpr(f.Value, staticScope)
			if err != nil {
				return nil, err
			}
			v = fv
		}
		ctorFn.DefineOwn(key, &values.PropertyDescriptor{Value: v, Writable: true, Enumerable: !isPrivateKey(f.Key), Configurable: true})
	}
	for _, b := range staticBlocks {
		blockScope := env.NewFunctionScope(staticScope, ctorFn, nil)
		hoistFunctionBody(blockScope, b.Body.Body)
		if _, err := it.evalStatements(b.Body.Body, blockScope); err != nil {
			return nil, err
		}
	}

	return ctorFn, nil
}

func isPrivateKey(key ast.Expression) bool {
	if id, ok := key.(*ast.Identifier); ok {
		return strings.HasPrefix(id.Name, "#")
	}
	return false
}

// buildConstructorBody synthesizes (or augments) the constructor body so
// that instance field initializers run at the very start of construction
// for a base class, and right after the super(...) call for a derived
// class. Only a super(...) call written as a top-level statement of an
// explicit constructor is found; if there is none, the initializers run
// first, before the constructor body.
func buildConstructorBody(ctorMember *ast.ClassMember, fields []ast.ClassMember, hasSuper bool) (*ast.Block, []ast.Pattern, ast.Pattern) {
	var fieldInits []ast.Statement
	for _, f := range fields {
		var init ast.Expression = &ast.Literal{Kind: ast.LitUndefined}
		if f.Value != nil {
			init = f.Value
		}
		fieldInits = append(fieldInits, &ast.ExpressionStatement{Expr: &ast.Assignment{
			Op:     "=",
			Target: &ast.Member{Object: &ast.ThisExpr{}, Property: f.Key, Computed: f.Computed},
			Value:  init,
		}})
	}

	if ctorMember != nil {
		ctorStmts := ctorMember.Body.Body
		at := 0
		for i := 0; hasSuper && i < len(ctorStmts); i++ {
			if es, ok := ctorStmts[i].(*ast.ExpressionStatement); ok {
				if c, ok := es.Expr.(*ast.Call); ok {
					if _, ok := c.Callee.(*ast.SuperExpr); ok {
						at = i + 1
						break
					}
				}
			}
		}
		stmts := append(append([]ast.Statement(nil), ctorStmts[:at]...), fieldInits...)
		body := &ast.Block{Body: append(stmts, ctorStmts[at:]...)}
		return body, ctorMember.Params, ctorMember.RestParam
	}

	if !hasSuper {
		return &ast.Block{Body: fieldInits}, nil, nil
	}

	restName := "%ctorArgs"
	forwardCall := &ast.ExpressionStatement{Expr: &ast.Call{
		Callee: &ast.SuperExpr{},
		Args:   []ast.Expression{&ast.Spread{Arg: &ast.Identifier{Name: restName}}},
	}}
	body := append([]ast.Statement{forwardCall}, fieldInits...)
	return &ast.Block{Body: body}, nil, &ast.IdentifierPattern{Name: restName}
}
