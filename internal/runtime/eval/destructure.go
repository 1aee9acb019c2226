package eval

import (
	"github.com/meko-tech/jsengine/internal/ast"
	"github.com/meko-tech/jsengine/internal/runtime/env"
	"github.com/meko-tech/jsengine/internal/runtime/values"
)

// bindPattern destructures v against p, declaring fresh bindings in scope
// with the given kind. It is used for `let`/`const`/`var` declarations,
// parameter binding, and the left side of for-in/for-of with a
// declaration kind.
func (it *Interpreter) bindPattern(scope *env.Environment, p ast.Pattern, v values.Value, kind env.SlotKind) error {
	switch pp := p.(type) {
	case *ast.IdentifierPattern:
		if kind == env.SlotVar {
			if err := it.assignVarHoisted(scope, pp.Name, v); err != nil {
				return err
			}
			return nil
		}
		scope.Declare(pp.Name, kind, true)
		scope.Initialize(pp.Name, v)
		return nil
	case *ast.AssignmentPattern:
		if _, isUndef := v.(values.Undefined); isUndef {
			dv, err := it.evalExpr(pp.Default, scope)
			if err != nil {
				return err
			}
			v = dv
		}
		return it.bindPattern(scope, pp.Target, v, kind)
	case *ast.ArrayPattern:
		return it.bindArrayPattern(scope, pp, v, kind)
	case *ast.ObjectPattern:
		return it.bindObjectPattern(scope, pp, v, kind)
	case *ast.MemberTarget:
		// Only valid in assignment position, not declaration; handled by
		// assignPattern instead.
		return it.NewThrow("SyntaxError", "Invalid destructuring assignment target")
	}
	return it.NewThrow("SyntaxError", "Invalid destructuring target")
}

func (it *Interpreter) assignVarHoisted(scope *env.Environment, name string, v values.Value) error {
	fnScope := scope.FunctionScope()
	if !fnScope.Has(name) {
		fnScope.Declare(name, env.SlotVar, true)
	}
	return fnScope.Set(name, v)
}

func (it *Interpreter) bindArrayPattern(scope *env.Environment, p *ast.ArrayPattern, v values.Value, kind env.SlotKind) error {
	items, err := it.iterateToSlice(v)
	if err != nil {
		return err
	}
	for i, el := range p.Elements {
		if el == nil {
			continue
		}
		var ev values.Value = values.TheUndefined
		if i < len(items) {
			ev = items[i]
		}
		if err := it.bindPattern(scope, el, ev, kind); err != nil {
			return err
		}
	}
	if p.Rest != nil {
		restArr := values.NewArray(it.Realm.ArrayProto, 0)
		start := len(p.Elements)
		for i := start; i < len(items); i++ {
			restArr.AppendElement(items[i])
		}
		if err := it.bindPattern(scope, p.Rest, restArr, kind); err != nil {
			return err
		}
	}
	return nil
}

func (it *Interpreter) bindObjectPattern(scope *env.Environment, p *ast.ObjectPattern, v values.Value, kind env.SlotKind) error {
	used := make(map[values.PropertyKey]bool)
	for _, prop := range p.Properties {
		key, err := it.resolvePropertyKey(prop.Key, prop.Computed, scope)
		if err != nil {
			return err
		}
		used[key] = true
		pv, err := it.GetMember(v, key)
		if err != nil {
			return err
		}
		if err := it.bindPattern(scope, prop.Value, pv, kind); err != nil {
			return err
		}
	}
	if p.Rest != nil {
		o, ok := v.(*values.Object)
		rest := values.NewObject(it.Realm.ObjectProto)
		if ok {
			for _, k := range o.OwnKeys() {
				if used[k] {
					continue
				}
				d, _ := o.GetOwn(k)
				if !d.Enumerable {
					continue
				}
				pv, err := it.GetMember(v, k)
				if err != nil {
					return err
				}
				rest.DefineOwn(k, values.DataProperty(pv))
			}
		}
		if err := it.bindPattern(scope, p.Rest, rest, kind); err != nil {
			return err
		}
	}
	return nil
}

// resolvePropertyKey evaluates a property key expression: a computed key
// is evaluated and converted to a PropertyKey (string or Symbol); a
// non-computed key is an *ast.Identifier or string/number Literal taken
// literally.
func (it *Interpreter) resolvePropertyKey(keyExpr ast.Expression, computed bool, scope *env.Environment) (values.PropertyKey, error) {
	if !computed {
		switch k := keyExpr.(type) {
		case *ast.Identifier:
			return values.StringKey(k.Name), nil
		case *ast.Literal:
			switch k.Kind {
			case ast.LitString:
				return values.StringKey(k.Value.(string)), nil
			case ast.LitNumber:
				return values.StringKey(values.FormatNumber(k.Value.(float64))), nil
			}
		}
	}
	v, err := it.evalExpr(keyExpr, scope)
	if err != nil {
		return values.PropertyKey{}, err
	}
	if sym, ok := v.(*values.Symbol); ok {
		return values.SymbolKey(sym), nil
	}
	s, err := it.ToString(v)
	if err != nil {
		return values.PropertyKey{}, err
	}
	return values.StringKey(s), nil
}

// assignPattern is bindPattern's counterpart for plain assignment
// (`[a, b] = pair`, `({x} = obj)`), writing into already-existing
// bindings/members instead of declaring fresh ones.
func (it *Interpreter) assignPattern(scope *env.Environment, target ast.Node, v values.Value) error {
	switch t := target.(type) {
	case *ast.Identifier:
		return scope.Set(t.Name, v)
	case *ast.Member:
		obj, key, err := it.evalMemberTarget(t, scope)
		if err != nil {
			return err
		}
		return it.SetMember(obj, key, v)
	case *ast.MemberTarget:
		obj, key, err := it.evalMemberTarget(t.Expr, scope)
		if err != nil {
			return err
		}
		return it.SetMember(obj, key, v)
	case *ast.AssignmentPattern:
		if _, isUndef := v.(values.Undefined); isUndef {
			dv, err := it.evalExpr(t.Default, scope)
			if err != nil {
				return err
			}
			v = dv
		}
		return it.assignPattern(scope, t.Target, v)
	case *ast.ArrayPattern:
		items, err := it.iterateToSlice(v)
		if err != nil {
			return err
		}
		for i, el := range t.Elements {
			if el == nil {
				continue
			}
			var ev values.Value = values.TheUndefined
			if i < len(items) {
				ev = items[i]
			}
			if err := it.assignPattern(scope, el, ev); err != nil {
				return err
			}
		}
		if t.Rest != nil {
			restArr := values.NewArray(it.Realm.ArrayProto, 0)
			for i := len(t.Elements); i < len(items); i++ {
				restArr.AppendElement(items[i])
			}
			if err := it.assignPattern(scope, t.Rest, restArr); err != nil {
				return err
			}
		}
		return nil
	case *ast.ObjectPattern:
		used := make(map[values.PropertyKey]bool)
		for _, prop := range t.Properties {
			key, err := it.resolvePropertyKey(prop.Key, prop.Computed, scope)
			if err != nil {
				return err
			}
			used[key] = true
			pv, err := it.GetMember(v, key)
			if err != nil {
				return err
			}
			if err := it.assignPattern(scope, prop.Value, pv); err != nil {
				return err
			}
		}
		if t.Rest != nil {
			o, ok := v.(*values.Object)
			rest := values.NewObject(it.Realm.ObjectProto)
			if ok {
				for _, k := range o.OwnKeys() {
					if used[k] || k.IsSymbol() {
						continue
					}
					d, _ := o.GetOwn(k)
					if !d.Enumerable {
						continue
					}
					pv, _ := it.GetMember(v, k)
					rest.DefineOwn(k, values.DataProperty(pv))
				}
			}
			return it.assignPattern(scope, t.Rest, rest)
		}
		return nil
	}
	return it.NewThrow("SyntaxError", "Invalid assignment target")
}

func (it *Interpreter) evalMemberTarget(m *ast.Member, scope *env.Environment) (values.Value, values.PropertyKey, error) {
	obj, err := it.evalExpr(m.Object, scope)
	if err != nil {
		return nil, values.PropertyKey{}, err
	}
	key, err := it.memberKey(m, scope)
	if err != nil {
		return nil, values.PropertyKey{}, err
	}
	return obj, key, nil
}

func (it *Interpreter) memberKey(m *ast.Member, scope *env.Environment) (values.PropertyKey, error) {
	if !m.Computed {
		return values.StringKey(m.Property.(*ast.Identifier).Name), nil
	}
	v, err := it.evalExpr(m.Property, scope)
	if err != nil {
		return values.PropertyKey{}, err
	}
	if sym, ok := v.(*values.Symbol); ok {
		return values.SymbolKey(sym), nil
	}
	s, err := it.ToString(v)
	if err != nil {
		return values.PropertyKey{}, err
	}
	return values.StringKey(s), nil
}
