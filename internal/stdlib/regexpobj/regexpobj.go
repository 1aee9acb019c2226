// Package regexpobj builds the RegExp constructor and RegExp.prototype,
// backed by github.com/dlclark/regexp2 rather than Go's own regexp
// package: JS regex syntax (backreferences, lookaround, named groups)
// is not RE2-compatible, and regexp2's .NET-style engine covers it.
//
// regexpobj installs eval.Realm.NewRegExp so the evaluator can construct
// a RegExp literal's runtime object (`/pattern/flags`) without this
// package being imported by internal/runtime/eval.
package regexpobj

import (
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/meko-tech/jsengine/internal/runtime/eval"
	"github.com/meko-tech/jsengine/internal/runtime/values"
)

// RegExpData is the [[RegExpMatcher]]/[[OriginalSource]]/[[OriginalFlags]]
// internal slots of a RegExp instance.
type RegExpData struct {
	Source string
	Flags  string
	Global bool
	Sticky bool
	Re     *regexp2.Regexp
}

func compile(pattern, flags string) (*regexp2.Regexp, error) {
	opts := regexp2.RE2
	if strings.Contains(flags, "i") {
		opts |= regexp2.IgnoreCase
	}
	if strings.Contains(flags, "m") {
		opts |= regexp2.Multiline
	}
	if strings.Contains(flags, "s") {
		opts |= regexp2.Singleline
	}
	return regexp2.Compile(pattern, opts)
}

func Install(it *eval.Interpreter, realm *eval.Realm, global *values.Object) {
	proto := values.NewObject(realm.ObjectProto)
	proto.Class = "RegExp"
	realm.RegExpProto = proto

	newInstance := func(pattern, flags string) (*values.Object, error) {
		re, err := compile(pattern, flags)
		if err != nil {
			return nil, err
		}
		o := values.NewObject(proto)
		o.Class = "RegExp"
		o.Internal = &RegExpData{Source: pattern, Flags: flags, Global: strings.Contains(flags, "g"), Sticky: strings.Contains(flags, "y"), Re: re}
		o.DefineOwn(values.StringKey("source"), values.DataProperty(values.String(pattern)))
		o.DefineOwn(values.StringKey("flags"), values.DataProperty(values.String(flags)))
		o.DefineOwn(values.StringKey("global"), values.DataProperty(values.Boolean(strings.Contains(flags, "g"))))
		o.DefineOwn(values.StringKey("ignoreCase"), values.DataProperty(values.Boolean(strings.Contains(flags, "i"))))
		o.DefineOwn(values.StringKey("multiline"), values.DataProperty(values.Boolean(strings.Contains(flags, "m"))))
		o.DefineOwn(values.StringKey("sticky"), values.DataProperty(values.Boolean(strings.Contains(flags, "y"))))
		o.DefineOwn(values.StringKey("lastIndex"), &values.PropertyDescriptor{Value: values.Number(0), Writable: true})
		return o, nil
	}

	realm.NewRegExp = func(pattern, flags string) (*values.Object, error) {
		o, err := newInstance(pattern, flags)
		if err != nil {
			return nil, it.NewThrow("SyntaxError", "Invalid regular expression: %s", err.Error())
		}
		return o, nil
	}

	def := func(name string, length int, fn values.NativeFunc) {
		proto.DefineOwn(values.StringKey(name), values.DataProperty(values.NewNativeFunction(realm.FunctionProto, name, length, fn)))
	}

	def("test", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		ra, err := data(it, this)
		if err != nil {
			return nil, err
		}
		s, err := it.ToString(argAt(args, 0))
		if err != nil {
			return nil, err
		}
		m, merr := ra.Re.FindStringMatch(s)
		if merr != nil {
			return nil, it.NewThrow("SyntaxError", "%s", merr.Error())
		}
		return values.Boolean(m != nil), nil
	})

	def("exec", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		o, ok := this.(*values.Object)
		if !ok {
			return nil, it.NewThrow("TypeError", "RegExp.prototype.exec called on non-object")
		}
		ra, err := data(it, this)
		if err != nil {
			return nil, err
		}
		s, err := it.ToString(argAt(args, 0))
		if err != nil {
			return nil, err
		}
		start := 0
		if ra.Global || ra.Sticky {
			li, _ := o.GetOwn(values.StringKey("lastIndex"))
			if li != nil {
				start = int(values.GoFloat(li.Value))
			}
		}
		if start > len(s) {
			o.DefineOwn(values.StringKey("lastIndex"), &values.PropertyDescriptor{Value: values.Number(0), Writable: true})
			return values.TheNull, nil
		}
		m, merr := ra.Re.FindStringMatchStartingAt(s, start)
		if merr != nil {
			return nil, it.NewThrow("SyntaxError", "%s", merr.Error())
		}
		if m == nil {
			if ra.Global || ra.Sticky {
				o.DefineOwn(values.StringKey("lastIndex"), &values.PropertyDescriptor{Value: values.Number(0), Writable: true})
			}
			return values.TheNull, nil
		}
		if ra.Global || ra.Sticky {
			o.DefineOwn(values.StringKey("lastIndex"), &values.PropertyDescriptor{Value: values.Number(m.Index + m.Length), Writable: true})
		}
		return matchResult(realm, m, s), nil
	})

	def("toString", 0, func(this values.Value, args []values.Value) (values.Value, error) {
		ra, err := data(it, this)
		if err != nil {
			return nil, err
		}
		return values.String("/" + ra.Source + "/" + ra.Flags), nil
	})

	fd := &values.FunctionData{
		Kind: values.FuncConstructor, Name: "RegExp", Length: 2,
		NativeConstruct: func(args []values.Value) (values.Value, error) {
			pattern, flags := "", ""
			if len(args) > 0 {
				if src, ok := args[0].(*values.Object); ok {
					if existing, err := data(it, src); err == nil {
						pattern, flags = existing.Source, existing.Flags
					}
				} else {
					s, err := it.ToString(args[0])
					if err != nil {
						return nil, err
					}
					pattern = s
				}
			}
			if len(args) > 1 && args[1] != values.TheUndefined {
				s, err := it.ToString(args[1])
				if err != nil {
					return nil, err
				}
				flags = s
			}
			return realm.NewRegExp(pattern, flags)
		},
	}
	ctor := values.NewFunctionObject(realm.FunctionProto, fd, true, proto)
	ctor.DefineOwn(values.StringKey("prototype"), &values.PropertyDescriptor{Value: proto})
	global.DefineOwn(values.StringKey("RegExp"), values.DataProperty(ctor))
}

func matchResult(realm *eval.Realm, m *regexp2.Match, input string) *values.Object {
	arr := values.NewArray(realm.ArrayProto, 0)
	groups := m.Groups()
	for _, g := range groups {
		if len(g.Captures) == 0 {
			arr.AppendElement(values.TheUndefined)
			continue
		}
		arr.AppendElement(values.String(g.String()))
	}
	arr.DefineOwn(values.StringKey("index"), values.DataProperty(values.Number(m.Index)))
	arr.DefineOwn(values.StringKey("input"), values.DataProperty(values.String(input)))
	named := values.NewObject(nil)
	hasNamed := false
	for _, g := range groups {
		if g.Name != "" && !isNumeric(g.Name) {
			named.DefineOwn(values.StringKey(g.Name), values.DataProperty(values.String(g.String())))
			hasNamed = true
		}
	}
	if hasNamed {
		arr.DefineOwn(values.StringKey("groups"), values.DataProperty(named))
	} else {
		arr.DefineOwn(values.StringKey("groups"), values.DataProperty(values.TheUndefined))
	}
	return arr
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

func data(it *eval.Interpreter, v values.Value) (*RegExpData, error) {
	o, ok := v.(*values.Object)
	if !ok {
		return nil, it.NewThrow("TypeError", "not a RegExp")
	}
	ra, ok := o.Internal.(*RegExpData)
	if !ok {
		return nil, it.NewThrow("TypeError", "not a RegExp")
	}
	return ra, nil
}

func argAt(args []values.Value, i int) values.Value {
	if i < len(args) {
		return args[i]
	}
	return values.TheUndefined
}
