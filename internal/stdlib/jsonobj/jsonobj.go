// Package jsonobj builds the JSON global (parse/stringify), backed by
// github.com/tidwall/gjson for decoding and github.com/tidwall/sjson for
// encoding rather than a hand-rolled encoder/decoder: gjson.Result.ForEach
// walks an object's keys in source order, which a Go map-based decode
// would not preserve, and sjson.Set produces correctly-escaped JSON
// string literals without this package reimplementing JSON's
// string-escaping grammar.
package jsonobj

import (
	"math"
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/meko-tech/jsengine/internal/runtime/eval"
	"github.com/meko-tech/jsengine/internal/runtime/values"
)

func Install(it *eval.Interpreter, realm *eval.Realm, global *values.Object) {
	obj := values.NewObject(realm.ObjectProto)
	obj.Class = "JSON"

	obj.DefineOwn(values.StringKey("stringify"), values.DataProperty(values.NewNativeFunction(realm.FunctionProto, "stringify", 3, func(this values.Value, args []values.Value) (values.Value, error) {
		v := argAt(args, 0)
		indent := ""
		if len(args) > 2 {
			switch sp := args[2].(type) {
			case values.Number:
				n := int(sp)
				if n > 10 {
					n = 10
				}
				for i := 0; i < n; i++ {
					indent += " "
				}
			case values.String:
				indent = string(sp)
			}
		}
		raw, ok, err := marshal(it, v, map[*values.Object]bool{})
		if err != nil {
			return nil, err
		}
		if !ok {
			return values.TheUndefined, nil
		}
		if indent != "" {
			return values.String(reindent(raw, indent)), nil
		}
		return values.String(raw), nil
	})))

	obj.DefineOwn(values.StringKey("parse"), values.DataProperty(values.NewNativeFunction(realm.FunctionProto, "parse", 2, func(this values.Value, args []values.Value) (values.Value, error) {
		text, err := it.ToString(argAt(args, 0))
		if err != nil {
			return nil, err
		}
		if !gjson.Valid(text) {
			return nil, it.NewThrow("SyntaxError", "Unexpected token in JSON")
		}
		result := unmarshal(realm, gjson.Parse(text))
		if reviver, ok := argAt(args, 1).(*values.Object); ok && reviver.IsCallable() {
			holder := values.NewObject(realm.ObjectProto)
			holder.DefineOwn(values.StringKey(""), values.DataProperty(result))
			return revive(it, reviver, holder, "")
		}
		return result, nil
	})))

	global.DefineOwn(values.StringKey("JSON"), values.DataProperty(obj))
}

// marshal produces v's JSON text, returning ok=false for values that
// JSON.stringify drops entirely (undefined, functions, symbols) rather
// than serializing as "null" - matching the distinction JS makes between
// an omitted object property and an explicit null array element.
func marshal(it *eval.Interpreter, v values.Value, seen map[*values.Object]bool) (string, bool, error) {
	switch tv := v.(type) {
	case values.Undefined:
		return "", false, nil
	case values.Null:
		return "null", true, nil
	case values.Boolean:
		if bool(tv) {
			return "true", true, nil
		}
		return "false", true, nil
	case values.Number:
		f := float64(tv)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return "null", true, nil
		}
		return values.FormatNumber(f), true, nil
	case values.String:
		return quote(string(tv)), true, nil
	case *values.Object:
		if tv.IsCallable() {
			return "", false, nil
		}
		if seen[tv] {
			return "", false, it.NewThrow("TypeError", "Converting circular structure to JSON")
		}
		seen[tv] = true
		defer delete(seen, tv)

		if toJSON, err := it.GetMember(tv, values.StringKey("toJSON")); err == nil {
			if fn, ok := toJSON.(*values.Object); ok && fn.IsCallable() {
				replaced, err := it.Call(fn, tv, nil)
				if err != nil {
					return "", false, err
				}
				return marshal(it, replaced, seen)
			}
		}

		if tv.Class == "Array" {
			n := tv.Length()
			out := "[]"
			for i := uint32(0); i < n; i++ {
				el, ok := tv.GetElement(i)
				if !ok {
					el = values.TheUndefined
				}
				raw, ok, err := marshal(it, el, seen)
				if err != nil {
					return "", false, err
				}
				if !ok {
					raw = "null"
				}
				out, err = sjson.SetRaw(out, strconv.Itoa(int(i)), raw)
				if err != nil {
					return "", false, err
				}
			}
			return out, true, nil
		}

		if bv, ok := tv.PrimitiveValue.(values.Boolean); ok {
			return marshal(it, bv, seen)
		}
		if nv, ok := tv.PrimitiveValue.(values.Number); ok {
			return marshal(it, nv, seen)
		}
		if sv, ok := tv.PrimitiveValue.(values.String); ok {
			return marshal(it, sv, seen)
		}

		out := "{}"
		for _, key := range it.EnumerableStringKeys(tv) {
			mv, err := it.GetMember(tv, values.StringKey(key))
			if err != nil {
				return "", false, err
			}
			raw, ok, err := marshal(it, mv, seen)
			if err != nil {
				return "", false, err
			}
			if !ok {
				continue
			}
			out, err = sjson.SetRaw(out, escapePath(key), raw)
			if err != nil {
				return "", false, err
			}
		}
		return out, true, nil
	default:
		return "", false, nil
	}
}

func unmarshal(realm *eval.Realm, r gjson.Result) values.Value {
	switch r.Type {
	case gjson.Null:
		return values.TheNull
	case gjson.False:
		return values.Boolean(false)
	case gjson.True:
		return values.Boolean(true)
	case gjson.Number:
		return values.Number(r.Num)
	case gjson.String:
		return values.String(r.Str)
	case gjson.JSON:
		if r.IsArray() {
			arr := values.NewArray(realm.ArrayProto, 0)
			r.ForEach(func(_, v gjson.Result) bool {
				arr.AppendElement(unmarshal(realm, v))
				return true
			})
			return arr
		}
		o := values.NewObject(realm.ObjectProto)
		r.ForEach(func(k, v gjson.Result) bool {
			o.DefineOwn(values.StringKey(k.String()), values.DataProperty(unmarshal(realm, v)))
			return true
		})
		return o
	default:
		return values.TheUndefined
	}
}

// revive implements JSON.parse's reviver walk (ECMA-262 InternalizeJSONProperty):
// bottom-up, each property's value is replaced with
// reviver.call(holder, key, value), and the property is deleted entirely
// when the reviver returns undefined.
func revive(it *eval.Interpreter, reviver *values.Object, holder *values.Object, key string) (values.Value, error) {
	val, err := it.GetMember(holder, values.StringKey(key))
	if err != nil {
		return nil, err
	}
	if o, ok := val.(*values.Object); ok {
		if o.Class == "Array" {
			n := o.Length()
			for i := uint32(0); i < n; i++ {
				ik := strconv.FormatUint(uint64(i), 10)
				rv, err := revive(it, reviver, o, ik)
				if err != nil {
					return nil, err
				}
				if rv == values.TheUndefined {
					o.DeleteOwn(values.StringKey(ik))
				} else {
					o.SetElement(i, rv)
				}
			}
		} else {
			for _, k := range it.EnumerableStringKeys(o) {
				rv, err := revive(it, reviver, o, k)
				if err != nil {
					return nil, err
				}
				if rv == values.TheUndefined {
					o.DeleteOwn(values.StringKey(k))
				} else {
					o.DefineOwn(values.StringKey(k), values.DataProperty(rv))
				}
			}
		}
	}
	return it.Call(reviver, holder, []values.Value{values.String(key), val})
}

// reindent reformats compact JSON text produced by sjson with the given
// per-level indent string, matching JSON.stringify's third-argument
// pretty-printing behavior.
func reindent(raw, indent string) string {
	var out []byte
	depth := 0
	inString := false
	escaped := false
	newline := func(d int) {
		out = append(out, '\n')
		for i := 0; i < d; i++ {
			out = append(out, indent...)
		}
	}
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if inString {
			out = append(out, c)
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
			out = append(out, c)
		case '{', '[':
			out = append(out, c)
			if i+1 < len(raw) && (raw[i+1] == '}' || raw[i+1] == ']') {
				i++
				out = append(out, raw[i])
				continue
			}
			depth++
			newline(depth)
		case '}', ']':
			depth--
			newline(depth)
			out = append(out, c)
		case ',':
			out = append(out, c)
			newline(depth)
		case ':':
			out = append(out, c, ' ')
		default:
			out = append(out, c)
		}
	}
	return string(out)
}

func quote(s string) string {
	out, _ := sjson.Set("", "v", s)
	return gjson.Get(out, "v").Raw
}

// escapePath backslash-escapes sjson/gjson's path metacharacters (.,*,?)
// so an object key containing them is treated as a literal segment
// rather than a path wildcard or nested-path separator.
func escapePath(key string) string {
	out := make([]byte, 0, len(key))
	for i := 0; i < len(key); i++ {
		switch key[i] {
		case '.', '*', '?', '\\':
			out = append(out, '\\')
		}
		out = append(out, key[i])
	}
	return string(out)
}

func argAt(args []values.Value, i int) values.Value {
	if i < len(args) {
		return args[i]
	}
	return values.TheUndefined
}
