// Package stringobj builds the String constructor and String.prototype.
// UTF-16 semantics are approximated with Go's UTF-8 strings, converting
// through unicode/utf16 at indexing boundaries as documented on
// values.String.
package stringobj

import (
	"strings"
	"unicode/utf16"

	"github.com/meko-tech/jsengine/internal/runtime/eval"
	"github.com/meko-tech/jsengine/internal/runtime/values"
	"github.com/meko-tech/jsengine/internal/stdlib/regexpobj"
)

func Install(it *eval.Interpreter, realm *eval.Realm, global *values.Object) {
	proto := values.NewObject(realm.ObjectProto)
	proto.Class = "String"
	proto.PrimitiveValue = values.String("")
	realm.StringProto = proto

	def := func(name string, length int, fn values.NativeFunc) {
		proto.DefineOwn(values.StringKey(name), values.DataProperty(values.NewNativeFunction(realm.FunctionProto, name, length, fn)))
	}

	def("toString", 0, func(this values.Value, args []values.Value) (values.Value, error) { return thisString(it, this) })
	def("valueOf", 0, func(this values.Value, args []values.Value) (values.Value, error) { return thisString(it, this) })

	def("charAt", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		s, units, err := unitsOf(it, this)
		if err != nil {
			return nil, err
		}
		i := int(argNum(it, args, 0))
		if i < 0 || i >= len(units) {
			return values.String(""), nil
		}
		_ = s
		return values.String(string(utf16.Decode(units[i : i+1]))), nil
	})
	def("charCodeAt", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		_, units, err := unitsOf(it, this)
		if err != nil {
			return nil, err
		}
		i := int(argNum(it, args, 0))
		if i < 0 || i >= len(units) {
			return values.Number(nan()), nil
		}
		return values.Number(units[i]), nil
	})
	def("codePointAt", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		s, _, err := unitsOf(it, this)
		if err != nil {
			return nil, err
		}
		runes := []rune(s)
		i := int(argNum(it, args, 0))
		if i < 0 || i >= len(runes) {
			return values.TheUndefined, nil
		}
		return values.Number(runes[i]), nil
	})
	def("indexOf", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		s, err := it.ToString(this)
		if err != nil {
			return nil, err
		}
		needle, err := it.ToString(argAt(args, 0))
		if err != nil {
			return nil, err
		}
		return values.Number(runeIndex(s, strings.Index(s, needle))), nil
	})
	def("lastIndexOf", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		s, err := it.ToString(this)
		if err != nil {
			return nil, err
		}
		needle, err := it.ToString(argAt(args, 0))
		if err != nil {
			return nil, err
		}
		return values.Number(runeIndex(s, strings.LastIndex(s, needle))), nil
	})
	def("includes", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		s, err := it.ToString(this)
		if err != nil {
			return nil, err
		}
		needle, err := it.ToString(argAt(args, 0))
		if err != nil {
			return nil, err
		}
		return values.Boolean(strings.Contains(s, needle)), nil
	})
	def("startsWith", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		s, err := it.ToString(this)
		if err != nil {
			return nil, err
		}
		needle, err := it.ToString(argAt(args, 0))
		if err != nil {
			return nil, err
		}
		return values.Boolean(strings.HasPrefix(s, needle)), nil
	})
	def("endsWith", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		s, err := it.ToString(this)
		if err != nil {
			return nil, err
		}
		needle, err := it.ToString(argAt(args, 0))
		if err != nil {
			return nil, err
		}
		return values.Boolean(strings.HasSuffix(s, needle)), nil
	})
	def("slice", 2, func(this values.Value, args []values.Value) (values.Value, error) {
		s, units, err := unitsOf(it, this)
		if err != nil {
			return nil, err
		}
		_ = s
		n := len(units)
		start := normalizeIndex(argNumOr(it, args, 0, 0), n)
		end := n
		if len(args) > 1 && args[1] != values.TheUndefined {
			end = normalizeIndex(argNumOr(it, args, 1, float64(n)), n)
		}
		if end < start {
			end = start
		}
		return values.String(string(utf16.Decode(units[start:end]))), nil
	})
	def("substring", 2, func(this values.Value, args []values.Value) (values.Value, error) {
		_, units, err := unitsOf(it, this)
		if err != nil {
			return nil, err
		}
		n := len(units)
		start := clampInt(int(argNumOr(it, args, 0, 0)), 0, n)
		end := n
		if len(args) > 1 && args[1] != values.TheUndefined {
			end = clampInt(int(argNumOr(it, args, 1, float64(n))), 0, n)
		}
		if start > end {
			start, end = end, start
		}
		return values.String(string(utf16.Decode(units[start:end]))), nil
	})
	def("toUpperCase", 0, func(this values.Value, args []values.Value) (values.Value, error) {
		s, err := it.ToString(this)
		if err != nil {
			return nil, err
		}
		return values.String(strings.ToUpper(s)), nil
	})
	def("toLowerCase", 0, func(this values.Value, args []values.Value) (values.Value, error) {
		s, err := it.ToString(this)
		if err != nil {
			return nil, err
		}
		return values.String(strings.ToLower(s)), nil
	})
	def("trim", 0, func(this values.Value, args []values.Value) (values.Value, error) {
		s, err := it.ToString(this)
		if err != nil {
			return nil, err
		}
		return values.String(strings.TrimSpace(s)), nil
	})
	def("trimStart", 0, func(this values.Value, args []values.Value) (values.Value, error) {
		s, err := it.ToString(this)
		if err != nil {
			return nil, err
		}
		return values.String(strings.TrimLeft(s, " \t\n\r\v\f")), nil
	})
	def("trimEnd", 0, func(this values.Value, args []values.Value) (values.Value, error) {
		s, err := it.ToString(this)
		if err != nil {
			return nil, err
		}
		return values.String(strings.TrimRight(s, " \t\n\r\v\f")), nil
	})
	def("padStart", 2, func(this values.Value, args []values.Value) (values.Value, error) { return pad(it, this, args, true) })
	def("padEnd", 2, func(this values.Value, args []values.Value) (values.Value, error) { return pad(it, this, args, false) })
	def("repeat", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		s, err := it.ToString(this)
		if err != nil {
			return nil, err
		}
		n := int(argNum(it, args, 0))
		if n < 0 {
			return nil, it.NewThrow("RangeError", "Invalid count value")
		}
		return values.String(strings.Repeat(s, n)), nil
	})
	def("concat", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		s, err := it.ToString(this)
		if err != nil {
			return nil, err
		}
		for _, a := range args {
			as, err := it.ToString(a)
			if err != nil {
				return nil, err
			}
			s += as
		}
		return values.String(s), nil
	})
	def("split", 2, func(this values.Value, args []values.Value) (values.Value, error) {
		s, err := it.ToString(this)
		if err != nil {
			return nil, err
		}
		out := values.NewArray(realm.ArrayProto, 0)
		if len(args) == 0 || args[0] == values.TheUndefined {
			out.AppendElement(values.String(s))
			return out, nil
		}
		if ro, ok := args[0].(*values.Object); ok {
			if rd, ok := ro.Internal.(*regexpobj.RegExpData); ok {
				return splitByRegExp(realm, rd, s)
			}
		}
		sep, err := it.ToString(args[0])
		if err != nil {
			return nil, err
		}
		var parts []string
		if sep == "" {
			for _, r := range s {
				parts = append(parts, string(r))
			}
		} else {
			parts = strings.Split(s, sep)
		}
		for _, p := range parts {
			out.AppendElement(values.String(p))
		}
		return out, nil
	})
	def("replace", 2, func(this values.Value, args []values.Value) (values.Value, error) {
		return replace(it, realm, this, args, false)
	})
	def("replaceAll", 2, func(this values.Value, args []values.Value) (values.Value, error) {
		return replace(it, realm, this, args, true)
	})
	def("match", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		s, err := it.ToString(this)
		if err != nil {
			return nil, err
		}
		ro, ok := argAt(args, 0).(*values.Object)
		if !ok {
			return values.TheNull, nil
		}
		rd, ok := ro.Internal.(*regexpobj.RegExpData)
		if !ok {
			return values.TheNull, nil
		}
		m, merr := rd.Re.FindStringMatch(s)
		if merr != nil || m == nil {
			return values.TheNull, nil
		}
		return values.String(m.String()), nil
	})

	fd := &values.FunctionData{
		Kind: values.FuncHost, Name: "String", Length: 1, NotConstructible: false,
		Native: func(this values.Value, args []values.Value) (values.Value, error) {
			if len(args) == 0 {
				return values.String(""), nil
			}
			s, err := it.ToString(args[0])
			if err != nil {
				return nil, err
			}
			return values.String(s), nil
		},
		NativeConstruct: func(args []values.Value) (values.Value, error) {
			s := ""
			if len(args) > 0 {
				ss, err := it.ToString(args[0])
				if err != nil {
					return nil, err
				}
				s = ss
			}
			o := values.NewObject(proto)
			o.Class = "String"
			o.PrimitiveValue = values.String(s)
			return o, nil
		},
	}
	ctor := values.NewFunctionObject(realm.FunctionProto, fd, true, proto)
	ctor.DefineOwn(values.StringKey("prototype"), &values.PropertyDescriptor{Value: proto})
	ctor.DefineOwn(values.StringKey("fromCharCode"), values.DataProperty(values.NewNativeFunction(realm.FunctionProto, "fromCharCode", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		units := make([]uint16, len(args))
		for i, a := range args {
			n, err := it.ToNumber(a)
			if err != nil {
				return nil, err
			}
			units[i] = uint16(n)
		}
		return values.String(string(utf16.Decode(units))), nil
	})))
	ctor.DefineOwn(values.StringKey("raw"), values.DataProperty(values.NewNativeFunction(realm.FunctionProto, "raw", 1, func(this values.Value, args []values.Value) (values.Value, error) {
		strs, err := it.ToObject(argAt(args, 0))
		if err != nil {
			return nil, err
		}
		rawV, err := it.GetMember(strs, values.StringKey("raw"))
		if err != nil {
			return nil, err
		}
		raw, ok := rawV.(*values.Object)
		if !ok {
			return values.String(""), nil
		}
		n := raw.Length()
		out := ""
		for i := uint32(0); i < n; i++ {
			part, _ := raw.GetElement(i)
			ps, _ := it.ToString(part)
			out += ps
			if i+1 < uint32(len(args)) {
				s, err := it.ToString(args[i+1])
				if err != nil {
					return nil, err
				}
				out += s
			}
		}
		return values.String(out), nil
	})))

	global.DefineOwn(values.StringKey("String"), values.DataProperty(ctor))
}

func splitByRegExp(realm *eval.Realm, rd *regexpobj.RegExpData, s string) (values.Value, error) {
	out := values.NewArray(realm.ArrayProto, 0)
	last := 0
	m, err := rd.Re.FindStringMatch(s)
	for err == nil && m != nil {
		if m.Index >= last {
			out.AppendElement(values.String(s[last:m.Index]))
			last = m.Index + m.Length
		}
		m, err = rd.Re.FindNextMatch(m)
	}
	out.AppendElement(values.String(s[last:]))
	return out, nil
}

func replace(it *eval.Interpreter, realm *eval.Realm, this values.Value, args []values.Value, all bool) (values.Value, error) {
	s, err := it.ToString(this)
	if err != nil {
		return nil, err
	}
	replFn, isFn := argAt(args, 1).(*values.Object)
	replStr := ""
	if !isFn || !replFn.IsCallable() {
		rs, err := it.ToString(argAt(args, 1))
		if err != nil {
			return nil, err
		}
		replStr = rs
		isFn = false
	}
	if ro, ok := argAt(args, 0).(*values.Object); ok {
		if rd, ok := ro.Internal.(*regexpobj.RegExpData); ok {
			global := rd.Global || all
			var sb strings.Builder
			last := 0
			m, merr := rd.Re.FindStringMatch(s)
			for merr == nil && m != nil {
				sb.WriteString(s[last:m.Index])
				if isFn {
					r, err := it.Call(replFn, values.TheUndefined, []values.Value{values.String(m.String()), values.Number(m.Index), values.String(s)})
					if err != nil {
						return nil, err
					}
					rs, err := it.ToString(r)
					if err != nil {
						return nil, err
					}
					sb.WriteString(rs)
				} else {
					sb.WriteString(replStr)
				}
				last = m.Index + m.Length
				if !global {
					break
				}
				m, merr = rd.Re.FindNextMatch(m)
			}
			sb.WriteString(s[last:])
			return values.String(sb.String()), nil
		}
	}
	needle, err := it.ToString(argAt(args, 0))
	if err != nil {
		return nil, err
	}
	if !isFn {
		if !all {
			return values.String(strings.Replace(s, needle, replStr, 1)), nil
		}
		return values.String(strings.ReplaceAll(s, needle, replStr)), nil
	}
	var sb strings.Builder
	rest, offset := s, 0
	for {
		idx := strings.Index(rest, needle)
		if idx < 0 {
			sb.WriteString(rest)
			break
		}
		sb.WriteString(rest[:idx])
		r, err := it.Call(replFn, values.TheUndefined, []values.Value{values.String(needle), values.Number(offset + idx), values.String(s)})
		if err != nil {
			return nil, err
		}
		rs, err := it.ToString(r)
		if err != nil {
			return nil, err
		}
		sb.WriteString(rs)
		rest = rest[idx+len(needle):]
		offset += idx + len(needle)
		if !all {
			sb.WriteString(rest)
			break
		}
	}
	return values.String(sb.String()), nil
}

func pad(it *eval.Interpreter, this values.Value, args []values.Value, start bool) (values.Value, error) {
	s, err := it.ToString(this)
	if err != nil {
		return nil, err
	}
	target := int(argNum(it, args, 0))
	if target <= len([]rune(s)) {
		return values.String(s), nil
	}
	fill := " "
	if len(args) > 1 && args[1] != values.TheUndefined {
		f, err := it.ToString(args[1])
		if err != nil {
			return nil, err
		}
		if f != "" {
			fill = f
		}
	}
	need := target - len([]rune(s))
	padding := strings.Repeat(fill, (need/len([]rune(fill)))+1)
	padding = string([]rune(padding)[:need])
	if start {
		return values.String(padding + s), nil
	}
	return values.String(s + padding), nil
}

func thisString(it *eval.Interpreter, this values.Value) (values.Value, error) {
	if s, ok := this.(values.String); ok {
		return s, nil
	}
	if o, ok := this.(*values.Object); ok {
		if s, ok := o.PrimitiveValue.(values.String); ok {
			return s, nil
		}
	}
	return nil, it.NewThrow("TypeError", "String.prototype method called on incompatible receiver")
}

func unitsOf(it *eval.Interpreter, this values.Value) (string, []uint16, error) {
	s, err := it.ToString(this)
	if err != nil {
		return "", nil, err
	}
	return s, utf16.Encode([]rune(s)), nil
}

func runeIndex(s string, byteIdx int) int {
	if byteIdx < 0 {
		return -1
	}
	return len([]rune(s[:byteIdx]))
}

func normalizeIndex(f float64, n int) int {
	i := int(f)
	if i < 0 {
		i += n
	}
	return clampInt(i, 0, n)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func argNum(it *eval.Interpreter, args []values.Value, i int) float64 {
	return argNumOr(it, args, i, nan())
}

func argNumOr(it *eval.Interpreter, args []values.Value, i int, fallback float64) float64 {
	if i >= len(args) || args[i] == values.TheUndefined {
		return fallback
	}
	n, err := it.ToNumber(args[i])
	if err != nil {
		return fallback
	}
	return n
}

func argAt(args []values.Value, i int) values.Value {
	if i < len(args) {
		return args[i]
	}
	return values.TheUndefined
}

func nan() float64 { var z float64; return z / z }
