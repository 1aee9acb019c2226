package cmd

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/meko-tech/jsengine/internal/ast"
)

// dumpAST prints prog as an indented tree of its Go struct shape, the
// typed-AST analogue of ir.Cell.String()'s S-expression dump: ast.Program
// has no single compact textual form of its own (unlike the untyped IR's
// cons cells), so this walks the struct/slice/interface graph by
// reflection.
func dumpAST(prog *ast.Program) string {
	var sb strings.Builder
	dumpValue(&sb, reflect.ValueOf(prog), 0, map[uintptr]bool{})
	return sb.String()
}

func dumpValue(sb *strings.Builder, v reflect.Value, depth int, seen map[uintptr]bool) {
	indent := strings.Repeat("  ", depth)
	if !v.IsValid() {
		sb.WriteString(indent + "nil\n")
		return
	}
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		if v.IsNil() {
			sb.WriteString(indent + "nil\n")
			return
		}
		if v.Kind() == reflect.Ptr {
			ptr := v.Pointer()
			if seen[ptr] {
				sb.WriteString(indent + "<cycle>\n")
				return
			}
			seen[ptr] = true
		}
		dumpValue(sb, v.Elem(), depth, seen)
	case reflect.Struct:
		sb.WriteString(indent + v.Type().Name() + "\n")
		for i := 0; i < v.NumField(); i++ {
			field := v.Type().Field(i)
			if field.Name == "SourceRef" || field.Name == "Origin" || !field.IsExported() {
				continue
			}
			fv := v.Field(i)
			sb.WriteString(indent + "  " + field.Name + ":")
			if isScalar(fv) {
				fmt.Fprintf(sb, " %v\n", fv.Interface())
			} else {
				sb.WriteString("\n")
				dumpValue(sb, fv, depth+2, seen)
			}
		}
	case reflect.Slice, reflect.Array:
		if v.Len() == 0 {
			sb.WriteString(indent + "[]\n")
			return
		}
		for i := 0; i < v.Len(); i++ {
			dumpValue(sb, v.Index(i), depth, seen)
		}
	default:
		fmt.Fprintf(sb, "%s%v\n", indent, v.Interface())
	}
}

func isScalar(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	case reflect.Slice:
		return v.Len() == 0
	}
	return false
}
