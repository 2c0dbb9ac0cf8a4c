package docmap

import (
	"fmt"
	"reflect"
	"strings"
)

// TypeName renders a shortened globally-unique name for a type, used as the
// fallback discriminator lookup key and in error messages.
//
// Named types render as their package path plus name. Types from the
// standard library and predeclared types drop the path qualifier entirely
// (time.Time, int). A generic instantiation renders its definition's full
// name followed by the bracketed argument list; an argument whose own
// rendering contains a separator is wrapped in brackets so the list stays
// unambiguous. Unnamed composite types render structurally.
func TypeName(t reflect.Type) string {
	if t == nil {
		return ""
	}

	switch t.Kind() {
	case reflect.Pointer:
		return "*" + TypeName(t.Elem())
	case reflect.Slice:
		if t.Name() == "" {
			return "[]" + TypeName(t.Elem())
		}
	case reflect.Array:
		if t.Name() == "" {
			return fmt.Sprintf("[%d]%s", t.Len(), TypeName(t.Elem()))
		}
	case reflect.Map:
		if t.Name() == "" {
			return "map[" + TypeName(t.Key()) + "]" + TypeName(t.Elem())
		}
	}

	name := t.Name()
	if name == "" {
		// Unnamed chan, func, struct, interface.
		return t.String()
	}

	path := t.PkgPath()
	if path == "" {
		return name
	}
	if stdlibPath(path) {
		// Core library qualifier is omitted; the short package prefix in
		// String() keeps the name readable.
		return t.String()
	}

	if open := strings.IndexByte(name, '['); open >= 0 {
		base := name[:open]
		args := splitTypeArgs(name[open+1 : len(name)-1])
		for i, arg := range args {
			if strings.ContainsAny(arg, ",[") {
				args[i] = "[" + arg + "]"
			}
		}
		return path + "." + base + "[" + strings.Join(args, ",") + "]"
	}

	return path + "." + name
}

// stdlibPath reports whether a package path belongs to the standard
// library: its first path element carries no domain dot.
func stdlibPath(path string) bool {
	first, _, _ := strings.Cut(path, "/")
	return !strings.Contains(first, ".")
}

// splitTypeArgs splits a rendered type-argument list at top-level commas.
func splitTypeArgs(s string) []string {
	var args []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, s[start:i])
				start = i + 1
			}
		}
	}
	return append(args, s[start:])
}
