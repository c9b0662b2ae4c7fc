package element

import (
	"reflect"
	"runtime"
	"strings"
	"unsafe"
)

// Identical reports strict equality of two values, the way the engine
// compares props, hook dependencies and state previews.
//
// Comparable values compare with ==. Functions compare by closure identity:
// the same top-level function is identical to itself, while two closures
// created by separate evaluations of a func literal that captures variables
// are not. Maps, slices and channels compare by reference. Values that are
// not comparable (structs holding slices, for instance) are never identical.
func Identical(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}

	switch ta.Kind() {
	case reflect.Func:
		return funcIdentity(a) == funcIdentity(b)
	case reflect.Map, reflect.Slice:
		va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
		if va.IsNil() || vb.IsNil() {
			return va.IsNil() && vb.IsNil()
		}
		if ta.Kind() == reflect.Slice && va.Len() != vb.Len() {
			return false
		}
		return va.Pointer() == vb.Pointer()
	}

	if !ta.Comparable() {
		return false
	}
	return a == b
}

// SameType reports whether two element or fiber types match for
// positional reconciliation: equal tags, or the same component function.
func SameType(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if sa, ok := a.(string); ok {
		sb, ok := b.(string)
		return ok && sa == sb
	}
	if reflect.TypeOf(a).Kind() != reflect.Func || reflect.TypeOf(b).Kind() != reflect.Func {
		return false
	}
	// Component and func(Props) *Element are interchangeable.
	return funcIdentity(a) == funcIdentity(b)
}

// funcIdentity returns the closure pointer held in the interface data word.
// Func values are pointer-shaped, so the data word is the closure itself.
func funcIdentity(f any) unsafe.Pointer {
	return (*[2]unsafe.Pointer)(unsafe.Pointer(&f))[1]
}

// funcName returns the short name of a function value, e.g. "demo.Counter".
func funcName(f any) string {
	v := reflect.ValueOf(f)
	if v.Kind() != reflect.Func || v.IsNil() {
		return "func"
	}
	fn := runtime.FuncForPC(v.Pointer())
	if fn == nil {
		return "func"
	}
	name := fn.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}
