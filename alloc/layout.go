package alloc

import (
	"reflect"
	"sync"
)

var pointerCache sync.Map // reflect.Type -> bool

// HasPointers reports whether values of t contain Go pointers the collector
// has to trace. Such values may not be stored outside the Go heap.
func HasPointers(t reflect.Type) bool {
	if v, ok := pointerCache.Load(t); ok {
		return v.(bool)
	}
	has := hasPointers(t)
	pointerCache.Store(t, has)
	return has
}

func hasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return false
	case reflect.Array:
		return t.Len() > 0 && hasPointers(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if hasPointers(t.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		// Pointer, UnsafePointer, String, Slice, Map, Chan, Func, Interface.
		return true
	}
}

// sizeClasses returns the power-of-two classes from minClass up to largest.
func sizeClasses(largest int) []int {
	var classes []int
	for c := minClass; c <= largest; c <<= 1 {
		classes = append(classes, c)
	}
	return classes
}

// classFor returns the index of the smallest class that fits size bytes at
// the given alignment, or -1.
func classFor(classes []int, size, align uintptr) int {
	for i, c := range classes {
		if uintptr(c) >= size && uintptr(c)%align == 0 {
			return i
		}
	}
	return -1
}
