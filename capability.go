package tagbox

import (
	"errors"
	"fmt"
)

var (
	// ErrConsumed is the panic value (wrapped) when an empty box or container
	// is used.
	ErrConsumed = errors.New("tagbox: box already consumed")

	// ErrUnknownVariant is the panic value (wrapped) when Encode is handed a
	// value that is not one of the union's variants, such as nil.
	ErrUnknownVariant = errors.New("tagbox: unknown variant")
)

// Variants is the capability a union type implements so that its values can
// travel through a Box. Variant i is stored under discriminant i, so Len is
// also the first discriminant that does not map to a variant.
//
// Encode moves a value into a fresh box. Decode consumes the box and returns
// the value; it owns the allocation, so Decode followed by Encode is a move.
// View lends the value to fn without consuming the box; the borrowed value
// must not escape fn or be dropped. Drop finalizes a value after Decode.
//
// Decode and View panic with an *ExhaustedError when the discriminant is not
// below Len.
type Variants[T any] interface {
	Name() string
	Len() int
	Encode(v T) Box[T]
	Decode(b Box[T]) T
	View(b Box[T], fn func(T))
	Drop(v T)
}

// Container is implemented by the generated box wrapper of a union. The
// only way to get the value back out is to consume the container.
type Container[T any] interface {
	IntoInner() T
}

// Dropper is implemented by payloads with cleanup that must run exactly once
// when their owner goes away.
type Dropper interface {
	Drop()
}

// Drop runs v's cleanup if it has any.
func Drop(v any) {
	if d, ok := v.(Dropper); ok {
		d.Drop()
	}
}

// ExhaustedError reports a discriminant that does not map to a variant.
type ExhaustedError struct {
	Union        string
	Variants     int
	Discriminant Discriminant
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("tagbox: %s has %d variants, but discriminant %d was requested",
		e.Union, e.Variants, e.Discriminant)
}

// Exhausted builds the panic value for a discriminant past the last variant.
// Generated Decode and View panic with it from their default case.
func Exhausted(union string, variants int, d Discriminant) *ExhaustedError {
	return &ExhaustedError{Union: union, Variants: variants, Discriminant: d}
}

// UnknownVariant builds the panic value for Encode of a value that is not a
// variant of union.
func UnknownVariant(union string, v any) error {
	return fmt.Errorf("%w: %s cannot encode %T", ErrUnknownVariant, union, v)
}

// Equal reports whether a and b hold the same variant with equal payloads.
// Neither box is consumed.
func Equal[T any](vs Variants[T], a, b Box[T], eq func(x, y T) bool) bool {
	if a.Discriminant() != b.Discriminant() {
		return false
	}
	var same bool
	vs.View(a, func(x T) {
		vs.View(b, func(y T) {
			same = eq(x, y)
		})
	})
	return same
}

// Compare orders a and b by discriminant first, then by cmp on the payloads.
func Compare[T any](vs Variants[T], a, b Box[T], cmp func(x, y T) int) int {
	da, db := a.Discriminant(), b.Discriminant()
	switch {
	case da < db:
		return -1
	case da > db:
		return 1
	}
	var c int
	vs.View(a, func(x T) {
		vs.View(b, func(y T) {
			c = cmp(x, y)
		})
	})
	return c
}

// Clone encodes a copy of b's value into a new box. A nil clone copies the
// value as is, sharing whatever it references.
func Clone[T any](vs Variants[T], b Box[T], clone func(T) T) Box[T] {
	var out Box[T]
	vs.View(b, func(v T) {
		if clone != nil {
			v = clone(v)
		}
		out = vs.Encode(v)
	})
	return out
}

// Sprint formats the value held by b with %v.
func Sprint[T any](vs Variants[T], b Box[T]) string {
	var s string
	vs.View(b, func(v T) {
		s = fmt.Sprint(v)
	})
	return s
}

// CompareBool orders false before true. Generated Compare methods use it for
// bool fields.
func CompareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case b:
		return -1
	}
	return 1
}
