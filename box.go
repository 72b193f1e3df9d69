package tagbox

import (
	"fmt"
	"io"
	"reflect"
	"strings"
	"unsafe"

	"github.com/chazu/tagbox/alloc"
	"github.com/chazu/tagbox/discriminant"
	"github.com/chazu/tagbox/tagptr"
)

// Discriminant is re-exported for generated code.
type Discriminant = discriminant.Discriminant

// MaxDiscriminant is the largest discriminant a Box can carry in this build.
const MaxDiscriminant = discriminant.Max

// Box owns one heap allocation of an erased payload type and remembers only
// a discriminant next to its address, in a single word.
//
// T is the union the box belongs to and only shapes the API: the payload is
// whatever type was passed to New, and every typed read must name that same
// type again. The box cannot check this. Reading with a different type, or
// reading after the box was consumed, is undefined behaviour; generated
// Variants implementations are the intended callers.
//
// The zero Box is empty. A live box never has a zero word, because no
// allocation lives at address zero.
type Box[T any] struct {
	ptr tagptr.Pointer[discriminant.Build]
}

func zeroSize[U any]() bool {
	var zero U
	return unsafe.Sizeof(zero) == 0
}

// New moves v into a fresh allocation and tags its address with d.
// Zero-size payloads get a dangling address and no allocation. Panics if d
// is out of range or the allocation fails.
func New[T, U any](v U, d Discriminant) Box[T] {
	if err := tagptr.Check[discriminant.Build](0, d); err != nil {
		panic(fmt.Errorf("tagbox.New: %w", err))
	}
	if zeroSize[U]() {
		return Dangling[T, U](d)
	}

	typ := reflect.TypeFor[U]()
	p := allocate(typ)
	*(*U)(p) = v

	ptr, err := tagptr.TryNew[discriminant.Build](uintptr(p), d)
	if err != nil {
		_ = alloc.Default.Release(uintptr(p), typ)
		panic(fmt.Errorf("tagbox.New: %w", err))
	}
	return Box[T]{ptr: ptr}
}

// NewUnchecked is New without the discriminant and address checks.
// An out-of-range d corrupts the address bits.
func NewUnchecked[T, U any](v U, d Discriminant) Box[T] {
	if zeroSize[U]() {
		return Box[T]{ptr: tagptr.NewUnchecked[discriminant.Build](dangling[U](), d)}
	}
	p := allocate(reflect.TypeFor[U]())
	*(*U)(p) = v
	return Box[T]{ptr: tagptr.NewUnchecked[discriminant.Build](uintptr(p), d)}
}

// Dangling returns a box for a zero-size payload of type U.
func Dangling[T, U any](d Discriminant) Box[T] {
	return Box[T]{ptr: tagptr.Dangling[discriminant.Build, U](d)}
}

func dangling[U any]() uintptr {
	var zero U
	return unsafe.Alignof(zero)
}

func allocate(typ reflect.Type) unsafe.Pointer {
	p, err := alloc.Default.Allocate(typ)
	if err != nil {
		panic(fmt.Errorf("tagbox: allocating %v: %w", typ, err))
	}
	if p == nil {
		panic(fmt.Sprintf("tagbox: allocator returned nil for %v", typ))
	}
	return p
}

// FromRaw builds a box around p, taking ownership of it. p must not be
// used by the caller afterwards. It is the inverse of IntoRaw.
func FromRaw[T, U any](p *U, d Discriminant) Box[T] {
	if zeroSize[U]() {
		return Dangling[T, U](d)
	}
	if p == nil {
		panic("tagbox.FromRaw: nil pointer")
	}
	if err := tagptr.Check[discriminant.Build](uintptr(unsafe.Pointer(p)), d); err != nil {
		panic(fmt.Errorf("tagbox.FromRaw: %w", err))
	}
	alloc.Default.Adopt(unsafe.Pointer(p))
	return Box[T]{ptr: tagptr.New[discriminant.Build](uintptr(unsafe.Pointer(p)), d)}
}

// IntoRaw hands the payload to the caller and consumes the box. The
// returned pointer is an ordinary Go pointer: it keeps the payload alive,
// and nothing is dropped.
func IntoRaw[U, T any](b Box[T]) *U {
	b.mustLive("IntoRaw")
	if zeroSize[U]() {
		return new(U)
	}
	p, err := alloc.Default.Disown(b.Addr())
	if err != nil {
		panic(fmt.Errorf("tagbox.IntoRaw: %w", err))
	}
	return (*U)(p)
}

// AsPtr returns a pointer to the payload without consuming the box. It is
// valid until the box is consumed.
func AsPtr[U, T any](b Box[T]) *U {
	if zeroSize[U]() {
		return new(U)
	}
	return tagptr.As[U](b.ptr)
}

// Read copies the payload out without releasing it. The copy shares
// anything the payload references, so it is a view, not an owner: the box
// stays responsible for the allocation.
func Read[U, T any](b Box[T]) U {
	b.mustLive("Read")
	return *AsPtr[U](b)
}

// Release frees the allocation behind b as a U without reading it.
func Release[U, T any](b Box[T]) {
	b.mustLive("Release")
	if zeroSize[U]() {
		return
	}
	if err := alloc.Default.Release(b.Addr(), reflect.TypeFor[U]()); err != nil {
		panic(fmt.Errorf("tagbox.Release: %w", err))
	}
}

// IntoInner moves the payload out and releases the allocation: the one
// consuming read. Panics if the allocation is not live, which catches most
// second reads of the same box.
func IntoInner[U, T any](b Box[T]) U {
	b.mustLive("IntoInner")
	if zeroSize[U]() {
		var zero U
		return zero
	}
	if !alloc.Default.Owns(b.Addr()) {
		panic(fmt.Errorf("tagbox.IntoInner: %w: %#x", alloc.ErrNotAllocated, b.Addr()))
	}
	v := *AsPtr[U](b)
	Release[U](b)
	return v
}

func (b Box[T]) mustLive(op string) {
	if b.IsZero() {
		panic(fmt.Errorf("tagbox.%s: %w", op, ErrConsumed))
	}
}

// Take returns *b and leaves the zero Box behind, so a container cannot hand
// out the same box twice. Panics if *b is already empty.
func Take[T any](b *Box[T]) Box[T] {
	out := *b
	out.mustLive("Take")
	*b = Box[T]{}
	return out
}

// Discriminant returns the discriminant stored in the box's high bits.
func (b Box[T]) Discriminant() Discriminant {
	return b.ptr.Discriminant()
}

// Addr returns the payload address without the discriminant.
func (b Box[T]) Addr() uintptr {
	return b.ptr.Addr()
}

// Raw returns the tagged word.
func (b Box[T]) Raw() uint64 {
	return b.ptr.Raw()
}

// Pointer returns the underlying tagged pointer.
func (b Box[T]) Pointer() tagptr.Pointer[discriminant.Build] {
	return b.ptr
}

// IsZero reports whether b is empty: never built, or taken.
func (b Box[T]) IsZero() bool {
	return b.ptr == 0
}

func (b Box[T]) String() string {
	return "TaggedBox" + strings.TrimPrefix(b.ptr.String(), "TaggedPointer")
}

// Format follows tagptr.Pointer: %v and %s print the debug form, other
// verbs print the stripped address.
func (b Box[T]) Format(f fmt.State, verb rune) {
	switch verb {
	case 'v', 's':
		io.WriteString(f, b.String())
	default:
		b.ptr.Format(f, verb)
	}
}
