// Package tagptr packs a discriminant into the unused high bits of an
// address.
//
// A Pointer is one 64-bit word:
//
//	| discriminant (64-W bits) | address (W bits) |
//
// where W is the PointerWidth of the policy P. The address is a plain
// integer: a Pointer does not keep its target alive and does not own it.
// Whoever produced the address stays responsible for both.
package tagptr

import (
	"errors"
	"fmt"
	"io"
	"unsafe"

	"github.com/chazu/tagbox/discriminant"
)

var (
	// ErrDiscriminantOverflow is returned when a discriminant does not fit
	// in the policy's discriminant bits.
	ErrDiscriminantOverflow = errors.New("tagptr: discriminant exceeds policy maximum")

	// ErrAddressOverflow is returned when an address uses bits the policy
	// reserves for the discriminant. Seeing it means the platform hands out
	// wider addresses than the policy assumes; build with a wider
	// tagbox_reserveNN tag.
	ErrAddressOverflow = errors.New("tagptr: address uses reserved discriminant bits")
)

// Pointer is an address tagged with a discriminant under policy P.
type Pointer[P discriminant.Policy] uint64

// Check reports whether addr and d can be packed under P.
func Check[P discriminant.Policy](addr uintptr, d discriminant.Discriminant) error {
	if limit := discriminant.MaxOf[P](); d > limit {
		return fmt.Errorf("%w: %d > %d", ErrDiscriminantOverflow, d, limit)
	}
	if uint64(addr) > discriminant.AddressMaskOf[P]() {
		return fmt.Errorf("%w: %#x does not fit in %d bits", ErrAddressOverflow, addr, discriminant.Width[P]())
	}
	return nil
}

// New packs addr and d. Panics if d exceeds the policy maximum or addr
// does not fit in the policy's address bits.
func New[P discriminant.Policy](addr uintptr, d discriminant.Discriminant) Pointer[P] {
	if err := Check[P](addr, d); err != nil {
		panic(fmt.Errorf("tagptr.New: %w", err))
	}
	return NewUnchecked[P](addr, d)
}

// TryNew packs addr and d, returning an error instead of panicking.
func TryNew[P discriminant.Policy](addr uintptr, d discriminant.Discriminant) (Pointer[P], error) {
	if err := Check[P](addr, d); err != nil {
		return 0, err
	}
	return NewUnchecked[P](addr, d), nil
}

// NewUnchecked packs addr and d without bounds checks. An oversized
// discriminant loses its top bits and an oversized address loses the bits
// the discriminant lands on.
func NewUnchecked[P discriminant.Policy](addr uintptr, d discriminant.Discriminant) Pointer[P] {
	return Pointer[P](StoreUnchecked[P](uint64(addr), d))
}

// Dangling returns a non-nil pointer for a zero-size T. The address is T's
// alignment and must never be dereferenced.
func Dangling[P discriminant.Policy, T any](d discriminant.Discriminant) Pointer[P] {
	var zero T
	return New[P](unsafe.Alignof(zero), d)
}

// Store tags a raw address word with d. Panics like New.
func Store[P discriminant.Policy](word uint64, d discriminant.Discriminant) uint64 {
	if err := Check[P](uintptr(word), d); err != nil {
		panic(fmt.Errorf("tagptr.Store: %w", err))
	}
	return StoreUnchecked[P](word, d)
}

// StoreUnchecked tags a raw address word with d.
func StoreUnchecked[P discriminant.Policy](word uint64, d discriminant.Discriminant) uint64 {
	return word&discriminant.AddressMaskOf[P]() | uint64(d)<<discriminant.Width[P]()
}

// Fetch reads the discriminant of a tagged word.
func Fetch[P discriminant.Policy](word uint64) discriminant.Discriminant {
	return discriminant.Discriminant(word >> discriminant.Width[P]())
}

// Strip clears the discriminant of a tagged word, leaving the address.
func Strip[P discriminant.Policy](word uint64) uint64 {
	return word & discriminant.AddressMaskOf[P]()
}

// Discriminant returns the value stored in the high bits.
func (p Pointer[P]) Discriminant() discriminant.Discriminant {
	return Fetch[P](uint64(p))
}

// Addr returns the address with the discriminant stripped.
func (p Pointer[P]) Addr() uintptr {
	return uintptr(Strip[P](uint64(p)))
}

// Raw returns the full tagged word. It is not a valid address.
func (p Pointer[P]) Raw() uint64 {
	return uint64(p)
}

// IsNil reports whether the address part is zero.
func (p Pointer[P]) IsNil() bool {
	return p.Addr() == 0
}

// UnsafePointer returns the stripped address as an unsafe.Pointer.
func (p Pointer[P]) UnsafePointer() unsafe.Pointer {
	return unsafe.Pointer(p.Addr())
}

// As reinterprets p's address as a *T. The address must come from an
// allocation of a T that is still live, and the usual aliasing rules apply
// to the result.
func As[T any, P discriminant.Policy](p Pointer[P]) *T {
	return (*T)(p.UnsafePointer())
}

func (p Pointer[P]) String() string {
	return fmt.Sprintf("TaggedPointer{raw: %#x, ptr: %#x, discriminant: %d}", p.Raw(), p.Addr(), p.Discriminant())
}

// Format prints the debug form for %v and %s. Every other verb formats the
// stripped address, so %x shows where the payload lives and never the tag
// bits. fmt handles %p before consulting Format; use UnsafePointer for it.
func (p Pointer[P]) Format(f fmt.State, verb rune) {
	switch verb {
	case 'v', 's':
		io.WriteString(f, p.String())
	default:
		fmt.Fprintf(f, fmt.FormatString(f, verb), uint64(p.Addr()))
	}
}
