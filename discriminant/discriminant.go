// Package discriminant fixes how a 64-bit word is split between a heap
// address and the small integer stored in the bits above it.
//
// A split is a Policy: a zero-size type naming how many low bits are kept
// for the address. The rest of the word holds the discriminant. Policies are
// type parameters, so two pointer types with different splits can live in the
// same program. One of them, Build, is chosen at build time with a
// tagbox_reserveNN tag (60 when no tag is given) and is the split used by
// tagbox.Box. Passing two tags fails the build with a redeclared Build.
//
//	go build -tags tagbox_reserve56 ./...
package discriminant

import "fmt"

// Discriminant identifies which variant a tagged word holds.
// No supported split leaves more than 16 bits for it.
type Discriminant = uint16

// WordBits is the width of a tagged word. Only 64-bit words are supported.
const WordBits = 64

// Derived constants for the Build split.
const (
	// Bits is the number of discriminant bits left by Build.
	Bits = WordBits - PointerWidth

	// Max is the largest discriminant Build can store.
	Max Discriminant = 1<<Bits - 1

	// AddressMask clears the discriminant bits of a word.
	AddressMask uint64 = 1<<PointerWidth - 1
)

// Policy is a split of the 64-bit word. PointerWidth must be constant for a
// given type and lie in [MinPointerWidth, MaxPointerWidth].
type Policy interface {
	PointerWidth() uint
}

// Bounds of the supported splits.
const (
	MinPointerWidth = 48
	MaxPointerWidth = 63
)

// The supported splits, named by the address bits they keep.
type (
	Width48 struct{}
	Width49 struct{}
	Width50 struct{}
	Width51 struct{}
	Width52 struct{}
	Width53 struct{}
	Width54 struct{}
	Width55 struct{}
	Width56 struct{}
	Width57 struct{}
	Width58 struct{}
	Width59 struct{}
	Width60 struct{}
	Width61 struct{}
	Width62 struct{}
	Width63 struct{}
)

func (Width48) PointerWidth() uint { return 48 }
func (Width49) PointerWidth() uint { return 49 }
func (Width50) PointerWidth() uint { return 50 }
func (Width51) PointerWidth() uint { return 51 }
func (Width52) PointerWidth() uint { return 52 }
func (Width53) PointerWidth() uint { return 53 }
func (Width54) PointerWidth() uint { return 54 }
func (Width55) PointerWidth() uint { return 55 }
func (Width56) PointerWidth() uint { return 56 }
func (Width57) PointerWidth() uint { return 57 }
func (Width58) PointerWidth() uint { return 58 }
func (Width59) PointerWidth() uint { return 59 }
func (Width60) PointerWidth() uint { return 60 }
func (Width61) PointerWidth() uint { return 61 }
func (Width62) PointerWidth() uint { return 62 }
func (Width63) PointerWidth() uint { return 63 }

// Width returns the address bits kept by P.
func Width[P Policy]() uint {
	var p P
	return p.PointerWidth()
}

// BitsOf returns the discriminant bits left by P.
func BitsOf[P Policy]() uint {
	return WordBits - Width[P]()
}

// MaxOf returns the largest discriminant P can store.
func MaxOf[P Policy]() Discriminant {
	return Discriminant(uint64(1)<<BitsOf[P]() - 1)
}

// AddressMaskOf returns the mask that strips P's discriminant bits.
func AddressMaskOf[P Policy]() uint64 {
	return uint64(1)<<Width[P]() - 1
}

// Layout is the constant table of one split.
type Layout struct {
	PointerWidth uint
	Bits         uint
	Max          Discriminant
	AddressMask  uint64
}

// String renders the layout as "48/16 (max 65535)".
func (l Layout) String() string {
	return fmt.Sprintf("%d/%d (max %d)", l.PointerWidth, l.Bits, l.Max)
}

// LayoutOf returns P's constant table.
func LayoutOf[P Policy]() Layout {
	return Layout{
		PointerWidth: Width[P](),
		Bits:         BitsOf[P](),
		Max:          MaxOf[P](),
		AddressMask:  AddressMaskOf[P](),
	}
}

// Active returns the layout of the Build split.
func Active() Layout {
	return LayoutOf[Build]()
}

// Layouts returns every supported split, narrowest address first.
func Layouts() []Layout {
	return []Layout{
		LayoutOf[Width48](), LayoutOf[Width49](), LayoutOf[Width50](), LayoutOf[Width51](),
		LayoutOf[Width52](), LayoutOf[Width53](), LayoutOf[Width54](), LayoutOf[Width55](),
		LayoutOf[Width56](), LayoutOf[Width57](), LayoutOf[Width58](), LayoutOf[Width59](),
		LayoutOf[Width60](), LayoutOf[Width61](), LayoutOf[Width62](), LayoutOf[Width63](),
	}
}

// ByWidth looks up the split that keeps w address bits.
func ByWidth(w uint) (Layout, bool) {
	if w < MinPointerWidth || w > MaxPointerWidth {
		return Layout{}, false
	}
	return Layouts()[w-MinPointerWidth], true
}
