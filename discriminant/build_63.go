//go:build tagbox_reserve63

package discriminant

type Build = Width63

const PointerWidth = 63
