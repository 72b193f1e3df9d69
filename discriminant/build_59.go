//go:build tagbox_reserve59

package discriminant

type Build = Width59

const PointerWidth = 59
