//go:build tagbox_reserve51

package discriminant

type Build = Width51

const PointerWidth = 51
