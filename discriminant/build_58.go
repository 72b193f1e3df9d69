//go:build tagbox_reserve58

package discriminant

type Build = Width58

const PointerWidth = 58
