//go:build tagbox_reserve49

package discriminant

type Build = Width49

const PointerWidth = 49
