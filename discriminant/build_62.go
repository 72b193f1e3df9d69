//go:build tagbox_reserve62

package discriminant

type Build = Width62

const PointerWidth = 62
