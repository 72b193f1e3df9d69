//go:build tagbox_reserve56

package discriminant

type Build = Width56

const PointerWidth = 56
