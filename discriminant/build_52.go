//go:build tagbox_reserve52

package discriminant

type Build = Width52

const PointerWidth = 52
