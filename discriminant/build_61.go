//go:build tagbox_reserve61

package discriminant

type Build = Width61

const PointerWidth = 61
