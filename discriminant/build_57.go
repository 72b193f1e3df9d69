//go:build tagbox_reserve57

package discriminant

type Build = Width57

const PointerWidth = 57
