//go:build tagbox_reserve48

package discriminant

type Build = Width48

const PointerWidth = 48
