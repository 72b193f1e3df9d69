//go:build tagbox_reserve50

package discriminant

type Build = Width50

const PointerWidth = 50
