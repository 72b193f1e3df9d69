//go:build tagbox_reserve54

package discriminant

type Build = Width54

const PointerWidth = 54
