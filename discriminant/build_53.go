//go:build tagbox_reserve53

package discriminant

type Build = Width53

const PointerWidth = 53
