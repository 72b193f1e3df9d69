//go:build tagbox_reserve60

package discriminant

type Build = Width60

const PointerWidth = 60
