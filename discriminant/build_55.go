//go:build tagbox_reserve55

package discriminant

type Build = Width55

const PointerWidth = 55
