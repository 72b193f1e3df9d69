//go:build !tagbox_reserve48 && !tagbox_reserve49 && !tagbox_reserve50 && !tagbox_reserve51 && !tagbox_reserve52 && !tagbox_reserve53 && !tagbox_reserve54 && !tagbox_reserve55 && !tagbox_reserve56 && !tagbox_reserve57 && !tagbox_reserve58 && !tagbox_reserve59 && !tagbox_reserve60 && !tagbox_reserve61 && !tagbox_reserve62 && !tagbox_reserve63

package discriminant

// Build is the split used when no tagbox_reserveNN tag is given: 60 address
// bits and 4 discriminant bits, enough for 16 variants.
type Build = Width60

// PointerWidth is the number of address bits kept by Build.
const PointerWidth = 60
