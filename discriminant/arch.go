package discriminant

import "strconv"

// Fails to compile on 32-bit targets: their addresses use every bit.
const _ uint = strconv.IntSize - WordBits
