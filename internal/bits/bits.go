// Package bits holds the scancode helpers shared by the protocol converters.
package bits

import mbits "math/bits"

// LowestSetBit returns the 0-based index of the least significant set bit of
// x, or -1 when x is zero.
func LowestSetBit(x uint64) int {
	if x == 0 {
		return -1
	}
	return mbits.TrailingZeros64(x)
}

// Reverse8 reverses the low 8 bits of v. NEC sends every byte LSB first while
// rc-core scancodes are MSB first.
func Reverse8(v uint64) uint8 {
	return mbits.Reverse8(uint8(v))
}

// WithinMargin reports whether expected-margin <= value <= expected+margin.
func WithinMargin(value, expected, margin int64) bool {
	return value >= expected-margin && value <= expected+margin
}
