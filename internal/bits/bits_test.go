package bits

import (
	"fmt"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestLowestSetBit(t *testing.T) {
	c := qt.New(t)

	tests := []struct {
		in   uint64
		want int
	}{
		{0, -1},
		{1, 0},
		{0b1000, 3},
		{0b1010_0000, 5},
		{0x800, 11},
		{1 << 63, 63},
		{^uint64(0), 0},
	}
	for _, tt := range tests {
		c.Run(fmt.Sprintf("%#x", tt.in), func(c *qt.C) {
			c.Assert(LowestSetBit(tt.in), qt.Equals, tt.want)
		})
	}
}

func TestReverse8(t *testing.T) {
	c := qt.New(t)

	c.Assert(Reverse8(0b0000_0001), qt.Equals, uint8(0b1000_0000))
	c.Assert(Reverse8(0b1000_0000), qt.Equals, uint8(0b0000_0001))
	c.Assert(Reverse8(0x00), qt.Equals, uint8(0x00))
	c.Assert(Reverse8(0xff), qt.Equals, uint8(0xff))
	c.Assert(Reverse8(0b1100_1010), qt.Equals, uint8(0b0101_0011))
	// Only the low byte is considered.
	c.Assert(Reverse8(0x1_01), qt.Equals, uint8(0x80))

	for v := uint64(0); v < 256; v++ {
		c.Assert(uint64(Reverse8(uint64(Reverse8(v)))), qt.Equals, v)
	}
}

func TestWithinMargin(t *testing.T) {
	c := qt.New(t)

	tests := []struct {
		value, expected, margin int64
		want                    bool
	}{
		{900, 1000, 100, true},
		{899, 1000, 100, false},
		{1100, 1000, 100, true},
		{1101, 1000, 100, false},
		{1000, 1000, 0, true},
		{888, 888, 200, true},
		{0, 560, 300, false},
	}
	for _, tt := range tests {
		name := fmt.Sprintf("%d~%d+-%d", tt.value, tt.expected, tt.margin)
		c.Run(name, func(c *qt.C) {
			c.Assert(WithinMargin(tt.value, tt.expected, tt.margin), qt.Equals, tt.want)
		})
	}
}
