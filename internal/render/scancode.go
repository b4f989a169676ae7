package render

import (
	"fmt"
	"math/bits"

	"github.com/John-Robertt/lircd2toml-go/internal/model"
)

// hexDigits is the number of hex digits needed for the widest scancode of a
// table, at least 1.
func hexDigits(entries []model.Scancode) int {
	length := 1
	for _, e := range entries {
		if n := bits.Len64(e.Code); n > length {
			length = n
		}
	}
	return (length + 3) / 4
}

func formatScancode(code uint64, digits int) string {
	return "0x" + fmt.Sprintf("%0*x", digits, code)
}
