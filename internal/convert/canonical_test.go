package convert

import (
	"testing"

	"github.com/John-Robertt/lircd2toml-go/internal/model"
	qt "github.com/frankban/quicktest"
)

func TestDecodeNECScancode(t *testing.T) {
	c := qt.New(t)
	tests := []struct {
		raw      uint64
		variant  string
		scancode uint64
	}{
		{0x5EA1F807, "nec", 0x7A1F},
		{0x00FF00FF, "nec", 0x0000},
		{0x123408F7, "necx", 0x482C10},
		{0x12345678, "nec32", 0x482C6A1E},
	}
	for _, tt := range tests {
		v, n := decodeNECScancode(tt.raw)
		c.Check(v, qt.Equals, tt.variant, qt.Commentf("raw %#x", tt.raw))
		c.Check(n, qt.Equals, tt.scancode, qt.Commentf("raw %#x", tt.raw))
	}
}

func TestEncodeRC5Scancode(t *testing.T) {
	c := qt.New(t)
	c.Assert(encodeRC5Scancode(0x2141), qt.Equals, uint64(0x0501))
	c.Assert(encodeRC5Scancode(0x200C), qt.Equals, uint64(0x000C))
	c.Assert(encodeRC5Scancode(0x3FFF), qt.Equals, uint64(0x1F3F))
}

func necGeneric(mod func(ps map[string]int64)) *model.ProtocolRecord {
	ps := map[string]int64{
		"trailer_pulse": 560,
		"header_pulse":  9000,
		"header_space":  4500,
		"repeat_pulse":  9000,
		"repeat_space":  2250,
		"bits":          32,
		"bit_pulse":     560,
		"bit_1_space":   1680,
		"bit_0_space":   560,
	}
	if mod != nil {
		mod(ps)
	}
	rec := &model.ProtocolRecord{Name: "r", Protocol: model.ProtocolPulseDistance}
	for _, k := range []string{"trailer_pulse", "reverse", "header_optional", "header_pulse", "header_space", "repeat_pulse", "repeat_space", "bits", "bit_pulse", "bit_1_space", "bit_0_space"} {
		if v, ok := ps[k]; ok {
			rec.Params = append(rec.Params, model.Param{Key: k, Value: v})
		}
	}
	return rec
}

func TestNECForm_Match(t *testing.T) {
	c := qt.New(t)
	codes := model.NewScancodeMap()
	codes.Set(0x00FF00FF, "KEY_0")
	identity := func(s uint64) uint64 { return s }

	tests := []struct {
		name string
		mod  func(ps map[string]int64)
		want bool
	}{
		{"exact", nil, true},
		{"upper margins", func(ps map[string]int64) { ps["header_pulse"] = 10000; ps["bit_1_space"] = 1980 }, true},
		{"no repeat", func(ps map[string]int64) { delete(ps, "repeat_pulse"); delete(ps, "repeat_space") }, true},
		{"header too long", func(ps map[string]int64) { ps["header_pulse"] = 10001 }, false},
		{"repeat space off", func(ps map[string]int64) { ps["repeat_space"] = 3251 }, false},
		{"31 bits", func(ps map[string]int64) { ps["bits"] = 31 }, false},
		{"no trailer", func(ps map[string]int64) { delete(ps, "trailer_pulse") }, false},
		{"no header", func(ps map[string]int64) { delete(ps, "header_pulse"); delete(ps, "header_space") }, false},
		{"reverse", func(ps map[string]int64) { ps["reverse"] = 1 }, false},
		{"header optional", func(ps map[string]int64) { ps["header_optional"] = 1 }, false},
	}
	for _, tt := range tests {
		c.Run(tt.name, func(c *qt.C) {
			rec, ok := necForm{}.match(canonicalInput{generic: necGeneric(tt.mod), codes: codes, fold: identity})
			c.Assert(ok, qt.Equals, tt.want)
			if ok {
				c.Assert(rec.Protocol, qt.Equals, model.ProtocolNEC)
				key, found := rec.Scancodes.Get(0)
				c.Assert(found, qt.IsTrue)
				c.Assert(key, qt.Equals, "KEY_0")
			}
		})
	}

	pl := necGeneric(nil)
	pl.Protocol = model.ProtocolPulseLength
	_, ok := necForm{}.match(canonicalInput{generic: pl, codes: codes, fold: identity})
	c.Assert(ok, qt.IsFalse)
}

func TestFormsFor(t *testing.T) {
	c := qt.New(t)
	c.Assert(formsFor(nil), qt.HasLen, 2)
	c.Assert(formsFor([]model.Protocol{}), qt.HasLen, 0)
	only := formsFor([]model.Protocol{model.ProtocolRC5})
	c.Assert(only, qt.HasLen, 1)
	c.Assert(only[0].protocol(), qt.Equals, model.ProtocolRC5)
}
