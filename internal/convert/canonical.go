package convert

import (
	"github.com/John-Robertt/lircd2toml-go/internal/bits"
	"github.com/John-Robertt/lircd2toml-go/internal/model"
)

// canonicalInput is what a canonical form sees: the generic record built from
// the raw timings, the source codes, and the fold that turns a source code
// into a full-width scancode.
type canonicalInput struct {
	generic *model.ProtocolRecord
	codes   *model.ScancodeMap
	fold    func(uint64) uint64
}

// canonicalForm recognizes a well-known protocol in a generic record and
// returns the replacement record.
type canonicalForm interface {
	protocol() model.Protocol
	match(in canonicalInput) (model.ProtocolRecord, bool)
}

var knownForms = []canonicalForm{necForm{}, rc5Form{}}

// formsFor returns the forms enabled by protocols. nil enables every form.
func formsFor(protocols []model.Protocol) []canonicalForm {
	if protocols == nil {
		return knownForms
	}
	out := make([]canonicalForm, 0, len(knownForms))
	for _, f := range knownForms {
		for _, p := range protocols {
			if f.protocol() == p {
				out = append(out, f)
				break
			}
		}
	}
	return out
}

func (c *Converter) matchCanonical(in canonicalInput) (model.ProtocolRecord, bool) {
	for _, f := range c.forms {
		if rec, ok := f.match(in); ok {
			return rec, true
		}
	}
	return model.ProtocolRecord{}, false
}

func paramValues(r *model.ProtocolRecord) map[string]int64 {
	out := make(map[string]int64, len(r.Params))
	for _, p := range r.Params {
		if !p.IsLabel() {
			out[p.Key] = p.Value
		}
	}
	return out
}

type necForm struct{}

func (necForm) protocol() model.Protocol { return model.ProtocolNEC }

func (necForm) match(in canonicalInput) (model.ProtocolRecord, bool) {
	g := in.generic
	if g.Protocol != model.ProtocolPulseDistance {
		return model.ProtocolRecord{}, false
	}
	p := paramValues(g)
	if _, ok := p["reverse"]; ok {
		return model.ProtocolRecord{}, false
	}
	if _, ok := p["header_optional"]; ok {
		return model.ProtocolRecord{}, false
	}
	hp, okHP := p["header_pulse"]
	hs, okHS := p["header_space"]
	tp, okTP := p["trailer_pulse"]
	if !okHP || !okHS || !okTP || p["bits"] != 32 {
		return model.ProtocolRecord{}, false
	}
	if !bits.WithinMargin(hp, 9000, 1000) ||
		!bits.WithinMargin(hs, 4500, 1000) ||
		!bits.WithinMargin(p["bit_pulse"], 560, 300) ||
		!bits.WithinMargin(p["bit_0_space"], 560, 300) ||
		!bits.WithinMargin(p["bit_1_space"], 1680, 300) ||
		!bits.WithinMargin(tp, 560, 300) {
		return model.ProtocolRecord{}, false
	}
	if rp, ok := p["repeat_pulse"]; ok {
		if !bits.WithinMargin(rp, 9000, 1000) || !bits.WithinMargin(p["repeat_space"], 2250, 1000) {
			return model.ProtocolRecord{}, false
		}
	}

	rec := model.ProtocolRecord{
		Name:      g.Name,
		Protocol:  model.ProtocolNEC,
		Scancodes: model.NewScancodeMap(),
	}
	variant := ""
	mixed := false
	for _, e := range in.codes.Entries() {
		v, n := decodeNECScancode(in.fold(e.Code))
		switch {
		case variant == "":
			variant = v
		case v != variant:
			mixed = true
		}
		rec.Scancodes.Set(n, e.Key)
	}
	if variant != "" && !mixed {
		rec.Params = []model.Param{{Key: "variant", Label: variant}}
	}
	return rec, true
}

// decodeNECScancode splits a 32-bit NEC frame, sent LSB first per byte, into
// its rc-core variant and scancode.
func decodeNECScancode(s uint64) (string, uint64) {
	cmdc := uint64(bits.Reverse8(s))
	cmd := uint64(bits.Reverse8(s >> 8))
	addc := uint64(bits.Reverse8(s >> 16))
	add := uint64(bits.Reverse8(s >> 24))

	if cmd != ^cmdc&0xff {
		return "nec32", add<<24 | addc<<16 | cmd<<8 | cmdc
	}
	if add == ^addc&0xff {
		return "nec", add<<8 | cmd
	}
	return "necx", add<<16 | addc<<8 | cmd
}

type rc5Form struct{}

func (rc5Form) protocol() model.Protocol { return model.ProtocolRC5 }

func (rc5Form) match(in canonicalInput) (model.ProtocolRecord, bool) {
	g := in.generic
	if g.Protocol != model.ProtocolManchester {
		return model.ProtocolRecord{}, false
	}
	p := paramValues(g)
	if _, ok := p["header_pulse"]; ok {
		return model.ProtocolRecord{}, false
	}
	if _, ok := p["header_space"]; ok {
		return model.ProtocolRecord{}, false
	}
	if t, ok := p["toggle_bit"]; !ok || t != 11 || p["bits"] != 14 {
		return model.ProtocolRecord{}, false
	}
	for _, key := range []string{"one_pulse", "one_space", "zero_pulse", "zero_space"} {
		if !bits.WithinMargin(p[key], 888, 200) {
			return model.ProtocolRecord{}, false
		}
	}

	return model.ProtocolRecord{
		Name:     g.Name,
		Protocol: model.ProtocolRC5,
		Scancodes: in.codes.Map(func(s uint64) uint64 {
			return encodeRC5Scancode(in.fold(s))
		}),
	}, true
}

// encodeRC5Scancode keeps the 6 command bits and moves the 5 address bits up
// to the second byte, the layout of the rc-core RC-5 decoder.
func encodeRC5Scancode(n uint64) uint64 {
	return (n & 0x3f) | ((n << 2) & 0x1f00)
}
