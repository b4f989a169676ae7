package convert

import (
	"fmt"

	"github.com/John-Robertt/lircd2toml-go/internal/bits"
	"github.com/John-Robertt/lircd2toml-go/internal/model"
)

// pleadMargin is the tolerance when matching plead against the bit pulses.
const pleadMargin = 200

// manchesterRemote is an rc5/shift_enc remote with every field resolved once.
type manchesterRemote struct {
	nbits int

	one  pair
	zero pair

	header    pair
	hasHeader bool

	toggle    int
	hasToggle bool

	scancodeMask uint64
	hasMask      bool

	prefix uint64
}

func newManchesterRemote(r *model.RemoteDefinition) (manchesterRemote, error) {
	var m manchesterRemote

	one, hasOne, err := readPair(r, "one")
	if err != nil {
		return m, err
	}
	zero, hasZero, err := readPair(r, "zero")
	if err != nil {
		return m, err
	}
	if !hasOne || !hasZero {
		return m, missingParam(r, "zero", "one")
	}
	m.one, m.zero = one, zero

	if m.header, m.hasHeader, err = readOptionalPair(r, "header"); err != nil {
		return m, err
	}
	if err := requireCodes(r, true); err != nil {
		return m, err
	}

	nbits, err := readBits(r)
	if err != nil {
		return m, err
	}
	toggle, hasToggle := toggleBit(r, nbits)

	preDataBits, hasPre, err := dataBits(r, "pre_data_bits")
	if err != nil {
		return m, err
	}
	if hasPre {
		if v, ok := r.Param("pre_data"); ok {
			m.prefix = v << nbits
		}
		nbits += preDataBits
	}

	if plead, ok := r.Param("plead"); ok {
		switch {
		case bits.WithinMargin(int64(plead), one.pulse, pleadMargin):
			m.scancodeMask, m.hasMask = uint64(1)<<nbits, true
		case bits.WithinMargin(int64(plead), one.pulse+zero.pulse, pleadMargin):
		default:
			return m, remoteError(r, CodeInvalidPlead, fmt.Sprintf("plead 取值异常：%d", plead),
				fmt.Sprintf("expected about %d (one pulse) or %d (one + zero pulse)", one.pulse, one.pulse+zero.pulse))
		}
		nbits++
	}
	if nbits > maxBits {
		return m, remoteError(r, CodeInvalidParameter, "bits 与 pre_data_bits 合计超过 64", "")
	}
	m.nbits = nbits

	if hasToggle && toggle >= 0 && toggle < nbits {
		m.toggle, m.hasToggle = toggle, true
	}
	return m, nil
}

func (m manchesterRemote) fold(code uint64) uint64 {
	return code | m.prefix
}

func (m manchesterRemote) params() []model.Param {
	ps := make([]model.Param, 0, 10)
	if m.hasHeader {
		ps = append(ps, num("header_pulse", m.header.pulse), num("header_space", m.header.space))
	}
	if m.hasMask {
		ps = append(ps, num("scancode_mask", int64(m.scancodeMask)))
	}
	if m.hasToggle {
		ps = append(ps, num("toggle_bit", int64(m.toggle)))
	}
	return append(ps,
		num("bits", int64(m.nbits)),
		num("zero_pulse", m.zero.pulse),
		num("zero_space", m.zero.space),
		num("one_pulse", m.one.pulse),
		num("one_space", m.one.space),
	)
}

func (c *Converter) convertManchester(r *model.RemoteDefinition) (model.ProtocolRecord, []Warning, error) {
	m, err := newManchesterRemote(r)
	if err != nil {
		return model.ProtocolRecord{}, nil, err
	}

	generic := model.ProtocolRecord{
		Name:      r.Name,
		Protocol:  model.ProtocolManchester,
		Params:    m.params(),
		Scancodes: r.Codes.Map(m.fold),
	}
	rec, ok := c.matchCanonical(canonicalInput{generic: &generic, codes: r.Codes, fold: m.fold})
	if !ok {
		return generic, nil, nil
	}
	if m.hasMask && rec.Protocol == model.ProtocolRC5 {
		// The extra plead bit has no place in the canonical RC-5 layout.
		return generic, []Warning{warn(r, WarnUnsupportedCombination,
			"remote 形似 RC-5，但 plead 产生了 scancode_mask，保留 manchester 参数")}, nil
	}
	return rec, nil, nil
}
