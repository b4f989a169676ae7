package convert

import (
	"github.com/John-Robertt/lircd2toml-go/internal/bits"
	"github.com/John-Robertt/lircd2toml-go/internal/model"
)

// spaceEncRemote is a space_enc remote with every field resolved once.
type spaceEncRemote struct {
	protocol model.Protocol
	nbits    int

	one  pair
	zero pair

	header    pair
	hasHeader bool
	repeat    pair
	hasRepeat bool

	trailer    int64
	hasTrailer bool

	headerOptional bool
	reverse        bool

	// prefix holds pre_data shifted into place with post_data OR'd in.
	prefix       uint64
	postDataBits int
}

func newSpaceEncRemote(r *model.RemoteDefinition) (spaceEncRemote, []Warning, error) {
	var s spaceEncRemote
	var warnings []Warning

	one, hasOne, err := readPair(r, "one")
	if err != nil {
		return s, nil, err
	}
	zero, hasZero, err := readPair(r, "zero")
	if err != nil {
		return s, nil, err
	}
	if !hasOne || !hasZero {
		return s, nil, missingParam(r, "zero", "one")
	}
	s.one, s.zero = one, zero

	nbits, err := readBits(r)
	if err != nil {
		return s, nil, err
	}

	for _, key := range []string{"footer", "slead"} {
		if r.Has(key) {
			warnings = append(warnings, warn(r, WarnUnsupportedParameter, "暂不支持参数 '"+key+"'，已忽略"))
		}
	}
	for _, flag := range []string{"no_foot_rep", "repeat_header"} {
		if r.Flags.Has(flag) {
			warnings = append(warnings, warn(r, WarnUnsupportedFlag, "暂不支持 flag '"+flag+"'，已忽略"))
		}
	}

	if v, ok := r.Param("ptrail"); ok {
		s.trailer, s.hasTrailer = int64(v), true
	}
	s.headerOptional = r.Flags.Has("no_head_rep")
	s.reverse = r.Flags.Has("reverse")

	if s.header, s.hasHeader, err = readOptionalPair(r, "header"); err != nil {
		return s, warnings, err
	}
	if s.repeat, s.hasRepeat, err = readOptionalPair(r, "repeat"); err != nil {
		return s, warnings, err
	}

	postDataBits, _, err := dataBits(r, "post_data_bits")
	if err != nil {
		return s, warnings, err
	}
	preDataBits, hasPre, err := dataBits(r, "pre_data_bits")
	if err != nil {
		return s, warnings, err
	}
	if hasPre {
		if v, ok := r.Param("pre_data"); ok {
			s.prefix = v << (nbits + postDataBits)
		}
		nbits += preDataBits
	}
	if postDataBits > 0 {
		if v, ok := r.Param("post_data"); ok {
			s.prefix |= v
		}
		nbits += postDataBits
	}
	if nbits > maxBits {
		return s, warnings, remoteError(r, CodeInvalidParameter, "bits 与 pre/post data 合计超过 64", "")
	}
	s.nbits = nbits
	s.postDataBits = postDataBits

	switch {
	case bits.WithinMargin(zero.pulse, one.pulse, 100):
		s.protocol = model.ProtocolPulseDistance
	case bits.WithinMargin(zero.space, one.space, 100):
		s.protocol = model.ProtocolPulseLength
	default:
		return s, warnings, remoteError(r, CodeUnexpectedTiming, "'zero' 与 'one' 的组合无法识别", "either the pulses or the spaces of zero and one must match within 100us")
	}

	if err := requireCodes(r, false); err != nil {
		return s, warnings, err
	}
	return s, warnings, nil
}

func (s spaceEncRemote) fold(code uint64) uint64 {
	return (code << s.postDataBits) | s.prefix
}

func (s spaceEncRemote) params() []model.Param {
	ps := make([]model.Param, 0, 12)
	if s.hasTrailer {
		ps = append(ps, num("trailer_pulse", s.trailer))
	}
	if s.headerOptional {
		ps = append(ps, num("header_optional", 1))
	}
	if s.reverse {
		ps = append(ps, num("reverse", 1))
	}
	if s.hasHeader {
		ps = append(ps, num("header_pulse", s.header.pulse), num("header_space", s.header.space))
	}
	if s.hasRepeat {
		ps = append(ps, num("repeat_pulse", s.repeat.pulse), num("repeat_space", s.repeat.space))
	}
	ps = append(ps, num("bits", int64(s.nbits)))
	if s.protocol == model.ProtocolPulseDistance {
		ps = append(ps,
			num("bit_pulse", s.zero.pulse),
			num("bit_1_space", s.one.space),
			num("bit_0_space", s.zero.space),
		)
	} else {
		ps = append(ps,
			num("bit_space", s.zero.space),
			num("bit_1_pulse", s.one.pulse),
			num("bit_0_pulse", s.zero.pulse),
		)
	}
	return ps
}

func (c *Converter) convertSpaceEnc(r *model.RemoteDefinition) (model.ProtocolRecord, []Warning, error) {
	s, warnings, err := newSpaceEncRemote(r)
	if err != nil {
		return model.ProtocolRecord{}, warnings, err
	}

	generic := model.ProtocolRecord{
		Name:      r.Name,
		Protocol:  s.protocol,
		Params:    s.params(),
		Scancodes: r.Codes.Map(s.fold),
	}
	if rec, ok := c.matchCanonical(canonicalInput{generic: &generic, codes: r.Codes, fold: s.fold}); ok {
		return rec, warnings, nil
	}
	return generic, warnings, nil
}
