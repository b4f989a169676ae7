package convert

import "github.com/John-Robertt/lircd2toml-go/internal/model"

type rcmmRemote struct {
	nbits     int
	toggle    int
	hasToggle bool
}

func newRCMMRemote(r *model.RemoteDefinition) (rcmmRemote, error) {
	var m rcmmRemote
	nbits, err := readBits(r)
	if err != nil {
		return m, err
	}
	m.nbits = nbits
	if t, ok := toggleBit(r, nbits); ok && t > 0 && t < nbits {
		m.toggle, m.hasToggle = t, true
	}
	if err := requireCodes(r, true); err != nil {
		return m, err
	}
	return m, nil
}

func (c *Converter) convertRCMM(r *model.RemoteDefinition) (model.ProtocolRecord, []Warning, error) {
	m, err := newRCMMRemote(r)
	if err != nil {
		return model.ProtocolRecord{}, nil, err
	}
	params := make([]model.Param, 0, 2)
	if m.hasToggle {
		params = append(params, num("toggle_bit", int64(m.toggle)))
	}
	params = append(params, num("bits", int64(m.nbits)))
	return model.ProtocolRecord{
		Name:      r.Name,
		Protocol:  model.ProtocolRCMM,
		Params:    params,
		Scancodes: r.Codes.Map(func(s uint64) uint64 { return s }),
	}, nil, nil
}
