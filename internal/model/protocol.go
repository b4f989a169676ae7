package model

import "strconv"

type Protocol string

const (
	ProtocolPulseDistance Protocol = "pulse_distance"
	ProtocolPulseLength   Protocol = "pulse_length"
	ProtocolRCMM          Protocol = "rc_mm"
	ProtocolManchester    Protocol = "manchester"
	ProtocolNEC           Protocol = "nec"
	ProtocolRC5           Protocol = "rc5"
)

// Param is one protocol parameter. Label-valued params (variant) have a
// non-empty Label and ignore Value.
type Param struct {
	Key   string
	Value int64
	Label string
}

func (p Param) IsLabel() bool { return p.Label != "" }

func (p Param) String() string {
	if p.IsLabel() {
		return p.Label
	}
	return strconv.FormatInt(p.Value, 10)
}

// ProtocolRecord is one converted remote, ready for rendering.
type ProtocolRecord struct {
	Name      string
	Protocol  Protocol
	Params    []Param
	Scancodes *ScancodeMap
}

// Param looks up a parameter by key.
func (r *ProtocolRecord) Param(key string) (Param, bool) {
	for _, p := range r.Params {
		if p.Key == key {
			return p, true
		}
	}
	return Param{}, false
}
