package model

import (
	"sort"
	"strings"
)

// Flags is the set of lower-cased lircd flag tokens of one remote.
type Flags map[string]struct{}

func NewFlags(tokens ...string) Flags {
	f := make(Flags, len(tokens))
	for _, t := range tokens {
		f.Add(t)
	}
	return f
}

func (f Flags) Add(token string) {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return
	}
	f[token] = struct{}{}
}

func (f Flags) Has(token string) bool {
	_, ok := f[token]
	return ok
}

// String joins the flags with '|' in sorted order, for diagnostics.
func (f Flags) String() string {
	out := make([]string, 0, len(f))
	for k := range f {
		out = append(out, k)
	}
	sort.Strings(out)
	return strings.Join(out, "|")
}

// RawCode is one named entry of a raw_codes section.
type RawCode struct {
	Name      string
	Intervals []uint64
}

// RemoteDefinition is one parsed "begin remote ... end remote" block.
type RemoteDefinition struct {
	// Name is never empty after a successful parse: unnamed remotes get
	// remote_<n>.
	Name       string
	Driver     string
	SerialMode string

	Flags    Flags
	HasFlags bool

	// Params holds every numeric field (bits, header, one, zero, pre_data, ...).
	Params map[string][]uint64

	Codes    *ScancodeMap
	RawCodes []RawCode

	// Line of the "begin remote" clause.
	Line int
}

// Param returns the first value of a numeric field.
func (r *RemoteDefinition) Param(key string) (uint64, bool) {
	v, ok := r.Params[key]
	if !ok || len(v) == 0 {
		return 0, false
	}
	return v[0], true
}

// Pair returns the first two values of a numeric field (pulse, space).
func (r *RemoteDefinition) Pair(key string) (uint64, uint64, bool) {
	v, ok := r.Params[key]
	if !ok || len(v) < 2 {
		return 0, 0, false
	}
	return v[0], v[1], true
}

func (r *RemoteDefinition) Has(key string) bool {
	_, ok := r.Params[key]
	return ok
}
