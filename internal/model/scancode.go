package model

// Scancode is one entry of a ScancodeMap.
type Scancode struct {
	Code uint64
	Key  string
}

// ScancodeMap is an insertion-ordered scancode -> key name table.
//
// Setting an existing scancode replaces its key name but keeps the position of
// the first declaration, so output order always follows the source file.
type ScancodeMap struct {
	entries []Scancode
	index   map[uint64]int
}

func NewScancodeMap() *ScancodeMap {
	return &ScancodeMap{index: make(map[uint64]int)}
}

func (m *ScancodeMap) Set(code uint64, key string) {
	if m.index == nil {
		m.index = make(map[uint64]int)
	}
	if i, ok := m.index[code]; ok {
		m.entries[i].Key = key
		return
	}
	m.index[code] = len(m.entries)
	m.entries = append(m.entries, Scancode{Code: code, Key: key})
}

func (m *ScancodeMap) Get(code uint64) (string, bool) {
	if m == nil {
		return "", false
	}
	i, ok := m.index[code]
	if !ok {
		return "", false
	}
	return m.entries[i].Key, true
}

func (m *ScancodeMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Entries returns a copy of the table in declaration order.
func (m *ScancodeMap) Entries() []Scancode {
	if m == nil {
		return nil
	}
	out := make([]Scancode, len(m.entries))
	copy(out, m.entries)
	return out
}

// Map returns a new table with every scancode passed through fn. Collisions
// after mapping follow Set semantics.
func (m *ScancodeMap) Map(fn func(uint64) uint64) *ScancodeMap {
	out := NewScancodeMap()
	if m == nil {
		return out
	}
	for _, e := range m.entries {
		out.Set(fn(e.Code), e.Key)
	}
	return out
}
