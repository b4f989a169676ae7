package convert

import (
	"fmt"

	"github.com/John-Robertt/lircd2toml-go/internal/bits"
	"github.com/John-Robertt/lircd2toml-go/internal/model"
)

// maxBits is the widest scancode a record can carry.
const maxBits = 64

// pair is one pulse/space timing in microseconds.
type pair struct {
	pulse int64
	space int64
}

// readPair reads a pulse/space field. A field present with fewer than two
// values is an error; an absent field is reported through ok.
func readPair(r *model.RemoteDefinition, key string) (p pair, ok bool, err error) {
	v, present := r.Params[key]
	if !present {
		return pair{}, false, nil
	}
	if len(v) < 2 {
		return pair{}, false, remoteError(r, CodeMissingParameter, fmt.Sprintf("参数 '%s' 需要 pulse 和 space 两个值", key), fmt.Sprintf("expected: %s <pulse> <space>", key))
	}
	return pair{pulse: int64(v[0]), space: int64(v[1])}, true, nil
}

// readOptionalPair is readPair for header-like fields, which count as absent
// when their pulse is zero.
func readOptionalPair(r *model.RemoteDefinition, key string) (pair, bool, error) {
	if v, ok := r.Param(key); !ok || v == 0 {
		return pair{}, false, nil
	}
	return readPair(r, key)
}

func readBits(r *model.RemoteDefinition) (int, error) {
	v, ok := r.Param("bits")
	if !ok {
		return 0, missingParam(r, "bits")
	}
	if v > maxBits {
		return 0, remoteError(r, CodeInvalidParameter, fmt.Sprintf("bits 过大：%d", v), "at most 64 bits are supported")
	}
	return int(v), nil
}

// dataBits reads pre_data_bits or post_data_bits.
func dataBits(r *model.RemoteDefinition, key string) (int, bool, error) {
	v, ok := r.Param(key)
	if !ok {
		return 0, false, nil
	}
	if v > maxBits {
		return 0, false, remoteError(r, CodeInvalidParameter, fmt.Sprintf("%s 过大：%d", key, v), "at most 64 bits are supported")
	}
	return int(v), true, nil
}

// toggleBit derives the toggle bit position from toggle_bit_mask (lowest set
// bit) or, failing that, from the legacy toggle_bit (counted from the MSB).
func toggleBit(r *model.RemoteDefinition, nbits int) (int, bool) {
	if m, ok := r.Param("toggle_bit_mask"); ok && m != 0 {
		return bits.LowestSetBit(m), true
	}
	if t, ok := r.Param("toggle_bit"); ok {
		return nbits - int(t), true
	}
	return 0, false
}

func num(key string, v int64) model.Param {
	return model.Param{Key: key, Value: v}
}

func requireCodes(r *model.RemoteDefinition, nonEmpty bool) error {
	if r.Codes == nil || (nonEmpty && r.Codes.Len() == 0) {
		hint := ""
		if len(r.RawCodes) > 0 {
			hint = "raw_codes sections cannot be converted, record the remote with irrecord first"
		}
		return remoteError(r, CodeMissingCodes, "缺少 codes 段", hint)
	}
	return nil
}
