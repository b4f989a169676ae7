// Package convert turns parsed lircd remotes into protocol records.
//
// Every remote is converted on its own: a remote that cannot be converted is
// reported and skipped, the others still make it into the output.
package convert

import (
	"runtime"
	"strings"

	"github.com/John-Robertt/lircd2toml-go/internal/model"
	"github.com/rs/zerolog"
)

type Options struct {
	// KeyPrefix is passed to the lircd parser by Run.
	KeyPrefix string

	// Canonical lists the canonical protocols to detect. nil enables all of
	// them; an empty slice disables detection.
	Canonical []model.Protocol

	// Rename maps source remote names to output names (Run only).
	Rename map[string]string
	// Skip lists source remote names to leave out (Run only).
	Skip []string

	// Workers bounds ConvertAll concurrency. <= 0 means runtime.NumCPU().
	Workers int
}

type Converter struct {
	source  string
	log     zerolog.Logger
	forms   []canonicalForm
	workers int
}

// NewConverter returns a converter for the remotes of one input file. source
// only labels diagnostics.
func NewConverter(source string, logger zerolog.Logger, opt Options) *Converter {
	workers := opt.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Converter{
		source:  source,
		log:     logger,
		forms:   formsFor(opt.Canonical),
		workers: workers,
	}
}

// Convert converts one remote. It has no side effects and is safe for
// concurrent use. A non-nil error is always a *ConvertError.
func (c *Converter) Convert(r *model.RemoteDefinition) (model.ProtocolRecord, []Warning, error) {
	if r.Driver != "" {
		return model.ProtocolRecord{}, nil, remoteError(r, CodeDriverSpecific, "remote 仅适用于特定驱动："+r.Driver, "driver specific remotes have no generic timing description")
	}
	if !r.HasFlags {
		return model.ProtocolRecord{}, nil, remoteError(r, CodeMissingFlags, "缺少 flags 参数", "expected: flags SPACE_ENC|CONST_LENGTH (or RC5, RCMM, SHIFT_ENC)")
	}

	switch {
	case r.Flags.Has("rc5") || r.Flags.Has("shift_enc"):
		return c.convertManchester(r)
	case r.Flags.Has("rcmm"):
		return c.convertRCMM(r)
	case r.Flags.Has("space_enc"):
		return c.convertSpaceEnc(r)
	default:
		return model.ProtocolRecord{}, nil, remoteError(r, CodeUnsupportedFlags,
			"无法转换 flags 为 "+r.Flags.String()+" 的 remote", "supported: space_enc, rc5, shift_enc, rcmm")
	}
}

func canonicalName(p model.Protocol) string {
	if p == model.ProtocolRC5 {
		return "regular RC-5"
	}
	return strings.ToUpper(string(p))
}
