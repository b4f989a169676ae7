package httpapi

import (
	"time"

	"github.com/rs/zerolog"
)

// Options controls HTTP API runtime behavior.
type Options struct {
	// ConvertTimeout bounds a whole conversion request (fetch + parse +
	// convert + render).
	ConvertTimeout time.Duration

	// FetchTimeout is the per-URL timeout for lircd.conf and profile
	// downloads.
	FetchTimeout time.Duration

	// MaxBodyBytes caps POST /api/convert bodies.
	MaxBodyBytes int64

	// Workers bounds per-request conversion concurrency; 0 means NumCPU.
	Workers int

	// Logger receives access logs and conversion diagnostics. nil discards
	// them.
	Logger *zerolog.Logger
}

func (o Options) withDefaults() Options {
	if o.ConvertTimeout <= 0 {
		o.ConvertTimeout = 30 * time.Second
	}
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = 15 * time.Second
	}
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = 2 << 20
	}
	if o.Logger == nil {
		nop := zerolog.Nop()
		o.Logger = &nop
	}
	return o
}
