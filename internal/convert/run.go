package convert

import (
	"context"
	"errors"

	"github.com/John-Robertt/lircd2toml-go/internal/lircd"
	"github.com/John-Robertt/lircd2toml-go/internal/model"
	"github.com/John-Robertt/lircd2toml-go/internal/profile"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Result is the outcome of one run. Records and Failures keep input order.
type Result struct {
	Records  []model.ProtocolRecord
	Failures []*ConvertError
	Warnings []Warning
	Skipped  []string
}

type outcome struct {
	record   model.ProtocolRecord
	warnings []Warning
	err      error
}

// ConvertAll converts remotes with at most Workers conversions in flight.
//
// Diagnostics are logged in input order once every remote is done. When no
// remote converts, the partial result is returned together with a
// NO_CONVERTIBLE_REMOTES error.
func (c *Converter) ConvertAll(ctx context.Context, remotes []model.RemoteDefinition) (*Result, error) {
	outs := make([]outcome, len(remotes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i := range remotes {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, warnings, err := c.Convert(&remotes[i])
			outs[i] = outcome{record: rec, warnings: warnings, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{}
	for i, o := range outs {
		for _, w := range o.warnings {
			res.Warnings = append(res.Warnings, w)
			c.log.Warn().
				Str("source", c.source).
				Str("remote", w.Remote).
				Str("code", w.Code).
				Msg(w.Message)
		}
		if o.err != nil {
			var ce *ConvertError
			if !errors.As(o.err, &ce) {
				return nil, o.err
			}
			res.Failures = append(res.Failures, ce)
			c.log.Error().
				Str("source", c.source).
				Str("remote", remotes[i].Name).
				Int("line", ce.AppError.Line).
				Str("code", ce.AppError.Code).
				Msg(ce.AppError.Message)
			continue
		}
		if o.record.Protocol == model.ProtocolNEC || o.record.Protocol == model.ProtocolRC5 {
			c.log.Info().
				Str("source", c.source).
				Str("remote", o.record.Name).
				Msgf("remote looks exactly like %s, converting", canonicalName(o.record.Protocol))
		}
		res.Records = append(res.Records, o.record)
	}

	if len(res.Records) == 0 {
		return res, &ConvertError{
			AppError: model.AppError{
				Code:    CodeNoConvertibleRemotes,
				Message: "no convertible remotes found",
				Stage:   "convert",
				URL:     c.source,
			},
		}
	}
	return res, nil
}

// Run parses text and converts every remote not listed in opt.Skip, then
// applies opt.Rename to the records.
//
// Parse errors abort the run. Per-remote failures only end up in
// Result.Failures.
func Run(ctx context.Context, logger zerolog.Logger, source string, text string, opt Options) (*Result, error) {
	remotes, err := lircd.ParseTextWithOptions(source, text, lircd.Options{KeyPrefix: opt.KeyPrefix})
	if err != nil {
		return nil, err
	}

	var skipped []string
	if len(opt.Skip) > 0 {
		skip := make(map[string]struct{}, len(opt.Skip))
		for _, s := range opt.Skip {
			skip[s] = struct{}{}
		}
		kept := remotes[:0]
		for _, r := range remotes {
			if _, ok := skip[r.Name]; ok {
				skipped = append(skipped, r.Name)
				logger.Info().Str("source", source).Str("remote", r.Name).Msg("remote skipped by profile")
				continue
			}
			kept = append(kept, r)
		}
		remotes = kept
	}

	res, err := NewConverter(source, logger, opt).ConvertAll(ctx, remotes)
	if res == nil {
		return nil, err
	}
	res.Skipped = skipped
	for i := range res.Records {
		if to, ok := opt.Rename[res.Records[i].Name]; ok {
			res.Records[i].Name = to
		}
	}
	return res, err
}

// OptionsFromProfile maps a conversion profile onto converter options.
func OptionsFromProfile(p *profile.Spec) Options {
	if p == nil {
		return Options{}
	}
	opt := Options{
		KeyPrefix: p.KeyPrefix,
		Rename:    p.Rename,
		Skip:      p.Skip,
	}
	if p.HasCanonical {
		opt.Canonical = append([]model.Protocol{}, p.Canonical...)
	}
	return opt
}
