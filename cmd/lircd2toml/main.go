// Command lircd2toml converts a lircd.conf file to an rc-core keymap.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/John-Robertt/lircd2toml-go/internal/convert"
	"github.com/John-Robertt/lircd2toml-go/internal/logging"
	"github.com/John-Robertt/lircd2toml-go/internal/profile"
	"github.com/John-Robertt/lircd2toml-go/internal/render"
	"github.com/John-Robertt/lircd2toml-go/internal/textenc"
)

const (
	exitOK     = 0
	exitFatal  = 1
	exitOutput = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("lircd2toml", flag.ContinueOnError)
	fs.SetOutput(stderr)
	output := fs.String("o", "", "输出文件（默认写到标准输出）")
	encoding := fs.String("encoding", "", "输入文件编码（默认 utf-8-sig）")
	targetName := fs.String("target", "", "输出格式：toml/yaml（默认 toml）")
	profilePath := fs.String("profile", "", "转换 profile（YAML）路径")
	workers := fs.Int("workers", 0, "并发转换数（0 表示 CPU 数）")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: lircd2toml [-o OUTPUT] [-encoding ENC] [-target toml|yaml] [-profile FILE] [-workers N] INPUT")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return exitFatal
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return exitFatal
	}
	input := fs.Arg(0)

	logger := logging.New("lircd2toml", stderr, logging.DefaultConfig())

	var prof *profile.Spec
	if *profilePath != "" {
		b, err := os.ReadFile(*profilePath)
		if err != nil {
			logger.Error().Err(err).Str("profile", *profilePath).Msg("cannot read profile")
			return exitFatal
		}
		prof, err = profile.ParseProfileYAML(*profilePath, string(b))
		if err != nil {
			logger.Error().Err(err).Msg("invalid profile")
			return exitFatal
		}
	}

	target, ok := resolveTarget(*targetName, prof)
	if !ok {
		logger.Error().Str("target", *targetName).Msg("unknown target, expected toml or yaml")
		return exitFatal
	}

	raw, err := readInput(input, stdin)
	if err != nil {
		logger.Error().Err(err).Str("input", input).Msg("cannot read input")
		return exitFatal
	}
	enc := *encoding
	if enc == "" && prof != nil {
		enc = prof.Encoding
	}
	text, err := textenc.Decode(input, raw, enc)
	if err != nil {
		logger.Error().Err(err).Msg("cannot decode input")
		return exitFatal
	}

	opt := convert.OptionsFromProfile(prof)
	opt.Workers = *workers
	res, err := convert.Run(ctx, logger, input, text, opt)
	if err != nil {
		var ce *convert.ConvertError
		if errors.As(err, &ce) && ce.AppError.Code == convert.CodeNoConvertibleRemotes {
			logger.Error().Str("source", input).Msg(ce.AppError.Message)
			return exitFatal
		}
		logger.Error().Err(err).Msg("conversion failed")
		return exitFatal
	}

	out, err := render.Render(target, res.Records)
	if err != nil {
		logger.Error().Err(err).Msg("render failed")
		return exitFatal
	}

	if *output == "" {
		if _, err := io.WriteString(stdout, out); err != nil {
			logger.Error().Err(err).Msg("cannot write output")
			return exitOutput
		}
		return exitOK
	}
	if err := os.WriteFile(*output, []byte(out), 0o644); err != nil {
		logger.Error().Err(err).Str("output", *output).Msg("cannot write output file")
		return exitOutput
	}
	return exitOK
}

// resolveTarget picks the output format: the flag, then the profile, then
// toml.
func resolveTarget(name string, prof *profile.Spec) (render.Target, bool) {
	if name == "" && prof != nil && prof.Target != "" {
		return prof.Target, true
	}
	return render.ParseTarget(name)
}

// readInput reads a file, or stdin for "-".
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}
