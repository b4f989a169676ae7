// Package lircd parses lircd.conf remote definitions.
package lircd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/John-Robertt/lircd2toml-go/internal/model"
)

const DefaultKeyPrefix = "KEY_"

type Options struct {
	// KeyPrefix is prepended (after upper-casing) to key names in codes and
	// raw_codes sections that do not already start with it. Default "KEY_".
	KeyPrefix string
}

func (o Options) withDefaults() Options {
	if o.KeyPrefix == "" {
		o.KeyPrefix = DefaultKeyPrefix
	}
	return o
}

type ParseError struct {
	AppError model.AppError
	Cause    error
}

func (e *ParseError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.AppError.Code, e.AppError.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.AppError.Code, e.AppError.Message, e.Cause)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// ParseText parses every remote in content.
//
// Parsing is all-or-nothing: the first syntax error aborts the whole run and
// no remotes are returned. Unnamed remotes are named remote_1, remote_2, ...
// in declaration order.
func ParseText(source string, content string) ([]model.RemoteDefinition, error) {
	return ParseTextWithOptions(source, content, Options{})
}

func ParseTextWithOptions(source string, content string, opt Options) ([]model.RemoteDefinition, error) {
	p := &parser{
		source: source,
		lines:  strings.Split(strings.TrimSuffix(stripUTF8BOM(content), "\n"), "\n"),
		opt:    opt.withDefaults(),
	}
	remotes, err := p.parse()
	if err != nil {
		return nil, err
	}
	assignNames(remotes)
	return remotes, nil
}

// ParseReader reads r to the end, then parses it like ParseTextWithOptions.
// r must yield UTF-8 text; other encodings go through textenc first.
func ParseReader(source string, r io.Reader, opt Options) ([]model.RemoteDefinition, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{
			AppError: model.AppError{
				Code:    "LIRCD_READ_ERROR",
				Message: "读取输入失败",
				Stage:   "parse_lircd",
				URL:     source,
			},
			Cause: err,
		}
	}
	return ParseTextWithOptions(source, string(b), opt)
}

type parser struct {
	source string
	lines  []string
	opt    Options

	pos    int // index of the next physical line
	lineNo int // 1-based line number of the last returned line
	raw    string
}

// next returns the next significant line, skipping blank lines and comments.
func (p *parser) next() (string, bool) {
	for p.pos < len(p.lines) {
		raw := p.lines[p.pos]
		p.pos++
		p.lineNo = p.pos
		p.raw = raw

		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return line, true
	}
	return "", false
}

func (p *parser) parse() ([]model.RemoteDefinition, error) {
	remotes := make([]model.RemoteDefinition, 0, 1)
	for {
		line, ok := p.next()
		if !ok {
			return remotes, nil
		}

		fields := strings.Fields(line)
		if len(fields) < 2 || fields[0] != "begin" || fields[1] != "remote" {
			return nil, p.errorf("LIRCD_PARSE_ERROR", "expected: begin remote", nil, "应为 'begin remote'，实际为 %q", line)
		}
		if len(fields) > 2 && !strings.HasPrefix(fields[2], "#") {
			return nil, p.errorf("LIRCD_PARSE_ERROR", "", nil, "'begin remote' 后出现多余内容：%s", fields[2])
		}

		remote, err := p.readRemote()
		if err != nil {
			return nil, err
		}
		remotes = append(remotes, remote)
	}
}

func (p *parser) readRemote() (model.RemoteDefinition, error) {
	remote := model.RemoteDefinition{
		Params: make(map[string][]uint64),
		Line:   p.lineNo,
	}
	for {
		line, ok := p.next()
		if !ok {
			return model.RemoteDefinition{}, p.unexpectedEOF("end remote")
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			return model.RemoteDefinition{}, p.errorf("LIRCD_PARSE_ERROR", "expected: <key> <value>...", nil, "每行至少需要两个字段")
		}

		switch key := fields[0]; key {
		case "name":
			remote.Name = restOf(line, key)
		case "driver":
			remote.Driver = restOf(line, key)
		case "serial_mode":
			remote.SerialMode = restOf(line, key)
		case "flags":
			remote.Flags = parseFlags(restOf(line, key))
			remote.HasFlags = true
		case "begin":
			if err := p.readSection(&remote, fields[1]); err != nil {
				return model.RemoteDefinition{}, err
			}
		case "end":
			return remote, nil
		default:
			vals, err := p.parseValues(fields[1:], 0)
			if err != nil {
				return model.RemoteDefinition{}, err
			}
			remote.Params[key] = vals
		}
	}
}

func (p *parser) readSection(remote *model.RemoteDefinition, section string) error {
	switch section {
	case "codes":
		if remote.Codes != nil || remote.RawCodes != nil {
			return p.errorf("LIRCD_PARSE_ERROR", "codes and raw_codes are mutually exclusive", nil, "remote 中重复的按键段")
		}
		codes, err := p.readCodes()
		if err != nil {
			return err
		}
		remote.Codes = codes
	case "raw_codes":
		if remote.Codes != nil || remote.RawCodes != nil {
			return p.errorf("LIRCD_PARSE_ERROR", "codes and raw_codes are mutually exclusive", nil, "remote 中重复的按键段")
		}
		raw, err := p.readRawCodes()
		if err != nil {
			return err
		}
		if raw == nil {
			raw = []model.RawCode{}
		}
		remote.RawCodes = raw
	default:
		return p.errorf("LIRCD_PARSE_ERROR", "expected: begin codes | begin raw_codes", nil, "不支持的段：begin %s", section)
	}
	return nil
}

func (p *parser) readCodes() (*model.ScancodeMap, error) {
	codes := model.NewScancodeMap()
	for {
		line, ok := p.next()
		if !ok {
			return nil, p.unexpectedEOF("end codes")
		}

		fields := strings.Fields(line)
		if fields[0] == "end" {
			return codes, nil
		}
		key := p.keyName(fields[0])
		vals, err := p.parseValues(fields[1:], 0)
		if err != nil {
			return nil, err
		}
		for _, v := range vals {
			codes.Set(v, key)
		}
	}
}

func (p *parser) readRawCodes() ([]model.RawCode, error) {
	var out []model.RawCode
	name := ""
	var intervals []uint64

	flush := func() {
		if len(intervals) > 0 {
			out = append(out, model.RawCode{Name: name, Intervals: intervals})
		}
		intervals = nil
	}

	for {
		line, ok := p.next()
		if !ok {
			return nil, p.unexpectedEOF("end raw_codes")
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "name":
			if len(fields) < 2 {
				return nil, p.errorf("LIRCD_PARSE_ERROR", "expected: name <KEY>", nil, "raw_codes 的 name 缺少按键名")
			}
			flush()
			name = p.keyName(restOf(line, "name"))
		case "end":
			flush()
			return out, nil
		default:
			vals, err := p.parseValues(fields, 10)
			if err != nil {
				return nil, err
			}
			intervals = append(intervals, vals...)
		}
	}
}

// parseValues parses integers up to the first '#' token. base 0 honours the
// 0x / 0o / 0b / leading-0 prefixes.
func (p *parser) parseValues(tokens []string, base int) ([]uint64, error) {
	out := make([]uint64, 0, len(tokens))
	for _, tok := range tokens {
		if strings.HasPrefix(tok, "#") {
			break
		}
		v, err := strconv.ParseUint(tok, base, 64)
		if err != nil {
			return nil, p.errorf("LIRCD_INVALID_NUMBER", "expected: decimal, 0x hex or 0 octal", err, "无法解析的整数：%s", tok)
		}
		out = append(out, v)
	}
	return out, nil
}

func (p *parser) keyName(k string) string {
	if strings.HasPrefix(k, p.opt.KeyPrefix) {
		return k
	}
	return p.opt.KeyPrefix + strings.ToUpper(k)
}

func (p *parser) unexpectedEOF(want string) error {
	return &ParseError{
		AppError: model.AppError{
			Code:    "LIRCD_UNEXPECTED_EOF",
			Message: "文件意外结束",
			Stage:   "parse_lircd",
			URL:     p.source,
			Line:    p.lineNo,
			Hint:    "expected: " + want,
		},
	}
}

func (p *parser) errorf(code, hint string, cause error, format string, args ...any) error {
	return &ParseError{
		AppError: model.AppError{
			Code:    code,
			Message: fmt.Sprintf(format, args...),
			Stage:   "parse_lircd",
			URL:     p.source,
			Line:    p.lineNo,
			Snippet: truncateSnippet(p.raw, 200),
			Hint:    hint,
		},
		Cause: cause,
	}
}

// restOf returns everything after the leading keyword, so free text keeps its
// embedded spaces.
func restOf(line, keyword string) string {
	return strings.TrimSpace(strings.TrimPrefix(line, keyword))
}

func parseFlags(s string) model.Flags {
	flags := model.NewFlags()
	for _, tok := range strings.Split(s, "|") {
		// A trailing comment only ever follows the last token.
		if f := strings.Fields(tok); len(f) > 0 && !strings.HasPrefix(f[0], "#") {
			flags.Add(f[0])
		}
	}
	return flags
}

func assignNames(remotes []model.RemoteDefinition) {
	n := 1
	for i := range remotes {
		if remotes[i].Name != "" {
			continue
		}
		remotes[i].Name = fmt.Sprintf("remote_%d", n)
		n++
	}
}

func stripUTF8BOM(s string) string {
	return strings.TrimPrefix(s, "\uFEFF")
}

func truncateSnippet(s string, max int) string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", "")
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	return s[:max]
}
