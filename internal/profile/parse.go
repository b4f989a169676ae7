// Package profile parses conversion profiles: small YAML documents that tune
// how one lircd.conf file is turned into a keymap.
package profile

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/John-Robertt/lircd2toml-go/internal/model"
	"github.com/John-Robertt/lircd2toml-go/internal/render"
	"github.com/John-Robertt/lircd2toml-go/internal/textenc"
	"gopkg.in/yaml.v3"
)

type Spec struct {
	Version int

	// KeyPrefix overrides the reserved key name prefix ("KEY_").
	KeyPrefix string
	// Encoding of the lircd.conf input; empty means utf-8-sig.
	Encoding string
	// Target is the default output format; empty means the caller decides.
	Target render.Target

	// Canonical lists the canonical protocols to detect. When HasCanonical is
	// false every known protocol is enabled; an explicit empty list disables
	// canonical detection.
	Canonical    []model.Protocol
	HasCanonical bool

	// Rename maps source remote names to output names.
	Rename map[string]string
	// Skip lists source remote names to leave out of the run.
	Skip []string
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

type rawProfile struct {
	Version   int               `yaml:"version"`
	KeyPrefix string            `yaml:"key_prefix"`
	Encoding  string            `yaml:"encoding"`
	Target    string            `yaml:"target"`
	Canonical *[]string         `yaml:"canonical"`
	Rename    map[string]string `yaml:"rename"`
	Skip      []string          `yaml:"skip"`
}

var keyPrefixRe = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)

var knownCanonical = map[string]model.Protocol{
	"nec": model.ProtocolNEC,
	"rc5": model.ProtocolRC5,
}

// ParseProfileYAML parses and validates a profile YAML document.
//
// Unknown fields and multi-document input are rejected. stage is always
// "parse_profile".
func ParseProfileYAML(sourceURL string, content string) (*Spec, error) {
	var rp rawProfile
	if err := yamlDecodeStrict(content, &rp); err != nil {
		return nil, &ParseError{
			AppError: model.AppError{
				Code:    "PROFILE_PARSE_ERROR",
				Message: "profile YAML 解析失败",
				Stage:   "parse_profile",
				URL:     sourceURL,
				Snippet: truncateSnippet(content, 200),
			},
			Cause: err,
		}
	}

	if rp.Version != 1 {
		return nil, validateError(sourceURL, "profile version 必须为 1", "", nil)
	}

	out := &Spec{Version: rp.Version}

	if rp.KeyPrefix != "" {
		kp := strings.TrimSpace(rp.KeyPrefix)
		if !keyPrefixRe.MatchString(kp) {
			return nil, validateError(sourceURL, fmt.Sprintf("key_prefix 非法：%q", rp.KeyPrefix), "expected upper-case letters, digits and '_', e.g. KEY_", nil)
		}
		out.KeyPrefix = kp
	}

	if rp.Encoding != "" {
		if err := textenc.Validate(rp.Encoding); err != nil {
			return nil, validateError(sourceURL, fmt.Sprintf("encoding 不支持：%q", rp.Encoding), "examples: utf-8-sig, latin1, windows-1252", err)
		}
		out.Encoding = strings.TrimSpace(rp.Encoding)
	}

	if rp.Target != "" {
		t, ok := render.ParseTarget(rp.Target)
		if !ok {
			return nil, validateError(sourceURL, fmt.Sprintf("target 不支持：%q", rp.Target), "expected: toml | yaml", nil)
		}
		out.Target = t
	}

	if rp.Canonical != nil {
		out.HasCanonical = true
		out.Canonical = []model.Protocol{}
		seen := make(map[model.Protocol]struct{})
		for _, raw := range *rp.Canonical {
			p, ok := knownCanonical[strings.ToLower(strings.TrimSpace(raw))]
			if !ok {
				return nil, validateError(sourceURL, fmt.Sprintf("canonical 不支持：%q", raw), "expected a subset of: nec, rc5", nil)
			}
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			out.Canonical = append(out.Canonical, p)
		}
	}

	if len(rp.Rename) > 0 {
		out.Rename = make(map[string]string, len(rp.Rename))
		for from, to := range rp.Rename {
			if strings.TrimSpace(from) == "" {
				return nil, validateError(sourceURL, "rename 的源名称不能为空", "", nil)
			}
			to = strings.TrimSpace(to)
			if to == "" || strings.ContainsAny(to, "\r\n") {
				return nil, validateError(sourceURL, fmt.Sprintf("rename 目标名称非法：%q", from), "target name must be a non-empty single line", nil)
			}
			out.Rename[from] = to
		}
	}

	seenSkip := make(map[string]struct{}, len(rp.Skip))
	for _, s := range rp.Skip {
		if strings.TrimSpace(s) == "" {
			return nil, validateError(sourceURL, "skip 中不能包含空名称", "", nil)
		}
		if _, dup := seenSkip[s]; dup {
			continue
		}
		seenSkip[s] = struct{}{}
		out.Skip = append(out.Skip, s)
	}

	return out, nil
}

func validateError(sourceURL, msg, hint string, cause error) error {
	return &ParseError{
		AppError: model.AppError{
			Code:    "PROFILE_VALIDATE_ERROR",
			Message: msg,
			Stage:   "parse_profile",
			URL:     sourceURL,
			Hint:    hint,
		},
		Cause: cause,
	}
}

func yamlDecodeStrict(content string, out any) error {
	dec := yaml.NewDecoder(strings.NewReader(content))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return err
	}

	var extra any
	if err := dec.Decode(&extra); err == nil {
		return errors.New("multiple YAML documents are not allowed")
	} else if !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func truncateSnippet(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max]
}
