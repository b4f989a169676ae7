package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/John-Robertt/lircd2toml-go/internal/convert"
	"github.com/John-Robertt/lircd2toml-go/internal/fetch"
	"github.com/John-Robertt/lircd2toml-go/internal/model"
	"github.com/John-Robertt/lircd2toml-go/internal/profile"
	"github.com/John-Robertt/lircd2toml-go/internal/render"
	"github.com/John-Robertt/lircd2toml-go/internal/textenc"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const inlineSource = "<inline>"

type convertRequest struct {
	Lircd    string // inline lircd.conf text, POST only
	URL      string
	Target   render.Target // empty: profile target, then toml
	Profile  string
	Encoding string
	FileName string
}

type convertRequestJSON struct {
	Lircd    string `json:"lircd"`
	URL      string `json:"url"`
	Target   string `json:"target"`
	Profile  string `json:"profile"`
	Encoding string `json:"encoding"`
	FileName string `json:"fileName"`
}

type convertHandler struct {
	opt Options
}

func (h convertHandler) handleConvertGET(w http.ResponseWriter, r *http.Request) {
	req, err := parseConvertGET(r)
	if err != nil {
		writeErrorFromErr(w, err)
		return
	}
	h.serve(w, r, req)
}

func (h convertHandler) handleConvertPOST(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.opt.MaxBodyBytes)
	req, err := parseConvertPOST(r)
	if err != nil {
		writeErrorFromErr(w, err)
		return
	}
	h.serve(w, r, req)
}

func (h convertHandler) serve(w http.ResponseWriter, r *http.Request, req convertRequest) {
	out, err := runConvert(r.Context(), req, h.opt)
	if err != nil {
		writeErrorFromErr(w, err)
		return
	}
	if err := setAttachmentHeaders(w, req, out.target); err != nil {
		writeErrorFromErr(w, err)
		return
	}
	metricsObserveResult(out.result)

	w.Header().Set("Content-Type", contentType(out.target))
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Remotes-Converted", strconv.Itoa(len(out.result.Records)))
	w.Header().Set("X-Remotes-Failed", strconv.Itoa(len(out.result.Failures)))
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, out.body)
}

func contentType(t render.Target) string {
	if t == render.TargetYAML {
		return "application/yaml; charset=utf-8"
	}
	return "application/toml; charset=utf-8"
}

type convertOutput struct {
	body   string
	target render.Target
	result *convert.Result
}

func runConvert(ctx context.Context, req convertRequest, opt Options) (convertOutput, error) {
	ctx, cancel := context.WithTimeout(ctx, opt.ConvertTimeout)
	defer cancel()

	in, err := fetchInputs(ctx, req, fetch.Options{Timeout: opt.FetchTimeout})
	if err != nil {
		return convertOutput{}, err
	}

	var prof *profile.Spec
	if req.Profile != "" {
		prof, err = profile.ParseProfileYAML(req.Profile, in.profileText)
		if err != nil {
			return convertOutput{}, err
		}
	}

	source, text := inlineSource, req.Lircd
	if req.URL != "" {
		source = req.URL
		encoding := req.Encoding
		if encoding == "" && prof != nil {
			encoding = prof.Encoding
		}
		text, err = textenc.Decode(source, in.lircd, encoding)
		if err != nil {
			return convertOutput{}, err
		}
	}

	copt := convert.OptionsFromProfile(prof)
	copt.Workers = opt.Workers

	logger := zerolog.Ctx(ctx)
	if logger.GetLevel() == zerolog.Disabled {
		logger = opt.Logger
	}
	res, err := convert.Run(ctx, *logger, source, text, copt)
	if err != nil {
		return convertOutput{}, err
	}

	target := req.Target
	if target == "" && prof != nil {
		target = prof.Target
	}
	if target == "" {
		target = render.TargetTOML
	}

	body, err := render.Render(target, res.Records)
	if err != nil {
		return convertOutput{}, err
	}
	return convertOutput{body: body, target: target, result: res}, nil
}

type fetchedInputs struct {
	lircd       []byte
	profileText string
}

// fetchInputs downloads the lircd.conf and the profile concurrently.
func fetchInputs(ctx context.Context, req convertRequest, fopt fetch.Options) (fetchedInputs, error) {
	var in fetchedInputs
	g, gctx := errgroup.WithContext(ctx)
	if req.URL != "" {
		g.Go(func() error {
			b, err := fetch.FetchWithOptions(gctx, fetch.KindLircd, req.URL, fopt)
			if err != nil {
				return err
			}
			in.lircd = b
			return nil
		})
	}
	if req.Profile != "" {
		g.Go(func() error {
			b, err := fetch.FetchWithOptions(gctx, fetch.KindProfile, req.Profile, fopt)
			if err != nil {
				return err
			}
			// Profiles are always UTF-8.
			text, err := textenc.Decode(req.Profile, b, textenc.DefaultEncoding)
			if err != nil {
				return err
			}
			in.profileText = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fetchedInputs{}, err
	}
	return in, nil
}

func parseConvertGET(r *http.Request) (convertRequest, error) {
	q := r.URL.Query()
	for key := range q {
		switch key {
		case "url", "target", "profile", "encoding", "fileName":
		default:
			return convertRequest{}, requestError("INVALID_ARGUMENT", fmt.Sprintf("不支持的 query 参数：%s", key), "")
		}
	}

	rawURL, err := singleQuery(q, "url", true)
	if err != nil {
		return convertRequest{}, err
	}
	req := convertRequest{URL: strings.TrimSpace(rawURL)}
	if req.URL == "" {
		return convertRequest{}, requestError("INVALID_ARGUMENT", "url 不能为空", "expected: url=<lircd.conf url>")
	}

	fields := []struct {
		key string
		dst *string
	}{
		{"profile", &req.Profile},
		{"encoding", &req.Encoding},
		{"fileName", &req.FileName},
	}
	for _, f := range fields {
		v, err := singleQuery(q, f.key, false)
		if err != nil {
			return convertRequest{}, err
		}
		*f.dst = strings.TrimSpace(v)
	}

	targetStr, err := singleQuery(q, "target", false)
	if err != nil {
		return convertRequest{}, err
	}
	if req.Target, err = parseTarget(targetStr); err != nil {
		return convertRequest{}, err
	}
	if err := validateEncoding(req.Encoding); err != nil {
		return convertRequest{}, err
	}
	return req, nil
}

func parseConvertPOST(r *http.Request) (convertRequest, error) {
	var body convertRequestJSON
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		return convertRequest{}, bodyError(err)
	}
	var extra any
	if err := dec.Decode(&extra); err == nil {
		return convertRequest{}, requestError("INVALID_ARGUMENT", "JSON body 不允许多段", "")
	} else if !errors.Is(err, io.EOF) {
		return convertRequest{}, bodyError(err)
	}

	req := convertRequest{
		Lircd:    body.Lircd,
		URL:      strings.TrimSpace(body.URL),
		Profile:  strings.TrimSpace(body.Profile),
		Encoding: strings.TrimSpace(body.Encoding),
		FileName: body.FileName,
	}
	switch {
	case req.Lircd == "" && req.URL == "":
		return convertRequest{}, requestError("INVALID_ARGUMENT", "lircd 与 url 必须二选一", "")
	case req.Lircd != "" && req.URL != "":
		return convertRequest{}, requestError("INVALID_ARGUMENT", "lircd 与 url 不能同时出现", "")
	}
	if req.Encoding != "" && req.URL == "" {
		return convertRequest{}, requestError("INVALID_ARGUMENT", "encoding 仅适用于 url", "inline lircd text is already decoded")
	}

	var err error
	if req.Target, err = parseTarget(body.Target); err != nil {
		return convertRequest{}, err
	}
	if err := validateEncoding(req.Encoding); err != nil {
		return convertRequest{}, err
	}
	return req, nil
}

func bodyError(err error) error {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return apiError(http.StatusRequestEntityTooLarge, model.AppError{
			Code:    "BODY_TOO_LARGE",
			Message: "请求体过大",
			Stage:   "validate_request",
			Hint:    fmt.Sprintf("max=%d bytes", mbe.Limit),
		}, err)
	}
	return requestError("INVALID_ARGUMENT", "JSON body 解析失败", err.Error())
}

// parseTarget keeps the empty string empty so a profile can still pick the
// target.
func parseTarget(s string) (render.Target, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	t, ok := render.ParseTarget(s)
	if !ok {
		return "", requestError("INVALID_ARGUMENT", "不支持的 target（仅支持 toml/yaml）", s)
	}
	return t, nil
}

func validateEncoding(name string) error {
	if name == "" {
		return nil
	}
	if err := textenc.Validate(name); err != nil {
		return requestError("INVALID_ARGUMENT", fmt.Sprintf("不支持的 encoding：%s", name), "examples: utf-8-sig, latin1, windows-1252")
	}
	return nil
}

func singleQuery(q url.Values, key string, required bool) (string, error) {
	values, ok := q[key]
	if !ok || len(values) == 0 {
		if required {
			return "", requestError("INVALID_ARGUMENT", fmt.Sprintf("缺少 %s 参数", key), "")
		}
		return "", nil
	}
	if len(values) != 1 {
		return "", requestError("INVALID_ARGUMENT", fmt.Sprintf("%s 参数只能出现一次", key), "")
	}
	return values[0], nil
}

func pctEncode(s string) string {
	// RFC 3986 percent-encoding. Go's QueryEscape uses '+' for spaces, which we
	// rewrite to %20 for stability.
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
