// Package fetch downloads lircd.conf files and conversion profiles over
// http/https with timeouts, a redirect limit and a size cap.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/John-Robertt/lircd2toml-go/internal/model"
)

type Kind int

const (
	KindLircd Kind = iota
	KindProfile
)

func (k Kind) stage() string {
	switch k {
	case KindLircd:
		return "fetch_lircd"
	case KindProfile:
		return "fetch_profile"
	default:
		return "fetch"
	}
}

func (k Kind) defaultMaxBytes() int64 {
	switch k {
	case KindLircd:
		return 1 << 20
	case KindProfile:
		return 256 << 10
	default:
		return 1 << 20
	}
}

type Options struct {
	Timeout      time.Duration // default 15s
	MaxBytes     int64         // default per kind
	MaxRedirects int           // default 5
}

func (o Options) withDefaults(kind Kind) Options {
	if o.Timeout == 0 {
		o.Timeout = 15 * time.Second
	}
	if o.MaxRedirects == 0 {
		o.MaxRedirects = 5
	}
	if o.MaxBytes == 0 {
		o.MaxBytes = kind.defaultMaxBytes()
	}
	return o
}

type FetchError struct {
	Status   int
	AppError model.AppError
	Cause    error
}

func (e *FetchError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.AppError.Code, e.AppError.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.AppError.Code, e.AppError.Message, e.Cause)
}

func (e *FetchError) Unwrap() error { return e.Cause }

var (
	errTooManyRedirects   = errors.New("too many redirects")
	errRedirectBadScheme  = errors.New("redirect target scheme is not http/https")
	errInvalidURLOrScheme = errors.New("invalid url or scheme")
)

// fetchFailure builds FetchErrors for one request.
type fetchFailure struct {
	stage string
	url   string
}

func (f fetchFailure) err(status int, code, msg string, cause error) *FetchError {
	return &FetchError{
		Status: status,
		AppError: model.AppError{
			Code:    code,
			Message: msg,
			Stage:   f.stage,
			URL:     f.url,
		},
		Cause: cause,
	}
}

func (f fetchFailure) timeout(cause error) *FetchError {
	return f.err(http.StatusGatewayTimeout, "FETCH_TIMEOUT", "拉取远程资源超时", cause)
}

func isTimeout(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

func Fetch(ctx context.Context, kind Kind, rawURL string) ([]byte, error) {
	return FetchWithOptions(ctx, kind, rawURL, Options{})
}

// FetchWithOptions GETs rawURL and returns the raw body. Text decoding is the
// caller's job: lircd.conf files are not always UTF-8.
func FetchWithOptions(ctx context.Context, kind Kind, rawURL string, opt Options) ([]byte, error) {
	opt = opt.withDefaults(kind)
	fail := fetchFailure{stage: kind.stage(), url: rawURL}

	if opt.MaxBytes <= 0 {
		return nil, fail.err(http.StatusBadRequest, "INVALID_ARGUMENT", "响应大小上限必须大于 0", nil)
	}

	u, err := url.Parse(rawURL)
	if err != nil || u == nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fail.err(http.StatusBadRequest, "INVALID_ARGUMENT", "仅允许 http/https URL", errors.Join(errInvalidURLOrScheme, err))
	}

	client := &http.Client{
		Timeout:   opt.Timeout,
		Transport: http.DefaultTransport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			// len(via) is the number of redirects followed so far, plus one.
			if len(via) > opt.MaxRedirects {
				return errTooManyRedirects
			}
			if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
				return errRedirectBadScheme
			}
			return nil
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fail.err(http.StatusBadRequest, "INVALID_ARGUMENT", "请求 URL 不合法", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		switch {
		case errors.Is(err, errTooManyRedirects):
			return nil, fail.err(http.StatusBadGateway, "FETCH_FAILED", fmt.Sprintf("重定向次数超过上限（>%d）", opt.MaxRedirects), err)
		case errors.Is(err, errRedirectBadScheme):
			return nil, fail.err(http.StatusBadRequest, "INVALID_ARGUMENT", "重定向目标仅允许 http/https", err)
		case isTimeout(err):
			return nil, fail.timeout(err)
		default:
			return nil, fail.err(http.StatusBadGateway, "FETCH_FAILED", "拉取远程资源失败", err)
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fail.err(http.StatusBadGateway, "FETCH_FAILED", fmt.Sprintf("上游返回非 2xx 状态码：%d", resp.StatusCode), nil)
	}

	// Read one byte past the cap so an oversized body is detected.
	body, err := io.ReadAll(io.LimitReader(resp.Body, opt.MaxBytes+1))
	if err != nil {
		if isTimeout(err) {
			return nil, fail.timeout(err)
		}
		return nil, fail.err(http.StatusBadGateway, "FETCH_FAILED", "读取上游响应失败", err)
	}
	if int64(len(body)) > opt.MaxBytes {
		return nil, fail.err(http.StatusUnprocessableEntity, "TOO_LARGE", fmt.Sprintf("远程资源过大（>%d bytes）", opt.MaxBytes), nil)
	}
	return body, nil
}
