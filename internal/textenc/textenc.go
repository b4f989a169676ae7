// Package textenc turns raw lircd.conf bytes into text.
//
// lircd.conf files in the wild come in UTF-8 (often with a BOM), Latin-1 and
// assorted Windows code pages.
package textenc

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/John-Robertt/lircd2toml-go/internal/model"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// DefaultEncoding is UTF-8 with an optional byte order mark.
const DefaultEncoding = "utf-8-sig"

type DecodeError struct {
	AppError model.AppError
	Cause    error
}

func (e *DecodeError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.AppError.Code, e.AppError.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.AppError.Code, e.AppError.Message, e.Cause)
}

func (e *DecodeError) Unwrap() error { return e.Cause }

// Validate reports whether name is a known encoding.
func Validate(name string) error {
	_, err := lookup(name)
	return err
}

// Decode converts raw to a Go string using the named encoding. An empty name
// means DefaultEncoding. UTF-8 input must be valid; it is never repaired.
func Decode(source string, raw []byte, name string) (string, error) {
	enc, err := lookup(name)
	if err != nil {
		return "", &DecodeError{
			AppError: model.AppError{
				Code:    "UNSUPPORTED_ENCODING",
				Message: fmt.Sprintf("不支持的编码：%s", name),
				Stage:   "decode_input",
				URL:     source,
				Hint:    "examples: utf-8-sig, utf-8, latin1, windows-1252",
			},
			Cause: err,
		}
	}

	if enc == unicode.UTF8 || enc == unicode.UTF8BOM {
		if !utf8.Valid(raw) {
			return "", &DecodeError{
				AppError: model.AppError{
					Code:    "DECODE_ERROR",
					Message: "输入不是合法 UTF-8 文本",
					Stage:   "decode_input",
					URL:     source,
					Hint:    "try --encoding latin1",
				},
			}
		}
	}

	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", &DecodeError{
			AppError: model.AppError{
				Code:    "DECODE_ERROR",
				Message: "输入解码失败",
				Stage:   "decode_input",
				URL:     source,
			},
			Cause: err,
		}
	}
	return string(out), nil
}

func lookup(name string) (encoding.Encoding, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.ReplaceAll(n, "_", "-")
	switch n {
	case "", "utf-8-sig", "utf8-sig":
		return unicode.UTF8BOM, nil
	case "utf-8", "utf8":
		return unicode.UTF8, nil
	case "latin-1":
		n = "latin1"
	}
	return htmlindex.Get(n)
}
