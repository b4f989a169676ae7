// Package render serializes converted remotes into rc-core keymap files.
package render

import (
	"fmt"
	"strings"

	"github.com/John-Robertt/lircd2toml-go/internal/model"
)

type Target string

const (
	TargetTOML Target = "toml"
	TargetYAML Target = "yaml"
)

// ParseTarget maps a user supplied target name to a Target. The empty string
// means TOML.
func ParseTarget(s string) (Target, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "toml":
		return TargetTOML, true
	case "yaml", "yml":
		return TargetYAML, true
	default:
		return "", false
	}
}

// Ext is the file name extension used for downloads.
func (t Target) Ext() string {
	if t == TargetYAML {
		return ".yaml"
	}
	return ".toml"
}

type RenderError struct {
	AppError model.AppError
	Cause    error
}

func (e *RenderError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.AppError.Code, e.AppError.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.AppError.Code, e.AppError.Message, e.Cause)
}

func (e *RenderError) Unwrap() error { return e.Cause }

// Render writes every record, in order, as one keymap document.
func Render(target Target, records []model.ProtocolRecord) (string, error) {
	if len(records) == 0 {
		return "", &RenderError{
			AppError: model.AppError{
				Code:    "INVALID_ARGUMENT",
				Message: "render input 不能为空",
				Stage:   "render",
			},
		}
	}
	switch target {
	case TargetTOML:
		return renderTOML(records), nil
	case TargetYAML:
		return renderYAML(records)
	default:
		return "", &RenderError{
			AppError: model.AppError{
				Code:    "UNSUPPORTED_TARGET",
				Message: fmt.Sprintf("不支持的 target：%s", target),
				Stage:   "render",
				Hint:    "expected: toml | yaml",
			},
		}
	}
}
