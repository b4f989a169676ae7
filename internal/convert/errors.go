package convert

import (
	"fmt"

	"github.com/John-Robertt/lircd2toml-go/internal/model"
)

// ConvertError aborts the conversion of one remote. The run goes on with the
// remaining remotes.
type ConvertError struct {
	AppError model.AppError
	Cause    error
}

func (e *ConvertError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.AppError.Code, e.AppError.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.AppError.Code, e.AppError.Message, e.Cause)
}

func (e *ConvertError) Unwrap() error { return e.Cause }

// Per-remote failure codes.
const (
	CodeDriverSpecific   = "DRIVER_SPECIFIC"
	CodeMissingFlags     = "MISSING_FLAGS"
	CodeUnsupportedFlags = "UNSUPPORTED_FLAGS"
	CodeMissingParameter = "MISSING_PARAMETER"
	CodeInvalidParameter = "INVALID_PARAMETER"
	CodeMissingCodes     = "MISSING_CODES"
	CodeUnexpectedTiming = "UNEXPECTED_TIMING"
	CodeInvalidPlead     = "INVALID_PLEAD"

	// CodeNoConvertibleRemotes ends a run that produced no record at all.
	CodeNoConvertibleRemotes = "NO_CONVERTIBLE_REMOTES"
)

// Warning codes.
const (
	WarnUnsupportedParameter   = "UNSUPPORTED_PARAMETER"
	WarnUnsupportedFlag        = "UNSUPPORTED_FLAG"
	WarnUnsupportedCombination = "UNSUPPORTED_COMBINATION"
)

// Warning is an advisory problem: the remote still converts, the offending
// field is dropped.
type Warning struct {
	Remote  string
	Code    string
	Message string
}

func remoteError(r *model.RemoteDefinition, code, msg, hint string) *ConvertError {
	return &ConvertError{
		AppError: model.AppError{
			Code:    code,
			Message: msg,
			Stage:   "convert",
			Remote:  r.Name,
			Line:    r.Line,
			Hint:    hint,
		},
	}
}

func missingParam(r *model.RemoteDefinition, keys ...string) *ConvertError {
	if len(keys) == 1 {
		return remoteError(r, CodeMissingParameter, fmt.Sprintf("缺少参数 '%s'", keys[0]), "")
	}
	return remoteError(r, CodeMissingParameter, fmt.Sprintf("缺少参数 '%s' 和 '%s'", keys[0], keys[1]), "")
}

func warn(r *model.RemoteDefinition, code, msg string) Warning {
	return Warning{Remote: r.Name, Code: code, Message: msg}
}
