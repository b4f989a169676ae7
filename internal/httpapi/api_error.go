package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/John-Robertt/lircd2toml-go/internal/convert"
	"github.com/John-Robertt/lircd2toml-go/internal/fetch"
	"github.com/John-Robertt/lircd2toml-go/internal/lircd"
	"github.com/John-Robertt/lircd2toml-go/internal/model"
	"github.com/John-Robertt/lircd2toml-go/internal/profile"
	"github.com/John-Robertt/lircd2toml-go/internal/render"
	"github.com/John-Robertt/lircd2toml-go/internal/textenc"
)

// APIError is used by the HTTP layer for request validation and a few
// HTTP-specific errors.
type APIError struct {
	Status   int
	AppError model.AppError
	Cause    error
}

func (e *APIError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.AppError.Code, e.AppError.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.AppError.Code, e.AppError.Message, e.Cause)
}

func (e *APIError) Unwrap() error { return e.Cause }

func apiError(status int, app model.AppError, cause error) error {
	return &APIError{Status: status, AppError: app, Cause: cause}
}

func requestError(code, message, hint string) error {
	return apiError(http.StatusBadRequest, model.AppError{
		Code:    code,
		Message: message,
		Stage:   "validate_request",
		Hint:    hint,
	}, nil)
}

// errorStatus maps a pipeline error onto the HTTP status and body to send.
func errorStatus(err error) (int, model.AppError) {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Status, ae.AppError
	}

	var fe *fetch.FetchError
	if errors.As(err, &fe) {
		return fe.Status, fe.AppError
	}

	// Decode/parse/convert/render errors are user content errors => 422.
	var de *textenc.DecodeError
	if errors.As(err, &de) {
		return http.StatusUnprocessableEntity, de.AppError
	}

	var pe *profile.ParseError
	if errors.As(err, &pe) {
		return http.StatusUnprocessableEntity, pe.AppError
	}

	var le *lircd.ParseError
	if errors.As(err, &le) {
		return http.StatusUnprocessableEntity, le.AppError
	}

	var ce *convert.ConvertError
	if errors.As(err, &ce) {
		return http.StatusUnprocessableEntity, ce.AppError
	}

	var re *render.RenderError
	if errors.As(err, &re) {
		return http.StatusUnprocessableEntity, re.AppError
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, model.AppError{
			Code:    "CONVERT_TIMEOUT",
			Message: "转换超时",
			Stage:   "convert",
		}
	}

	// Fallback: internal bug.
	return http.StatusInternalServerError, model.AppError{
		Code:    "INTERNAL_ERROR",
		Message: "服务端内部错误",
		Stage:   "internal",
		Hint:    err.Error(),
	}
}

func writeErrorFromErr(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	status, app := errorStatus(err)
	metricsIncAppError(app.Stage, app.Code)
	WriteError(w, status, app)
}
