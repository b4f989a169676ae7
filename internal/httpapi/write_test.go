package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/John-Robertt/lircd2toml-go/internal/model"
)

func TestWriteError_JSONShapeAndHeaders(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, http.StatusUnprocessableEntity, model.AppError{
		Code:    "LIRCD_PARSE_ERROR",
		Message: "unexpected line",
		Stage:   "parse_lircd",
		URL:     "https://example.com/yamaha.lircd.conf",
		Remote:  "Yamaha RAV",
		Line:    12,
		Snippet: "begin remote now",
	})

	if got, want := rr.Code, http.StatusUnprocessableEntity; got != want {
		t.Fatalf("status = %d, want %d", got, want)
	}

	if got, want := rr.Header().Get("Content-Type"), "application/json; charset=utf-8"; got != want {
		t.Fatalf("Content-Type = %q, want %q", got, want)
	}

	var resp model.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v\nbody=%q", err, rr.Body.String())
	}
	if resp.Error.Code != "LIRCD_PARSE_ERROR" {
		t.Fatalf("code = %q, want %q", resp.Error.Code, "LIRCD_PARSE_ERROR")
	}
	if resp.Error.Stage != "parse_lircd" {
		t.Fatalf("stage = %q, want %q", resp.Error.Stage, "parse_lircd")
	}
	if resp.Error.Line != 12 {
		t.Fatalf("line = %d, want %d", resp.Error.Line, 12)
	}
	if resp.Error.Remote != "Yamaha RAV" {
		t.Fatalf("remote = %q", resp.Error.Remote)
	}
}
