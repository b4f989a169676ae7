package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMux_IndexAndHealthz(t *testing.T) {
	mux := NewMux()

	rr := doGET(t, mux, "/")
	if !strings.Contains(rr.Body.String(), "POST /api/convert") {
		t.Fatalf("index body=%q", rr.Body.String())
	}

	rr = doGET(t, mux, "/healthz")
	if rr.Body.String() != "ok\n" {
		t.Fatalf("healthz body=%q", rr.Body.String())
	}
}

func TestMux_UnknownPathAndMethod(t *testing.T) {
	mux := NewMux()

	req := httptest.NewRequest(http.MethodGet, "/sub", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status=%d, want=%d", rr.Code, http.StatusNotFound)
	}

	req = httptest.NewRequest(http.MethodPut, "/api/convert", nil)
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status=%d, want=%d", rr.Code, http.StatusMethodNotAllowed)
	}
}

func TestHandler_RequestID(t *testing.T) {
	h := NewHandler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	minted := rr.Header().Get(requestIDHeader)
	if len(minted) != 36 {
		t.Fatalf("request id=%q, want a uuid", minted)
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, minted)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if got := rr.Header().Get(requestIDHeader); got != minted {
		t.Fatalf("request id=%q, want propagated %q", got, minted)
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "not a uuid\x00")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if got := rr.Header().Get(requestIDHeader); got == "not a uuid\x00" || len(got) != 36 {
		t.Fatalf("request id=%q, want a fresh uuid", got)
	}
}
