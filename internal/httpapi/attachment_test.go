package httpapi

import (
	"errors"
	"testing"

	"github.com/John-Robertt/lircd2toml-go/internal/render"
)

func TestOutputFileName(t *testing.T) {
	cases := []struct {
		name   string
		req    convertRequest
		target render.Target
		want   string
	}{
		{"from url", convertRequest{URL: "https://example.com/remotes/yamaha/RAV.lircd.conf"}, render.TargetTOML, "RAV.toml"},
		{"plain conf", convertRequest{URL: "https://example.com/sony.conf?raw=1"}, render.TargetYAML, "sony.yaml"},
		{"no path", convertRequest{URL: "https://example.com/"}, render.TargetTOML, "keymap.toml"},
		{"inline", convertRequest{Lircd: "begin remote"}, render.TargetTOML, "keymap.toml"},
		{"explicit", convertRequest{FileName: " living room "}, render.TargetYAML, "living room.yaml"},
		{"explicit ext kept", convertRequest{FileName: "rav.keymap"}, render.TargetTOML, "rav.keymap"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := outputFileName(tc.req, tc.target)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("name=%q, want=%q", got, tc.want)
			}
		})
	}
}

func TestOutputFileName_Rejects(t *testing.T) {
	for _, name := range []string{"a/b", `a\b`, "a\nb", string(make([]byte, 201))} {
		_, err := outputFileName(convertRequest{FileName: name}, render.TargetTOML)
		var ae *APIError
		if !errors.As(err, &ae) || ae.Status != 400 {
			t.Fatalf("fileName %q: expected 400 APIError, got %v", name, err)
		}
	}
}

func TestContentDispositionAttachment(t *testing.T) {
	got := contentDispositionAttachment(`my "rav".toml`)
	want := `attachment; filename="my \"rav\".toml"; filename*=UTF-8''my%20%22rav%22.toml`
	if got != want {
		t.Fatalf("got %q\nwant %q", got, want)
	}
}
