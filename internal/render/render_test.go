package render

import (
	"errors"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/John-Robertt/lircd2toml-go/internal/model"
	"gopkg.in/yaml.v3"
)

func necRecord() model.ProtocolRecord {
	sc := model.NewScancodeMap()
	sc.Set(0x7a1f, "KEY_POWER")
	sc.Set(0x7a1a, "KEY_VOLUMEUP")
	return model.ProtocolRecord{
		Name:      "Yamaha RAV",
		Protocol:  model.ProtocolNEC,
		Params:    []model.Param{{Key: "variant", Label: "nec"}},
		Scancodes: sc,
	}
}

func pulseRecord() model.ProtocolRecord {
	sc := model.NewScancodeMap()
	sc.Set(0x1, "KEY_1")
	sc.Set(0x100, "KEY_2")
	return model.ProtocolRecord{
		Name:     "it's",
		Protocol: model.ProtocolPulseDistance,
		Params: []model.Param{
			{Key: "header_pulse", Value: 9000},
			{Key: "bits", Value: 12},
		},
		Scancodes: sc,
	}
}

func TestRender_TOML_Exact(t *testing.T) {
	got, err := Render(TargetTOML, []model.ProtocolRecord{necRecord()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "[[protocols]]\n" +
		"name = 'Yamaha RAV'\n" +
		"protocol = 'nec'\n" +
		"variant = 'nec'\n" +
		"[protocols.scancodes]\n" +
		"0x7a1f = 'KEY_POWER'\n" +
		"0x7a1a = 'KEY_VOLUMEUP'\n"
	if got != want {
		t.Fatalf("toml mismatch:\n got:\n%s\nwant:\n%s", got, want)
	}
}

func TestRender_TOML_PaddingAndQuoting(t *testing.T) {
	got, err := Render(TargetTOML, []model.ProtocolRecord{pulseRecord()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, line := range []string{
		`name = "it's"`,
		"header_pulse = 9000",
		"0x001 = 'KEY_1'",
		"0x100 = 'KEY_2'",
	} {
		if !strings.Contains(got, line+"\n") {
			t.Fatalf("missing line %q in:\n%s", line, got)
		}
	}
}

func TestRender_TOML_ZeroScancode(t *testing.T) {
	sc := model.NewScancodeMap()
	sc.Set(0, "KEY_0")
	got, err := Render(TargetTOML, []model.ProtocolRecord{{Name: "z", Protocol: model.ProtocolRCMM, Scancodes: sc}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "0x0 = 'KEY_0'\n") {
		t.Fatalf("unexpected output:\n%s", got)
	}
}

func TestRender_TOML_DecodesWithTOMLParser(t *testing.T) {
	out, err := Render(TargetTOML, []model.ProtocolRecord{necRecord(), pulseRecord()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var doc struct {
		Protocols []map[string]any `toml:"protocols"`
	}
	if _, err := toml.Decode(out, &doc); err != nil {
		t.Fatalf("output is not valid TOML: %v\n%s", err, out)
	}
	if len(doc.Protocols) != 2 {
		t.Fatalf("protocols=%d, want=2", len(doc.Protocols))
	}
	if doc.Protocols[0]["variant"] != "nec" {
		t.Fatalf("variant=%v", doc.Protocols[0]["variant"])
	}
	if doc.Protocols[1]["name"] != "it's" {
		t.Fatalf("name=%v", doc.Protocols[1]["name"])
	}
	if doc.Protocols[1]["bits"] != int64(12) {
		t.Fatalf("bits=%#v", doc.Protocols[1]["bits"])
	}
	codes, ok := doc.Protocols[0]["scancodes"].(map[string]any)
	if !ok || codes["0x7a1f"] != "KEY_POWER" {
		t.Fatalf("scancodes=%#v", doc.Protocols[0]["scancodes"])
	}
}

func TestTOMLString_Escapes(t *testing.T) {
	cases := map[string]string{
		"plain":     "'plain'",
		`a"b`:       `'a"b'`,
		"tab\there": "'tab\there'",
		"l1\nl2":    `"l1\nl2"`,
		`it's\x`:    `"it's\\x"`,
		"bell\a":    `"bell\u0007"`,
	}
	for in, want := range cases {
		if got := tomlString(in); got != want {
			t.Fatalf("tomlString(%q)=%s, want=%s", in, got, want)
		}
	}
}

func TestRender_YAML(t *testing.T) {
	out, err := Render(TargetYAML, []model.ProtocolRecord{necRecord(), pulseRecord()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out, "protocols:\n") {
		t.Fatalf("unexpected yaml:\n%s", out)
	}
	if strings.Index(out, "name: Yamaha RAV") > strings.Index(out, "protocol: nec") {
		t.Fatalf("key order not preserved:\n%s", out)
	}

	var doc struct {
		Protocols []struct {
			Name        string            `yaml:"name"`
			Protocol    string            `yaml:"protocol"`
			Variant     string            `yaml:"variant"`
			HeaderPulse int               `yaml:"header_pulse"`
			Scancodes   map[uint64]string `yaml:"scancodes"`
		} `yaml:"protocols"`
	}
	if err := yaml.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("output is not valid YAML: %v\n%s", err, out)
	}
	if len(doc.Protocols) != 2 {
		t.Fatalf("protocols=%d, want=2", len(doc.Protocols))
	}
	if doc.Protocols[0].Variant != "nec" || doc.Protocols[0].Scancodes[0x7a1f] != "KEY_POWER" {
		t.Fatalf("protocol0=%+v", doc.Protocols[0])
	}
	if doc.Protocols[1].Name != "it's" || doc.Protocols[1].HeaderPulse != 9000 || doc.Protocols[1].Scancodes[0x100] != "KEY_2" {
		t.Fatalf("protocol1=%+v", doc.Protocols[1])
	}
}

func TestRender_Errors(t *testing.T) {
	_, err := Render(TargetTOML, nil)
	var re *RenderError
	if !errors.As(err, &re) || re.AppError.Code != "INVALID_ARGUMENT" {
		t.Fatalf("expected INVALID_ARGUMENT, got %v", err)
	}

	_, err = Render(Target("json"), []model.ProtocolRecord{necRecord()})
	if !errors.As(err, &re) || re.AppError.Code != "UNSUPPORTED_TARGET" || re.AppError.Stage != "render" {
		t.Fatalf("expected UNSUPPORTED_TARGET, got %v", err)
	}
}

func TestParseTarget(t *testing.T) {
	for in, want := range map[string]Target{"": TargetTOML, "TOML": TargetTOML, "yml": TargetYAML, "yaml": TargetYAML} {
		got, ok := ParseTarget(in)
		if !ok || got != want {
			t.Fatalf("ParseTarget(%q)=%q,%v", in, got, ok)
		}
	}
	if _, ok := ParseTarget("json"); ok {
		t.Fatalf("json should be rejected")
	}
}
