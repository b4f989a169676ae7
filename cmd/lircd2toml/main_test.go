package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const necConf = `begin remote
  name  Yamaha RAV
  bits           16
  flags SPACE_ENC|CONST_LENGTH
  header       9067  4393
  one           642  1571
  zero          642   470
  ptrail        642
  repeat       9065  2139
  pre_data_bits   16
  pre_data       0x5EA1
  begin codes
    KEY_POWER        0xF807
  end codes
end remote
`

const brokenConf = `begin remote
  name  broken
  bits  8
  begin codes
    KEY_1  0x01
  end codes
end remote
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestRun_Stdout(t *testing.T) {
	in := writeFile(t, t.TempDir(), "rav.lircd.conf", necConf)
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{in}, nil, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())
	require.Equal(t, "[[protocols]]\n"+
		"name = 'Yamaha RAV'\n"+
		"protocol = 'nec'\n"+
		"variant = 'nec'\n"+
		"[protocols.scancodes]\n"+
		"0x7a1f = 'KEY_POWER'\n", stdout.String())
	require.Contains(t, stderr.String(), "remote looks exactly like NEC")
}

func TestRun_OutputFileAndProfile(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "rav.lircd.conf", necConf+brokenConf)
	prof := writeFile(t, dir, "profile.yaml", "version: 1\ntarget: yaml\nskip: [broken]\n")
	out := filepath.Join(dir, "rav.yaml")
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"-o", out, "-profile", prof, in}, nil, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())
	require.Empty(t, stdout.String())

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(b), "protocols:\n"), string(b))
	require.Contains(t, string(b), "name: Yamaha RAV")
}

func TestRun_Stdin(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-target", "yaml", "-"}, strings.NewReader(necConf), &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())
	require.Contains(t, stdout.String(), "protocol: nec")
}

func TestRun_Latin1(t *testing.T) {
	conf := strings.Replace(necConf, "Yamaha RAV", "Caf\xe9", 1)
	in := writeFile(t, t.TempDir(), "cafe.conf", conf)
	var stdout, stderr bytes.Buffer

	require.Equal(t, exitFatal, run(context.Background(), []string{in}, nil, &stdout, &stderr))

	stdout.Reset()
	code := run(context.Background(), []string{"-encoding", "latin1", in}, nil, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())
	require.Contains(t, stdout.String(), "name = 'Café'")
}

func TestRun_ExitCodes(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.conf", necConf)
	broken := writeFile(t, dir, "broken.conf", brokenConf)
	garbage := writeFile(t, dir, "garbage.conf", "begin remote\n  bits 16\n")

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"no input", nil, exitFatal},
		{"missing file", []string{filepath.Join(dir, "nope.conf")}, exitFatal},
		{"parse error", []string{garbage}, exitFatal},
		{"no convertible remotes", []string{broken}, exitFatal},
		{"bad target", []string{"-target", "json", good}, exitFatal},
		{"bad encoding", []string{"-encoding", "klingon", good}, exitFatal},
		{"bad flag", []string{"-nope", good}, exitFatal},
		{"unwritable output", []string{"-o", filepath.Join(dir, "missing", "out.toml"), good}, exitOutput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			require.Equal(t, tt.want, run(context.Background(), tt.args, nil, &stdout, &stderr), stderr.String())
		})
	}
}

func TestRun_NoConvertibleMessage(t *testing.T) {
	in := writeFile(t, t.TempDir(), "broken.conf", brokenConf)
	var stdout, stderr bytes.Buffer
	require.Equal(t, exitFatal, run(context.Background(), []string{in}, nil, &stdout, &stderr))
	require.Contains(t, stderr.String(), "no convertible remotes found")
	require.Empty(t, stdout.String())
}
