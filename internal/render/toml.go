package render

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/John-Robertt/lircd2toml-go/internal/model"
)

func renderTOML(records []model.ProtocolRecord) string {
	var b strings.Builder
	for _, r := range records {
		b.WriteString("[[protocols]]\n")
		b.WriteString("name = " + tomlString(r.Name) + "\n")
		b.WriteString("protocol = " + tomlString(string(r.Protocol)) + "\n")
		for _, p := range r.Params {
			if p.IsLabel() {
				b.WriteString(p.Key + " = " + tomlString(p.Label) + "\n")
				continue
			}
			b.WriteString(p.Key + " = " + strconv.FormatInt(p.Value, 10) + "\n")
		}
		b.WriteString("[protocols.scancodes]\n")
		entries := r.Scancodes.Entries()
		digits := hexDigits(entries)
		for _, e := range entries {
			b.WriteString(formatScancode(e.Code, digits) + " = " + tomlString(e.Key) + "\n")
		}
	}
	return b.String()
}

// tomlString quotes s as a literal string when TOML allows it, otherwise as
// an escaped basic string.
func tomlString(s string) string {
	if canLiteral(s) {
		return "'" + s + "'"
	}
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if unicode.IsControl(r) {
				fmt.Fprintf(&b, `\u%04X`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func canLiteral(s string) bool {
	for _, r := range s {
		if r == '\'' {
			return false
		}
		if r != '\t' && unicode.IsControl(r) {
			return false
		}
	}
	return true
}
