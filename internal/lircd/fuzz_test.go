package lircd

import (
	"strings"
	"testing"
)

func FuzzParseText(f *testing.F) {
	seed := []string{
		"",
		"begin remote\nend remote\n",
		necConf,
		"begin remote\n  flags RC5|CONST_LENGTH\n  bits 13\n  begin codes\n    KEY_1 0x1001\n  end codes\nend remote\n",
		"begin remote\n  begin raw_codes\n    name x\n    1 2 3\n  end raw_codes\nend remote\n",
		"begin remote\n  bits\n",
	}
	for _, s := range seed {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, content string) {
		remotes, err := ParseText("fuzz.conf", content)
		if err != nil {
			if remotes != nil {
				t.Fatalf("remotes must be nil on error")
			}
			return
		}
		for _, r := range remotes {
			if r.Name == "" {
				t.Fatalf("remote without name")
			}
			if r.Codes != nil && r.RawCodes != nil {
				t.Fatalf("codes and raw_codes both set")
			}
			for _, c := range r.Codes.Entries() {
				if !strings.HasPrefix(c.Key, DefaultKeyPrefix) {
					t.Fatalf("key %q lacks prefix", c.Key)
				}
			}
		}
	})
}
