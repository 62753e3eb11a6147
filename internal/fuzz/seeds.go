package fuzztests

import (
	"strings"
	"testing"
)

// maxFuzzInput bounds the buffers handed to the harnesses.
const maxFuzzInput = 4 << 10

// documentSeeds are small buffers covering the shapes the parser classifies.
var documentSeeds = []string{
	"",
	"\n",
	"kind: web\nname: \n",
	"spec:\n  ports:\n  - 80\n  - name: http\n    port: 8080\n",
	"items:\n- id: a\n-\n  id: b\n",
	"a: 'quoted: colon'\nb: \"x # not comment\" # comment\n",
	"---\nkind: web\n---\nkind: cli\n",
	"- - nested\n  - seq\n",
	"key:\n\n\n  child: 1\n",
	"# only a comment\n",
	"k: v\n\tk2: tab\n",
	"url: http://example.com:8080/x\n",
	strings.Repeat("  ", 40) + "deep: 1\n",
}

// probe is a document with a cursor, for harnesses that complete.
type probe struct {
	text   string
	offset int
}

// probeSeeds lists documents with a cursor in a key, a value or a blank line.
var probeSeeds = []probe{
	{"kind: web\n", 10},
	{"kind: ", 6},
	{"kind: w", 7},
	{"na", 2},
	{"spec:\n", 6},
	{"spec:\n  ", 8},
	{"items: ", 7},
	{"items:\n  ", 9},
	{"items:\n- id: a\n", 15},
	{"timeout: 10", 11},
	{"# comment", 5},
}

func addDocumentSeeds(f *testing.F) {
	for _, s := range documentSeeds {
		f.Add([]byte(s))
	}
}

func addProbeSeeds(f *testing.F) {
	for _, p := range probeSeeds {
		f.Add(p.text, uint16(p.offset))
	}
	for _, s := range documentSeeds {
		f.Add(s, uint16(len(s)))
	}
}

func clip(input []byte) []byte {
	if len(input) > maxFuzzInput {
		input = input[:maxFuzzInput]
	}
	return append([]byte(nil), input...)
}
