package fuzztests

import (
	"testing"

	"yamlassist/internal/document"
	"yamlassist/internal/structure"
)

func FuzzStructureParse(f *testing.F) {
	addDocumentSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		doc := document.New("fuzz.yaml", string(clip(input)))
		tree := structure.Parse(doc)
		if len(tree.Docs()) == 0 {
			t.Fatal("tree has no document node")
		}
		for offset := 0; offset <= doc.Len(); offset++ {
			n := tree.Find(offset)
			if n == nil {
				t.Fatalf("Find(%d) returned nil", offset)
			}
			checkNode(t, n)
		}
	})
}

func checkNode(t *testing.T, n *structure.Node) {
	t.Helper()
	depth := 0
	for cur := n; cur != nil; cur = cur.Parent() {
		if cur.Start() > cur.End() {
			t.Fatalf("node %v on line %d has start %d after end %d", cur.Kind(), cur.Line(), cur.Start(), cur.End())
		}
		if cur.Parent() == nil && cur.Kind() != structure.Doc {
			t.Fatalf("root of %v on line %d is %v, not a document", n.Kind(), n.Line(), cur.Kind())
		}
		depth++
		if depth > maxFuzzInput {
			t.Fatal("parent chain does not terminate")
		}
	}
	_ = n.Path().String()
}
