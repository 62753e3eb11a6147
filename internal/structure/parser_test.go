package structure

import (
	"strings"
	"testing"

	"yamlassist/internal/document"
)

func parseText(t *testing.T, lines ...string) (*Tree, string) {
	t.Helper()
	text := strings.Join(lines, "\n")
	return Parse(document.New("test.yaml", text)), text
}

func TestParseKeysAndSequences(t *testing.T) {
	tree, text := parseText(t,
		"name: api",
		"deps:",
		"- id: db",
		"  version: 2",
		"- id: cache",
		"ports:",
		"  - 80",
	)
	doc := tree.Docs()[0]
	if len(doc.Children()) != 3 {
		t.Fatalf("expected 3 top-level keys, got %d", len(doc.Children()))
	}
	deps := doc.ChildByKey("deps")
	if deps == nil || len(deps.SeqChildren()) != 2 {
		t.Fatalf("expected deps with two items, got %+v", deps)
	}
	version := tree.Find(strings.Index(text, "version") + 2)
	if version.Kind() != Key || version.Key() != "version" {
		t.Fatalf("expected version key, got %s %q", version.Kind(), version.Key())
	}
	if got := version.Path().String(); got != "deps[0].version" {
		t.Fatalf("expected path deps[0].version, got %s", got)
	}
	second := tree.Find(strings.Index(text, "cache"))
	if got := second.Path().String(); got != "deps[1].id" {
		t.Fatalf("expected deps[1].id, got %s", got)
	}
	port := tree.Find(strings.Index(text, "80"))
	if port.Kind() != Seq || port.Path().String() != "ports[0]" {
		t.Fatalf("expected seq ports[0], got %s %s", port.Kind(), port.Path())
	}
	if port.Indent() != 2 {
		t.Fatalf("expected indent 2, got %d", port.Indent())
	}
}

func TestBlankLineAttachesToDeepestOpenNode(t *testing.T) {
	tree, text := parseText(t,
		"a:",
		"  b:",
		"",
	)
	blank := tree.Find(len(text))
	if !blank.IsBlank() {
		t.Fatalf("expected blank raw node, got %s", blank.Kind())
	}
	if blank.Parent().Key() != "b" {
		t.Fatalf("expected blank line under b, got %q", blank.Parent().Key())
	}
	if !blank.Parent().IsBarren() {
		t.Fatalf("expected b to be barren")
	}
}

func TestRawAndValueRegions(t *testing.T) {
	tree, text := parseText(t,
		"kind: web # comment",
		"na",
		"url: http://x",
	)
	kind := tree.Find(strings.Index(text, "web"))
	if kind.Kind() != Key || !kind.IsInValue(strings.Index(text, "web")) {
		t.Fatalf("expected value region of kind")
	}
	if kind.ValueText() != "web" {
		t.Fatalf("expected comment excluded from value, got %q", kind.ValueText())
	}
	raw := tree.Find(strings.Index(text, "na") + 2)
	if raw.Kind() != Raw || raw.Indent() != 0 {
		t.Fatalf("expected raw node at indent 0, got %s %d", raw.Kind(), raw.Indent())
	}
	url := tree.Find(strings.Index(text, "http"))
	if url.Key() != "url" || url.ValueText() != "http://x" {
		t.Fatalf("expected url key, got %q=%q", url.Key(), url.ValueText())
	}
}

func TestNestedSequenceOnOneLine(t *testing.T) {
	tree, text := parseText(t, "- - x")
	n := tree.Find(strings.Index(text, "x"))
	if n.Kind() != Seq || n.Indent() != 2 {
		t.Fatalf("expected inner seq at indent 2, got %s %d", n.Kind(), n.Indent())
	}
	if got := n.Path().String(); got != "[0][0]" {
		t.Fatalf("expected path [0][0], got %s", got)
	}
}

func TestMultipleDocuments(t *testing.T) {
	tree, text := parseText(t,
		"a: 1",
		"---",
		"b: 2",
	)
	if len(tree.Docs()) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(tree.Docs()))
	}
	b := tree.Find(strings.Index(text, "b"))
	if b.Parent() != tree.Docs()[1] {
		t.Fatalf("expected b in the second document")
	}
	if got := b.Path().String(); got != "b" {
		t.Fatalf("expected document-relative path, got %s", got)
	}
}

func TestTraverse(t *testing.T) {
	tree, _ := parseText(t,
		"deps:",
		"  - id: db",
		"  - id: cache",
	)
	root := tree.Docs()[0]
	n := Traverse(root, tree.Find(len("deps:\n  - id: db\n  - id: ca")).Path())
	if n == nil || n.Key() != "id" {
		t.Fatalf("expected traversal to reach id, got %+v", n)
	}
	if Traverse(root, n.Path().Parent().Parent().Append(n.Path()[1]).Append(n.Path()[2])) != n {
		t.Fatalf("expected rebuilt path to reach the same node")
	}
}

func TestCachingProviderReusesTrees(t *testing.T) {
	p, err := NewCachingProvider(LineParser{}, 4)
	if err != nil {
		t.Fatalf("NewCachingProvider: %v", err)
	}
	a := p.Parse(document.New("a.yaml", "x: 1"))
	b := p.Parse(document.New("b.yaml", "x: 1"))
	if a != b {
		t.Fatalf("expected identical text to share a tree")
	}
	p.Parse(document.New("c.yaml", "y: 2"))
	if p.Len() != 2 {
		t.Fatalf("expected 2 cached trees, got %d", p.Len())
	}
}
