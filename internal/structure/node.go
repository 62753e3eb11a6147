package structure

import (
	"strings"

	"yamlassist/internal/document"
	"yamlassist/internal/yamlpath"
)

// Kind classifies a structure node.
type Kind uint8

const (
	Doc Kind = iota + 1 // a whole YAML document
	Key                 // `key:` line
	Seq                 // `- ` sequence item
	Raw                 // anything else, including blank lines
)

func (k Kind) String() string {
	switch k {
	case Doc:
		return "doc"
	case Key:
		return "key"
	case Seq:
		return "seq"
	case Raw:
		return "raw"
	default:
		return "unknown"
	}
}

// Node is one element of the coarse document structure. Nodes are immutable
// once the parser returns.
type Node struct {
	kind       Kind
	indent     int
	start, end int
	line       int
	contentEnd int // end of own line content, comment excluded
	key        string
	marker     int // colon offset for Key, dash offset for Seq
	parent     *Node
	children   []*Node
	doc        *document.Document
}

func (n *Node) Kind() Kind { return n.kind }

// Indent is the column of the node's first character, or -1 for a blank line.
func (n *Node) Indent() int { return n.indent }

func (n *Node) Start() int { return n.start }

// End is the end offset of the node including all of its descendants.
func (n *Node) End() int { return n.end }

// Line is the zero-based line the node starts on.
func (n *Node) Line() int { return n.line }

func (n *Node) Parent() *Node { return n.parent }

func (n *Node) Children() []*Node { return n.children }

// Key returns the unquoted key text of a Key node.
func (n *Node) Key() string { return n.key }

// ColonOffset returns the offset of the key's colon, or -1 for non-key nodes.
func (n *Node) ColonOffset() int {
	if n.kind != Key {
		return -1
	}
	return n.marker
}

// DashOffset returns the offset of the item's dash, or -1 for non-seq nodes.
func (n *Node) DashOffset() int {
	if n.kind != Seq {
		return -1
	}
	return n.marker
}

// IsInValue reports whether offset lies in the value region of a key or a
// sequence item.
func (n *Node) IsInValue(offset int) bool {
	switch n.kind {
	case Key, Seq:
		return offset > n.marker
	default:
		return false
	}
}

// ValueStart returns the offset of the first non-blank character after the
// colon or dash, bounded by the end of the line content.
func (n *Node) ValueStart() int {
	if n.kind != Key && n.kind != Seq {
		return n.start
	}
	i := n.marker + 1
	for i < n.contentEnd && n.doc.Char(i) == ' ' {
		i++
	}
	return i
}

// ValueEnd returns the end of the inline value (trailing comment excluded).
func (n *Node) ValueEnd() int { return n.contentEnd }

// ValueText returns the inline value of a key or sequence item.
func (n *Node) ValueText() string {
	if n.kind != Key && n.kind != Seq {
		return ""
	}
	return strings.TrimSpace(n.doc.TextBetween(n.ValueStart(), n.contentEnd))
}

// IsBarren reports whether a key or dash has nothing after it on its line.
func (n *Node) IsBarren() bool {
	if n.kind != Key && n.kind != Seq {
		return false
	}
	return n.ValueText() == ""
}

// IsBlank reports whether the node stands for a whitespace-only line.
func (n *Node) IsBlank() bool {
	return n.kind == Raw && n.indent < 0
}

// TextWithoutChildren returns the node's own line text.
func (n *Node) TextWithoutChildren() string {
	if n.kind == Doc {
		return ""
	}
	return n.doc.TextBetween(n.start, n.doc.LineEnd(n.line))
}

// Path returns the location of the node from its document root. Raw nodes
// share the path of their parent.
func (n *Node) Path() yamlpath.Path {
	if n.parent == nil {
		return nil
	}
	p := n.parent.Path()
	switch n.kind {
	case Key:
		return p.Append(yamlpath.Key(n.key))
	case Seq:
		idx := 0
		for _, c := range n.parent.children {
			if c == n {
				break
			}
			if c.kind == Seq {
				idx++
			}
		}
		return p.Append(yamlpath.Index(idx))
	default:
		return p
	}
}

// AsRaw returns a copy of the node reclassified as Raw. The copy shares the
// original's parent and children but is not registered in the tree.
func (n *Node) AsRaw() *Node {
	cp := *n
	cp.kind = Raw
	cp.marker = -1
	return &cp
}

// LastChild returns the last child, or nil.
func (n *Node) LastChild() *Node {
	if len(n.children) == 0 {
		return nil
	}
	return n.children[len(n.children)-1]
}

// ChildByKey returns the first Key child named key.
func (n *Node) ChildByKey(key string) *Node {
	for _, c := range n.children {
		if c.kind == Key && c.key == key {
			return c
		}
	}
	return nil
}

// SeqChildren returns the Seq children in document order.
func (n *Node) SeqChildren() []*Node {
	var out []*Node
	for _, c := range n.children {
		if c.kind == Seq {
			out = append(out, c)
		}
	}
	return out
}

// FollowingSiblings returns the siblings after n in document order.
func (n *Node) FollowingSiblings() []*Node {
	if n.parent == nil {
		return nil
	}
	for i, c := range n.parent.children {
		if c == n || (c.start == n.start && c.line == n.line) {
			return n.parent.children[i+1:]
		}
	}
	return nil
}
