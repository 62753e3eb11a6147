// Package structure recovers a coarse, indentation-based outline of a YAML
// document. It never fails: incomplete text degrades to Raw nodes.
package structure

import (
	"strings"

	"yamlassist/internal/document"
	"yamlassist/internal/yamlpath"
)

// Provider turns a document into its structure tree.
type Provider interface {
	Parse(doc *document.Document) *Tree
}

// LineParser is the default Provider.
type LineParser struct{}

func (LineParser) Parse(doc *document.Document) *Tree { return Parse(doc) }

// Tree is the parsed outline of one buffer, which may hold several YAML
// documents separated by `---`.
type Tree struct {
	doc       *document.Document
	docs      []*Node
	lineNodes []*Node // outermost node per line, nil for comment lines
}

func (t *Tree) Document() *document.Document { return t.doc }

// Docs returns the document nodes in order.
func (t *Tree) Docs() []*Node { return t.docs }

// DocAt returns the document node that contains offset.
func (t *Tree) DocAt(offset int) *Node {
	found := t.docs[0]
	for _, d := range t.docs {
		if d.start <= offset {
			found = d
		}
	}
	return found
}

// Find returns the deepest node on the offset's line that starts at or before
// offset. Comment lines resolve to the enclosing document.
func (t *Tree) Find(offset int) *Node {
	if t.doc.CheckOffset(offset) != nil {
		return nil
	}
	line := t.doc.LineOfOffset(offset)
	n := t.lineNodes[line]
	if n == nil {
		return t.DocAt(offset)
	}
	if n.kind == Doc {
		return n
	}
	for {
		var next *Node
		for _, c := range n.children {
			if c.line == line && c.start <= offset {
				next = c
			}
		}
		if next == nil {
			return n
		}
		n = next
	}
}

// Traverse follows path from root and returns the node it addresses, or nil.
func Traverse(root *Node, path yamlpath.Path) *Node {
	n := root
	for _, seg := range path {
		if n == nil {
			return nil
		}
		switch seg.Kind {
		case yamlpath.KeySegment:
			n = n.ChildByKey(seg.Key)
		case yamlpath.IndexSegment:
			items := n.SeqChildren()
			if seg.Index < 0 || seg.Index >= len(items) {
				return nil
			}
			n = items[seg.Index]
		default:
			return nil
		}
	}
	return n
}

// Parse builds the structure tree of doc.
func Parse(doc *document.Document) *Tree {
	p := &parser{
		doc:  doc,
		tree: &Tree{doc: doc, lineNodes: make([]*Node, doc.LineCount())},
	}
	p.startDoc(0, 0)
	for line := 0; line < doc.LineCount(); line++ {
		p.parseLine(line)
	}
	for _, d := range p.tree.docs {
		finish(d)
	}
	return p.tree
}

type parser struct {
	doc   *document.Document
	tree  *Tree
	stack []*Node // open nodes, stack[0] is the current document
}

func (p *parser) startDoc(start, line int) *Node {
	if n := len(p.tree.docs); n > 0 && len(p.tree.docs[n-1].children) == 0 && p.tree.docs[n-1].start == 0 && line > 0 {
		p.tree.docs = p.tree.docs[:n-1]
	}
	d := &Node{kind: Doc, indent: 0, start: start, end: start, line: line, marker: -1, doc: p.doc}
	p.tree.docs = append(p.tree.docs, d)
	p.stack = append(p.stack[:0], d)
	return d
}

func (p *parser) parseLine(line int) {
	start, end := p.doc.LineStart(line), p.doc.LineEnd(line)
	text := p.doc.TextBetween(start, end)
	if isDocSeparator(text) {
		p.tree.lineNodes[line] = p.startDoc(start, line)
		return
	}
	indent := 0
	for indent < len(text) && text[indent] == ' ' {
		indent++
	}
	rest := text[indent:]
	if strings.TrimSpace(rest) == "" {
		n := &Node{kind: Raw, indent: -1, start: start, end: end, line: line, contentEnd: end, marker: -1, doc: p.doc}
		top := p.stack[len(p.stack)-1]
		n.parent = top
		top.children = append(top.children, n)
		p.tree.lineNodes[line] = n
		return
	}
	if rest[0] == '#' {
		return
	}
	contentEnd := end
	if cs := document.CommentStart(text); cs >= 0 {
		contentEnd = start + len(strings.TrimRight(text[:cs], " \t"))
	}
	n := p.parseAt(start+indent, contentEnd, line)
	p.place(n)
	p.tree.lineNodes[line] = n
}

// parseAt classifies the text between off and contentEnd, recursing into the
// remainder of a sequence item.
func (p *parser) parseAt(off, contentEnd, line int) *Node {
	text := p.doc.TextBetween(off, contentEnd)
	n := &Node{
		indent:     p.doc.Column(off),
		start:      off,
		end:        p.doc.LineEnd(line),
		line:       line,
		contentEnd: contentEnd,
		marker:     -1,
		doc:        p.doc,
	}
	switch {
	case text == "-" || strings.HasPrefix(text, "- "):
		n.kind = Seq
		n.marker = off
		j := 1
		for j < len(text) && text[j] == ' ' {
			j++
		}
		if j < len(text) {
			child := p.parseAt(off+j, contentEnd, line)
			if child.kind != Raw {
				child.parent = n
				n.children = append(n.children, child)
			}
		}
	default:
		if colon := keyColon(text); colon >= 0 {
			n.kind = Key
			n.marker = off + colon
			n.key = unquote(strings.TrimSpace(text[:colon]))
		} else {
			n.kind = Raw
		}
	}
	return n
}

// place attaches n to the nearest open node with a smaller indent and pushes
// n together with its same-line descendants.
func (p *parser) place(n *Node) {
	for len(p.stack) > 1 {
		top := p.stack[len(p.stack)-1]
		if top.indent < n.indent {
			break
		}
		if top.indent == n.indent && n.kind == Seq && top.kind == Key && top.IsBarren() {
			break
		}
		p.stack = p.stack[:len(p.stack)-1]
	}
	top := p.stack[len(p.stack)-1]
	n.parent = top
	top.children = append(top.children, n)
	for c := n; c != nil; c = c.LastChild() {
		p.stack = append(p.stack, c)
	}
}

func finish(n *Node) int {
	for _, c := range n.children {
		if e := finish(c); e > n.end {
			n.end = e
		}
	}
	return n.end
}

func isDocSeparator(text string) bool {
	return text == "---" || strings.HasPrefix(text, "--- ")
}

// keyColon returns the index of the mapping colon in text, or -1. The colon
// must be followed by a blank or the end of text and lie outside quotes and
// flow collections.
func keyColon(text string) int {
	if text == "" {
		return -1
	}
	switch text[0] {
	case '[', '{', '?', '|', '>', '&', '*', '!':
		return -1
	}
	i := 0
	if q := text[0]; q == '"' || q == '\'' {
		end := strings.IndexByte(text[1:], q)
		if end < 0 {
			return -1
		}
		i = end + 2
	}
	depth := 0
	for ; i < len(text); i++ {
		switch text[i] {
		case '[', '{':
			depth++
		case ']', '}':
			if depth > 0 {
				depth--
			}
		case ':':
			if depth == 0 && (i+1 == len(text) || text[i+1] == ' ' || text[i+1] == '\t') {
				return i
			}
		}
	}
	return -1
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
