package assist

import (
	"context"
	"strings"

	"yamlassist/internal/document"
	"yamlassist/internal/structure"
	"yamlassist/internal/trace"
	"yamlassist/internal/yamlpath"
)

// request holds everything scoped to a single completion call. Nothing in
// it outlives the call.
type request struct {
	ctx    context.Context
	engine *Engine
	doc    *document.Document
	tree   *structure.Tree
	root   *structure.Node // document node containing the cursor
	offset int
	tracer trace.Tracer
	span   uint64

	dynamic map[string]*dynamicContext
}

func (e *Engine) newRequest(ctx context.Context, doc *document.Document, tree *structure.Tree, offset int, span uint64) *request {
	return &request{
		ctx:     ctx,
		engine:  e,
		doc:     doc,
		tree:    tree,
		root:    tree.DocAt(offset),
		offset:  offset,
		tracer:  trace.FromContext(ctx),
		span:    span,
		dynamic: make(map[string]*dynamicContext),
	}
}

func (r *request) schema() TypeSchema { return r.engine.schema }
func (r *request) opts() *Options     { return &r.engine.opts }

// nodeAt returns the document node addressed by path, or nil.
func (r *request) nodeAt(path yamlpath.Path) *structure.Node {
	return structure.Traverse(r.root, path)
}

// dynamicAt returns the dynamic context for path, memoised per request.
func (r *request) dynamicAt(path yamlpath.Path) *dynamicContext {
	key := path.String()
	if dc, ok := r.dynamic[key]; ok {
		return dc
	}
	dc := &dynamicContext{node: r.nodeAt(path)}
	r.dynamic[key] = dc
	return dc
}

// prefixStart finds where the text the user is typing begins: after the
// colon and blanks in a key's value, after the dash in a sequence item, or
// at the nearest blank or comma otherwise.
func (r *request) prefixStart(node *structure.Node, offset int) int {
	if (node.Kind() == structure.Key || node.Kind() == structure.Seq) && node.IsInValue(offset) {
		if start := node.ValueStart(); start <= offset {
			return start
		}
		return offset
	}
	lineStart := r.doc.LineStart(r.doc.LineOfOffset(offset))
	start := offset
	for start > lineStart {
		c := r.doc.Char(start - 1)
		if c == ' ' || c == '\t' || c == ',' {
			break
		}
		start--
	}
	return start
}

func (r *request) prefix(node *structure.Node, offset int) string {
	return r.doc.TextBetween(r.prefixStart(node, offset), offset)
}

// needsLeadingSpace reports whether text inserted at offset would touch a
// preceding token on the same line.
func (r *request) needsLeadingSpace(offset int) bool {
	if offset <= r.doc.LineStart(r.doc.LineOfOffset(offset)) {
		return false
	}
	c := r.doc.Char(offset - 1)
	return c != ' ' && c != '\t'
}

// leadingSpace is the separator text inserted at offset needs.
func (r *request) leadingSpace(offset int) string {
	if r.needsLeadingSpace(offset) {
		return " "
	}
	return ""
}

// referenceIndent is the indent of the node at path, falling back to the
// current node's own indent.
func (r *request) referenceIndent(path yamlpath.Path, node *structure.Node, offset int) int {
	if n := r.nodeAt(path); n != nil && n.Kind() != structure.Doc && n.Indent() >= 0 {
		return n.Indent()
	}
	if node.Indent() >= 0 {
		return node.Indent()
	}
	return r.doc.Column(r.prefixStart(node, offset))
}

func (r *request) errorProposal(err error) Proposal {
	trace.Error(r.tracer, trace.ScopeContext, "hint-values", err, r.span)
	return errorProposal(err.Error(), r.opts().ErrorScore)
}

// dynamicContext answers schema questions about the document node at a
// context path.
type dynamicContext struct {
	node    *structure.Node
	defined map[string]struct{}
}

func (d *dynamicContext) DefinedProperties() map[string]struct{} {
	if d.defined != nil {
		return d.defined
	}
	d.defined = make(map[string]struct{})
	if d.node == nil {
		return d.defined
	}
	for _, c := range d.node.Children() {
		if c.Kind() == structure.Key {
			d.defined[c.Key()] = struct{}{}
		}
	}
	return d.defined
}

func (d *dynamicContext) ValueOf(name string) (string, bool) {
	if d.node == nil {
		return "", false
	}
	c := d.node.ChildByKey(name)
	if c == nil {
		return "", false
	}
	return unquote(c.ValueText()), true
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(" ", n)
}

// indentLines prefixes every line after the first with indent spaces.
func indentLines(text string, indent int) string {
	if !strings.Contains(text, "\n") || indent <= 0 {
		return text
	}
	return strings.ReplaceAll(text, "\n", "\n"+spaces(indent))
}
