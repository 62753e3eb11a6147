package assist

import (
	"yamlassist/internal/schema"
	"yamlassist/internal/structure"
	"yamlassist/internal/trace"
	"yamlassist/internal/yamlpath"
)

type contextKind uint8

const (
	topLevel contextKind = iota + 1
	typed
)

// Context is a position in the schema reached by following a path from the
// top of a document. It is either the top level or a typed location.
type Context struct {
	kind   contextKind
	path   yamlpath.Path
	typ    *schema.Type
	parent *Context
	// relaxed contexts stand for a sequence item that does not exist yet
	relaxed bool
}

func topLevelContext(root *schema.Type) *Context {
	return &Context{kind: topLevel, typ: root}
}

func (c *Context) Path() yamlpath.Path { return c.path }
func (c *Context) Type() *schema.Type  { return c.typ }
func (c *Context) IsTopLevel() bool    { return c.kind == topLevel }

// traverse steps into seg, or returns nil when the schema has nothing there.
func (c *Context) traverse(req *request, seg yamlpath.Segment) *Context {
	s := req.schema()
	t := s.InferMoreSpecificType(c.typ, req.dynamicAt(c.path))
	next := resolveSegment(s, t, seg)
	if next == nil {
		return nil
	}
	return &Context{kind: typed, path: c.path.Append(seg), typ: next, parent: c}
}

func resolveSegment(s TypeSchema, t *schema.Type, seg yamlpath.Segment) *schema.Type {
	if t == nil {
		return nil
	}
	if s.IsTrueUnion(t) {
		var found []*schema.Type
		for _, m := range s.UnionMembers(t) {
			if r := resolveSegment(s, m, seg); r != nil && !containsType(found, r) {
				found = append(found, r)
			}
		}
		switch len(found) {
		case 0:
			return nil
		case 1:
			return found[0]
		default:
			return &schema.Type{Name: t.Name, Kind: schema.Union, Members: found}
		}
	}
	switch seg.Kind {
	case yamlpath.KeySegment:
		switch {
		case s.IsMap(t):
			return s.DomainType(t)
		case s.IsBean(t):
			props := s.Properties(t, nil)
			if len(props) == 0 {
				return t
			}
			for _, p := range props {
				if p.Name == seg.Key {
					return p.Type
				}
			}
		}
	case yamlpath.IndexSegment:
		if s.IsSequencable(t) {
			return s.DomainType(t)
		}
	}
	return nil
}

func containsType(ts []*schema.Type, t *schema.Type) bool {
	for _, x := range ts {
		if x == t {
			return true
		}
	}
	return false
}

// completions computes the proposals this context offers for the text at
// offset inside node.
func (c *Context) completions(req *request, node *structure.Node, offset int) []Proposal {
	if c.kind == topLevel && c.typ == nil {
		return nil
	}
	s := req.schema()
	dc := req.dynamicAt(c.path)
	t := s.InferMoreSpecificType(c.typ, dc)
	if t == nil {
		return nil
	}
	span := trace.Begin(req.tracer, trace.ScopeContext, "context "+c.path.String(), req.span)
	defer span.End(t.Name)

	if name, ok := s.CustomAssistant(t); ok {
		if a, found := req.opts().Assistants[name]; found {
			return a.Complete(req.customRequest(c, t, node, offset))
		}
		trace.Point(req.tracer, trace.ScopeContext, "unknown-assistant", name, span.ID())
	}

	if s.IsTrueUnion(t) {
		var out []Proposal
		for _, m := range s.UnionMembers(t) {
			sub := &Context{kind: typed, path: c.path, typ: m, parent: c.parent, relaxed: c.relaxed}
			out = append(out, sub.completions(req, node, offset)...)
		}
		return out
	}

	prefix := req.prefix(node, offset)
	out := c.valueCompletions(req, t, dc, node, offset, prefix)
	if len(out) == 0 {
		out = append(out, c.snippetCompletions(req, t, dc, node, offset, prefix)...)
		out = append(out, c.keyCompletions(req, t, dc, node, offset, prefix)...)
	}
	if s.IsSequencable(t) && !c.relaxed {
		out = append(out, c.dashCompletions(req, t, node, offset)...)
	}
	return out
}
