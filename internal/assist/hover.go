package assist

import (
	"context"
	"fmt"
	"strings"

	"yamlassist/internal/document"
	"yamlassist/internal/schema"
	"yamlassist/internal/structure"
	"yamlassist/internal/trace"
)

// Hover is the documentation shown for the token under the cursor.
type Hover struct {
	// Markdown is the rendered documentation.
	Markdown string
	// Start and End delimit the token the documentation is about.
	Start, End int
}

// Hover documents the key or value at offset. It reports false when the
// schema has nothing to say about it.
func (e *Engine) Hover(ctx context.Context, doc *document.Document, offset int) (h Hover, ok bool, err error) {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeRequest, "hover", trace.CurrentSpan(ctx))
	defer func() {
		if r := recover(); r != nil {
			h, ok, err = Hover{}, false, fmt.Errorf("%w: %v", ErrInternal, r)
			trace.Error(tracer, trace.ScopeRequest, "hover", err, span.ID())
		}
		span.End(fmt.Sprint(ok))
	}()

	if err := doc.CheckOffset(offset); err != nil {
		return Hover{}, false, err
	}
	if doc.InComment(offset) {
		return Hover{}, false, nil
	}
	tree := e.opts.Structure.Parse(doc)
	current := tree.Find(offset)
	if current == nil {
		return Hover{}, false, nil
	}
	req := e.newRequest(ctx, doc, tree, offset, span.ID())
	switch current.Kind() {
	case structure.Key:
		if !current.IsInValue(offset) {
			return req.hoverKey(current)
		}
		return req.hoverValue(current)
	case structure.Seq:
		if current.IsInValue(offset) {
			return req.hoverValue(current)
		}
	}
	return Hover{}, false, nil
}

func (r *request) hoverKey(n *structure.Node) (Hover, bool, error) {
	c := r.resolve(n.Parent())
	if c == nil {
		return Hover{}, false, nil
	}
	s := r.schema()
	dc := r.dynamicAt(c.path)
	t := s.InferMoreSpecificType(c.typ, dc)
	p, found := s.PropertiesByName(t, dc)[n.Key()]
	if !found {
		return Hover{}, false, nil
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s**: `%s`", p.Name, p.Type)
	var flags []string
	if p.Primary {
		flags = append(flags, "primary")
	}
	if p.Required {
		flags = append(flags, "required")
	}
	if p.Deprecated {
		flags = append(flags, "deprecated")
	}
	if len(flags) > 0 {
		fmt.Fprintf(&sb, " _(%s)_", strings.Join(flags, ", "))
	}
	desc := p.Description
	if desc == "" && p.Type != nil {
		desc = p.Type.Description
	}
	if desc != "" {
		sb.WriteString("\n\n")
		sb.WriteString(desc)
	}
	return Hover{Markdown: sb.String(), Start: n.Start(), End: n.ColonOffset()}, true, nil
}

func (r *request) hoverValue(n *structure.Node) (Hover, bool, error) {
	value := unquote(n.ValueText())
	if value == "" {
		return Hover{}, false, nil
	}
	c := r.resolve(n)
	if c == nil {
		return Hover{}, false, nil
	}
	s := r.schema()
	t := s.InferMoreSpecificType(c.typ, r.dynamicAt(c.path))
	hints, err := s.HintValues(t, r.dynamicAt(c.path))
	if err != nil {
		trace.Error(r.tracer, trace.ScopeContext, "hint-values", err, r.span)
		return Hover{}, false, nil
	}
	doc := ""
	for _, hv := range hints {
		if hv.Value == value {
			doc = hv.Doc
			break
		}
	}
	if doc == "" {
		doc = typeDoc(t)
	}
	if doc == "" {
		return Hover{}, false, nil
	}
	md := fmt.Sprintf("`%s`\n\n%s", value, doc)
	return Hover{Markdown: md, Start: n.ValueStart(), End: n.ValueEnd()}, true, nil
}

func typeDoc(t *schema.Type) string {
	if t == nil {
		return ""
	}
	return t.Description
}
