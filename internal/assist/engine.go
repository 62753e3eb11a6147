// Package assist computes schema-driven completions for a cursor position in
// a YAML document.
package assist

import (
	"context"
	"errors"
	"fmt"

	"yamlassist/internal/document"
	"yamlassist/internal/structure"
	"yamlassist/internal/trace"
)

// ErrInternal wraps an unexpected fault raised while computing completions.
var ErrInternal = errors.New("internal completion error")

// Engine computes completions against one schema. It holds no per-request
// state and may be used from several goroutines.
type Engine struct {
	schema TypeSchema
	opts   Options
}

// NewEngine returns an engine for s. Zero option fields take their defaults.
func NewEngine(s TypeSchema, opts Options) *Engine {
	return &Engine{schema: s, opts: opts.withDefaults()}
}

// Options returns the engine configuration.
func (e *Engine) Options() Options { return e.opts }

// Complete returns the proposals for offset in doc. The result is not
// sorted; callers rank it with Sort.
func (e *Engine) Complete(ctx context.Context, doc *document.Document, offset int) (out []Proposal, err error) {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeRequest, "complete", trace.CurrentSpan(ctx)).
		WithExtra("offset", fmt.Sprint(offset))
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%w: %v", ErrInternal, r)
			trace.Error(tracer, trace.ScopeRequest, "complete", err, span.ID())
		}
		span.WithExtra("proposals", fmt.Sprint(len(out))).End("")
	}()

	if err := doc.CheckOffset(offset); err != nil {
		return nil, err
	}
	if doc.InComment(offset) {
		return nil, nil
	}
	tree := e.opts.Structure.Parse(doc)
	current := tree.Find(offset)
	if current == nil {
		return nil, nil
	}
	req := e.newRequest(ctx, doc, tree, offset, span.ID())

	switch current.Kind() {
	case structure.Doc:
		return req.precise(current, current), nil
	case structure.Key, structure.Seq:
		ctxNode := current
		if !current.IsInValue(offset) {
			ctxNode = current.Parent()
		}
		c := req.resolve(ctxNode)
		if c == nil {
			if !isDubiousKey(current, offset) {
				return nil, nil
			}
			trace.Point(tracer, trace.ScopeRequest, "dubious-key", current.Key(), span.ID())
			return req.precise(current.Parent(), current.AsRaw()), nil
		}
		return c.completions(req, current, offset), nil
	default:
		return req.ambiguous(current), nil
	}
}

// isDubiousKey reports whether the cursor sits right after a key's colon,
// where the line may still turn out to be a plain scalar.
func isDubiousKey(n *structure.Node, offset int) bool {
	return n.Kind() == structure.Key && offset == n.ColonOffset()+1
}

func (r *request) precise(ctxNode, current *structure.Node) []Proposal {
	c := r.resolve(ctxNode)
	if c == nil {
		return nil
	}
	return c.completions(r, current, r.offset)
}

// ambiguous tries every ancestor the cursor could belong to, innermost
// first, and moves each proposal onto its context's indentation.
func (r *request) ambiguous(current *structure.Node) []Proposal {
	base := minIndent(r.doc.Column(r.offset), current.Indent())
	opts := r.opts()
	var out []Proposal
	rank := 0
	for n := current.Parent(); n != nil; n = n.Parent() {
		if n.Kind() == structure.Raw || (n.Kind() != structure.Doc && n.Indent() > base) {
			continue
		}
		c := r.resolve(n)
		if c == nil {
			trace.Point(r.tracer, trace.ScopeContext, "unresolved", n.Path().String(), r.span)
			continue
		}
		kept := 0
		for _, p := range c.completions(r, current, r.offset) {
			fixed, ok := r.fixIndentation(p, n, current)
			if !ok {
				trace.Point(r.tracer, trace.ScopeProposal, "indent-dropped", p.Label, r.span)
				continue
			}
			out = append(out, fixed.deemphasize(float64(rank)*opts.NextContextDeemphasis))
			kept++
		}
		if kept > 0 {
			rank++
		}
	}
	return out
}

// resolve replays the path of n against the schema root.
func (r *request) resolve(n *structure.Node) *Context {
	if n == nil {
		return nil
	}
	c := topLevelContext(r.schema().Root())
	for _, seg := range n.Path() {
		if c = c.traverse(r, seg); c == nil {
			return nil
		}
	}
	return c
}

func minIndent(a, b int) int {
	switch {
	case a < 0:
		return b
	case b < 0:
		return a
	case a < b:
		return a
	default:
		return b
	}
}
