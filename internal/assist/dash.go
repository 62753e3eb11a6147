package assist

import (
	"strings"

	"yamlassist/internal/edits"
	"yamlassist/internal/schema"
	"yamlassist/internal/structure"
	"yamlassist/internal/yamlpath"
)

// dashCompletions offers the element completions of a sequence type as new
// `- ` items.
func (c *Context) dashCompletions(req *request, t *schema.Type, node *structure.Node, offset int) []Proposal {
	s := req.schema()
	elem := s.DomainType(t)
	if elem == nil {
		return nil
	}
	owner := req.nodeAt(c.path)
	count := 0
	if owner != nil {
		count = len(owner.SeqChildren())
	}
	item := &Context{
		kind:    typed,
		path:    c.path.Append(yamlpath.Index(count)),
		typ:     elem,
		parent:  c,
		relaxed: true,
	}
	ownerIndent := node.Indent()
	if owner != nil && owner.Indent() >= 0 {
		ownerIndent = owner.Indent()
	}

	var out []Proposal
	for _, p := range item.completions(req, node, offset) {
		if p.Kind == KindError {
			continue
		}
		e := p.Edits.Clone()
		if !e.TransformFirstNonWhitespaceEdit(func(ed *edits.Edit, at int) {
			req.decorateDash(ed, at, ownerIndent)
		}) {
			continue
		}
		p.Edits = e
		p.Label = "- " + p.Label
		p = p.deemphasize(req.opts().DashDeemphasis)
		p.dashed = true
		out = append(out, p)
	}
	return out
}

// decorateDash puts `- ` in front of the first visible character ed inserts.
func (r *request) decorateDash(ed *edits.Edit, at, ownerIndent int) {
	doc := r.doc
	seqIndent := r.opts().SeqIndent
	lead, rest := ed.Text[:at], ed.Text[at:]
	if strings.Contains(lead, "\n") {
		ed.Text = lead + "- " + edits.ShiftLines(rest, seqIndent)
		return
	}
	lineStart := doc.LineStart(doc.LineOfOffset(ed.Start))
	oldCol := doc.Column(ed.Start) + at
	if strings.TrimSpace(doc.TextBetween(lineStart, ed.Start)) != "" {
		for ed.Start > lineStart && doc.Char(ed.Start-1) == ' ' {
			ed.Start--
		}
		newCol := ownerIndent + seqIndent
		ed.Text = "\n" + spaces(ownerIndent) + "- " + edits.ShiftLines(rest, newCol-oldCol)
		return
	}
	if lead == "" && ed.Start-2 >= lineStart && doc.Char(ed.Start-1) == ' ' && doc.Char(ed.Start-2) == ' ' {
		ed.Start -= 2
		ed.Text = "- " + rest
		return
	}
	ed.Text = lead + "- " + edits.ShiftLines(rest, seqIndent)
}
