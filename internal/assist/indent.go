package assist

import (
	"math"
	"strings"

	"yamlassist/internal/structure"
)

// fixIndentation moves a proposal computed for ctxNode so that its first
// visible character lands on the column ctxNode expects. It reports false
// when the move cannot be done without touching unrelated text.
func (r *request) fixIndentation(p Proposal, ctxNode, current *structure.Node) (Proposal, bool) {
	if p.Edits == nil || p.Edits.IsEmpty() {
		return p, true
	}
	landing, opStart, multiline, ok := r.landingColumn(p)
	if !ok {
		return p, true
	}
	target := r.targetIndent(ctxNode, current, p.dashed)
	delta := target - landing
	if delta == 0 {
		return p, true
	}
	opts := r.opts()
	e := p.Edits.Clone()
	if delta > 0 {
		if !relaxable(ctxNode) {
			return p, false
		}
		e.ShiftIndent(delta)
		if !multiline {
			e.InsertBefore(opStart, spaces(delta))
		}
	} else {
		if !opts.DeindentProposals || blocked(current, ctxNode) {
			return p, false
		}
		e.ShiftIndent(delta)
		if !multiline {
			excess := -delta
			lineStart := r.doc.LineStart(r.doc.LineOfOffset(opStart))
			if opStart-excess < lineStart || strings.Trim(r.doc.TextBetween(opStart-excess, opStart), " ") != "" {
				return p, false
			}
			e.Delete(opStart-excess, opStart)
		}
	}
	p.Edits = e
	levels := math.Ceil(math.Abs(float64(delta)) / float64(opts.IndentUnit))
	return p.deemphasize(levels * opts.IndentDeemphasis), true
}

// landingColumn returns the column the first visible inserted character
// ends up on and the start of the operation inserting it.
func (r *request) landingColumn(p Proposal) (col, start int, multiline, ok bool) {
	for _, op := range p.Edits.Ops() {
		at := strings.IndexFunc(op.Text, func(c rune) bool {
			return c != ' ' && c != '\t' && c != '\n' && c != '\r'
		})
		if at < 0 {
			continue
		}
		lead := op.Text[:at]
		if nl := strings.LastIndexByte(lead, '\n'); nl >= 0 {
			return len(lead) - nl - 1, op.Start, true, true
		}
		return r.doc.Column(op.Start) + at, op.Start, false, true
	}
	return 0, 0, false, false
}

// targetIndent is the column children of ctxNode are expected on.
func (r *request) targetIndent(ctxNode, current *structure.Node, dashed bool) int {
	want := structure.Key
	if dashed {
		want = structure.Seq
	}
	best := -1
	for _, c := range ctxNode.Children() {
		if c.IsBlank() || c.Kind() != want || sameNode(c, current) {
			continue
		}
		if c.Indent() > best {
			best = c.Indent()
		}
	}
	if best >= 0 {
		return best
	}
	switch {
	case ctxNode.Kind() == structure.Doc:
		return 0
	case dashed && ctxNode.Kind() == structure.Key:
		return ctxNode.Indent()
	default:
		return ctxNode.Indent() + r.opts().IndentUnit
	}
}

// relaxable reports whether ctxNode is provably still open for children.
func relaxable(n *structure.Node) bool {
	return (n.Kind() == structure.Key || n.Kind() == structure.Seq) && n.IsBarren()
}

// blocked reports whether text after current would end up inside a proposal
// moved out to ctxNode's level.
func blocked(current, ctxNode *structure.Node) bool {
	for _, c := range current.Children() {
		if !c.IsBlank() {
			return true
		}
	}
	for n := current; n != nil && !sameNode(n, ctxNode); n = n.Parent() {
		for _, s := range n.FollowingSiblings() {
			if !s.IsBlank() {
				return true
			}
		}
	}
	return false
}

func sameNode(a, b *structure.Node) bool {
	return a == b || (a != nil && b != nil && a.Line() == b.Line() && a.Start() == b.Start() && a.Kind() != structure.Doc && b.Kind() != structure.Doc)
}
