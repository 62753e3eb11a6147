package assist

import (
	"strings"

	"yamlassist/internal/edits"
	"yamlassist/internal/schema"
	"yamlassist/internal/structure"
)

// propertyTiers partitions props in the order they are revealed.
func propertyTiers(props []*schema.Property, tiered bool) [][]*schema.Property {
	var primary, required, optional, rest []*schema.Property
	for _, p := range props {
		switch {
		case p.Primary:
			primary = append(primary, p)
		case p.Required:
			required = append(required, p)
			rest = append(rest, p)
		default:
			optional = append(optional, p)
			rest = append(rest, p)
		}
	}
	if tiered {
		return [][]*schema.Property{primary, required, optional}
	}
	return [][]*schema.Property{primary, rest}
}

func (c *Context) keyCompletions(req *request, t *schema.Type, dc *dynamicContext, node *structure.Node, offset int, prefix string) []Proposal {
	s := req.schema()
	if !s.IsBean(t) && !s.IsMap(t) {
		return nil
	}
	opts := req.opts()
	defined := dc.DefinedProperties()
	query := strings.TrimSuffix(prefix, ":")
	// the key being renamed does not count as present
	self := ""
	if node.Kind() == structure.Key && !node.IsInValue(offset) {
		self = node.Key()
	}

	var out []Proposal
	for tier, props := range propertyTiers(s.Properties(t, dc), s.Tiered()) {
		missing := false
		for _, p := range props {
			if _, ok := defined[p.Name]; ok && p.Name != self {
				continue
			}
			if p.Required {
				missing = true
			}
			if p.Deprecated && !opts.SuggestDeprecated {
				continue
			}
			score := opts.Matcher.Score(query, p.Name)
			if score <= 0 {
				continue
			}
			out = append(out, Proposal{
				Label:         p.Name,
				Detail:        p.Type.String(),
				Documentation: p.Description,
				Kind:          KindProperty,
				BaseScore:     score,
				Deemphasis:    float64(tier) * opts.TierDeemphasis,
				Edits:         c.keyEdits(req, p, node, offset),
				Prefix:        prefix,
				Deprecated:    p.Deprecated,
			})
		}
		if missing {
			break
		}
	}
	return out
}

func (c *Context) keyEdits(req *request, p *schema.Property, node *structure.Node, offset int) *edits.Edits {
	e := &edits.Edits{}
	doc := req.doc
	switch {
	case node.Kind() == structure.Key && node.IsInValue(offset) && c.path.Equal(node.Path()):
		col := node.Indent() + req.opts().IndentUnit
		app := req.appendText(e, p, col)
		e.Replace(node.ColonOffset()+1, offset, "\n"+spaces(col)+p.Name+":"+app)
	case node.Kind() == structure.Key && !node.IsInValue(offset):
		start := req.prefixStart(node, offset)
		text := p.Name + ":"
		if node.IsBarren() {
			text += req.appendText(e, p, doc.Column(start))
		}
		e.Replace(start, node.ColonOffset()+1, text)
	default:
		start := req.prefixStart(node, offset)
		lead := req.leadingSpace(start)
		col := doc.Column(start) + len(lead)
		e.Replace(start, offset, lead+p.Name+":"+req.appendText(e, p, col))
	}
	return e
}

// appendText is the text inserted after `name:` for a key at column col.
func (r *request) appendText(e *edits.Edits, p *schema.Property, col int) string {
	if p.Snippet != "" {
		e.SetSnippet(true)
		return indentLines(p.Snippet, col)
	}
	return r.synthesizeAppend(p.Type, col)
}

func (r *request) synthesizeAppend(t *schema.Type, col int) string {
	s := r.schema()
	switch {
	case t == nil, s.IsAtomic(t), r.allAtomic(t):
		return " "
	case s.IsSequencable(t):
		text := "\n" + spaces(col) + "- "
		elem := s.DomainType(t)
		if p := r.leadingProperty(elem); p != nil {
			text += p.Name + ":"
			if p.Type == nil || s.IsAtomic(p.Type) {
				text += " "
			}
		}
		return text
	default:
		return "\n" + spaces(col+r.opts().IndentUnit)
	}
}

func (r *request) allAtomic(t *schema.Type) bool {
	s := r.schema()
	members := s.UnionMembers(t)
	if len(members) == 0 {
		return false
	}
	for _, m := range members {
		if !s.IsAtomic(m) {
			return false
		}
	}
	return true
}

// leadingProperty picks the property a new element most likely starts with.
func (r *request) leadingProperty(t *schema.Type) *schema.Property {
	s := r.schema()
	if !s.IsBean(t) {
		return nil
	}
	props := s.Properties(t, nil)
	for _, p := range props {
		if p.Primary {
			return p
		}
	}
	for _, p := range props {
		if p.Required {
			return p
		}
	}
	return nil
}
