package assist

import (
	"yamlassist/internal/edits"
	"yamlassist/internal/schema"
	"yamlassist/internal/structure"
)

func (c *Context) snippetCompletions(req *request, t *schema.Type, dc *dynamicContext, node *structure.Node, offset int, prefix string) []Proposal {
	snippets := req.schema().Snippets(t)
	if len(snippets) == 0 {
		return nil
	}
	defined := dc.DefinedProperties()

	var out []Proposal
	for _, sn := range snippets {
		if !applicable(sn, defined) {
			continue
		}
		score := req.opts().Matcher.Score(prefix, sn.Name)
		if score <= 0 {
			continue
		}
		e := &edits.Edits{}
		e.SetSnippet(true)
		if node.Kind() == structure.Key && node.IsInValue(offset) && c.path.Equal(node.Path()) {
			col := node.Indent() + req.opts().IndentUnit
			e.Replace(node.ColonOffset()+1, offset, "\n"+spaces(col)+indentLines(sn.Template, col))
		} else {
			start := req.prefixStart(node, offset)
			lead := req.leadingSpace(start)
			e.Replace(start, offset, lead+indentLines(sn.Template, req.doc.Column(start)+len(lead)))
		}
		out = append(out, Proposal{
			Label:         sn.Name,
			Detail:        "snippet",
			Documentation: sn.Description,
			Kind:          KindSnippet,
			BaseScore:     score,
			Edits:         e,
			Prefix:        prefix,
		})
	}
	return out
}

// applicable reports whether none of the keys a snippet writes exist yet.
func applicable(sn schema.Snippet, defined map[string]struct{}) bool {
	for _, k := range sn.Introduces {
		if _, ok := defined[k]; ok {
			return false
		}
	}
	return true
}
