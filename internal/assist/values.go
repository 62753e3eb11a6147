package assist

import (
	"strings"

	"yamlassist/internal/edits"
	"yamlassist/internal/schema"
	"yamlassist/internal/structure"
)

func (c *Context) valueCompletions(req *request, t *schema.Type, dc *dynamicContext, node *structure.Node, offset int, prefix string) []Proposal {
	hints, err := req.schema().HintValues(t, dc)
	if err != nil {
		return []Proposal{req.errorProposal(err)}
	}
	if len(hints) == 0 {
		return nil
	}
	start := req.prefixStart(node, offset)
	lead := ""
	if req.needsLeadingSpace(start) {
		lead = " "
	}
	refIndent := -1

	var out []Proposal
	for _, h := range hints {
		if h.Value == prefix {
			continue
		}
		score := req.opts().Matcher.Score(prefix, h.Value)
		if score <= 0 {
			continue
		}
		text := lead + h.Value
		if h.Extra != "" {
			if refIndent < 0 {
				refIndent = req.referenceIndent(c.path, node, offset)
			}
			for _, line := range strings.Split(h.Extra, "\n") {
				text += "\n" + spaces(refIndent) + line
			}
		}
		e := &edits.Edits{}
		e.Replace(start, offset, text)
		label := h.Label
		if label == "" {
			label = h.Value
		}
		out = append(out, Proposal{
			Label:         label,
			Detail:        t.String(),
			Documentation: h.Doc,
			Kind:          KindValue,
			BaseScore:     score,
			Edits:         e,
			Prefix:        prefix,
		})
	}
	return out
}
