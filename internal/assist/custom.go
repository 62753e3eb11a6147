package assist

import (
	"strings"

	"yamlassist/internal/edits"
	"yamlassist/internal/schema"
	"yamlassist/internal/structure"
)

// CustomAssistant completes values whose grammar the schema cannot express,
// such as durations or comma separated lists.
type CustomAssistant interface {
	Complete(r AssistRequest) []Proposal
}

// AssistRequest describes the value a custom assistant works on.
type AssistRequest struct {
	// Value is the text of the value region; ValueStart is its offset.
	Value      string
	ValueStart int
	Offset     int
	Type       *schema.Type
	Schema     TypeSchema
	Dynamic    schema.DynamicContext
	Matcher    Matcher
	// ErrorScore is the score of informational failure proposals.
	ErrorScore float64
}

// Typed returns the part of the value before the cursor.
func (r AssistRequest) Typed() string {
	n := r.Offset - r.ValueStart
	if n <= 0 {
		return ""
	}
	if n > len(r.Value) {
		n = len(r.Value)
	}
	return r.Value[:n]
}

func (r *request) customRequest(c *Context, t *schema.Type, node *structure.Node, offset int) AssistRequest {
	var start, end int
	if (node.Kind() == structure.Key || node.Kind() == structure.Seq) && node.IsInValue(offset) {
		start, end = node.ValueStart(), node.ValueEnd()
	} else {
		start = r.prefixStart(node, offset)
		end = r.doc.LineEnd(r.doc.LineOfOffset(offset))
	}
	if start > offset {
		start = offset
	}
	if end < offset {
		end = offset
	}
	return AssistRequest{
		Value:      r.doc.TextBetween(start, end),
		ValueStart: start,
		Offset:     offset,
		Type:       t,
		Schema:     r.schema(),
		Dynamic:    r.dynamicAt(c.path),
		Matcher:    r.opts().Matcher,
		ErrorScore: r.opts().ErrorScore,
	}
}

var durationUnits = []string{"ms", "s", "m", "h"}

// DurationAssistant completes a number with a time unit suffix.
type DurationAssistant struct{}

func (DurationAssistant) Complete(r AssistRequest) []Proposal {
	typed := r.Typed()
	digits := len(typed)
	for digits > 0 && isUnitLetter(typed[digits-1]) {
		digits--
	}
	num, unit := typed[:digits], typed[digits:]
	if num == "" || !isNumber(num) {
		return nil
	}
	var out []Proposal
	for _, u := range durationUnits {
		if u == unit || !strings.HasPrefix(u, unit) {
			continue
		}
		e := &edits.Edits{}
		e.Replace(r.ValueStart, r.Offset, num+u)
		out = append(out, Proposal{
			Label:     num + u,
			Detail:    "duration",
			Kind:      KindValue,
			BaseScore: r.Matcher.Score(unit, u),
			Edits:     e,
			Prefix:    typed,
		})
	}
	return out
}

func isUnitLetter(c byte) bool { return c >= 'a' && c <= 'z' }

func isNumber(s string) bool {
	dot := false
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9':
		case c == '.' && !dot && i > 0:
			dot = true
		default:
			return false
		}
	}
	return true
}

// ListAssistant completes one item of a comma separated list using the
// type's hint values. Items already present are not offered again.
type ListAssistant struct{}

func (ListAssistant) Complete(r AssistRequest) []Proposal {
	hints, err := r.Schema.HintValues(r.Type, r.Dynamic)
	if err != nil {
		return []Proposal{errorProposal(err.Error(), r.ErrorScore)}
	}
	typed := r.Typed()
	segStart := strings.LastIndexByte(typed, ',') + 1
	for segStart < len(typed) && typed[segStart] == ' ' {
		segStart++
	}
	current := typed[segStart:]

	listed := make(map[string]struct{})
	for i, item := range strings.Split(r.Value, ",") {
		item = strings.TrimSpace(item)
		if item == "" || i == strings.Count(typed, ",") {
			continue
		}
		listed[item] = struct{}{}
	}

	var out []Proposal
	for _, h := range hints {
		if _, ok := listed[h.Value]; ok || h.Value == current {
			continue
		}
		score := r.Matcher.Score(current, h.Value)
		if score <= 0 {
			continue
		}
		e := &edits.Edits{}
		e.Replace(r.ValueStart+segStart, r.Offset, h.Value)
		label := h.Label
		if label == "" {
			label = h.Value
		}
		out = append(out, Proposal{
			Label:         label,
			Detail:        r.Type.String(),
			Documentation: h.Doc,
			Kind:          KindValue,
			BaseScore:     score,
			Edits:         e,
			Prefix:        current,
		})
	}
	return out
}
