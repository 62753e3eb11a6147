package assist

import (
	"fmt"
	"sort"
	"strings"

	"yamlassist/internal/edits"
)

// ProposalKind tells a client how to present a proposal.
type ProposalKind uint8

const (
	KindProperty ProposalKind = iota + 1
	KindValue
	KindSnippet
	KindError
)

func (k ProposalKind) String() string {
	switch k {
	case KindProperty:
		return "property"
	case KindValue:
		return "value"
	case KindSnippet:
		return "snippet"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Proposal is one completion suggestion.
type Proposal struct {
	Label         string
	Detail        string
	Documentation string
	Kind          ProposalKind
	// BaseScore is the match quality; Deemphasis is subtracted from it.
	BaseScore  float64
	Deemphasis float64
	Edits      *edits.Edits
	// Prefix is the text before the cursor that the proposal replaces.
	Prefix     string
	Deprecated bool

	dashed bool
}

// Score returns the ranking score; higher is better.
func (p Proposal) Score() float64 { return p.BaseScore - p.Deemphasis }

// Dashed reports whether the proposal starts a new sequence item.
func (p Proposal) Dashed() bool { return p.dashed }

// deemphasize returns a copy with extra deemphasis.
func (p Proposal) deemphasize(by float64) Proposal {
	p.Deemphasis += by
	return p
}

// ErrorProposal builds the informational proposal reporting a failure.
func (o Options) ErrorProposal(msg string) Proposal {
	return errorProposal(msg, o.ErrorScore)
}

func errorProposal(msg string, score float64) Proposal {
	return Proposal{
		Label:     msg,
		Kind:      KindError,
		BaseScore: score,
		Edits:     &edits.Edits{},
	}
}

// Sort orders proposals by descending score, then label.
func Sort(ps []Proposal) {
	sort.SliceStable(ps, func(i, j int) bool {
		si, sj := ps[i].Score(), ps[j].Score()
		if si != sj {
			return si > sj
		}
		return ps[i].Label < ps[j].Label
	})
}

// Dedupe drops proposals that would produce the same document as an earlier
// one with the same label and kind, keeping the best scored of them in order
// of first appearance. Proposals from different contexts that share a label
// but edit the text differently are all kept.
func Dedupe(ps []Proposal) []Proposal {
	type key struct {
		label string
		kind  ProposalKind
		edits string
	}
	best := make(map[key]int, len(ps))
	var out []Proposal
	for _, p := range ps {
		k := key{p.Label, p.Kind, editKey(p.Edits)}
		if i, ok := best[k]; ok {
			if p.Score() > out[i].Score() {
				out[i] = p
			}
			continue
		}
		best[k] = len(out)
		out = append(out, p)
	}
	return out
}

func editKey(e *edits.Edits) string {
	if e == nil {
		return ""
	}
	var sb strings.Builder
	for _, op := range e.Ops() {
		fmt.Fprintf(&sb, "%d:%d:%q;", op.Start, op.End, op.Text)
	}
	return sb.String()
}
