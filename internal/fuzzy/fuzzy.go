// Package fuzzy scores how well a typed prefix matches a candidate label.
package fuzzy

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/text/unicode/norm"
)

// Matcher scores candidates with Score.
type Matcher struct{}

func (Matcher) Score(query, candidate string) float64 { return Score(query, candidate) }

// Score returns a value in [0,1]. An empty query matches everything with 1;
// 0 means no match. Case-insensitive prefix matches score above 0.5, other
// subsequence matches at or below it, and fewer edits score higher.
func Score(query, candidate string) float64 {
	if query == "" {
		return 1
	}
	q := norm.NFC.String(query)
	c := norm.NFC.String(candidate)
	if !fuzzy.MatchFold(q, c) {
		return 0
	}
	dist := fuzzy.RankMatchFold(q, c)
	if dist < 0 {
		return 0
	}
	closeness := 1 / float64(1+dist)
	if strings.HasPrefix(strings.ToLower(c), strings.ToLower(q)) {
		return 0.5 + closeness/2
	}
	return closeness / 2
}
