package batch

import "strings"

// Caret marks a completion probe in a fixture file.
const Caret = "<caret>"

// ParseProbes removes every caret marker from text and returns the cleaned
// text with the marker offsets in it.
func ParseProbes(text string) (string, []int) {
	var (
		b       strings.Builder
		offsets []int
	)
	b.Grow(len(text))
	for {
		i := strings.Index(text, Caret)
		if i < 0 {
			b.WriteString(text)
			break
		}
		b.WriteString(text[:i])
		offsets = append(offsets, b.Len())
		text = text[i+len(Caret):]
	}
	return b.String(), offsets
}
