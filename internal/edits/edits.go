// Package edits describes a completion's effect on a document as a list of
// ordered, non-overlapping replacements.
package edits

import (
	"errors"
	"sort"
	"strings"
)

// ErrOverlap is returned by Apply when two operations overlap.
var ErrOverlap = errors.New("overlapping edits")

// Edit replaces the bytes in [Start, End) with Text.
type Edit struct {
	Start int
	End   int
	Text  string
}

// Edits is an ordered set of operations. The zero value is an empty,
// plain-text edit.
type Edits struct {
	ops     []Edit
	snippet bool
}

// Replace adds an operation. An operation that touches an existing one is
// merged into it; text inserted where another operation ends is appended.
func (e *Edits) Replace(start, end int, text string) {
	e.add(start, end, text, false)
}

// InsertBefore adds text at offset ahead of any text already inserted there.
func (e *Edits) InsertBefore(offset int, text string) {
	if text == "" {
		return
	}
	e.add(offset, offset, text, true)
}

func (e *Edits) add(start, end int, text string, before bool) {
	if end < start {
		start, end = end, start
	}
	for i := range e.ops {
		o := &e.ops[i]
		if !before && o.End == start {
			o.End = end
			o.Text += text
			return
		}
		if o.Start == end {
			o.Start = start
			o.Text = text + o.Text
			return
		}
	}
	e.ops = append(e.ops, Edit{Start: start, End: end, Text: text})
	sort.SliceStable(e.ops, func(i, j int) bool { return e.ops[i].Start < e.ops[j].Start })
}

// Delete removes [start, end).
func (e *Edits) Delete(start, end int) {
	if start == end {
		return
	}
	e.Replace(start, end, "")
}

// Insert adds text at offset.
func (e *Edits) Insert(offset int, text string) {
	if text == "" {
		return
	}
	e.Replace(offset, offset, text)
}

// Ops returns a copy of the operations in document order.
func (e *Edits) Ops() []Edit {
	return append([]Edit(nil), e.ops...)
}

func (e *Edits) IsEmpty() bool { return len(e.ops) == 0 }

func (e *Edits) SetSnippet(v bool) { e.snippet = v }

// IsSnippet reports whether inserted text uses snippet placeholders.
func (e *Edits) IsSnippet() bool { return e.snippet }

// FirstEditStart returns the start of the first operation, or -1.
func (e *Edits) FirstEditStart() int {
	if len(e.ops) == 0 {
		return -1
	}
	return e.ops[0].Start
}

// Clone returns an independent copy.
func (e *Edits) Clone() *Edits {
	if e == nil {
		return &Edits{}
	}
	return &Edits{ops: e.Ops(), snippet: e.snippet}
}

// TransformFirstNonWhitespaceEdit calls fn with the first operation that
// inserts visible text and the index of that text's first non-blank
// character. fn may rewrite the operation in place. It reports whether such
// an operation exists.
func (e *Edits) TransformFirstNonWhitespaceEdit(fn func(ed *Edit, at int)) bool {
	for i := range e.ops {
		at := strings.IndexFunc(e.ops[i].Text, func(r rune) bool {
			return r != ' ' && r != '\t' && r != '\n' && r != '\r'
		})
		if at < 0 {
			continue
		}
		fn(&e.ops[i], at)
		sort.SliceStable(e.ops, func(i, j int) bool { return e.ops[i].Start < e.ops[j].Start })
		return true
	}
	return false
}

// ShiftIndent adds delta spaces after every newline of inserted text, or
// removes up to -delta leading spaces when delta is negative.
func (e *Edits) ShiftIndent(delta int) {
	if delta == 0 {
		return
	}
	for i := range e.ops {
		e.ops[i].Text = ShiftLines(e.ops[i].Text, delta)
	}
}

// ShiftLines re-indents every line of text after the first by delta spaces.
func ShiftLines(text string, delta int) string {
	if delta == 0 || !strings.Contains(text, "\n") {
		return text
	}
	lines := strings.Split(text, "\n")
	for i := 1; i < len(lines); i++ {
		if delta > 0 {
			lines[i] = strings.Repeat(" ", delta) + lines[i]
			continue
		}
		n := 0
		for n < -delta && n < len(lines[i]) && lines[i][n] == ' ' {
			n++
		}
		lines[i] = lines[i][n:]
	}
	return strings.Join(lines, "\n")
}

// Apply returns text with every operation applied.
func (e *Edits) Apply(text string) (string, error) {
	var sb strings.Builder
	pos := 0
	for _, o := range e.ops {
		if o.Start < pos || o.End > len(text) || o.Start > o.End {
			return "", ErrOverlap
		}
		sb.WriteString(text[pos:o.Start])
		sb.WriteString(o.Text)
		pos = o.End
	}
	sb.WriteString(text[pos:])
	return sb.String(), nil
}
