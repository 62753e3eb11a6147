// Package document holds the immutable text of a YAML buffer together with a
// line index used for offset, column and LSP position arithmetic.
package document

import (
	"errors"
	"sort"
	"strings"
	"unicode/utf8"

	"fortio.org/safecast"
)

// ErrOffsetOutOfRange is returned when an offset lies outside the text.
var ErrOffsetOutOfRange = errors.New("offset out of range")

const maxUint32 = ^uint32(0)

// Document is a snapshot of a text buffer. It is never mutated after New.
type Document struct {
	uri   string
	text  string
	lines []int // byte offset of the first character of every line
}

// New indexes text. uri is informational and may be empty.
func New(uri, text string) *Document {
	lines := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lines = append(lines, i+1)
		}
	}
	return &Document{uri: uri, text: text, lines: lines}
}

func (d *Document) URI() string  { return d.uri }
func (d *Document) Text() string { return d.text }
func (d *Document) Len() int     { return len(d.text) }

// LineCount returns the number of lines; a trailing newline opens a final
// empty line.
func (d *Document) LineCount() int { return len(d.lines) }

// CheckOffset validates that offset addresses a position inside the text
// (the end of text included).
func (d *Document) CheckOffset(offset int) error {
	if offset < 0 || offset > len(d.text) {
		return ErrOffsetOutOfRange
	}
	return nil
}

// Char returns the byte at offset, or 0 outside the text.
func (d *Document) Char(offset int) byte {
	if offset < 0 || offset >= len(d.text) {
		return 0
	}
	return d.text[offset]
}

// TextBetween returns text[start:end] clamped to the document bounds.
func (d *Document) TextBetween(start, end int) string {
	start = clamp(start, 0, len(d.text))
	end = clamp(end, start, len(d.text))
	return d.text[start:end]
}

// LineOfOffset returns the zero-based line containing offset.
func (d *Document) LineOfOffset(offset int) int {
	offset = clamp(offset, 0, len(d.text))
	idx := sort.Search(len(d.lines), func(i int) bool { return d.lines[i] > offset })
	return idx - 1
}

// LineStart returns the offset of the first character on line.
func (d *Document) LineStart(line int) int {
	if line < 0 {
		return 0
	}
	if line >= len(d.lines) {
		return len(d.text)
	}
	return d.lines[line]
}

// LineEnd returns the offset just past the last visible character of line,
// excluding the line terminator.
func (d *Document) LineEnd(line int) int {
	if line < 0 {
		return 0
	}
	if line >= len(d.lines)-1 {
		return len(d.text)
	}
	end := d.lines[line+1] - 1
	if end > d.lines[line] && d.text[end-1] == '\r' {
		end--
	}
	return end
}

// LineText returns the content of line without its terminator.
func (d *Document) LineText(line int) string {
	return d.text[d.LineStart(line):d.LineEnd(line)]
}

// Column returns the byte distance between offset and the start of its line.
func (d *Document) Column(offset int) int {
	offset = clamp(offset, 0, len(d.text))
	return offset - d.lines[d.LineOfOffset(offset)]
}

// LineIndent returns the number of leading spaces of line, or -1 when the
// line holds nothing but whitespace.
func (d *Document) LineIndent(line int) int {
	text := d.LineText(line)
	n := 0
	for n < len(text) && text[n] == ' ' {
		n++
	}
	if strings.TrimSpace(text[n:]) == "" {
		return -1
	}
	return n
}

// InComment reports whether offset falls after a `#` that starts a comment on
// its line. Quoted `#` characters and `#` glued to a preceding token are not
// comment starts.
func (d *Document) InComment(offset int) bool {
	offset = clamp(offset, 0, len(d.text))
	start := d.lines[d.LineOfOffset(offset)]
	return CommentStart(d.text[start:offset]) >= 0
}

// CommentStart returns the byte index of the comment `#` in a single line of
// YAML, or -1.
func CommentStart(line string) int {
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			if i == 0 || isSpace(line[i-1]) || line[i-1] == ':' || line[i-1] == '-' || line[i-1] == '[' || line[i-1] == '{' || line[i-1] == ',' {
				quote = c
			}
		case c == '#':
			if i == 0 || isSpace(line[i-1]) {
				return i
			}
		}
	}
	return -1
}

// PositionAt converts a byte offset to an LSP position measured in UTF-16
// code units.
func (d *Document) PositionAt(offset int) (line, character uint32) {
	offset = clamp(offset, 0, len(d.text))
	l := d.LineOfOffset(offset)
	units := 0
	for off := d.lines[l]; off < offset; {
		r, size := utf8.DecodeRuneInString(d.text[off:offset])
		if r == utf8.RuneError && size <= 1 {
			size = 1
		}
		if r > 0xFFFF {
			units += 2
		} else {
			units++
		}
		off += size
	}
	return safeUint32(l), safeUint32(units)
}

// OffsetAt converts an LSP position to a byte offset. Positions past the end
// of a line clamp to the line end; lines past the end clamp to the text end.
func (d *Document) OffsetAt(line, character uint32) int {
	l := int(line)
	if l >= len(d.lines) {
		return len(d.text)
	}
	off := d.lines[l]
	end := d.LineEnd(l)
	units := 0
	for off < end {
		r, size := utf8.DecodeRuneInString(d.text[off:end])
		if r == utf8.RuneError && size <= 1 {
			size = 1
		}
		need := 1
		if r > 0xFFFF {
			need = 2
		}
		if uint32(units+need) > character {
			break
		}
		units += need
		off += size
	}
	return off
}

func safeUint32(n int) uint32 {
	if n < 0 {
		return 0
	}
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		return maxUint32
	}
	return v
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t'
}
