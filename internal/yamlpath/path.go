// Package yamlpath addresses a location inside a YAML document as a sequence
// of map keys and sequence indices.
package yamlpath

import (
	"strconv"
	"strings"
)

// SegmentKind distinguishes map-key steps from sequence-index steps.
type SegmentKind uint8

const (
	KeySegment SegmentKind = iota + 1
	IndexSegment
)

// Segment is a single navigation step.
type Segment struct {
	Kind  SegmentKind
	Key   string
	Index int
}

// Key returns a map-key segment.
func Key(name string) Segment {
	return Segment{Kind: KeySegment, Key: name}
}

// Index returns a sequence-index segment.
func Index(i int) Segment {
	return Segment{Kind: IndexSegment, Index: i}
}

func (s Segment) String() string {
	switch s.Kind {
	case KeySegment:
		return s.Key
	case IndexSegment:
		return "[" + strconv.Itoa(s.Index) + "]"
	default:
		return "?"
	}
}

// Path is an ordered list of segments from the document root. The zero value
// is the root path.
type Path []Segment

// Append returns a new path extended by seg. The receiver is never modified.
func (p Path) Append(seg Segment) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, seg)
}

// Parent returns the path without its last segment. The parent of the root is
// the root.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return p
	}
	return p[: len(p)-1 : len(p)-1]
}

// Last returns the final segment, if any.
func (p Path) Last() (Segment, bool) {
	if len(p) == 0 {
		return Segment{}, false
	}
	return p[len(p)-1], true
}

func (p Path) Len() int { return len(p) }

func (p Path) IsEmpty() bool { return len(p) == 0 }

// Equal reports whether both paths have identical segments.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether prefix is a leading part of p.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	return p[:len(prefix)].Equal(prefix)
}

// String renders the path as `a.b[0].c`; the root renders as ".".
func (p Path) String() string {
	if len(p) == 0 {
		return "."
	}
	var sb strings.Builder
	for i, seg := range p {
		if seg.Kind == KeySegment && i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(seg.String())
	}
	return sb.String()
}
